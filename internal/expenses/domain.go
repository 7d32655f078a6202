// Package expenses tracks shop operating expenses.
package expenses

import (
	"errors"
	"time"
)

// Expense is one recorded cost against a shop.
type Expense struct {
	ID          int64     `json:"id"`
	ShopID      int64     `json:"shop_id"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	ActorName   string    `json:"actor_name"`
	IncurredAt  time.Time `json:"incurred_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListFilter narrows expense listings.
type ListFilter struct {
	ShopID   *int64
	Category string
	From     time.Time
	To       time.Time
	Page     int
	Limit    int
}

// ErrExpenseNotFound indicates the expense id does not resolve.
var ErrExpenseNotFound = errors.New("expenses: expense not found")
