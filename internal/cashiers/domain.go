// Package cashiers manages cashier identities. PIN verification happens here
// at the API boundary; the sale core only ever receives the resolved
// cashier id/name/shop.
package cashiers

import (
	"errors"
	"time"
)

// Cashier is the actor who rings up sales at a shop.
type Cashier struct {
	ID        int64     `json:"id"`
	ShopID    int64     `json:"shop_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	PINHash   string    `json:"-"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	// ErrCashierNotFound indicates the cashier id does not resolve.
	ErrCashierNotFound = errors.New("cashiers: cashier not found")
	// ErrInvalidPIN indicates PIN verification failure.
	ErrInvalidPIN = errors.New("cashiers: invalid pin")
)
