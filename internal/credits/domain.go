// Package credits tracks buy-now-pay-later accounts. Charges reference sale
// transaction numbers; the sale core itself never writes here.
package credits

import (
	"errors"
	"time"
)

// EntryType enumerates ledger entry kinds on a credit account.
type EntryType string

const (
	// EntryCharge increases the balance owed, referencing a sale.
	EntryCharge EntryType = "charge"
	// EntryPayment decreases the balance owed.
	EntryPayment EntryType = "payment"
)

// Account is one customer's credit account at a shop.
type Account struct {
	ID           int64     `json:"id"`
	ShopID       int64     `json:"shop_id"`
	CustomerName string    `json:"customer_name"`
	Phone        string    `json:"phone"`
	Balance      float64   `json:"balance"`
	CreditLimit  float64   `json:"credit_limit"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Entry is one ledger line on a credit account.
type Entry struct {
	ID                int64     `json:"id"`
	AccountID         int64     `json:"account_id"`
	Type              EntryType `json:"type"`
	Amount            float64   `json:"amount"`
	TransactionNumber string    `json:"transaction_number,omitempty"`
	Note              string    `json:"note,omitempty"`
	RecordedAt        time.Time `json:"recorded_at"`
}

var (
	// ErrAccountNotFound indicates the account id does not resolve.
	ErrAccountNotFound = errors.New("credits: account not found")
	// ErrCreditLimitExceeded indicates a charge would exceed the limit.
	ErrCreditLimitExceeded = errors.New("credits: credit limit exceeded")
	// ErrInvalidAmount indicates a non-positive entry amount.
	ErrInvalidAmount = errors.New("credits: amount must be positive")
)
