// Package shops manages the shop registry. Shops scope products, cashiers
// and transactions; their names are denormalized into sale records.
package shops

import (
	"errors"
	"time"
)

// Shop represents a physical sales location.
type Shop struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Phone     string    `json:"phone"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrShopNotFound indicates the shop id does not resolve.
var ErrShopNotFound = errors.New("shops: shop not found")
