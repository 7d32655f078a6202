// Package catalog manages the product catalog: product records, the
// append-only stock movement history, and restock/adjustment postings.
// Stock decrements for sales happen inside the sales unit of work; this
// package owns every other stock mutation.
package catalog

import (
	"errors"
	"time"
)

// MovementType enumerates stock-affecting events.
type MovementType string

const (
	// MovementSale is an outbound movement caused by a completed sale.
	MovementSale MovementType = "sale"
	// MovementRestock is an inbound movement from purchasing/receiving.
	MovementRestock MovementType = "restock"
	// MovementAdjustment is a manual correction, positive or negative.
	MovementAdjustment MovementType = "adjustment"
)

// Product is a catalog entry scoped to a shop.
type Product struct {
	ID              int64      `json:"id"`
	ShopID          int64      `json:"shop_id"`
	Name            string     `json:"name"`
	Category        string     `json:"category"`
	Barcode         string     `json:"barcode"`
	BuyingPrice     float64    `json:"buying_price"`
	MinSellingPrice float64    `json:"min_selling_price"`
	CurrentStock    int        `json:"current_stock"`
	MinStockLevel   int        `json:"min_stock_level"`
	IsActive        bool       `json:"is_active"`
	LastSoldAt      *time.Time `json:"last_sold_at,omitempty"`
	LastRestockedAt *time.Time `json:"last_restocked_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// StockMovement is one entry in a product's append-only stock history.
// Quantity is the signed delta; NewStock is the resulting level.
type StockMovement struct {
	ID            int64        `json:"id"`
	ProductID     int64        `json:"product_id"`
	ShopID        int64        `json:"shop_id"`
	Type          MovementType `json:"type"`
	Quantity      int          `json:"quantity"`
	PreviousStock int          `json:"previous_stock"`
	NewStock      int          `json:"new_stock"`
	Reference     string       `json:"reference"`
	ActorName     string       `json:"actor_name"`
	OccurredAt    time.Time    `json:"occurred_at"`
}

// Snapshot is the catalog view the sale core prices against. Denormalized
// into the transaction at time of sale so later catalog edits do not
// rewrite history.
type Snapshot struct {
	ID              int64
	Name            string
	Category        string
	Barcode         string
	BuyingPrice     float64
	MinSellingPrice float64
	CurrentStock    int
	IsActive        bool
}

// ListFilter narrows product listings. Optional fields are pointers so the
// repository can translate only the criteria that are actually set.
type ListFilter struct {
	ShopID   *int64
	Category string
	Search   string
	IsActive *bool
	LowStock bool
	Page     int
	Limit    int
}

// RestockInput describes an inbound or adjustment posting.
type RestockInput struct {
	ProductID int64
	Quantity  int
	Type      MovementType
	Reference string
	ActorID   int64
	ActorName string
	Note      string
}

// HistoryFilter narrows stock movement listings.
type HistoryFilter struct {
	ProductID int64
	Type      MovementType
	From      time.Time
	To        time.Time
	Limit     int
}

var (
	// ErrProductNotFound indicates the product id does not resolve.
	ErrProductNotFound = errors.New("catalog: product not found")
	// ErrInvalidQuantity indicates a non-positive or zero movement quantity.
	ErrInvalidQuantity = errors.New("catalog: quantity must be non zero")
	// ErrNegativeStock triggered when a movement would drive stock below zero.
	ErrNegativeStock = errors.New("catalog: negative stock not allowed")
)
