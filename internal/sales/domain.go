// Package sales implements the sale-transaction core: pricing, atomic stock
// decrement and the append-only transaction ledger. A sale runs as one
// repeatable-read unit of work so concurrent cashiers never observe each
// other's partial state.
package sales

import (
	"time"
)

// Status enumerates transaction states.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

// Valid reports whether the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusCompleted, StatusPending, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// PaymentMethod enumerates accepted tender types.
type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "cash"
	PaymentMpesa PaymentMethod = "mpesa"
	PaymentBank  PaymentMethod = "bank"
	PaymentCard  PaymentMethod = "card"
)

// Valid reports whether the payment method is accepted.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentMpesa, PaymentBank, PaymentCard:
		return true
	}
	return false
}

// WalkInCustomer is the placeholder identity for anonymous sales.
const WalkInCustomer = "Walk-in Customer"

// SaleContext carries the resolved actor identity into the core. Identity
// resolution (admin vs cashier) happens at the API boundary; the core never
// re-derives it.
type SaleContext struct {
	CashierID   int64  `json:"cashier_id"`
	CashierName string `json:"cashier_name"`
	ShopID      int64  `json:"shop_id"`
	ShopName    string `json:"shop_name"`
}

// LineItemInput is one requested cart line. UnitPrice and TotalPrice are
// caller overrides; when absent the catalog's minimum selling price applies.
type LineItemInput struct {
	ProductID  int64
	Quantity   int
	UnitPrice  *float64
	TotalPrice *float64
}

// PricedLine is a line item after price/cost/profit resolution, embedded in
// the transaction record. Product fields are snapshots taken at sale time.
type PricedLine struct {
	ProductID    int64   `json:"product_id"`
	ProductName  string  `json:"product_name"`
	Category     string  `json:"category"`
	Barcode      string  `json:"barcode"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	TotalPrice   float64 `json:"total_price"`
	UnitCost     float64 `json:"unit_cost"`
	Cost         float64 `json:"cost"`
	Profit       float64 `json:"profit"`
	ProfitMargin float64 `json:"profit_margin"`
}

// Transaction is the immutable sale record.
type Transaction struct {
	ID            int64         `json:"id"`
	Number        string        `json:"number"`
	ReceiptNumber string        `json:"receipt_number"`
	Status        Status        `json:"status"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	CustomerName  string        `json:"customer_name"`
	ShopID        int64         `json:"shop_id"`
	ShopName      string        `json:"shop_name"`
	CashierID     int64         `json:"cashier_id"`
	CashierName   string        `json:"cashier_name"`
	Lines         []PricedLine  `json:"lines"`
	Subtotal      float64       `json:"subtotal"`
	Tax           float64       `json:"tax"`
	Discount      float64       `json:"discount"`
	TotalAmount   float64       `json:"total_amount"`
	AmountPaid    float64       `json:"amount_paid"`
	ChangeGiven   float64       `json:"change_given"`
	TotalCost     float64       `json:"total_cost"`
	TotalProfit   float64       `json:"total_profit"`
	ProfitMargin  float64       `json:"profit_margin"`
	Notes         string        `json:"notes"`
	SaleDate      time.Time     `json:"sale_date"`
	CreatedAt     time.Time     `json:"created_at"`
}

// StockUpdate summarises one product's stock change for observability.
type StockUpdate struct {
	ProductID     int64  `json:"product_id"`
	ProductName   string `json:"product_name"`
	PreviousStock int    `json:"previous_stock"`
	NewStock      int    `json:"new_stock"`
	QuantitySold  int    `json:"quantity_sold"`
}

// SaleResult is what the orchestrator returns on commit.
type SaleResult struct {
	Transaction  Transaction   `json:"transaction"`
	StockUpdates []StockUpdate `json:"stock_updates"`
}

// CartInput is the orchestrator's request: the cart plus header-level
// amounts and the resolved sale context.
type CartInput struct {
	PaymentMethod string
	Status        string
	TotalAmount   float64
	AmountPaid    *float64
	Tax           float64
	Discount      float64
	Items         []LineItemInput
	CustomerName  string
	Notes         string
	SaleDate      *time.Time
	Number        string
	Context       SaleContext
}

// TransactionFilter narrows ledger listings. Optional criteria are pointers
// so the repository translates only what is set.
type TransactionFilter struct {
	ShopID        *int64
	CashierID     *int64
	Status        *Status
	PaymentMethod *PaymentMethod
	From          time.Time
	To            time.Time
	Page          int
	Limit         int
}
