package sales

import "time"

// CreateSaleRequest is the POST /sales payload. Semantic validation happens
// in the orchestrator, which reports every problem in one response.
type CreateSaleRequest struct {
	PaymentMethod string            `json:"payment_method"`
	TotalAmount   float64           `json:"total_amount"`
	AmountPaid    *float64          `json:"amount_paid,omitempty"`
	Tax           float64           `json:"tax"`
	Discount      float64           `json:"discount"`
	Items         []SaleItemRequest `json:"items"`
	ShopID        int64             `json:"shop"`
	ShopName      string            `json:"shop_name"`
	CashierID     int64             `json:"cashier_id"`
	CashierName   string            `json:"cashier_name"`
	Status        string            `json:"status,omitempty"`
	CustomerName  string            `json:"customer_name,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	SaleDate      *time.Time        `json:"sale_date,omitempty"`
	Number        string            `json:"number,omitempty"`
}

// SaleItemRequest is one cart line in the request.
type SaleItemRequest struct {
	ProductID  int64    `json:"product_id"`
	Quantity   int      `json:"quantity"`
	UnitPrice  *float64 `json:"unit_price,omitempty"`
	TotalPrice *float64 `json:"total_price,omitempty"`
}

// UpdateStatusRequest transitions a transaction's status.
type UpdateStatusRequest struct {
	Status      string `json:"status" validate:"required,oneof=completed pending cancelled refunded"`
	CashierID   int64  `json:"cashier_id"`
	CashierName string `json:"cashier_name" validate:"max=100"`
}

// ListResponse wraps a transaction page.
type ListResponse struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
	Page         int           `json:"page"`
	Limit        int           `json:"limit"`
}

func (r CreateSaleRequest) toCart() CartInput {
	items := make([]LineItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, LineItemInput{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		})
	}
	return CartInput{
		PaymentMethod: r.PaymentMethod,
		Status:        r.Status,
		TotalAmount:   r.TotalAmount,
		AmountPaid:    r.AmountPaid,
		Tax:           r.Tax,
		Discount:      r.Discount,
		Items:         items,
		CustomerName:  r.CustomerName,
		Notes:         r.Notes,
		SaleDate:      r.SaleDate,
		Number:        r.Number,
		Context: SaleContext{
			CashierID:   r.CashierID,
			CashierName: r.CashierName,
			ShopID:      r.ShopID,
			ShopName:    r.ShopName,
		},
	}
}
