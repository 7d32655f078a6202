package catalog

// CreateProductRequest is the payload for product creation.
type CreateProductRequest struct {
	ShopID          int64   `json:"shop_id" validate:"required,gt=0"`
	Name            string  `json:"name" validate:"required,max=200"`
	Category        string  `json:"category" validate:"max=100"`
	Barcode         string  `json:"barcode" validate:"max=64"`
	BuyingPrice     float64 `json:"buying_price" validate:"gte=0"`
	MinSellingPrice float64 `json:"min_selling_price" validate:"gte=0"`
	InitialStock    int     `json:"initial_stock" validate:"gte=0"`
	MinStockLevel   int     `json:"min_stock_level" validate:"gte=0"`
}

// UpdateProductRequest is the payload for product edits.
type UpdateProductRequest struct {
	Name            string  `json:"name" validate:"required,max=200"`
	Category        string  `json:"category" validate:"max=100"`
	Barcode         string  `json:"barcode" validate:"max=64"`
	BuyingPrice     float64 `json:"buying_price" validate:"gte=0"`
	MinSellingPrice float64 `json:"min_selling_price" validate:"gte=0"`
	MinStockLevel   int     `json:"min_stock_level" validate:"gte=0"`
	IsActive        bool    `json:"is_active"`
}

// RestockRequest posts an inbound or adjustment movement.
type RestockRequest struct {
	Quantity  int    `json:"quantity" validate:"required"`
	Type      string `json:"type" validate:"omitempty,oneof=restock adjustment"`
	Reference string `json:"reference" validate:"max=100"`
	ActorID   int64  `json:"actor_id"`
	ActorName string `json:"actor_name" validate:"max=100"`
	Note      string `json:"note" validate:"max=500"`
}

// ListResponse wraps a product page.
type ListResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}
