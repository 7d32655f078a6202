package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/dukapos/dukapos/internal/catalog"
)

const (
	// TaskTypeLowStockScan sweeps a shop's catalog for products at or below
	// their reorder level.
	TaskTypeLowStockScan = "stock:lowscan"
)

// LowStockScanPayload carries scheduling metadata. ShopID zero means all shops.
type LowStockScanPayload struct {
	ShopID       int64     `json:"shop_id"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewLowStockScanTask constructs the Asynq task for a low-stock sweep.
func NewLowStockScanTask(shopID int64, at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(LowStockScanPayload{ShopID: shopID, ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeLowStockScan, body, asynq.Queue(QueueDefault)), nil
}

// ShopLister yields the shop ids a scan should cover.
type ShopLister interface {
	ActiveShopIDs(ctx context.Context) ([]int64, error)
}

// LowStockScanner runs the sweep against the catalog and logs each product
// under its minimum level. Alerts stay log-based until a notification channel
// exists.
type LowStockScanner struct {
	catalog catalog.LowStockReader
	shops   ShopLister
	logger  *slog.Logger
}

func NewLowStockScanner(cat catalog.LowStockReader, shops ShopLister, logger *slog.Logger) *LowStockScanner {
	return &LowStockScanner{catalog: cat, shops: shops, logger: logger}
}

// Handle processes TaskTypeLowStockScan tasks.
func (s *LowStockScanner) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	shopIDs := []int64{payload.ShopID}
	if payload.ShopID == 0 {
		ids, err := s.shops.ActiveShopIDs(ctx)
		if err != nil {
			return err
		}
		shopIDs = ids
	}

	for _, shopID := range shopIDs {
		products, err := s.catalog.LowStock(ctx, shopID)
		if err != nil {
			return err
		}
		for _, p := range products {
			s.logger.Warn("low stock",
				"shop_id", shopID,
				"product_id", p.ID,
				"product", p.Name,
				"current_stock", p.CurrentStock,
				"min_stock_level", p.MinStockLevel,
			)
		}
		s.logger.Info("low stock scan done", "shop_id", shopID, "flagged", len(products))
	}
	return nil
}
