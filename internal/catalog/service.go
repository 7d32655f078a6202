package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dukapos/dukapos/internal/shared"
)

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates catalog operations.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, ErrProductNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	if err := s.validate(p); err != nil {
		return Product{}, err
	}
	if p.ShopID <= 0 {
		return Product{}, errors.New("catalog: shop is required")
	}
	p.IsActive = true
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return Product{}, err
	}
	if created.CurrentStock > 0 {
		// Opening stock is history too; post it as a restock movement so the
		// ledger explains every unit.
		err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			return tx.InsertMovement(ctx, StockMovement{
				ProductID:     created.ID,
				ShopID:        created.ShopID,
				Type:          MovementRestock,
				Quantity:      created.CurrentStock,
				PreviousStock: 0,
				NewStock:      created.CurrentStock,
				Reference:     "opening-stock",
				OccurredAt:    time.Now().UTC(),
			})
		})
		if err != nil {
			return Product{}, fmt.Errorf("catalog: record opening stock: %w", err)
		}
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, p Product) error {
	if id <= 0 {
		return ErrProductNotFound
	}
	if err := s.validate(p); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, p)
}

func (s *Service) Deactivate(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrProductNotFound
	}
	return s.repo.Deactivate(ctx, id)
}

// Restock posts an inbound or adjustment movement inside one unit of work.
// Adjustments may be negative but never drive stock below zero.
func (s *Service) Restock(ctx context.Context, input RestockInput) (Product, error) {
	if input.ProductID <= 0 {
		return Product{}, ErrProductNotFound
	}
	if input.Quantity == 0 {
		return Product{}, ErrInvalidQuantity
	}
	movementType := input.Type
	if movementType == "" {
		movementType = MovementRestock
	}
	if movementType == MovementRestock && input.Quantity < 0 {
		return Product{}, ErrInvalidQuantity
	}

	var updated Product
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		product, err := tx.GetForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		newStock := product.CurrentStock + input.Quantity
		if newStock < 0 {
			return ErrNegativeStock
		}
		if err := tx.ApplyStockChange(ctx, product.ID, newStock, movementType); err != nil {
			return err
		}
		if err := tx.InsertMovement(ctx, StockMovement{
			ProductID:     product.ID,
			ShopID:        product.ShopID,
			Type:          movementType,
			Quantity:      input.Quantity,
			PreviousStock: product.CurrentStock,
			NewStock:      newStock,
			Reference:     input.Reference,
			ActorName:     input.ActorName,
			OccurredAt:    time.Now().UTC(),
		}); err != nil {
			return err
		}
		product.CurrentStock = newStock
		updated = product
		return nil
	})
	if err != nil {
		return Product{}, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:   input.ActorID,
			ActorName: input.ActorName,
			ShopID:    updated.ShopID,
			Action:    fmt.Sprintf("catalog:%s", movementType),
			Entity:    "product",
			EntityID:  strconv.FormatInt(updated.ID, 10),
			Meta: map[string]any{
				"quantity":  input.Quantity,
				"new_stock": updated.CurrentStock,
				"reference": input.Reference,
				"note":      input.Note,
			},
		})
	}
	return updated, nil
}

func (s *Service) StockHistory(ctx context.Context, filter HistoryFilter) ([]StockMovement, error) {
	if filter.ProductID <= 0 {
		return nil, ErrProductNotFound
	}
	return s.repo.StockHistory(ctx, filter)
}

func (s *Service) LowStock(ctx context.Context, shopID int64) ([]Product, error) {
	if shopID <= 0 {
		return nil, errors.New("catalog: shop required")
	}
	return s.repo.LowStock(ctx, shopID)
}

func (s *Service) validate(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("catalog: product name is required")
	}
	if p.BuyingPrice < 0 || p.MinSellingPrice < 0 {
		return errors.New("catalog: prices must be non-negative")
	}
	if p.CurrentStock < 0 {
		return errors.New("catalog: stock must be non-negative")
	}
	return nil
}
