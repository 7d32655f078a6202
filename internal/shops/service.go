package shops

import (
	"context"
	"errors"
	"strings"
)

// Service coordinates shop operations.
type Service struct {
	repo Repository
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Shop, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Shop, error) {
	if id <= 0 {
		return Shop{}, ErrShopNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, shop Shop) (Shop, error) {
	if strings.TrimSpace(shop.Name) == "" {
		return Shop{}, errors.New("shops: name is required")
	}
	return s.repo.Create(ctx, shop)
}

func (s *Service) Update(ctx context.Context, id int64, shop Shop) error {
	if id <= 0 {
		return ErrShopNotFound
	}
	if strings.TrimSpace(shop.Name) == "" {
		return errors.New("shops: name is required")
	}
	return s.repo.Update(ctx, id, shop)
}

func (s *Service) Deactivate(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrShopNotFound
	}
	return s.repo.Deactivate(ctx, id)
}
