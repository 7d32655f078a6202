package expenses

import (
	"context"
	"errors"
	"strings"
)

// Service coordinates expense operations.
type Service struct {
	repo Repository
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Expense, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (Expense, error) {
	if id <= 0 {
		return Expense{}, ErrExpenseNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, e Expense) (Expense, error) {
	if e.ShopID <= 0 {
		return Expense{}, errors.New("expenses: shop is required")
	}
	if strings.TrimSpace(e.Category) == "" {
		return Expense{}, errors.New("expenses: category is required")
	}
	if e.Amount <= 0 {
		return Expense{}, errors.New("expenses: amount must be positive")
	}
	return s.repo.Create(ctx, e)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrExpenseNotFound
	}
	return s.repo.Delete(ctx, id)
}
