package cashiers

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Service coordinates cashier operations.
type Service struct {
	repo Repository
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, shopID int64) ([]Cashier, error) {
	if shopID <= 0 {
		return nil, errors.New("cashiers: shop required")
	}
	return s.repo.List(ctx, shopID)
}

func (s *Service) Get(ctx context.Context, id int64) (Cashier, error) {
	if id <= 0 {
		return Cashier{}, ErrCashierNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, cashier Cashier, pin string) (Cashier, error) {
	if strings.TrimSpace(cashier.Name) == "" {
		return Cashier{}, errors.New("cashiers: name is required")
	}
	if cashier.ShopID <= 0 {
		return Cashier{}, errors.New("cashiers: shop is required")
	}
	if len(pin) < 4 {
		return Cashier{}, errors.New("cashiers: pin must be at least 4 digits")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return Cashier{}, err
	}
	cashier.PINHash = string(hash)
	return s.repo.Create(ctx, cashier)
}

func (s *Service) Update(ctx context.Context, id int64, cashier Cashier) error {
	if id <= 0 {
		return ErrCashierNotFound
	}
	if strings.TrimSpace(cashier.Name) == "" {
		return errors.New("cashiers: name is required")
	}
	return s.repo.Update(ctx, id, cashier)
}

// SetPIN replaces the cashier's PIN.
func (s *Service) SetPIN(ctx context.Context, id int64, pin string) error {
	if len(pin) < 4 {
		return errors.New("cashiers: pin must be at least 4 digits")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.SetPINHash(ctx, id, string(hash))
}

// VerifyPIN resolves a cashier identity for the sale boundary. Inactive
// cashiers and wrong PINs both report ErrInvalidPIN.
func (s *Service) VerifyPIN(ctx context.Context, id int64, pin string) (Cashier, error) {
	cashier, err := s.repo.Get(ctx, id)
	if err != nil {
		return Cashier{}, err
	}
	if !cashier.IsActive {
		return Cashier{}, ErrInvalidPIN
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cashier.PINHash), []byte(pin)); err != nil {
		return Cashier{}, ErrInvalidPIN
	}
	return cashier, nil
}

func (s *Service) Deactivate(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrCashierNotFound
	}
	return s.repo.Deactivate(ctx, id)
}
