package credits

import (
	"context"
	"errors"
	"strings"
)

// TransactionReader verifies that charged sale numbers exist in the ledger.
type TransactionReader interface {
	TransactionExists(ctx context.Context, number string) (bool, error)
}

// Service coordinates credit operations.
type Service struct {
	repo         Repository
	transactions TransactionReader
}

// NewService builds Service.
func NewService(repo Repository, transactions TransactionReader) *Service {
	return &Service{repo: repo, transactions: transactions}
}

func (s *Service) ListAccounts(ctx context.Context, shopID int64) ([]Account, error) {
	if shopID <= 0 {
		return nil, errors.New("credits: shop required")
	}
	return s.repo.ListAccounts(ctx, shopID)
}

func (s *Service) GetAccount(ctx context.Context, id int64) (Account, []Entry, error) {
	if id <= 0 {
		return Account{}, nil, ErrAccountNotFound
	}
	account, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return Account{}, nil, err
	}
	entries, err := s.repo.Entries(ctx, id, 100)
	if err != nil {
		return Account{}, nil, err
	}
	return account, entries, nil
}

func (s *Service) CreateAccount(ctx context.Context, account Account) (Account, error) {
	if account.ShopID <= 0 {
		return Account{}, errors.New("credits: shop is required")
	}
	if strings.TrimSpace(account.CustomerName) == "" {
		return Account{}, errors.New("credits: customer name is required")
	}
	if account.CreditLimit < 0 {
		return Account{}, errors.New("credits: credit limit must be non-negative")
	}
	return s.repo.CreateAccount(ctx, account)
}

// RecordCharge books a credit sale against the account. The transaction
// number must reference an existing sale.
func (s *Service) RecordCharge(ctx context.Context, accountID int64, amount float64, transactionNumber, note string) (Account, error) {
	if amount <= 0 {
		return Account{}, ErrInvalidAmount
	}
	if s.transactions != nil && transactionNumber != "" {
		exists, err := s.transactions.TransactionExists(ctx, transactionNumber)
		if err != nil {
			return Account{}, err
		}
		if !exists {
			return Account{}, errors.New("credits: transaction number does not resolve")
		}
	}
	return s.repo.AppendEntry(ctx, accountID, amount, Entry{
		AccountID:         accountID,
		Type:              EntryCharge,
		Amount:            amount,
		TransactionNumber: transactionNumber,
		Note:              note,
	})
}

// RecordPayment books a repayment against the account balance.
func (s *Service) RecordPayment(ctx context.Context, accountID int64, amount float64, note string) (Account, error) {
	if amount <= 0 {
		return Account{}, ErrInvalidAmount
	}
	return s.repo.AppendEntry(ctx, accountID, -amount, Entry{
		AccountID: accountID,
		Type:      EntryPayment,
		Amount:    amount,
		Note:      note,
	})
}
