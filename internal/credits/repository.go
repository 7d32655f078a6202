package credits

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dukapos/dukapos/internal/platform/db"
)

// Repository abstracts credit persistence.
type Repository interface {
	ListAccounts(ctx context.Context, shopID int64) ([]Account, error)
	GetAccount(ctx context.Context, id int64) (Account, error)
	CreateAccount(ctx context.Context, a Account) (Account, error)
	Entries(ctx context.Context, accountID int64, limit int) ([]Entry, error)
	// AppendEntry adjusts the balance and appends the entry in one
	// transaction. delta is signed: positive for charges.
	AppendEntry(ctx context.Context, accountID int64, delta float64, e Entry) (Account, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const accountColumns = `id, shop_id, customer_name, phone, balance, credit_limit, is_active, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.ShopID, &a.CustomerName, &a.Phone, &a.Balance,
		&a.CreditLimit, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	return a, err
}

func (r *repository) ListAccounts(ctx context.Context, shopID int64) ([]Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+accountColumns+` FROM credit_accounts WHERE shop_id = $1 ORDER BY customer_name`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repository) GetAccount(ctx context.Context, id int64) (Account, error) {
	return scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM credit_accounts WHERE id = $1`, id))
}

func (r *repository) CreateAccount(ctx context.Context, a Account) (Account, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO credit_accounts (shop_id, customer_name, phone, balance, credit_limit, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, 0, $4, TRUE, $5, $5) RETURNING id`,
		a.ShopID, a.CustomerName, a.Phone, a.CreditLimit, now).Scan(&a.ID)
	if err != nil {
		return Account{}, err
	}
	a.Balance = 0
	a.IsActive = true
	a.CreatedAt = now
	a.UpdatedAt = now
	return a, nil
}

func (r *repository) Entries(ctx context.Context, accountID int64, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, account_id, entry_type, amount, transaction_number, note, recorded_at
		 FROM credit_entries WHERE account_id = $1 ORDER BY recorded_at DESC LIMIT $2`,
		accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Type, &e.Amount,
			&e.TransactionNumber, &e.Note, &e.RecordedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repository) AppendEntry(ctx context.Context, accountID int64, delta float64, e Entry) (Account, error) {
	var account Account
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		account, err = scanAccount(tx.QueryRow(ctx,
			`SELECT `+accountColumns+` FROM credit_accounts WHERE id = $1 FOR UPDATE`, accountID))
		if err != nil {
			return err
		}
		newBalance := account.Balance + delta
		if delta > 0 && account.CreditLimit > 0 && newBalance > account.CreditLimit {
			return ErrCreditLimitExceeded
		}
		if _, err := tx.Exec(ctx,
			`UPDATE credit_accounts SET balance = $1, updated_at = NOW() WHERE id = $2`,
			newBalance, accountID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO credit_entries (account_id, entry_type, amount, transaction_number, note, recorded_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			accountID, string(e.Type), e.Amount, e.TransactionNumber, e.Note, time.Now().UTC()); err != nil {
			return err
		}
		account.Balance = newBalance
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	return account, nil
}
