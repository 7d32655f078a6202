package cashiers

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository abstracts cashier persistence.
type Repository interface {
	List(ctx context.Context, shopID int64) ([]Cashier, error)
	Get(ctx context.Context, id int64) (Cashier, error)
	Create(ctx context.Context, c Cashier) (Cashier, error)
	Update(ctx context.Context, id int64, c Cashier) error
	SetPINHash(ctx context.Context, id int64, hash string) error
	Deactivate(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const cashierColumns = `id, shop_id, name, phone, pin_hash, is_active, created_at, updated_at`

func scanCashier(row pgx.Row) (Cashier, error) {
	var c Cashier
	err := row.Scan(&c.ID, &c.ShopID, &c.Name, &c.Phone, &c.PINHash, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Cashier{}, ErrCashierNotFound
	}
	return c, err
}

func (r *repository) List(ctx context.Context, shopID int64) ([]Cashier, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+cashierColumns+` FROM cashiers WHERE shop_id = $1 ORDER BY name`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cashiers []Cashier
	for rows.Next() {
		c, err := scanCashier(rows)
		if err != nil {
			return nil, err
		}
		cashiers = append(cashiers, c)
	}
	return cashiers, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Cashier, error) {
	return scanCashier(r.pool.QueryRow(ctx,
		`SELECT `+cashierColumns+` FROM cashiers WHERE id = $1`, id))
}

func (r *repository) Create(ctx context.Context, c Cashier) (Cashier, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO cashiers (shop_id, name, phone, pin_hash, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, TRUE, $5, $5) RETURNING id`,
		c.ShopID, c.Name, c.Phone, c.PINHash, now).Scan(&c.ID)
	if err != nil {
		return Cashier{}, err
	}
	c.IsActive = true
	c.CreatedAt = now
	c.UpdatedAt = now
	return c, nil
}

func (r *repository) Update(ctx context.Context, id int64, c Cashier) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE cashiers SET name = $1, phone = $2, is_active = $3, updated_at = NOW() WHERE id = $4`,
		c.Name, c.Phone, c.IsActive, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCashierNotFound
	}
	return nil
}

func (r *repository) SetPINHash(ctx context.Context, id int64, hash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE cashiers SET pin_hash = $1, updated_at = NOW() WHERE id = $2`, hash, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCashierNotFound
	}
	return nil
}

func (r *repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE cashiers SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCashierNotFound
	}
	return nil
}
