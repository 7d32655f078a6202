package shops

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository abstracts shop persistence.
type Repository interface {
	List(ctx context.Context) ([]Shop, error)
	Get(ctx context.Context, id int64) (Shop, error)
	Create(ctx context.Context, s Shop) (Shop, error)
	Update(ctx context.Context, id int64, s Shop) error
	Deactivate(ctx context.Context, id int64) error
	ActiveShopIDs(ctx context.Context) ([]int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const shopColumns = `id, name, location, phone, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context) ([]Shop, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+shopColumns+` FROM shops ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shops []Shop
	for rows.Next() {
		var s Shop
		if err := rows.Scan(&s.ID, &s.Name, &s.Location, &s.Phone, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		shops = append(shops, s)
	}
	return shops, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Shop, error) {
	var s Shop
	err := r.pool.QueryRow(ctx, `SELECT `+shopColumns+` FROM shops WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Location, &s.Phone, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Shop{}, ErrShopNotFound
	}
	return s, err
}

func (r *repository) Create(ctx context.Context, s Shop) (Shop, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO shops (name, location, phone, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, TRUE, $4, $4) RETURNING id`,
		s.Name, s.Location, s.Phone, now).Scan(&s.ID)
	if err != nil {
		return Shop{}, err
	}
	s.IsActive = true
	s.CreatedAt = now
	s.UpdatedAt = now
	return s, nil
}

func (r *repository) Update(ctx context.Context, id int64, s Shop) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE shops SET name = $1, location = $2, phone = $3, is_active = $4, updated_at = NOW()
		 WHERE id = $5`, s.Name, s.Location, s.Phone, s.IsActive, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrShopNotFound
	}
	return nil
}

func (r *repository) ActiveShopIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM shops WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE shops SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrShopNotFound
	}
	return nil
}
