package expenses

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository abstracts expense persistence.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Expense, int, error)
	Get(ctx context.Context, id int64) (Expense, error)
	Create(ctx context.Context, e Expense) (Expense, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const expenseColumns = `id, shop_id, category, description, amount, actor_name, incurred_at, created_at`

func scanExpense(row pgx.Row) (Expense, error) {
	var e Expense
	err := row.Scan(&e.ID, &e.ShopID, &e.Category, &e.Description, &e.Amount,
		&e.ActorName, &e.IncurredAt, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Expense{}, ErrExpenseNotFound
	}
	return e, err
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Expense, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argCount := 0

	if filter.ShopID != nil {
		argCount++
		where += ` AND shop_id = $` + strconv.Itoa(argCount)
		args = append(args, *filter.ShopID)
	}
	if filter.Category != "" {
		argCount++
		where += ` AND category = $` + strconv.Itoa(argCount)
		args = append(args, filter.Category)
	}
	if !filter.From.IsZero() {
		argCount++
		where += ` AND incurred_at >= $` + strconv.Itoa(argCount)
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		argCount++
		where += ` AND incurred_at <= $` + strconv.Itoa(argCount)
		args = append(args, filter.To)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM expenses`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := (filter.Page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + expenseColumns + ` FROM expenses` + where +
		` ORDER BY incurred_at DESC LIMIT $` + strconv.Itoa(argCount+1) +
		` OFFSET $` + strconv.Itoa(argCount+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Expense, error) {
	return scanExpense(r.pool.QueryRow(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id))
}

func (r *repository) Create(ctx context.Context, e Expense) (Expense, error) {
	now := time.Now().UTC()
	if e.IncurredAt.IsZero() {
		e.IncurredAt = now
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO expenses (shop_id, category, description, amount, actor_name, incurred_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		e.ShopID, e.Category, e.Description, e.Amount, e.ActorName, e.IncurredAt, now).Scan(&e.ID)
	if err != nil {
		return Expense{}, err
	}
	e.CreatedAt = now
	return e, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExpenseNotFound
	}
	return nil
}
