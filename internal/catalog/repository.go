package catalog

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	List(ctx context.Context, filter ListFilter) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, id int64, p Product) error
	Deactivate(ctx context.Context, id int64) error
	StockHistory(ctx context.Context, filter HistoryFilter) ([]StockMovement, error)
	LowStock(ctx context.Context, shopID int64) ([]Product, error)
}

// LowStockReader is the narrow slice background scans need.
type LowStockReader interface {
	LowStock(ctx context.Context, shopID int64) ([]Product, error)
}

// TxRepository exposes the stock-mutating operations that must run inside a
// unit of work.
type TxRepository interface {
	GetForUpdate(ctx context.Context, id int64) (Product, error)
	ApplyStockChange(ctx context.Context, id int64, newStock int, touch MovementType) error
	InsertMovement(ctx context.Context, m StockMovement) error
}

// Repository persists catalog data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `id, shop_id, name, category, barcode, buying_price, min_selling_price,
	current_stock, min_stock_level, is_active, last_sold_at, last_restocked_at, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.ShopID, &p.Name, &p.Category, &p.Barcode, &p.BuyingPrice,
		&p.MinSellingPrice, &p.CurrentStock, &p.MinStockLevel, &p.IsActive,
		&p.LastSoldAt, &p.LastRestockedAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	return p, err
}

// WithTx runs fn inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &txRepo{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Product, int, error) {
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
	if filter.Search != "" {
		argCount++
		where += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR barcode ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.IsActive != nil {
		argCount++
		where += ` AND is_active = $` + strconv.Itoa(argCount)
		args = append(args, *filter.IsActive)
	}
	if filter.LowStock {
		where += ` AND current_stock <= min_stock_level`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + ` FROM products` + where + ` ORDER BY name`
	if filter.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filter.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filter.Page - 1) * filter.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id int64) (Product, error) {
	return scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
}

func (r *Repository) Create(ctx context.Context, p Product) (Product, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (shop_id, name, category, barcode, buying_price, min_selling_price,
		 current_stock, min_stock_level, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10) RETURNING id`,
		p.ShopID, p.Name, p.Category, p.Barcode, p.BuyingPrice, p.MinSellingPrice,
		p.CurrentStock, p.MinStockLevel, p.IsActive, now).Scan(&p.ID)
	if err != nil {
		return Product{}, err
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

func (r *Repository) Update(ctx context.Context, id int64, p Product) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET name = $1, category = $2, barcode = $3, buying_price = $4,
		 min_selling_price = $5, min_stock_level = $6, is_active = $7, updated_at = $8
		 WHERE id = $9`,
		p.Name, p.Category, p.Barcode, p.BuyingPrice, p.MinSellingPrice,
		p.MinStockLevel, p.IsActive, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Deactivate soft-deletes a product. Transactions keep referencing it.
func (r *Repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *Repository) StockHistory(ctx context.Context, filter HistoryFilter) ([]StockMovement, error) {
	query := `SELECT id, product_id, shop_id, movement_type, quantity, previous_stock, new_stock,
		reference, actor_name, occurred_at FROM stock_movements WHERE product_id = $1`
	args := []any{filter.ProductID}
	argCount := 1

	if filter.Type != "" {
		argCount++
		query += ` AND movement_type = $` + strconv.Itoa(argCount)
		args = append(args, string(filter.Type))
	}
	if !filter.From.IsZero() {
		argCount++
		query += ` AND occurred_at >= $` + strconv.Itoa(argCount)
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		argCount++
		query += ` AND occurred_at <= $` + strconv.Itoa(argCount)
		args = append(args, filter.To)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	argCount++
	query += ` ORDER BY occurred_at DESC LIMIT $` + strconv.Itoa(argCount)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []StockMovement
	for rows.Next() {
		var m StockMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.ShopID, &m.Type, &m.Quantity,
			&m.PreviousStock, &m.NewStock, &m.Reference, &m.ActorName, &m.OccurredAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// LowStock lists active products at or below their minimum stock level.
func (r *Repository) LowStock(ctx context.Context, shopID int64) ([]Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE shop_id = $1 AND is_active AND current_stock <= min_stock_level
		 ORDER BY current_stock ASC`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

type txRepo struct {
	tx pgx.Tx
}

func (r *txRepo) GetForUpdate(ctx context.Context, id int64) (Product, error) {
	return scanProduct(r.tx.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id))
}

func (r *txRepo) ApplyStockChange(ctx context.Context, id int64, newStock int, touch MovementType) error {
	query := `UPDATE products SET current_stock = $1, updated_at = NOW()`
	switch touch {
	case MovementRestock:
		query += `, last_restocked_at = NOW()`
	case MovementSale:
		query += `, last_sold_at = NOW()`
	}
	query += ` WHERE id = $2`
	_, err := r.tx.Exec(ctx, query, newStock, id)
	return err
}

func (r *txRepo) InsertMovement(ctx context.Context, m StockMovement) error {
	_, err := r.tx.Exec(ctx,
		`INSERT INTO stock_movements (product_id, shop_id, movement_type, quantity, previous_stock,
		 new_stock, reference, actor_name, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ProductID, m.ShopID, string(m.Type), m.Quantity, m.PreviousStock,
		m.NewStock, m.Reference, m.ActorName, m.OccurredAt)
	return err
}
