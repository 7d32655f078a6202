package sales

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dukapos/dukapos/internal/catalog"
)

// MovementRef ties a stock decrement to the sale that caused it.
type MovementRef struct {
	Reference string
	ActorName string
	ShopID    int64
}

// CatalogReader resolves product ids to catalog snapshots in one batch read
// scoped to the sale's unit of work. Unknown or inactive ids are simply
// absent from the result; the orchestrator decides that is an error.
type CatalogReader interface {
	FindByIDs(ctx context.Context, ids []int64) (map[int64]catalog.Snapshot, error)
}

// StockLedger performs the atomic check-then-decrement on product stock and
// appends the corresponding movement history entry.
type StockLedger interface {
	Decrement(ctx context.Context, productID int64, quantity int, ref MovementRef) (StockUpdate, error)
}

// TransactionLedger appends completed/pending sale records.
type TransactionLedger interface {
	Insert(ctx context.Context, tx *Transaction) error
}

// TxRepository is the unit-of-work scope the orchestrator operates on. All
// reads and writes of one sale go through a single instance so the stock
// check and decrement cannot interleave with a concurrent sale.
type TxRepository interface {
	CatalogReader
	StockLedger
	TransactionLedger
}

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (Transaction, error)
	GetByNumber(ctx context.Context, number string) (Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]Transaction, int, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
}

// Repository persists sale transactions in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx executes the callback inside a repeatable-read transaction.
// Serialization failures (40001) surface unchanged; the service re-runs the
// whole unit of work on them.
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

const transactionColumns = `id, number, receipt_number, status, payment_method, customer_name,
	shop_id, shop_name, cashier_id, cashier_name, subtotal, tax, discount, total_amount,
	amount_paid, change_given, total_cost, total_profit, profit_margin, notes, sale_date, created_at`

func scanTransaction(row pgx.Row) (Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.Number, &t.ReceiptNumber, &t.Status, &t.PaymentMethod,
		&t.CustomerName, &t.ShopID, &t.ShopName, &t.CashierID, &t.CashierName,
		&t.Subtotal, &t.Tax, &t.Discount, &t.TotalAmount, &t.AmountPaid, &t.ChangeGiven,
		&t.TotalCost, &t.TotalProfit, &t.ProfitMargin, &t.Notes, &t.SaleDate, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrTransactionNotFound
	}
	return t, err
}

func (r *Repository) Get(ctx context.Context, id int64) (Transaction, error) {
	t, err := scanTransaction(r.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
	if err != nil {
		return Transaction{}, err
	}
	t.Lines, err = r.lines(ctx, t.ID)
	return t, err
}

func (r *Repository) GetByNumber(ctx context.Context, number string) (Transaction, error) {
	t, err := scanTransaction(r.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE number = $1`, number))
	if err != nil {
		return Transaction{}, err
	}
	t.Lines, err = r.lines(ctx, t.ID)
	return t, err
}

func (r *Repository) lines(ctx context.Context, txID int64) ([]PricedLine, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT product_id, product_name, category, barcode, quantity, unit_price, total_price,
		 unit_cost, cost, profit, profit_margin
		 FROM transaction_lines WHERE transaction_id = $1 ORDER BY line_order`, txID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []PricedLine
	for rows.Next() {
		var l PricedLine
		if err := rows.Scan(&l.ProductID, &l.ProductName, &l.Category, &l.Barcode, &l.Quantity,
			&l.UnitPrice, &l.TotalPrice, &l.UnitCost, &l.Cost, &l.Profit, &l.ProfitMargin); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *Repository) List(ctx context.Context, filter TransactionFilter) ([]Transaction, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argCount := 0

	if filter.ShopID != nil {
		argCount++
		where += ` AND shop_id = $` + strconv.Itoa(argCount)
		args = append(args, *filter.ShopID)
	}
	if filter.CashierID != nil {
		argCount++
		where += ` AND cashier_id = $` + strconv.Itoa(argCount)
		args = append(args, *filter.CashierID)
	}
	if filter.Status != nil {
		argCount++
		where += ` AND status = $` + strconv.Itoa(argCount)
		args = append(args, string(*filter.Status))
	}
	if filter.PaymentMethod != nil {
		argCount++
		where += ` AND payment_method = $` + strconv.Itoa(argCount)
		args = append(args, string(*filter.PaymentMethod))
	}
	if !filter.From.IsZero() {
		argCount++
		where += ` AND sale_date >= $` + strconv.Itoa(argCount)
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		argCount++
		where += ` AND sale_date <= $` + strconv.Itoa(argCount)
		args = append(args, filter.To)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions` + where + ` ORDER BY sale_date DESC`
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	argCount++
	query += ` LIMIT $` + strconv.Itoa(argCount)
	args = append(args, limit)

	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	offset := (filter.Page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	args = append(args, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var transactions []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		transactions = append(transactions, t)
	}
	return transactions, total, rows.Err()
}

// TransactionExists reports whether a transaction number resolves. Used by
// the credits module when booking a charge against a sale.
func (r *Repository) TransactionExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE number = $1)`, number).Scan(&exists)
	return exists, err
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE transactions SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

type txRepo struct {
	tx pgx.Tx
}

// FindByIDs locks the cart's product rows in id order so overlapping carts
// always acquire locks in the same sequence.
func (r *txRepo) FindByIDs(ctx context.Context, ids []int64) (map[int64]catalog.Snapshot, error) {
	rows, err := r.tx.Query(ctx,
		`SELECT id, name, category, barcode, buying_price, min_selling_price, current_stock, is_active
		 FROM products WHERE id = ANY($1) AND is_active ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make(map[int64]catalog.Snapshot, len(ids))
	for rows.Next() {
		var s catalog.Snapshot
		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &s.Barcode, &s.BuyingPrice,
			&s.MinSellingPrice, &s.CurrentStock, &s.IsActive); err != nil {
			return nil, err
		}
		snapshots[s.ID] = s
	}
	return snapshots, rows.Err()
}

// Decrement checks availability at the moment of decrement and applies the
// change together with its history entry. The conditional update is the
// insufficient-stock guard; the row lock from FindByIDs serializes it
// against concurrent sales.
func (r *txRepo) Decrement(ctx context.Context, productID int64, quantity int, ref MovementRef) (StockUpdate, error) {
	var name string
	var newStock int
	err := r.tx.QueryRow(ctx,
		`UPDATE products
		 SET current_stock = current_stock - $2, last_sold_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND current_stock >= $2
		 RETURNING name, current_stock`, productID, quantity).Scan(&name, &newStock)
	if errors.Is(err, pgx.ErrNoRows) {
		var available int
		probe := r.tx.QueryRow(ctx,
			`SELECT name, current_stock FROM products WHERE id = $1 AND is_active`, productID)
		if probeErr := probe.Scan(&name, &available); probeErr != nil {
			if errors.Is(probeErr, pgx.ErrNoRows) {
				return StockUpdate{}, &ProductNotFoundError{ProductID: productID}
			}
			return StockUpdate{}, probeErr
		}
		return StockUpdate{}, &InsufficientStockError{
			ProductID:   productID,
			ProductName: name,
			Available:   available,
			Requested:   quantity,
		}
	}
	if err != nil {
		return StockUpdate{}, err
	}

	_, err = r.tx.Exec(ctx,
		`INSERT INTO stock_movements (product_id, shop_id, movement_type, quantity, previous_stock,
		 new_stock, reference, actor_name, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		productID, ref.ShopID, string(catalog.MovementSale), -quantity,
		newStock+quantity, newStock, ref.Reference, ref.ActorName, time.Now().UTC())
	if err != nil {
		return StockUpdate{}, err
	}

	return StockUpdate{
		ProductID:     productID,
		ProductName:   name,
		PreviousStock: newStock + quantity,
		NewStock:      newStock,
		QuantitySold:  quantity,
	}, nil
}

// Insert appends the transaction header and its embedded lines.
func (r *txRepo) Insert(ctx context.Context, t *Transaction) error {
	err := r.tx.QueryRow(ctx,
		`INSERT INTO transactions (number, receipt_number, status, payment_method, customer_name,
		 shop_id, shop_name, cashier_id, cashier_name, subtotal, tax, discount, total_amount,
		 amount_paid, change_given, total_cost, total_profit, profit_margin, notes, sale_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		 RETURNING id`,
		t.Number, t.ReceiptNumber, string(t.Status), string(t.PaymentMethod), t.CustomerName,
		t.ShopID, t.ShopName, t.CashierID, t.CashierName, t.Subtotal, t.Tax, t.Discount,
		t.TotalAmount, t.AmountPaid, t.ChangeGiven, t.TotalCost, t.TotalProfit, t.ProfitMargin,
		t.Notes, t.SaleDate, t.CreatedAt).Scan(&t.ID)
	if err != nil {
		return err
	}

	for i, line := range t.Lines {
		_, err := r.tx.Exec(ctx,
			`INSERT INTO transaction_lines (transaction_id, line_order, product_id, product_name,
			 category, barcode, quantity, unit_price, total_price, unit_cost, cost, profit, profit_margin)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			t.ID, i+1, line.ProductID, line.ProductName, line.Category, line.Barcode,
			line.Quantity, line.UnitPrice, line.TotalPrice, line.UnitCost, line.Cost,
			line.Profit, line.ProfitMargin)
		if err != nil {
			return err
		}
	}
	return nil
}
