package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort reads aggregates from the sales tables.
type RepositoryPort interface {
	DailySummary(ctx context.Context, shopID int64, from, to time.Time) (DailySummary, error)
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) DailySummary(ctx context.Context, shopID int64, from, to time.Time) (DailySummary, error) {
	out := DailySummary{ShopID: shopID, ByPayment: map[string]float64{}}

	row := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total_amount), 0),
		       COALESCE(SUM(total_cost), 0),
		       COALESCE(SUM(total_profit), 0)
		FROM transactions
		WHERE shop_id = $1 AND status = 'completed' AND created_at >= $2 AND created_at < $3`,
		shopID, from, to)
	if err := row.Scan(&out.Transactions, &out.TotalAmount, &out.TotalCost, &out.TotalProfit); err != nil {
		return DailySummary{}, err
	}

	row = r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(l.quantity), 0)
		FROM transaction_lines l
		JOIN transactions t ON t.id = l.transaction_id
		WHERE t.shop_id = $1 AND t.status = 'completed' AND t.created_at >= $2 AND t.created_at < $3`,
		shopID, from, to)
	if err := row.Scan(&out.ItemsSold); err != nil {
		return DailySummary{}, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT payment_method, COALESCE(SUM(total_amount), 0)
		FROM transactions
		WHERE shop_id = $1 AND status = 'completed' AND created_at >= $2 AND created_at < $3
		GROUP BY payment_method`,
		shopID, from, to)
	if err != nil {
		return DailySummary{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var method string
		var amount float64
		if err := rows.Scan(&method, &amount); err != nil {
			return DailySummary{}, err
		}
		out.ByPayment[method] = amount
	}
	return out, rows.Err()
}
