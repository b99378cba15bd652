package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wrenn/capitolwatch/internal/contracts"
)

// PriceRepository implements contracts.PriceRepository, the database
// backed price cache. The cache is additive: rows are inserted or
// refreshed, never deleted.
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository.
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// Series returns all cached points for a ticker ordered by date.
func (r *PriceRepository) Series(ctx context.Context, ticker string) ([]contracts.PricePoint, error) {
	query := `
		SELECT ticker, price_date, close_price
		FROM price_cache
		WHERE ticker = $1
		ORDER BY price_date
	`

	rows, err := r.pool.Query(ctx, query, ticker)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []contracts.PricePoint
	for rows.Next() {
		var p contracts.PricePoint
		if err := rows.Scan(&p.Ticker, &p.Date, &p.Close); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Count returns the number of cached points for a ticker.
func (r *PriceRepository) Count(ctx context.Context, ticker string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM price_cache WHERE ticker = $1`, ticker).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// SaveBatch upserts a batch of points for one ticker and returns the
// number written. A refetch refreshes existing closes (adjusted prices
// can be restated) but never removes coverage.
func (r *PriceRepository) SaveBatch(ctx context.Context, ticker string, points []contracts.PricePoint) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO price_cache (ticker, price_date, close_price)
		VALUES ($1, $2, $3)
		ON CONFLICT (ticker, price_date) DO UPDATE SET
			close_price = EXCLUDED.close_price
	`

	written := 0
	for _, p := range points {
		if _, err := r.pool.Exec(ctx, query, ticker, p.Date, p.Close); err != nil {
			return written, fmt.Errorf("cache price %s %s: %w", ticker, p.Date.Format("2006-01-02"), err)
		}
		written++
	}
	return written, nil
}
