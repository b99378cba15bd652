package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wrenn/capitolwatch/internal/contracts"
)

// ReturnRepository implements contracts.ReturnRepository.
//
// Upsert overwrites the full row; the keep-if-nil merge rule for the
// 30-day fields is applied by the calculator before it calls Upsert,
// so the rule stays portable and unit-testable instead of living in a
// database conflict clause.
type ReturnRepository struct {
	pool *pgxpool.Pool
}

// NewReturnRepository creates a new return repository.
func NewReturnRepository(pool *pgxpool.Pool) *ReturnRepository {
	return &ReturnRepository{pool: pool}
}

// Upsert writes a return record keyed by trade id, replacing all fields.
func (r *ReturnRepository) Upsert(ctx context.Context, tr *contracts.TradeReturn) error {
	query := `
		INSERT INTO trade_returns
			(trade_id, entry_date, entry_price, return_30d, return_30d_date,
			 return_current, return_current_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (trade_id) DO UPDATE SET
			entry_date = EXCLUDED.entry_date,
			entry_price = EXCLUDED.entry_price,
			return_30d = EXCLUDED.return_30d,
			return_30d_date = EXCLUDED.return_30d_date,
			return_current = EXCLUDED.return_current,
			return_current_date = EXCLUDED.return_current_date,
			updated_at = now()
	`

	_, err := r.pool.Exec(ctx, query,
		tr.TradeID, tr.EntryDate, tr.EntryPrice, tr.Return30D, tr.Return30DDate,
		tr.ReturnCurrent, tr.ReturnCurrentDate,
	)
	if err != nil {
		return fmt.Errorf("upsert trade return: %w", err)
	}
	return nil
}

// Get returns the return record for a trade, or nil.
func (r *ReturnRepository) Get(ctx context.Context, tradeID int64) (*contracts.TradeReturn, error) {
	query := `
		SELECT trade_id, entry_date, entry_price, return_30d, return_30d_date,
		       return_current, return_current_date
		FROM trade_returns
		WHERE trade_id = $1
	`

	var tr contracts.TradeReturn
	err := r.pool.QueryRow(ctx, query, tradeID).Scan(
		&tr.TradeID, &tr.EntryDate, &tr.EntryPrice, &tr.Return30D, &tr.Return30DDate,
		&tr.ReturnCurrent, &tr.ReturnCurrentDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tr, nil
}

// ListJoined returns all return records joined with trade and member
// identity, the input for the Sharpe aggregator.
func (r *ReturnRepository) ListJoined(ctx context.Context) ([]*contracts.MemberReturn, error) {
	query := `
		SELECT
			tr.trade_id, m.id, m.name, m.chamber, m.party,
			t.ticker, t.transaction_type, tr.return_30d, tr.return_current
		FROM trade_returns tr
		JOIN trades t ON tr.trade_id = t.id
		JOIN members m ON t.member_id = m.id
		ORDER BY m.id, tr.trade_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var returns []*contracts.MemberReturn
	for rows.Next() {
		var mr contracts.MemberReturn
		if err := rows.Scan(
			&mr.TradeID, &mr.MemberID, &mr.MemberName, &mr.Chamber, &mr.Party,
			&mr.Ticker, &mr.TransactionType, &mr.Return30D, &mr.ReturnCurrent,
		); err != nil {
			return nil, err
		}
		returns = append(returns, &mr)
	}
	return returns, rows.Err()
}
