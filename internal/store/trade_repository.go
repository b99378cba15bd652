package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wrenn/capitolwatch/internal/contracts"
)

// TradeRepository implements contracts.TradeRepository.
type TradeRepository struct {
	pool *pgxpool.Pool
}

// NewTradeRepository creates a new trade repository.
func NewTradeRepository(pool *pgxpool.Pool) *TradeRepository {
	return &TradeRepository{pool: pool}
}

// Insert adds a trade. Re-ingested duplicates hit the uniqueness
// constraint and are dropped silently: (0, false, nil).
func (r *TradeRepository) Insert(ctx context.Context, t *contracts.Trade) (int64, bool, error) {
	query := `
		INSERT INTO trades (
			member_id, transaction_date, disclosure_date, ticker,
			asset_description, asset_type, transaction_type, amount_range,
			owner, comment, source_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (member_id, transaction_date, ticker, asset_description, transaction_type, amount_range, owner)
		DO NOTHING
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		t.MemberID, t.TransactionDate, t.DisclosureDate, t.Ticker,
		t.AssetDescription, t.AssetType, t.TransactionType, t.AmountRange,
		t.Owner, t.Comment, t.SourceURL,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("insert trade: %w", err)
	}
	return id, true, nil
}

// ListForAnalysis returns all purchase/sale trades with a ticker,
// joined with member identity, ordered by transaction date ascending.
func (r *TradeRepository) ListForAnalysis(ctx context.Context) ([]*contracts.AnalyzableTrade, error) {
	query := `
		SELECT
			t.id, m.id, m.name, m.chamber, m.party,
			t.ticker, t.transaction_date, t.transaction_type, t.amount_range
		FROM trades t
		JOIN members m ON t.member_id = m.id
		WHERE t.ticker <> ''
		  AND t.transaction_type IN ('purchase', 'sale')
		ORDER BY t.transaction_date
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []*contracts.AnalyzableTrade
	for rows.Next() {
		var t contracts.AnalyzableTrade
		if err := rows.Scan(
			&t.TradeID, &t.MemberID, &t.MemberName, &t.Chamber, &t.Party,
			&t.Ticker, &t.TransactionDate, &t.TransactionType, &t.AmountRange,
		); err != nil {
			return nil, err
		}
		trades = append(trades, &t)
	}
	return trades, rows.Err()
}

const tradeWithMemberColumns = `
	t.id, t.member_id, t.transaction_date, t.disclosure_date, t.ticker,
	t.asset_description, t.asset_type, t.transaction_type, t.amount_range,
	t.owner, t.comment, t.source_url,
	m.name, m.chamber, m.party, m.state
`

func scanTradeWithMember(rows pgx.Rows) (*contracts.TradeWithMember, error) {
	var t contracts.TradeWithMember
	if err := rows.Scan(
		&t.ID, &t.MemberID, &t.TransactionDate, &t.DisclosureDate, &t.Ticker,
		&t.AssetDescription, &t.AssetType, &t.TransactionType, &t.AmountRange,
		&t.Owner, &t.Comment, &t.SourceURL,
		&t.MemberName, &t.Chamber, &t.Party, &t.State,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

// Recent returns trades disclosed in the last N days, newest first.
func (r *TradeRepository) Recent(ctx context.Context, days, limit int) ([]*contracts.TradeWithMember, error) {
	query := `
		SELECT ` + tradeWithMemberColumns + `
		FROM trades t
		JOIN members m ON t.member_id = m.id
		WHERE t.disclosure_date >= CURRENT_DATE - $1::int
		ORDER BY t.disclosure_date DESC, t.transaction_date DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, days, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTrades(rows)
}

// ByTicker returns trades for a ticker, newest first.
func (r *TradeRepository) ByTicker(ctx context.Context, ticker string, limit int) ([]*contracts.TradeWithMember, error) {
	query := `
		SELECT ` + tradeWithMemberColumns + `
		FROM trades t
		JOIN members m ON t.member_id = m.id
		WHERE UPPER(t.ticker) = UPPER($1)
		ORDER BY t.transaction_date DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, ticker, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTrades(rows)
}

// ByMember returns trades for members whose name matches the fragment,
// newest first.
func (r *TradeRepository) ByMember(ctx context.Context, name string, limit int) ([]*contracts.TradeWithMember, error) {
	query := `
		SELECT ` + tradeWithMemberColumns + `
		FROM trades t
		JOIN members m ON t.member_id = m.id
		WHERE m.name ILIKE '%' || $1 || '%'
		ORDER BY t.transaction_date DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, name, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTrades(rows)
}

func collectTrades(rows pgx.Rows) ([]*contracts.TradeWithMember, error) {
	var trades []*contracts.TradeWithMember
	for rows.Next() {
		t, err := scanTradeWithMember(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// Counts summarizes the ledger for the status surface.
func (r *TradeRepository) Counts(ctx context.Context) (*contracts.TradeCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM trades),
			(SELECT COUNT(*) FROM members),
			(SELECT COUNT(*) FROM trades WHERE disclosure_date >= CURRENT_DATE - 7),
			(SELECT COUNT(*) FROM trades WHERE disclosure_date >= CURRENT_DATE - 1)
	`

	var c contracts.TradeCounts
	err := r.pool.QueryRow(ctx, query).Scan(
		&c.TotalTrades, &c.TotalMembers, &c.TradesLastWeek, &c.TradesToday,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
