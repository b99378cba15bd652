package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wrenn/capitolwatch/internal/contracts"
)

// SnapshotRepository implements contracts.SnapshotRepository, the
// append-only (by date) history of per-member statistics.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Upsert writes a snapshot keyed by (member_id, snapshot_date).
// Re-running on the same date replaces all fields; a later date
// appends a new history point.
func (r *SnapshotRepository) Upsert(ctx context.Context, s *contracts.SharpeSnapshot) error {
	query := `
		INSERT INTO sharpe_snapshots
			(member_id, snapshot_date, sharpe_30d, sharpe_current, num_trades,
			 mean_return_30d, std_return_30d, mean_return_current, std_return_current,
			 win_rate_30d, win_rate_current, total_return_30d, total_return_current)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (member_id, snapshot_date) DO UPDATE SET
			sharpe_30d = EXCLUDED.sharpe_30d,
			sharpe_current = EXCLUDED.sharpe_current,
			num_trades = EXCLUDED.num_trades,
			mean_return_30d = EXCLUDED.mean_return_30d,
			std_return_30d = EXCLUDED.std_return_30d,
			mean_return_current = EXCLUDED.mean_return_current,
			std_return_current = EXCLUDED.std_return_current,
			win_rate_30d = EXCLUDED.win_rate_30d,
			win_rate_current = EXCLUDED.win_rate_current,
			total_return_30d = EXCLUDED.total_return_30d,
			total_return_current = EXCLUDED.total_return_current
	`

	_, err := r.pool.Exec(ctx, query,
		s.MemberID, s.SnapshotDate, s.Sharpe30D, s.SharpeCurrent, s.NumTrades,
		s.MeanReturn30D, s.StdReturn30D, s.MeanReturnCurrent, s.StdReturnCurrent,
		s.WinRate30D, s.WinRateCurrent, s.TotalReturn30D, s.TotalReturnCurrent,
	)
	if err != nil {
		return fmt.Errorf("upsert sharpe snapshot: %w", err)
	}
	return nil
}

const snapshotColumns = `
	ss.id, ss.member_id, ss.snapshot_date, ss.sharpe_30d, ss.sharpe_current,
	ss.num_trades, ss.mean_return_30d, ss.std_return_30d,
	ss.mean_return_current, ss.std_return_current,
	ss.win_rate_30d, ss.win_rate_current,
	ss.total_return_30d, ss.total_return_current, ss.created_at,
	m.name, m.chamber, m.party
`

func scanSnapshot(rows pgx.Rows) (*contracts.SharpeSnapshot, error) {
	var s contracts.SharpeSnapshot
	if err := rows.Scan(
		&s.ID, &s.MemberID, &s.SnapshotDate, &s.Sharpe30D, &s.SharpeCurrent,
		&s.NumTrades, &s.MeanReturn30D, &s.StdReturn30D,
		&s.MeanReturnCurrent, &s.StdReturnCurrent,
		&s.WinRate30D, &s.WinRateCurrent,
		&s.TotalReturn30D, &s.TotalReturnCurrent, &s.CreatedAt,
		&s.MemberName, &s.Chamber, &s.Party,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// HistoryByMember returns a member's snapshots, newest first.
func (r *SnapshotRepository) HistoryByMember(ctx context.Context, memberID int64, limit int) ([]*contracts.SharpeSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM sharpe_snapshots ss
		JOIN members m ON ss.member_id = m.id
		WHERE ss.member_id = $1
		ORDER BY ss.snapshot_date DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, memberID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSnapshots(rows)
}

// LatestAll returns the latest-date cross-section for all members,
// ranked by 30-day Sharpe descending with null Sharpe values last.
func (r *SnapshotRepository) LatestAll(ctx context.Context) ([]*contracts.SharpeSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM sharpe_snapshots ss
		JOIN members m ON ss.member_id = m.id
		WHERE ss.snapshot_date = (
			SELECT MAX(snapshot_date) FROM sharpe_snapshots
		)
		ORDER BY ss.sharpe_30d DESC NULLS LAST, m.name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSnapshots(rows)
}

func collectSnapshots(rows pgx.Rows) ([]*contracts.SharpeSnapshot, error) {
	var snapshots []*contracts.SharpeSnapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
