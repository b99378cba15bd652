package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wrenn/capitolwatch/internal/contracts"
)

// SyncRepository implements contracts.SyncRepository.
type SyncRepository struct {
	pool *pgxpool.Pool
}

// NewSyncRepository creates a new sync log repository.
func NewSyncRepository(pool *pgxpool.Pool) *SyncRepository {
	return &SyncRepository{pool: pool}
}

// Start records the beginning of an ingestion run.
func (r *SyncRepository) Start(ctx context.Context, syncType string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO sync_log (sync_type) VALUES ($1) RETURNING id`,
		syncType,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("start sync: %w", err)
	}
	return id, nil
}

// Complete marks an ingestion run as finished.
func (r *SyncRepository) Complete(ctx context.Context, id int64, tradesAdded int, status string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE sync_log
		SET completed_at = now(), trades_added = $1, status = $2
		WHERE id = $3
	`, tradesAdded, status, id)
	if err != nil {
		return fmt.Errorf("complete sync: %w", err)
	}
	return nil
}

// Last returns the most recent completed run, or nil.
func (r *SyncRepository) Last(ctx context.Context) (*contracts.SyncRecord, error) {
	query := `
		SELECT id, sync_type, started_at, completed_at, trades_added, status
		FROM sync_log
		WHERE status = $1
		ORDER BY completed_at DESC
		LIMIT 1
	`

	var rec contracts.SyncRecord
	err := r.pool.QueryRow(ctx, query, contracts.SyncCompleted).Scan(
		&rec.ID, &rec.SyncType, &rec.StartedAt, &rec.CompletedAt, &rec.TradesAdded, &rec.Status,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
