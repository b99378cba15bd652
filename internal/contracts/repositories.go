package contracts

import (
	"context"
	"time"
)

// Repository interfaces are defined here and implemented in internal/store.

// MemberRepository manages member identity rows.
type MemberRepository interface {
	// GetOrCreate returns the id for (name, chamber), creating the row if
	// needed and filling in party/state/district when newly provided.
	GetOrCreate(ctx context.Context, m *Member) (int64, error)
	ByName(ctx context.Context, name string) (*Member, error)
	// SearchByName falls back to a substring match and returns the first hit.
	SearchByName(ctx context.Context, name string) (*Member, error)
}

// TradeRepository manages the trade ledger.
type TradeRepository interface {
	// Insert adds a trade. A duplicate of an existing row is silently
	// dropped: it returns (0, false, nil).
	Insert(ctx context.Context, t *Trade) (int64, bool, error)
	// ListForAnalysis returns trades with a ticker and a purchase/sale
	// type, joined with member identity, ordered by transaction date.
	ListForAnalysis(ctx context.Context) ([]*AnalyzableTrade, error)
	Recent(ctx context.Context, days, limit int) ([]*TradeWithMember, error)
	ByTicker(ctx context.Context, ticker string, limit int) ([]*TradeWithMember, error)
	ByMember(ctx context.Context, name string, limit int) ([]*TradeWithMember, error)
	Counts(ctx context.Context) (*TradeCounts, error)
}

// PriceRepository is the price cache: (ticker, date) -> daily close.
// The cache is additive-only.
type PriceRepository interface {
	// Series returns all cached points for a ticker ordered by date.
	Series(ctx context.Context, ticker string) ([]PricePoint, error)
	Count(ctx context.Context, ticker string) (int, error)
	// SaveBatch upserts points and returns the number written.
	SaveBatch(ctx context.Context, ticker string, points []PricePoint) (int, error)
}

// ReturnRepository manages computed trade returns.
type ReturnRepository interface {
	// Upsert writes a return record keyed by trade id, replacing all
	// fields. Callers that must preserve an already-resolved 30-day
	// return merge it into the record before calling Upsert.
	Upsert(ctx context.Context, r *TradeReturn) error
	Get(ctx context.Context, tradeID int64) (*TradeReturn, error)
	// ListJoined returns all return records joined with trade and member
	// identity for aggregation.
	ListJoined(ctx context.Context) ([]*MemberReturn, error)
}

// SnapshotRepository manages the dated per-member statistic snapshots.
type SnapshotRepository interface {
	// Upsert replaces all fields for (member_id, snapshot_date).
	Upsert(ctx context.Context, s *SharpeSnapshot) error
	// HistoryByMember returns a member's snapshots ordered by date descending.
	HistoryByMember(ctx context.Context, memberID int64, limit int) ([]*SharpeSnapshot, error)
	// LatestAll returns the latest-date cross-section for all members,
	// ordered by 30-day Sharpe descending with nulls last.
	LatestAll(ctx context.Context) ([]*SharpeSnapshot, error)
}

// SyncRepository tracks ingestion runs.
type SyncRepository interface {
	Start(ctx context.Context, syncType string) (int64, error)
	Complete(ctx context.Context, id int64, tradesAdded int, status string) error
	Last(ctx context.Context) (*SyncRecord, error)
}

// PriceSource is the external price provider. Implementations fetch
// daily closes for a set of tickers and may omit tickers that have no
// data; a per-ticker failure must not fail the whole call.
type PriceSource interface {
	FetchDailyCloses(ctx context.Context, tickers []string, from, to time.Time) (map[string][]PricePoint, error)
}
