package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenn/capitolwatch/internal/contracts"
	"github.com/wrenn/capitolwatch/pkg/config"
	"github.com/wrenn/capitolwatch/pkg/logger"
)

// memMembers assigns ids by (name, chamber).
type memMembers struct {
	ids map[string]int64
}

func (m *memMembers) GetOrCreate(_ context.Context, member *contracts.Member) (int64, error) {
	if m.ids == nil {
		m.ids = make(map[string]int64)
	}
	key := member.Name + "/" + member.Chamber
	if id, ok := m.ids[key]; ok {
		return id, nil
	}
	id := int64(len(m.ids) + 1)
	m.ids[key] = id
	return id, nil
}

func (m *memMembers) ByName(context.Context, string) (*contracts.Member, error)       { return nil, nil }
func (m *memMembers) SearchByName(context.Context, string) (*contracts.Member, error) { return nil, nil }

// memTrades deduplicates on the trade identity columns.
type memTrades struct {
	inserted []*contracts.Trade
	seen     map[string]bool
}

func tradeKey(t *contracts.Trade) string {
	return fmt.Sprintf("%d/%s/%s/%s/%s/%s/%s",
		t.MemberID, t.TransactionDate.Format("2006-01-02"), t.Ticker,
		t.AssetDescription, t.TransactionType, t.AmountRange, t.Owner)
}

func (m *memTrades) Insert(_ context.Context, t *contracts.Trade) (int64, bool, error) {
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if m.seen[tradeKey(t)] {
		return 0, false, nil
	}
	m.seen[tradeKey(t)] = true
	m.inserted = append(m.inserted, t)
	return int64(len(m.inserted)), true, nil
}

func (m *memTrades) ListForAnalysis(context.Context) ([]*contracts.AnalyzableTrade, error) {
	return nil, nil
}
func (m *memTrades) Recent(context.Context, int, int) ([]*contracts.TradeWithMember, error) {
	return nil, nil
}
func (m *memTrades) ByTicker(context.Context, string, int) ([]*contracts.TradeWithMember, error) {
	return nil, nil
}
func (m *memTrades) ByMember(context.Context, string, int) ([]*contracts.TradeWithMember, error) {
	return nil, nil
}
func (m *memTrades) Counts(context.Context) (*contracts.TradeCounts, error) {
	return &contracts.TradeCounts{}, nil
}

// memSyncs records start/complete calls.
type memSyncs struct {
	completedStatus string
	completedCount  int
}

func (m *memSyncs) Start(context.Context, string) (int64, error) { return 1, nil }

func (m *memSyncs) Complete(_ context.Context, _ int64, tradesAdded int, status string) error {
	m.completedStatus = status
	m.completedCount = tradesAdded
	return nil
}

func (m *memSyncs) Last(context.Context) (*contracts.SyncRecord, error) { return nil, nil }

// staticProvider serves a fixed record list.
type staticProvider struct {
	records []Record
	err     error
}

func (p *staticProvider) Fetch(context.Context, int) ([]Record, error) {
	return p.records, p.err
}

func record(name, ticker, txType, owner string, txDate time.Time) Record {
	return Record{
		MemberName:       name,
		Chamber:          contracts.ChamberHouse,
		TransactionDate:  txDate,
		Ticker:           ticker,
		AssetDescription: ticker + " stock",
		AssetType:        "Stock",
		TransactionType:  txType,
		AmountRange:      "$1,001 - $15,000",
		Owner:            owner,
	}
}

func defaultIngestCfg() config.IngestConfig {
	return config.IngestConfig{
		IncludePurchases: true,
		IncludeSales:     true,
		IncludeSelf:      true,
		IncludeSpouse:    true,
		IncludeDependent: true,
		IncludeJoint:     true,
	}
}

func newTestSyncer(providers []Provider, cfg config.IngestConfig) (*Syncer, *memTrades, *memSyncs) {
	trades := &memTrades{}
	syncs := &memSyncs{}
	return NewSyncer(&memMembers{}, trades, syncs, providers, cfg, logger.NewNop()), trades, syncs
}

func TestSyncer_Sync(t *testing.T) {
	now := time.Now().UTC()
	rec := record("Jane Doe", "ABC", "purchase", "Self", now.AddDate(0, 0, -1))

	provider := &staticProvider{records: []Record{rec, rec}}
	syncer, trades, syncs := newTestSyncer([]Provider{provider}, defaultIngestCfg())

	var notified []int64
	result, err := syncer.Sync(context.Background(), Options{
		Notify: func(_ Record, tradeID int64) { notified = append(notified, tradeID) },
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.NewTrades)
	assert.Equal(t, 1, result.Duplicates)
	assert.Len(t, trades.inserted, 1)
	assert.Len(t, notified, 1)
	assert.Equal(t, contracts.SyncCompleted, syncs.completedStatus)
	assert.Equal(t, 1, syncs.completedCount)
}

func TestSyncer_LookbackCutoff(t *testing.T) {
	now := time.Now().UTC()
	provider := &staticProvider{records: []Record{
		record("Jane Doe", "ABC", "purchase", "Self", now.AddDate(0, 0, -2)),
		record("Jane Doe", "XYZ", "purchase", "Self", now.AddDate(0, 0, -40)),
	}}

	syncer, trades, _ := newTestSyncer([]Provider{provider}, defaultIngestCfg())

	result, err := syncer.Sync(context.Background(), Options{LookbackDays: 30})
	require.NoError(t, err)

	assert.Equal(t, 1, result.NewTrades)
	assert.Equal(t, 1, result.SkippedOld)
	require.Len(t, trades.inserted, 1)
	assert.Equal(t, "ABC", trades.inserted[0].Ticker)
}

func TestSyncer_Filters(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name    string
		cfg     func(config.IngestConfig) config.IngestConfig
		rec     Record
		include bool
	}{
		{
			name:    "purchases excluded",
			cfg:     func(c config.IngestConfig) config.IngestConfig { c.IncludePurchases = false; return c },
			rec:     record("Jane Doe", "ABC", "purchase", "Self", now),
			include: false,
		},
		{
			name:    "sales excluded",
			cfg:     func(c config.IngestConfig) config.IngestConfig { c.IncludeSales = false; return c },
			rec:     record("Jane Doe", "ABC", "sale", "Self", now),
			include: false,
		},
		{
			name:    "spouse excluded",
			cfg:     func(c config.IngestConfig) config.IngestConfig { c.IncludeSpouse = false; return c },
			rec:     record("Jane Doe", "ABC", "purchase", "Spouse", now),
			include: false,
		},
		{
			name:    "ticker watchlist hit",
			cfg:     func(c config.IngestConfig) config.IngestConfig { c.WatchTickers = []string{"abc"}; return c },
			rec:     record("Jane Doe", "ABC", "purchase", "Self", now),
			include: true,
		},
		{
			name:    "ticker watchlist miss",
			cfg:     func(c config.IngestConfig) config.IngestConfig { c.WatchTickers = []string{"XYZ"}; return c },
			rec:     record("Jane Doe", "ABC", "purchase", "Self", now),
			include: false,
		},
		{
			name:    "ticker watchlist drops no-ticker trades",
			cfg:     func(c config.IngestConfig) config.IngestConfig { c.WatchTickers = []string{"ABC"}; return c },
			rec:     record("Jane Doe", "", "purchase", "Self", now),
			include: false,
		},
		{
			name:    "member watchlist substring match",
			cfg:     func(c config.IngestConfig) config.IngestConfig { c.WatchMembers = []string{"doe"}; return c },
			rec:     record("Jane Doe", "ABC", "purchase", "Self", now),
			include: true,
		},
		{
			name:    "member watchlist miss",
			cfg:     func(c config.IngestConfig) config.IngestConfig { c.WatchMembers = []string{"Roe"}; return c },
			rec:     record("Jane Doe", "ABC", "purchase", "Self", now),
			include: false,
		},
		{
			name:    "exchange passes type filters",
			cfg:     func(c config.IngestConfig) config.IngestConfig { return c },
			rec:     record("Jane Doe", "ABC", "exchange", "Self", now),
			include: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &staticProvider{records: []Record{tt.rec}}
			syncer, _, _ := newTestSyncer([]Provider{provider}, tt.cfg(defaultIngestCfg()))

			result, err := syncer.Sync(context.Background(), Options{})
			require.NoError(t, err)

			if tt.include {
				assert.Equal(t, 1, result.NewTrades)
				assert.Zero(t, result.SkippedFilter)
			} else {
				assert.Zero(t, result.NewTrades)
				assert.Equal(t, 1, result.SkippedFilter)
			}
		})
	}
}

func TestSyncer_ProviderErrorMarksRunFailed(t *testing.T) {
	good := &staticProvider{records: []Record{
		record("Jane Doe", "ABC", "purchase", "Self", time.Now().UTC()),
	}}
	bad := &staticProvider{err: errors.New("provider down")}

	syncer, _, syncs := newTestSyncer([]Provider{good, bad}, defaultIngestCfg())

	result, err := syncer.Sync(context.Background(), Options{})
	require.Error(t, err)
	assert.Equal(t, 1, result.NewTrades)
	assert.Equal(t, contracts.SyncFailed, syncs.completedStatus)
}
