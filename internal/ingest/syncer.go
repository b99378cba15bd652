package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/wrenn/capitolwatch/internal/contracts"
	"github.com/wrenn/capitolwatch/pkg/config"
	"github.com/wrenn/capitolwatch/pkg/logger"
)

// Provider is a disclosure source. Both capitoltrades.com and the stock
// watcher feeds implement it.
type Provider interface {
	Fetch(ctx context.Context, maxPages int) ([]Record, error)
}

// NotifyFunc is called once for each newly inserted trade.
type NotifyFunc func(rec Record, tradeID int64)

// Result summarizes one sync run.
type Result struct {
	NewTrades     int
	Duplicates    int
	SkippedOld    int
	SkippedFilter int
}

// Options control one sync run.
type Options struct {
	// LookbackDays drops records older than now minus this many days.
	// Zero means no cutoff.
	LookbackDays int
	MaxPages     int
	Notify       NotifyFunc
}

// Syncer pulls disclosures from providers into the trade ledger.
type Syncer struct {
	members   contracts.MemberRepository
	trades    contracts.TradeRepository
	syncs     contracts.SyncRepository
	providers []Provider
	cfg       config.IngestConfig
	logger    *logger.Logger
}

// NewSyncer creates a syncer over the given providers, tried in order.
func NewSyncer(
	members contracts.MemberRepository,
	trades contracts.TradeRepository,
	syncs contracts.SyncRepository,
	providers []Provider,
	cfg config.IngestConfig,
	log *logger.Logger,
) *Syncer {
	return &Syncer{
		members:   members,
		trades:    trades,
		syncs:     syncs,
		providers: providers,
		cfg:       cfg,
		logger:    log,
	}
}

// Sync runs one full ingestion pass. Per-record failures are logged and
// skipped; the run is marked failed in the sync log only when a
// provider-level or bookkeeping error aborts it.
func (s *Syncer) Sync(ctx context.Context, opts Options) (*Result, error) {
	syncID, err := s.syncs.Start(ctx, "full")
	if err != nil {
		return nil, err
	}

	result := &Result{}

	var cutoff time.Time
	if opts.LookbackDays > 0 {
		cutoff = time.Now().UTC().AddDate(0, 0, -opts.LookbackDays)
	}

	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = 100
	}

	for _, provider := range s.providers {
		records, err := provider.Fetch(ctx, maxPages)
		if err != nil {
			_ = s.syncs.Complete(ctx, syncID, result.NewTrades, contracts.SyncFailed)
			return result, err
		}

		for _, rec := range records {
			if !cutoff.IsZero() && rec.TransactionDate.Before(cutoff) {
				result.SkippedOld++
				continue
			}
			if !s.shouldInclude(rec) {
				result.SkippedFilter++
				continue
			}

			tradeID, inserted, err := s.insertRecord(ctx, rec)
			if err != nil {
				s.logger.WithFields(map[string]interface{}{
					"member": rec.MemberName,
					"ticker": rec.Ticker,
				}).WithError(err).Warn("Failed to store trade, skipping")
				continue
			}
			if !inserted {
				result.Duplicates++
				continue
			}

			result.NewTrades++
			if opts.Notify != nil {
				opts.Notify(rec, tradeID)
			}
		}
	}

	if err := s.syncs.Complete(ctx, syncID, result.NewTrades, contracts.SyncCompleted); err != nil {
		return result, err
	}

	s.logger.WithFields(map[string]interface{}{
		"new_trades":     result.NewTrades,
		"duplicates":     result.Duplicates,
		"skipped_old":    result.SkippedOld,
		"skipped_filter": result.SkippedFilter,
	}).Info("Trade sync completed")

	return result, nil
}

func (s *Syncer) insertRecord(ctx context.Context, rec Record) (int64, bool, error) {
	memberID, err := s.members.GetOrCreate(ctx, &contracts.Member{
		Name:     rec.MemberName,
		Chamber:  rec.Chamber,
		Party:    rec.Party,
		State:    rec.State,
		District: rec.District,
	})
	if err != nil {
		return 0, false, err
	}

	return s.trades.Insert(ctx, &contracts.Trade{
		MemberID:         memberID,
		TransactionDate:  rec.TransactionDate,
		DisclosureDate:   rec.DisclosureDate,
		Ticker:           rec.Ticker,
		AssetDescription: rec.AssetDescription,
		AssetType:        rec.AssetType,
		TransactionType:  rec.TransactionType,
		AmountRange:      rec.AmountRange,
		Owner:            rec.Owner,
		Comment:          rec.Comment,
		SourceURL:        rec.SourceURL,
	})
}

// shouldInclude applies the configured inclusion filters and
// watchlists.
func (s *Syncer) shouldInclude(rec Record) bool {
	txType := strings.ToLower(rec.TransactionType)
	if strings.Contains(txType, "purchase") && !s.cfg.IncludePurchases {
		return false
	}
	if strings.Contains(txType, "sale") && !s.cfg.IncludeSales {
		return false
	}

	owner := strings.ToLower(rec.Owner)
	if strings.Contains(owner, "self") && !s.cfg.IncludeSelf {
		return false
	}
	if strings.Contains(owner, "spouse") && !s.cfg.IncludeSpouse {
		return false
	}
	if strings.Contains(owner, "dependent") && !s.cfg.IncludeDependent {
		return false
	}
	if strings.Contains(owner, "joint") && !s.cfg.IncludeJoint {
		return false
	}

	if len(s.cfg.WatchTickers) > 0 {
		if rec.Ticker == "" {
			return false
		}
		if !containsFold(s.cfg.WatchTickers, rec.Ticker) {
			return false
		}
	}

	if len(s.cfg.WatchMembers) > 0 {
		matched := false
		for _, w := range s.cfg.WatchMembers {
			if strings.Contains(strings.ToLower(rec.MemberName), strings.ToLower(w)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
