package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/wrenn/capitolwatch/internal/contracts"
	"github.com/wrenn/capitolwatch/pkg/config"
	"github.com/wrenn/capitolwatch/pkg/logger"
)

// PriceProvider supplies price series for the analysis run. Implemented
// by the cache-backed price service.
type PriceProvider interface {
	EnsureSeries(ctx context.Context, tickers []string, from, to time.Time) (map[string][]contracts.PricePoint, error)
}

// Service orchestrates a full analysis run: trades in, snapshots out.
type Service struct {
	trades     contracts.TradeRepository
	returns    contracts.ReturnRepository
	members    contracts.MemberRepository
	snapshots  contracts.SnapshotRepository
	prices     PriceProvider
	calculator *Calculator
	aggregator *Aggregator
	cfg        config.AnalysisConfig
	logger     *logger.Logger
}

// NewService wires the analysis pipeline.
func NewService(
	trades contracts.TradeRepository,
	returns contracts.ReturnRepository,
	members contracts.MemberRepository,
	snapshots contracts.SnapshotRepository,
	prices PriceProvider,
	cfg config.AnalysisConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		trades:     trades,
		returns:    returns,
		members:    members,
		snapshots:  snapshots,
		prices:     prices,
		calculator: NewCalculator(returns, cfg, log),
		aggregator: NewAggregator(snapshots, cfg, log),
		cfg:        cfg,
		logger:     log,
	}
}

// Run executes one full analysis pass over every analyzable trade and
// returns a summary. Running twice on the same day is idempotent: the
// second pass replaces the day's snapshots.
func (s *Service) Run(ctx context.Context) (*contracts.RunSummary, error) {
	started := time.Now()
	snapshotDate := dateOnly(time.Now().UTC())

	summary := &contracts.RunSummary{SnapshotDate: snapshotDate}

	trades, err := s.trades.ListForAnalysis(ctx)
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}
	if len(trades) == 0 {
		s.logger.Info("No analyzable trades, nothing to do")
		return summary, nil
	}

	tickers := make([]string, 0, len(trades))
	seen := make(map[string]struct{})
	earliest := trades[0].TransactionDate
	for _, t := range trades {
		if t.TransactionDate.Before(earliest) {
			earliest = t.TransactionDate
		}
		if _, ok := seen[t.Ticker]; !ok {
			seen[t.Ticker] = struct{}{}
			tickers = append(tickers, t.Ticker)
		}
	}

	// Pad the window so an entry on the trade date itself is covered
	// even when the date falls on a holiday run-up.
	from := earliest.AddDate(0, 0, -s.cfg.EntryWindowPadDays)
	to := time.Now().UTC()

	series, err := s.prices.EnsureSeries(ctx, tickers, from, to)
	if err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}

	processed := s.calculator.Process(ctx, trades, series)
	summary.TradesAnalyzed = len(processed)

	joined, err := s.returns.ListJoined(ctx)
	if err != nil {
		return nil, fmt.Errorf("load returns: %w", err)
	}

	// Only trades analyzed this run feed the snapshots. A trade skipped
	// this run (no series, no entry price) keeps its stored record but
	// stays out of today's aggregation.
	thisRun := make([]*contracts.MemberReturn, 0, len(joined))
	for _, row := range joined {
		if _, ok := processed[row.TradeID]; ok {
			thisRun = append(thisRun, row)
		}
	}

	summary.MembersAnalyzed, err = s.aggregator.Aggregate(ctx, thisRun, snapshotDate)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"trades_analyzed":  summary.TradesAnalyzed,
		"members_analyzed": summary.MembersAnalyzed,
		"duration":         time.Since(started),
	}).Info("Analysis run completed")

	return summary, nil
}

// Rankings returns the latest snapshot cross-section, best 30-day
// Sharpe first.
func (s *Service) Rankings(ctx context.Context) ([]*contracts.SharpeSnapshot, error) {
	return s.snapshots.LatestAll(ctx)
}

// MemberHistory returns a member's snapshot history, newest first.
// The name is matched exactly first, then as a substring. A nil member
// means no match.
func (s *Service) MemberHistory(ctx context.Context, name string, limit int) (*contracts.Member, []*contracts.SharpeSnapshot, error) {
	member, err := s.members.ByName(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	if member == nil {
		member, err = s.members.SearchByName(ctx, name)
		if err != nil {
			return nil, nil, err
		}
	}
	if member == nil {
		return nil, nil, nil
	}

	history, err := s.snapshots.HistoryByMember(ctx, member.ID, limit)
	if err != nil {
		return nil, nil, err
	}
	return member, history, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
