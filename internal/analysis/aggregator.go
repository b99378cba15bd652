package analysis

import (
	"context"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/wrenn/capitolwatch/internal/contracts"
	"github.com/wrenn/capitolwatch/pkg/config"
	"github.com/wrenn/capitolwatch/pkg/logger"
)

// Aggregator groups trade returns by member and writes one dated
// statistics snapshot per member.
type Aggregator struct {
	snapshots contracts.SnapshotRepository
	cfg       config.AnalysisConfig
	logger    *logger.Logger
}

// NewAggregator creates a Sharpe aggregator.
func NewAggregator(snapshots contracts.SnapshotRepository, cfg config.AnalysisConfig, log *logger.Logger) *Aggregator {
	return &Aggregator{
		snapshots: snapshots,
		cfg:       cfg,
		logger:    log,
	}
}

// riskFree30D scales the annual risk-free rate to the return horizon by
// trading days. riskFreeCurrent deliberately stays the flat annual rate
// even though current returns span arbitrary holding periods; the two
// horizons are not directly comparable and are never mixed.
func (a *Aggregator) riskFree30D() float64 {
	return a.cfg.RiskFreeAnnual / float64(a.cfg.TradingDaysPerYear) * float64(a.cfg.HorizonDays)
}

func (a *Aggregator) riskFreeCurrent() float64 {
	return a.cfg.RiskFreeAnnual
}

// Aggregate computes per-member statistics from the joined returns and
// upserts one snapshot per member for the given date. Returns the
// number of members for which a snapshot was written.
func (a *Aggregator) Aggregate(ctx context.Context, returns []*contracts.MemberReturn, snapshotDate time.Time) (int, error) {
	byMember := make(map[int64][]*contracts.MemberReturn)
	var order []int64
	for _, r := range returns {
		if _, ok := byMember[r.MemberID]; !ok {
			order = append(order, r.MemberID)
		}
		byMember[r.MemberID] = append(byMember[r.MemberID], r)
	}

	written := 0
	for _, memberID := range order {
		rows := byMember[memberID]

		var r30, rCur []float64
		for _, r := range rows {
			if r.Return30D != nil {
				r30 = append(r30, *r.Return30D)
			}
			if r.ReturnCurrent != nil {
				rCur = append(rCur, *r.ReturnCurrent)
			}
		}

		stats30 := horizonStats(r30, a.riskFree30D())
		statsCur := horizonStats(rCur, a.riskFreeCurrent())

		snapshot := &contracts.SharpeSnapshot{
			MemberID:           memberID,
			SnapshotDate:       snapshotDate,
			NumTrades:          len(rows),
			Sharpe30D:          stats30.Sharpe,
			MeanReturn30D:      stats30.Mean,
			StdReturn30D:       stats30.Std,
			WinRate30D:         stats30.WinRate,
			TotalReturn30D:     stats30.TotalReturn,
			SharpeCurrent:      statsCur.Sharpe,
			MeanReturnCurrent:  statsCur.Mean,
			StdReturnCurrent:   statsCur.Std,
			WinRateCurrent:     statsCur.WinRate,
			TotalReturnCurrent: statsCur.TotalReturn,
		}

		if err := a.snapshots.Upsert(ctx, snapshot); err != nil {
			a.logger.WithField("member_id", memberID).WithError(err).Warn("Failed to store snapshot")
			continue
		}
		written++
	}

	return written, nil
}

// horizonStats computes the aggregate statistics for one horizon's
// observed returns. With fewer than two observations every field stays
// nil: a single trade has no dispersion to measure. Sharpe additionally
// stays nil when the sample standard deviation is zero, rather than
// dividing by it.
func horizonStats(returns []float64, riskFree float64) contracts.HorizonStats {
	var s contracts.HorizonStats
	if len(returns) < 2 {
		return s
	}

	mean := stat.Mean(returns, nil)
	std := stat.StdDev(returns, nil)

	wins := 0
	total := 1.0
	for _, r := range returns {
		// A flat return is not a win.
		if r > 0 {
			wins++
		}
		total *= 1 + r
	}
	winRate := float64(wins) / float64(len(returns))
	totalReturn := total - 1

	s.Mean = &mean
	s.Std = &std
	s.WinRate = &winRate
	s.TotalReturn = &totalReturn

	if std != 0 {
		sharpe := (mean - riskFree) / std
		s.Sharpe = &sharpe
	}

	return s
}
