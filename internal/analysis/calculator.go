package analysis

import (
	"context"

	"github.com/wrenn/capitolwatch/internal/contracts"
	"github.com/wrenn/capitolwatch/pkg/config"
	"github.com/wrenn/capitolwatch/pkg/logger"
)

// Calculator computes per-trade returns from cached price series and
// persists them. One return record exists per trade; re-running merges
// with the stored record instead of clobbering resolved fields.
type Calculator struct {
	returns contracts.ReturnRepository
	cfg     config.AnalysisConfig
	logger  *logger.Logger
}

// NewCalculator creates a return calculator.
func NewCalculator(returns contracts.ReturnRepository, cfg config.AnalysisConfig, log *logger.Logger) *Calculator {
	return &Calculator{
		returns: returns,
		cfg:     cfg,
		logger:  log,
	}
}

// Process computes and stores returns for each trade, using the price
// series keyed by ticker. Trades without usable prices are skipped and
// per-trade failures are logged, never fatal. Returns the ids of the
// trades for which a return record was written this run; skipped trades
// are absent even when a record from an earlier run exists.
func (c *Calculator) Process(ctx context.Context, trades []*contracts.AnalyzableTrade, series map[string][]contracts.PricePoint) map[int64]struct{} {
	analyzed := make(map[int64]struct{}, len(trades))

	for _, trade := range trades {
		points, ok := series[trade.Ticker]
		if !ok || len(points) == 0 {
			c.logger.WithFields(map[string]interface{}{
				"trade_id": trade.TradeID,
				"ticker":   trade.Ticker,
			}).Debug("No price series for trade, skipping")
			continue
		}

		computed, ok := computeReturn(trade, points, c.cfg.HorizonDays)
		if !ok {
			c.logger.WithFields(map[string]interface{}{
				"trade_id": trade.TradeID,
				"ticker":   trade.Ticker,
				"date":     trade.TransactionDate.Format("2006-01-02"),
			}).Debug("No entry price for trade, skipping")
			continue
		}

		existing, err := c.returns.Get(ctx, trade.TradeID)
		if err != nil {
			c.logger.WithField("trade_id", trade.TradeID).WithError(err).Warn("Failed to load stored return")
			continue
		}

		if err := c.returns.Upsert(ctx, mergeReturn(existing, computed)); err != nil {
			c.logger.WithField("trade_id", trade.TradeID).WithError(err).Warn("Failed to store return")
			continue
		}

		analyzed[trade.TradeID] = struct{}{}
	}

	return analyzed
}

// computeReturn derives the return record for one trade from its price
// series. The series must be ordered by date ascending.
//
// Entry is the first point on or after the transaction date; without one
// the trade is unanalyzable and (nil, false) is returned. The horizon
// return exits at the first point on or after entry + horizonDays
// calendar days and stays nil until such a point exists. The current
// return always exits at the last point in the series. For sales the
// signs are flipped: a price drop after selling is a good call.
func computeReturn(trade *contracts.AnalyzableTrade, points []contracts.PricePoint, horizonDays int) (*contracts.TradeReturn, bool) {
	entryIdx := -1
	for i, p := range points {
		if !p.Date.Before(trade.TransactionDate) {
			entryIdx = i
			break
		}
	}
	if entryIdx < 0 {
		return nil, false
	}

	entry := points[entryIdx]
	ret := &contracts.TradeReturn{
		TradeID:    trade.TradeID,
		EntryDate:  entry.Date,
		EntryPrice: entry.Close,
	}

	target := entry.Date.AddDate(0, 0, horizonDays)
	for _, p := range points[entryIdx:] {
		if !p.Date.Before(target) {
			r := p.Close/entry.Close - 1
			d := p.Date
			ret.Return30D = &r
			ret.Return30DDate = &d
			break
		}
	}

	last := points[len(points)-1]
	rCur := last.Close/entry.Close - 1
	dCur := last.Date
	ret.ReturnCurrent = &rCur
	ret.ReturnCurrentDate = &dCur

	if trade.TransactionType == contracts.TxSale {
		if ret.Return30D != nil {
			*ret.Return30D = -*ret.Return30D
		}
		*ret.ReturnCurrent = -*ret.ReturnCurrent
	}

	return ret, true
}
