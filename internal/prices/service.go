package prices

import (
	"context"
	"sort"
	"time"

	"github.com/wrenn/capitolwatch/internal/contracts"
	"github.com/wrenn/capitolwatch/pkg/config"
	"github.com/wrenn/capitolwatch/pkg/logger"
)

// Service is the cache layer in front of the price provider. Callers ask
// for series; the service decides per ticker whether the cache suffices
// or the provider must be hit, and writes fetched data back to the cache
// before returning it.
type Service struct {
	repo   contracts.PriceRepository
	source contracts.PriceSource
	cfg    config.PricesConfig
	logger *logger.Logger
}

// NewService creates a price service.
func NewService(repo contracts.PriceRepository, source contracts.PriceSource, cfg config.PricesConfig, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		source: source,
		cfg:    cfg,
		logger: log,
	}
}

// EnsureSeries returns the cached daily series for each ticker, fetching
// from the provider first for tickers whose cache looks too thin. The
// fetch runs in batches; a failed batch is logged and skipped so one bad
// batch cannot starve the rest of the run.
func (s *Service) EnsureSeries(ctx context.Context, tickers []string, from, to time.Time) (map[string][]contracts.PricePoint, error) {
	toFetch := make([]string, 0, len(tickers))
	for _, ticker := range dedupe(tickers) {
		count, err := s.repo.Count(ctx, ticker)
		if err != nil {
			return nil, err
		}
		// A handful of cached points usually means an earlier partial
		// fetch; treat the ticker as uncached and refetch it.
		if count <= s.cfg.MinCachePoints {
			toFetch = append(toFetch, ticker)
		}
	}

	if len(toFetch) > 0 {
		s.logger.WithFields(map[string]interface{}{
			"tickers_total":   len(tickers),
			"tickers_missing": len(toFetch),
		}).Info("Fetching price history")

		s.fetchAndCache(ctx, toFetch, from, to)
	}

	result := make(map[string][]contracts.PricePoint, len(tickers))
	for _, ticker := range dedupe(tickers) {
		series, err := s.repo.Series(ctx, ticker)
		if err != nil {
			return nil, err
		}
		if len(series) > 0 {
			result[ticker] = series
		}
	}

	return result, nil
}

// fetchAndCache fetches tickers from the provider in batches and writes
// each batch to the cache. Batch failures are isolated.
func (s *Service) fetchAndCache(ctx context.Context, tickers []string, from, to time.Time) {
	for start := 0; start < len(tickers); start += s.cfg.BatchSize {
		end := start + s.cfg.BatchSize
		if end > len(tickers) {
			end = len(tickers)
		}
		batch := tickers[start:end]

		fetched, err := s.source.FetchDailyCloses(ctx, batch, from, to)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.WithFields(map[string]interface{}{
				"batch_start": start,
				"batch_size":  len(batch),
			}).WithError(err).Warn("Price batch failed, skipping")
			continue
		}

		for ticker, points := range fetched {
			written, err := s.repo.SaveBatch(ctx, ticker, points)
			if err != nil {
				s.logger.WithField("ticker", ticker).WithError(err).Warn("Price cache write failed")
				continue
			}
			s.logger.WithFields(map[string]interface{}{
				"ticker": ticker,
				"points": written,
			}).Debug("Cached price history")
		}
	}
}

// Series returns the cached series for a single ticker without fetching.
func (s *Service) Series(ctx context.Context, ticker string) ([]contracts.PricePoint, error) {
	return s.repo.Series(ctx, ticker)
}

// dedupe returns the tickers with duplicates removed, order preserved,
// then sorted for deterministic batch composition.
func dedupe(tickers []string) []string {
	seen := make(map[string]struct{}, len(tickers))
	var out []string
	for _, t := range tickers {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
