package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/wrenn/capitolwatch/internal/contracts"
	"github.com/wrenn/capitolwatch/pkg/config"
	"github.com/wrenn/capitolwatch/pkg/httputil"
	"github.com/wrenn/capitolwatch/pkg/logger"
)

// Client fetches daily closes from the Yahoo Finance chart API.
// It implements contracts.PriceSource.
type Client struct {
	http    *httputil.Client
	limiter *rate.Limiter
	baseURL string
	logger  *logger.Logger
}

// NewClient creates a price client from configuration.
func NewClient(cfg config.PricesConfig, log *logger.Logger) *Client {
	httpClient := httputil.NewWithTimeout(log, cfg.RequestTimeout).
		WithRetry(3, 2*time.Second).
		WithHeader("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	return &Client{
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		baseURL: cfg.BaseURL,
		logger:  log,
	}
}

// FetchDailyCloses fetches daily closes for each ticker in [from, to].
// Tickers that fail or return no data are omitted from the result; only
// context cancellation fails the whole call.
func (c *Client) FetchDailyCloses(ctx context.Context, tickers []string, from, to time.Time) (map[string][]contracts.PricePoint, error) {
	result := make(map[string][]contracts.PricePoint, len(tickers))

	for _, ticker := range tickers {
		if err := c.limiter.Wait(ctx); err != nil {
			return result, err
		}

		points, err := c.fetchOne(ctx, ticker, from, to)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			c.logger.WithField("ticker", ticker).WithError(err).Warn("Price fetch failed, skipping ticker")
			continue
		}
		if len(points) == 0 {
			c.logger.WithField("ticker", ticker).Debug("No price data for ticker")
			continue
		}

		result[ticker] = points
	}

	return result, nil
}

func (c *Client) fetchOne(ctx context.Context, ticker string, from, to time.Time) ([]contracts.PricePoint, error) {
	// The chart endpoint treats period2 as exclusive; pad by a day so
	// the end date itself is included.
	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=history",
		c.baseURL, url.PathEscape(ticker), from.Unix(), to.AddDate(0, 0, 1).Unix())

	resp, err := c.http.Get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Unknown or delisted symbol.
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart response: %w", err)
	}

	return parseChart(ticker, body)
}

// chartResponse mirrors the subset of the chart API payload we consume.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				Adjclose []struct {
					Adjclose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// parseChart extracts daily close points from a chart API payload.
// Adjusted closes are preferred so splits and dividends do not distort
// returns; null and non-positive entries are dropped.
func parseChart(ticker string, body []byte) ([]contracts.PricePoint, error) {
	var cr chartResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("failed to parse chart response: %w", err)
	}

	if cr.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error: %s (%s)", cr.Chart.Error.Code, cr.Chart.Error.Description)
	}
	if len(cr.Chart.Result) == 0 {
		return nil, nil
	}

	res := cr.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return nil, nil
	}

	closes := res.Indicators.Quote[0].Close
	if len(res.Indicators.Adjclose) > 0 && len(res.Indicators.Adjclose[0].Adjclose) == len(res.Timestamp) {
		closes = res.Indicators.Adjclose[0].Adjclose
	}
	if len(closes) != len(res.Timestamp) {
		return nil, fmt.Errorf("chart response has %d closes for %d timestamps", len(closes), len(res.Timestamp))
	}

	var points []contracts.PricePoint
	for i, ts := range res.Timestamp {
		if closes[i] == nil || *closes[i] <= 0 {
			continue
		}

		day := time.Unix(ts, 0).UTC()
		points = append(points, contracts.PricePoint{
			Ticker: ticker,
			Date:   time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
			Close:  *closes[i],
		})
	}

	return points, nil
}
