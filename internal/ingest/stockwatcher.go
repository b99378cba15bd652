package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/wrenn/capitolwatch/internal/contracts"
	"github.com/wrenn/capitolwatch/pkg/config"
	"github.com/wrenn/capitolwatch/pkg/httputil"
	"github.com/wrenn/capitolwatch/pkg/logger"
)

// StockWatcher fetches the house/senate stock watcher S3 feeds, the
// second disclosure provider. Each feed is one large JSON array.
type StockWatcher struct {
	http      *httputil.Client
	houseURL  string
	senateURL string
	logger    *logger.Logger
}

// NewStockWatcher creates the stock watcher feed provider.
func NewStockWatcher(cfg config.IngestConfig, log *logger.Logger) *StockWatcher {
	return &StockWatcher{
		http:      httputil.New(log),
		houseURL:  cfg.HouseFeedURL,
		senateURL: cfg.SenateFeedURL,
		logger:    log,
	}
}

// watcherRecord covers both feed shapes; the house feed names the
// member "representative", the senate feed "senator".
type watcherRecord struct {
	TransactionDate  string `json:"transaction_date"`
	DisclosureDate   string `json:"disclosure_date"`
	Ticker           string `json:"ticker"`
	AssetDescription string `json:"asset_description"`
	AssetType        string `json:"asset_type"`
	Type             string `json:"type"`
	Amount           string `json:"amount"`
	Representative   string `json:"representative"`
	Senator          string `json:"senator"`
	District         string `json:"district"`
	Owner            string `json:"owner"`
	Comment          string `json:"comment"`
	PtrLink          string `json:"ptr_link"`
}

// Fetch retrieves both feeds and returns normalized records. A failed
// feed is logged and skipped so one chamber cannot block the other.
func (s *StockWatcher) Fetch(ctx context.Context, _ int) ([]Record, error) {
	var records []Record

	for _, feed := range []struct {
		url     string
		chamber string
	}{
		{s.houseURL, contracts.ChamberHouse},
		{s.senateURL, contracts.ChamberSenate},
	} {
		if feed.url == "" {
			continue
		}

		raw, err := s.fetchFeed(ctx, feed.url)
		if err != nil {
			if ctx.Err() != nil {
				return records, ctx.Err()
			}
			s.logger.WithField("chamber", feed.chamber).WithError(err).Warn("Feed fetch failed, skipping")
			continue
		}

		for _, r := range raw {
			if rec, ok := normalizeWatcher(r, feed.chamber); ok {
				records = append(records, rec)
			}
		}
	}

	s.logger.WithField("records", len(records)).Info("Fetched stock watcher feeds")
	return records, nil
}

func (s *StockWatcher) fetchFeed(ctx context.Context, url string) ([]watcherRecord, error) {
	resp, err := s.http.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var records []watcherRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode feed: %w", err)
	}
	return records, nil
}

// normalizeWatcher converts a feed record to the standard form.
func normalizeWatcher(r watcherRecord, chamber string) (Record, bool) {
	name := r.Representative
	if chamber == contracts.ChamberSenate {
		name = r.Senator
	}
	if name == "" {
		return Record{}, false
	}

	txDate := parseDate(r.TransactionDate)
	if txDate == nil {
		return Record{}, false
	}

	assetType := r.AssetType
	if assetType == "" {
		assetType = "Stock"
	}

	amount := r.Amount
	if amount == "" {
		amount = "Unknown"
	}

	return Record{
		MemberName:       name,
		Chamber:          chamber,
		District:         r.District,
		TransactionDate:  *txDate,
		DisclosureDate:   parseDate(r.DisclosureDate),
		Ticker:           cleanTicker(r.Ticker),
		AssetDescription: r.AssetDescription,
		AssetType:        assetType,
		TransactionType:  normalizeTransactionType(r.Type),
		AmountRange:      amount,
		Owner:            normalizeOwner(r.Owner),
		Comment:          r.Comment,
		SourceURL:        r.PtrLink,
	}, true
}
