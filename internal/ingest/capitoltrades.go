package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wrenn/capitolwatch/pkg/config"
	"github.com/wrenn/capitolwatch/pkg/httputil"
	"github.com/wrenn/capitolwatch/pkg/logger"
)

// CapitolTrades fetches disclosures from the capitoltrades.com trade
// listing. The page embeds its trade data as JSON inside a script tag;
// we locate the payload with goquery and decode it.
type CapitolTrades struct {
	http    *httputil.Client
	baseURL string
	perPage int
	logger  *logger.Logger
}

// NewCapitolTrades creates the capitoltrades.com provider.
func NewCapitolTrades(cfg config.IngestConfig, log *logger.Logger) *CapitolTrades {
	httpClient := httputil.New(log).
		WithHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	return &CapitolTrades{
		http:    httpClient,
		baseURL: cfg.CapitolTradesURL,
		perPage: cfg.TradesPerPage,
		logger:  log,
	}
}

// capitolRecord mirrors one raw trade in the embedded payload.
type capitolRecord struct {
	TxID    string `json:"_txId"`
	TxDate  string `json:"txDate"`
	PubDate string `json:"pubDate"`
	Chamber string `json:"chamber"`
	TxType  string `json:"txType"`
	Value   *int64 `json:"value"`
	Owner   string `json:"owner"`
	Comment string `json:"comment"`

	Politician struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		StateID   string `json:"_stateId"`
		Party     string `json:"party"`
	} `json:"politician"`

	Issuer struct {
		IssuerName   string `json:"issuerName"`
		IssuerTicker string `json:"issuerTicker"`
	} `json:"issuer"`
}

// Fetch retrieves pages until an empty or short page, returning
// normalized records. Page fetch errors end pagination rather than
// failing the sync.
func (c *CapitolTrades) Fetch(ctx context.Context, maxPages int) ([]Record, error) {
	var records []Record

	for page := 1; page <= maxPages; page++ {
		raw, err := c.fetchPage(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				return records, ctx.Err()
			}
			c.logger.WithField("page", page).WithError(err).Warn("Trade page fetch failed, stopping pagination")
			break
		}
		if len(raw) == 0 {
			break
		}

		for _, r := range raw {
			if rec, ok := c.normalize(r); ok {
				records = append(records, rec)
			}
		}

		if len(raw) < c.perPage {
			break
		}
	}

	c.logger.WithField("records", len(records)).Info("Fetched capitol trades")
	return records, nil
}

func (c *CapitolTrades) fetchPage(ctx context.Context, page int) ([]capitolRecord, error) {
	url := fmt.Sprintf("%s?page=%d", c.baseURL, page)

	resp, err := c.http.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trade page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse trade page: %w", err)
	}

	var records []capitolRecord
	var parseErr error
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		found, err := extractTradeData(s.Text())
		if err != nil {
			parseErr = err
			return false
		}
		if found != nil {
			records = found
			return false
		}
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return records, nil
}

// extractTradeData pulls the `"data":[...]` array out of a script body.
// The payload arrives with escaped quotes when it is embedded as a
// string literal; unescape before locating the array. Returns (nil,
// nil) when the script carries no trade data.
func extractTradeData(script string) ([]capitolRecord, error) {
	text := strings.ReplaceAll(script, `\"`, `"`)

	marker := `"data":[`
	idx := strings.Index(text, marker)
	if idx < 0 {
		return nil, nil
	}

	dec := json.NewDecoder(strings.NewReader(text[idx+len(marker)-1:]))
	var records []capitolRecord
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode trade data: %w", err)
	}
	return records, nil
}

// normalize converts a raw record to the standard form. Records with no
// member name or unparseable transaction date are dropped.
func (c *CapitolTrades) normalize(r capitolRecord) (Record, bool) {
	name := memberName(r.Politician.FirstName, r.Politician.LastName)
	if name == "" {
		return Record{}, false
	}

	txDate := parseDate(r.TxDate)
	if txDate == nil {
		return Record{}, false
	}

	description := r.Issuer.IssuerName
	if description == "" {
		description = "Unknown"
	}

	return Record{
		MemberName:       name,
		Chamber:          strings.ToLower(r.Chamber),
		Party:            r.Politician.Party,
		State:            strings.ToUpper(r.Politician.StateID),
		TransactionDate:  *txDate,
		DisclosureDate:   parseDate(r.PubDate),
		Ticker:           cleanTicker(r.Issuer.IssuerTicker),
		AssetDescription: description,
		AssetType:        "Stock",
		TransactionType:  normalizeTransactionType(r.TxType),
		AmountRange:      valueToAmountRange(r.Value),
		Owner:            normalizeOwner(r.Owner),
		Comment:          r.Comment,
		SourceURL:        "https://www.capitoltrades.com/trades?txId=" + r.TxID,
	}, true
}
