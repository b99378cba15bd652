package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/wrenn/capitolwatch/internal/contracts"
	"github.com/wrenn/capitolwatch/pkg/logger"
)

// TradeHandler serves the trade browsing endpoints.
type TradeHandler struct {
	trades contracts.TradeRepository
	logger *logger.Logger
}

// NewTradeHandler creates the trade handler.
func NewTradeHandler(trades contracts.TradeRepository, log *logger.Logger) *TradeHandler {
	return &TradeHandler{
		trades: trades,
		logger: log,
	}
}

// tradeJSON is the wire shape for one trade row.
type tradeJSON struct {
	ID               int64   `json:"id"`
	MemberName       string  `json:"member_name"`
	Chamber          string  `json:"chamber"`
	Party            string  `json:"party,omitempty"`
	TransactionDate  string  `json:"transaction_date"`
	DisclosureDate   *string `json:"disclosure_date"`
	Ticker           string  `json:"ticker,omitempty"`
	AssetDescription string  `json:"asset_description"`
	TransactionType  string  `json:"transaction_type"`
	AmountRange      string  `json:"amount_range"`
	Owner            string  `json:"owner,omitempty"`
	SourceURL        string  `json:"source_url,omitempty"`
}

func toTradeJSON(t *contracts.TradeWithMember) tradeJSON {
	out := tradeJSON{
		ID:               t.ID,
		MemberName:       t.MemberName,
		Chamber:          t.Chamber,
		Party:            t.Party,
		TransactionDate:  t.TransactionDate.Format("2006-01-02"),
		Ticker:           t.Ticker,
		AssetDescription: t.AssetDescription,
		TransactionType:  t.TransactionType,
		AmountRange:      t.AmountRange,
		Owner:            t.Owner,
		SourceURL:        t.SourceURL,
	}
	if t.DisclosureDate != nil {
		s := t.DisclosureDate.Format("2006-01-02")
		out.DisclosureDate = &s
	}
	return out
}

func tradeList(trades []*contracts.TradeWithMember) []tradeJSON {
	out := make([]tradeJSON, len(trades))
	for i, t := range trades {
		out[i] = toTradeJSON(t)
	}
	return out
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// GetRecent returns trades disclosed in the last N days.
func (h *TradeHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 7)
	limit := queryInt(r, "limit", 50)

	trades, err := h.trades.Recent(r.Context(), days, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load recent trades")
		respondError(w, http.StatusInternalServerError, "failed to load recent trades")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"trades": tradeList(trades),
		"count":  len(trades),
		"since":  time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02"),
	})
}

// Search returns trades filtered by ticker or member name. Exactly one
// of the two query parameters is required.
func (h *TradeHandler) Search(w http.ResponseWriter, r *http.Request) {
	ticker := r.URL.Query().Get("ticker")
	member := r.URL.Query().Get("member")
	limit := queryInt(r, "limit", 50)

	if (ticker == "") == (member == "") {
		respondError(w, http.StatusBadRequest, "exactly one of ticker or member is required")
		return
	}

	var (
		trades []*contracts.TradeWithMember
		err    error
	)
	if ticker != "" {
		trades, err = h.trades.ByTicker(r.Context(), ticker, limit)
	} else {
		trades, err = h.trades.ByMember(r.Context(), member, limit)
	}
	if err != nil {
		h.logger.WithError(err).Error("Trade search failed")
		respondError(w, http.StatusInternalServerError, "trade search failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"trades": tradeList(trades),
		"count":  len(trades),
	})
}
