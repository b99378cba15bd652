package ingest

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing provider dates.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"Jan 2, 2006",
}

// parseDate parses a provider date into a UTC day. Returns nil for
// empty, placeholder ("--") or unparseable values.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || s == "--" {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &day
		}
	}
	return nil
}

// normalizeTransactionType maps provider transaction labels onto the
// canonical purchase/sale/exchange forms. Unrecognized labels pass
// through lowercased so they are at least stable.
func normalizeTransactionType(txType string) string {
	txType = strings.ToLower(strings.TrimSpace(txType))
	switch {
	case txType == "buy":
		return "purchase"
	case txType == "sell":
		return "sale"
	case strings.Contains(txType, "purchase"):
		return "purchase"
	case strings.Contains(txType, "sale"):
		return "sale"
	case strings.Contains(txType, "exchange"):
		return "exchange"
	}
	return txType
}

// amountBrackets are the disclosure value brackets, smallest first.
var amountBrackets = []struct {
	max   int64
	label string
}{
	{1_000, "$1 - $1,000"},
	{15_000, "$1,001 - $15,000"},
	{50_000, "$15,001 - $50,000"},
	{100_000, "$50,001 - $100,000"},
	{250_000, "$100,001 - $250,000"},
	{500_000, "$250,001 - $500,000"},
	{1_000_000, "$500,001 - $1,000,000"},
	{5_000_000, "$1,000,001 - $5,000,000"},
}

// valueToAmountRange converts a numeric trade value into the standard
// disclosure bracket label.
func valueToAmountRange(value *int64) string {
	if value == nil {
		return "Unknown"
	}
	for _, b := range amountBrackets {
		if *value <= b.max {
			return b.label
		}
	}
	return "$5,000,001+"
}

// normalizeOwner maps provider owner codes to display form.
func normalizeOwner(owner string) string {
	switch strings.ToLower(strings.TrimSpace(owner)) {
	case "":
		return ""
	case "self":
		return "Self"
	case "spouse":
		return "Spouse"
	case "joint":
		return "Joint"
	case "child", "dependent":
		return "Dependent Child"
	}
	return titleCase(owner)
}

// titleCase uppercases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// cleanTicker strips the exchange suffix from tickers like "AAPL:US"
// and normalizes to upper case. Placeholder values become empty.
func cleanTicker(ticker string) string {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" || ticker == "--" || ticker == "N/A" {
		return ""
	}
	if i := strings.Index(ticker, ":"); i >= 0 {
		ticker = ticker[:i]
	}
	return strings.ToUpper(ticker)
}

// memberName builds the display name from first/last parts.
func memberName(first, last string) string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", strings.TrimSpace(first), strings.TrimSpace(last)))
}
