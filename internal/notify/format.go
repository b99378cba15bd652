package notify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wrenn/capitolwatch/internal/ingest"
)

// FormatAmount shortens a disclosure bracket for notification display:
// "$15,001 - $50,000" becomes "15,001 - 50K".
func FormatAmount(amountRange string) string {
	if amountRange == "" {
		return "Unknown"
	}
	s := strings.ReplaceAll(amountRange, ",000", "K")
	return strings.ReplaceAll(s, "$", "")
}

// NewTradeMessage builds the notification for one freshly ingested
// trade.
func NewTradeMessage(rec ingest.Record) Message {
	action := "traded"
	emoji := "money_with_wings"
	switch {
	case strings.Contains(rec.TransactionType, "purchase"):
		action = "bought"
		emoji = "chart_with_upwards_trend"
	case strings.Contains(rec.TransactionType, "sale"):
		action = "sold"
		emoji = "chart_with_downwards_trend"
	}

	asset := rec.AssetDescription
	if len(asset) > 50 {
		asset = asset[:47] + "..."
	}

	var body string
	if rec.Ticker != "" {
		body = fmt.Sprintf("%s $%s\nAmount: %s\n%s",
			strings.ToUpper(action), rec.Ticker, FormatAmount(rec.AmountRange), asset)
	} else {
		body = fmt.Sprintf("%s: %s\nAmount: %s",
			strings.ToUpper(action), asset, FormatAmount(rec.AmountRange))
	}

	if rec.Owner != "" && !strings.EqualFold(rec.Owner, "self") {
		body += "\nOwner: " + rec.Owner
	}

	chamber := rec.Chamber
	if chamber != "" {
		chamber = strings.ToUpper(chamber[:1]) + chamber[1:]
	}

	return Message{
		Title:    fmt.Sprintf("%s (%s)", rec.MemberName, chamber),
		Body:     body,
		Priority: 3,
		Tags:     []string{emoji, "us"},
		ClickURL: rec.SourceURL,
	}
}

// DailyDigestMessage summarizes a day's new trades in one notification.
// Returns false when there is nothing to report.
func DailyDigestMessage(records []ingest.Record) (Message, bool) {
	if len(records) == 0 {
		return Message{}, false
	}

	purchases, sales := 0, 0
	members := make(map[string]struct{})
	tickerCounts := make(map[string]int)

	for _, rec := range records {
		switch {
		case strings.Contains(rec.TransactionType, "purchase"):
			purchases++
		case strings.Contains(rec.TransactionType, "sale"):
			sales++
		}
		members[rec.MemberName] = struct{}{}
		if rec.Ticker != "" {
			tickerCounts[rec.Ticker]++
		}
	}

	lines := []string{
		fmt.Sprintf("Purchases: %d | Sales: %d", purchases, sales),
		fmt.Sprintf("Members trading: %d", len(members)),
	}

	if len(tickerCounts) > 0 {
		type tc struct {
			ticker string
			count  int
		}
		var top []tc
		for ticker, count := range tickerCounts {
			top = append(top, tc{ticker, count})
		}
		sort.Slice(top, func(i, j int) bool {
			if top[i].count != top[j].count {
				return top[i].count > top[j].count
			}
			return top[i].ticker < top[j].ticker
		})
		if len(top) > 5 {
			top = top[:5]
		}

		names := make([]string, len(top))
		for i, t := range top {
			names[i] = "$" + t.ticker
		}
		lines = append(lines, "Top tickers: "+strings.Join(names, ", "))
	}

	return Message{
		Title:    fmt.Sprintf("Congress Trades: %d new today", len(records)),
		Body:     strings.Join(lines, "\n"),
		Priority: 3,
		Tags:     []string{"newspaper", "us"},
	}, true
}
