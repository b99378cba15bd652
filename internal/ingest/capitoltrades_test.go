package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenn/capitolwatch/pkg/config"
	"github.com/wrenn/capitolwatch/pkg/logger"
)

const sampleTradeJSON = `{
	"_txId": "tx-123",
	"txDate": "2024-01-02",
	"pubDate": "2024-01-20",
	"chamber": "HOUSE",
	"txType": "buy",
	"value": 20000,
	"owner": "spouse",
	"comment": "",
	"politician": {"firstName": "Jane", "lastName": "Doe", "_stateId": "ca", "party": "Independent"},
	"issuer": {"issuerName": "ABC Corp", "issuerTicker": "ABC:US"}
}`

func samplePage(trades string) string {
	return fmt.Sprintf(`<html><head>
		<script>window.x = 1;</script>
		<script>self.__push({\"data\":[%s],\"meta\":{}})</script>
	</head><body></body></html>`, trades)
}

func TestExtractTradeData(t *testing.T) {
	records, err := extractTradeData(fmt.Sprintf(`self.__push({\"data\":[%s],\"meta\":{}})`, sampleTradeJSON))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "tx-123", records[0].TxID)
	assert.Equal(t, "ABC:US", records[0].Issuer.IssuerTicker)
	require.NotNil(t, records[0].Value)
	assert.Equal(t, int64(20000), *records[0].Value)
}

func TestExtractTradeData_NoPayload(t *testing.T) {
	records, err := extractTradeData(`window.analytics = {};`)
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestExtractTradeData_Malformed(t *testing.T) {
	_, err := extractTradeData(`"data":[{"broken":`)
	require.Error(t, err)
}

func TestCapitolTrades_Normalize(t *testing.T) {
	records, err := extractTradeData(fmt.Sprintf(`"data":[%s]`, sampleTradeJSON))
	require.NoError(t, err)
	require.Len(t, records, 1)

	c := NewCapitolTrades(config.IngestConfig{TradesPerPage: 12}, logger.NewNop())
	rec, ok := c.normalize(records[0])
	require.True(t, ok)

	assert.Equal(t, "Jane Doe", rec.MemberName)
	assert.Equal(t, "house", rec.Chamber)
	assert.Equal(t, "CA", rec.State)
	assert.Equal(t, "Independent", rec.Party)
	assert.Equal(t, "2024-01-02", rec.TransactionDate.Format("2006-01-02"))
	require.NotNil(t, rec.DisclosureDate)
	assert.Equal(t, "2024-01-20", rec.DisclosureDate.Format("2006-01-02"))
	assert.Equal(t, "ABC", rec.Ticker)
	assert.Equal(t, "ABC Corp", rec.AssetDescription)
	assert.Equal(t, "purchase", rec.TransactionType)
	assert.Equal(t, "$15,001 - $50,000", rec.AmountRange)
	assert.Equal(t, "Spouse", rec.Owner)
	assert.Equal(t, "https://www.capitoltrades.com/trades?txId=tx-123", rec.SourceURL)
}

func TestCapitolTrades_NormalizeDropsBadRecords(t *testing.T) {
	c := NewCapitolTrades(config.IngestConfig{TradesPerPage: 12}, logger.NewNop())

	var noName capitolRecord
	noName.TxDate = "2024-01-02"
	_, ok := c.normalize(noName)
	assert.False(t, ok, "record without member name must be dropped")

	var noDate capitolRecord
	noDate.Politician.FirstName = "Jane"
	noDate.Politician.LastName = "Doe"
	noDate.TxDate = "--"
	_, ok = c.normalize(noDate)
	assert.False(t, ok, "record without transaction date must be dropped")
}

func TestCapitolTrades_FetchPagination(t *testing.T) {
	var pages []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		if page == "1" {
			// A full page keeps pagination going.
			fmt.Fprint(w, samplePage(sampleTradeJSON+","+sampleTradeJSON))
		} else {
			// A short page ends it.
			fmt.Fprint(w, samplePage(sampleTradeJSON))
		}
	}))
	defer server.Close()

	c := NewCapitolTrades(config.IngestConfig{
		CapitolTradesURL: server.URL,
		TradesPerPage:    2,
	}, logger.NewNop())

	records, err := c.Fetch(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, pages)
	assert.Len(t, records, 3)
}
