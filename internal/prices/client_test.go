package prices

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenn/capitolwatch/pkg/config"
	"github.com/wrenn/capitolwatch/pkg/logger"
)

func chartBody(timestamps []int64, closes []string, adjcloses []string) string {
	var b strings.Builder
	b.WriteString(`{"chart":{"result":[{"timestamp":[`)
	for i, ts := range timestamps {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "%d", ts)
	}
	b.WriteString(`],"indicators":{"quote":[{"close":[`)
	b.WriteString(strings.Join(closes, ","))
	b.WriteString(`]}]`)
	if adjcloses != nil {
		b.WriteString(`,"adjclose":[{"adjclose":[`)
		b.WriteString(strings.Join(adjcloses, ","))
		b.WriteString(`]}]`)
	}
	b.WriteString(`}}],"error":null}}`)
	return b.String()
}

func TestParseChart(t *testing.T) {
	jan2 := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC).Unix()
	jan3 := time.Date(2024, 1, 3, 14, 30, 0, 0, time.UTC).Unix()
	jan4 := time.Date(2024, 1, 4, 14, 30, 0, 0, time.UTC).Unix()

	tests := []struct {
		name       string
		body       string
		wantErr    bool
		wantCloses []float64
	}{
		{
			name:       "plain closes",
			body:       chartBody([]int64{jan2, jan3}, []string{"100.5", "101.25"}, nil),
			wantCloses: []float64{100.5, 101.25},
		},
		{
			name:       "adjusted closes preferred",
			body:       chartBody([]int64{jan2, jan3}, []string{"100", "101"}, []string{"99.5", "100.5"}),
			wantCloses: []float64{99.5, 100.5},
		},
		{
			name:       "null entries dropped",
			body:       chartBody([]int64{jan2, jan3, jan4}, []string{"100", "null", "102"}, nil),
			wantCloses: []float64{100, 102},
		},
		{
			name:       "non-positive closes dropped",
			body:       chartBody([]int64{jan2, jan3}, []string{"0", "102"}, nil),
			wantCloses: []float64{102},
		},
		{
			name:       "empty result",
			body:       `{"chart":{"result":[],"error":null}}`,
			wantCloses: nil,
		},
		{
			name:    "api error",
			body:    `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`,
			wantErr: true,
		},
		{
			name:    "length mismatch",
			body:    chartBody([]int64{jan2, jan3}, []string{"100"}, nil),
			wantErr: true,
		},
		{
			name:    "malformed json",
			body:    `{"chart":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := parseChart("ABC", []byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			require.Len(t, points, len(tt.wantCloses))
			for i, p := range points {
				assert.Equal(t, "ABC", p.Ticker)
				assert.Equal(t, tt.wantCloses[i], p.Close)
				// Dates are normalized to UTC midnight.
				assert.Equal(t, 0, p.Date.Hour())
				assert.Equal(t, time.UTC, p.Date.Location())
			}
		})
	}
}

func TestParseChart_DateNormalization(t *testing.T) {
	ts := time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC).Unix()
	points, err := parseChart("ABC", []byte(chartBody([]int64{ts}, []string{"50"}, nil)))
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), points[0].Date)
}

func TestClient_FetchDailyCloses(t *testing.T) {
	jan2 := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC).Unix()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/GOOD"):
			fmt.Fprint(w, chartBody([]int64{jan2}, []string{"100"}, nil))
		case strings.Contains(r.URL.Path, "/GONE"):
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer server.Close()

	client := NewClient(config.PricesConfig{
		BaseURL:        server.URL,
		RequestsPerSec: 1000,
		RequestTimeout: 5 * time.Second,
	}, logger.NewNop())
	client.http.DisableRetry()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	// One good ticker, one unknown, one erroring: the failures are
	// skipped, not fatal.
	result, err := client.FetchDailyCloses(context.Background(), []string{"GOOD", "GONE", "BAD"}, from, to)
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Len(t, result["GOOD"], 1)
	assert.Equal(t, 100.0, result["GOOD"][0].Close)
}

func TestClient_FetchDailyCloses_ContextCancelled(t *testing.T) {
	client := NewClient(config.PricesConfig{
		BaseURL:        "http://localhost:1",
		RequestsPerSec: 1000,
		RequestTimeout: time.Second,
	}, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchDailyCloses(ctx, []string{"ABC"}, time.Now().AddDate(0, -1, 0), time.Now())
	require.Error(t, err)
}
