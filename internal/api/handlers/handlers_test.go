package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenn/capitolwatch/internal/analysis"
	"github.com/wrenn/capitolwatch/internal/contracts"
	"github.com/wrenn/capitolwatch/pkg/config"
	"github.com/wrenn/capitolwatch/pkg/logger"
)

func fptr(v float64) *float64 { return &v }

// fakeTrades serves fixed trade lists and counts repository calls.
type fakeTrades struct {
	rows  []*contracts.TradeWithMember
	calls int
}

func (f *fakeTrades) Insert(context.Context, *contracts.Trade) (int64, bool, error) {
	return 0, false, nil
}

func (f *fakeTrades) ListForAnalysis(context.Context) ([]*contracts.AnalyzableTrade, error) {
	return nil, nil
}

func (f *fakeTrades) Recent(context.Context, int, int) ([]*contracts.TradeWithMember, error) {
	f.calls++
	return f.rows, nil
}

func (f *fakeTrades) ByTicker(_ context.Context, ticker string, _ int) ([]*contracts.TradeWithMember, error) {
	f.calls++
	var out []*contracts.TradeWithMember
	for _, t := range f.rows {
		if t.Ticker == ticker {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTrades) ByMember(context.Context, string, int) ([]*contracts.TradeWithMember, error) {
	f.calls++
	return f.rows, nil
}

func (f *fakeTrades) Counts(context.Context) (*contracts.TradeCounts, error) {
	return &contracts.TradeCounts{}, nil
}

// fakeReturns is an empty return repository.
type fakeReturns struct{}

func (fakeReturns) Upsert(context.Context, *contracts.TradeReturn) error { return nil }
func (fakeReturns) Get(context.Context, int64) (*contracts.TradeReturn, error) {
	return nil, nil
}
func (fakeReturns) ListJoined(context.Context) ([]*contracts.MemberReturn, error) {
	return nil, nil
}

// fakeMembers serves one fixed member.
type fakeMembers struct {
	member *contracts.Member
}

func (f *fakeMembers) GetOrCreate(context.Context, *contracts.Member) (int64, error) { return 0, nil }

func (f *fakeMembers) ByName(_ context.Context, name string) (*contracts.Member, error) {
	if f.member != nil && f.member.Name == name {
		return f.member, nil
	}
	return nil, nil
}

func (f *fakeMembers) SearchByName(context.Context, string) (*contracts.Member, error) {
	return f.member, nil
}

// fakeSnapshots serves a fixed cross-section and counts calls.
type fakeSnapshots struct {
	latest []*contracts.SharpeSnapshot
	calls  int
}

func (f *fakeSnapshots) Upsert(context.Context, *contracts.SharpeSnapshot) error { return nil }

func (f *fakeSnapshots) HistoryByMember(context.Context, int64, int) ([]*contracts.SharpeSnapshot, error) {
	return f.latest, nil
}

func (f *fakeSnapshots) LatestAll(context.Context) ([]*contracts.SharpeSnapshot, error) {
	f.calls++
	return f.latest, nil
}

type noopProvider struct{}

func (noopProvider) EnsureSeries(context.Context, []string, time.Time, time.Time) (map[string][]contracts.PricePoint, error) {
	return nil, nil
}

func newRankingService(members *fakeMembers, snapshots *fakeSnapshots) *analysis.Service {
	return analysis.NewService(
		&fakeTrades{}, fakeReturns{}, members, snapshots, noopProvider{},
		config.AnalysisConfig{RiskFreeAnnual: 0.045, TradingDaysPerYear: 252, HorizonDays: 30},
		logger.NewNop(),
	)
}

func TestRankingHandler_GetRankings_Memoized(t *testing.T) {
	snapshots := &fakeSnapshots{latest: []*contracts.SharpeSnapshot{
		{MemberID: 1, MemberName: "Member A", Sharpe30D: fptr(1.2), NumTrades: 4},
		{MemberID: 2, MemberName: "Member B", NumTrades: 1},
	}}
	h := NewRankingHandler(newRankingService(&fakeMembers{}, snapshots), logger.NewNop())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/rankings", nil)
		rec := httptest.NewRecorder()
		h.GetRankings(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Count    int               `json:"count"`
			Rankings []json.RawMessage `json:"rankings"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 2, body.Count)
		require.Len(t, body.Rankings, 2)

		// Stable field names with explicit nulls for missing stats.
		var first map[string]interface{}
		require.NoError(t, json.Unmarshal(body.Rankings[0], &first))
		assert.Contains(t, first, "sharpe_30d")
		assert.Contains(t, first, "win_rate_30d")
		assert.Contains(t, first, "num_trades")
		assert.Contains(t, first, "snapshot_date")
	}

	// Only the first request hits the repository.
	assert.Equal(t, 1, snapshots.calls)
}

func TestRankingHandler_GetMemberHistory(t *testing.T) {
	members := &fakeMembers{member: &contracts.Member{ID: 7, Name: "Jane Doe", Chamber: "house"}}
	snapshots := &fakeSnapshots{latest: []*contracts.SharpeSnapshot{
		{MemberID: 7, NumTrades: 3, Sharpe30D: fptr(0.9)},
	}}
	h := NewRankingHandler(newRankingService(members, snapshots), logger.NewNop())

	router := mux.NewRouter()
	router.HandleFunc("/api/members/{name}/sharpe", h.GetMemberHistory).Methods("GET")

	req := httptest.NewRequest(http.MethodGet, "/api/members/Jane%20Doe/sharpe", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Member struct {
			Name string `json:"name"`
		} `json:"member"`
		History []json.RawMessage `json:"history"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Jane Doe", body.Member.Name)
	assert.Len(t, body.History, 1)
}

func TestRankingHandler_GetMemberHistory_NotFound(t *testing.T) {
	h := NewRankingHandler(newRankingService(&fakeMembers{}, &fakeSnapshots{}), logger.NewNop())

	router := mux.NewRouter()
	router.HandleFunc("/api/members/{name}/sharpe", h.GetMemberHistory).Methods("GET")

	req := httptest.NewRequest(http.MethodGet, "/api/members/nobody/sharpe", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTradeHandler_GetRecent(t *testing.T) {
	now := time.Now()
	trades := &fakeTrades{rows: []*contracts.TradeWithMember{
		{
			Trade: contracts.Trade{
				ID: 1, TransactionDate: now, Ticker: "ABC",
				TransactionType: "purchase", AmountRange: "$1,001 - $15,000",
			},
			MemberName: "Jane Doe", Chamber: "house",
		},
	}}
	h := NewTradeHandler(trades, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/trades/recent?days=3", nil)
	rec := httptest.NewRecorder()
	h.GetRecent(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count  int `json:"count"`
		Trades []struct {
			MemberName string `json:"member_name"`
			Ticker     string `json:"ticker"`
		} `json:"trades"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Trades, 1)
	assert.Equal(t, "Jane Doe", body.Trades[0].MemberName)
	assert.Equal(t, "ABC", body.Trades[0].Ticker)
}

func TestTradeHandler_Search(t *testing.T) {
	trades := &fakeTrades{rows: []*contracts.TradeWithMember{
		{
			Trade:      contracts.Trade{ID: 1, TransactionDate: time.Now(), Ticker: "ABC"},
			MemberName: "Jane Doe",
		},
	}}
	h := NewTradeHandler(trades, logger.NewNop())

	// Missing both parameters.
	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/trades", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Both parameters.
	rec = httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/trades?ticker=ABC&member=x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// By ticker.
	rec = httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/trades?ticker=ABC", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
}
