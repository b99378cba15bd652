package contracts

import "time"

// Transaction types as stored in the trades table.
const (
	TxPurchase = "purchase"
	TxSale     = "sale"
	TxExchange = "exchange"
)

// Chambers of Congress.
const (
	ChamberHouse  = "house"
	ChamberSenate = "senate"
)

// Member represents a member of Congress. Identity is (Name, Chamber);
// party, state and district are descriptive and may be empty.
type Member struct {
	ID       int64
	Name     string
	Chamber  string
	Party    string
	State    string
	District string
}

// Trade is a single disclosed transaction. Trades are immutable facts;
// re-ingesting the same disclosure must not create a second row.
type Trade struct {
	ID               int64
	MemberID         int64
	TransactionDate  time.Time
	DisclosureDate   *time.Time
	Ticker           string // empty when the asset has no listed ticker
	AssetDescription string
	AssetType        string
	TransactionType  string
	AmountRange      string
	Owner            string
	Comment          string
	SourceURL        string
}

// Analyzable reports whether the trade can enter the return pipeline:
// it needs a resolvable ticker and must be a purchase or a sale.
func (t *Trade) Analyzable() bool {
	if t.Ticker == "" {
		return false
	}
	return t.TransactionType == TxPurchase || t.TransactionType == TxSale
}

// AnalyzableTrade is a trade joined with member identity, as consumed
// by the return calculator.
type AnalyzableTrade struct {
	TradeID         int64
	MemberID        int64
	MemberName      string
	Chamber         string
	Party           string
	Ticker          string
	TransactionDate time.Time
	TransactionType string
	AmountRange     string
}

// TradeWithMember is a trade row joined with member columns for display
// surfaces (recent/search queries).
type TradeWithMember struct {
	Trade
	MemberName string
	Chamber    string
	Party      string
	State      string
}

// TradeCounts summarizes the trade ledger.
type TradeCounts struct {
	TotalTrades    int `json:"total_trades"`
	TotalMembers   int `json:"total_members"`
	TradesLastWeek int `json:"trades_last_week"`
	TradesToday    int `json:"trades_today"`
}

// PricePoint is one cached daily close for a ticker.
// Points are immutable once cached; the cache only ever grows.
type PricePoint struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
}

// TradeReturn holds the computed returns for a single trade.
// At most one record exists per trade. The 30-day fields are kept once
// resolved; the current fields are overwritten on every analysis run.
type TradeReturn struct {
	TradeID           int64
	EntryDate         time.Time
	EntryPrice        float64
	Return30D         *float64
	Return30DDate     *time.Time
	ReturnCurrent     *float64
	ReturnCurrentDate *time.Time
}

// MemberReturn is a trade return joined with member identity, the input
// row shape for the Sharpe aggregator.
type MemberReturn struct {
	TradeID         int64
	MemberID        int64
	MemberName      string
	Chamber         string
	Party           string
	Ticker          string
	TransactionType string
	Return30D       *float64
	ReturnCurrent   *float64
}

// HorizonStats holds the aggregate statistics for one return horizon.
// All fields are nil when the member has fewer than two observations;
// Sharpe is additionally nil when the standard deviation is zero.
type HorizonStats struct {
	Sharpe      *float64
	Mean        *float64
	Std         *float64
	WinRate     *float64
	TotalReturn *float64
}

// SharpeSnapshot is one dated row of per-member statistics. The JSON
// field names are a stable interface consumed by the display layer.
type SharpeSnapshot struct {
	ID                 int64      `json:"id"`
	MemberID           int64      `json:"member_id"`
	MemberName         string     `json:"member_name,omitempty"`
	Chamber            string     `json:"chamber,omitempty"`
	Party              string     `json:"party,omitempty"`
	SnapshotDate       time.Time  `json:"snapshot_date"`
	Sharpe30D          *float64   `json:"sharpe_30d"`
	SharpeCurrent      *float64   `json:"sharpe_current"`
	NumTrades          int        `json:"num_trades"`
	MeanReturn30D      *float64   `json:"mean_return_30d"`
	StdReturn30D       *float64   `json:"std_return_30d"`
	MeanReturnCurrent  *float64   `json:"mean_return_current"`
	StdReturnCurrent   *float64   `json:"std_return_current"`
	WinRate30D         *float64   `json:"win_rate_30d"`
	WinRateCurrent     *float64   `json:"win_rate_current"`
	TotalReturn30D     *float64   `json:"total_return_30d"`
	TotalReturnCurrent *float64   `json:"total_return_current"`
	CreatedAt          *time.Time `json:"created_at,omitempty"`
}

// RunSummary is the result of one full analysis run.
type RunSummary struct {
	TradesAnalyzed  int       `json:"trades_analyzed"`
	MembersAnalyzed int       `json:"members_analyzed"`
	SnapshotDate    time.Time `json:"snapshot_date"`
}

// SyncRecord tracks one ingestion run in the sync log.
type SyncRecord struct {
	ID          int64
	SyncType    string
	StartedAt   time.Time
	CompletedAt *time.Time
	TradesAdded int
	Status      string
}

// Sync log statuses.
const (
	SyncRunning   = "running"
	SyncCompleted = "completed"
	SyncFailed    = "failed"
)
