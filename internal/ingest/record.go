package ingest

import "time"

// Record is a normalized disclosure from any provider, before database
// identity resolution.
type Record struct {
	MemberName string
	Chamber    string
	Party      string
	State      string
	District   string

	TransactionDate  time.Time
	DisclosureDate   *time.Time
	Ticker           string
	AssetDescription string
	AssetType        string
	TransactionType  string
	AmountRange      string
	Owner            string
	Comment          string
	SourceURL        string
}
