package ingest

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  string // empty means nil
	}{
		{"2024-01-02", "2024-01-02"},
		{"2024-01-02T15:04:05Z", "2024-01-02"},
		{"2024-01-02T15:04:05", "2024-01-02"},
		{"01/02/2024", "2024-01-02"},
		{"Jan 2, 2024", "2024-01-02"},
		{"  2024-01-02  ", "2024-01-02"},
		{"--", ""},
		{"", ""},
		{"not a date", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseDate(tt.input)
			if tt.want == "" {
				if got != nil {
					t.Errorf("parseDate(%q) = %v, want nil", tt.input, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("parseDate(%q) = nil, want %s", tt.input, tt.want)
			}
			if s := got.Format("2006-01-02"); s != tt.want {
				t.Errorf("parseDate(%q) = %s, want %s", tt.input, s, tt.want)
			}
			if got.Location() != time.UTC {
				t.Errorf("parseDate(%q) not in UTC", tt.input)
			}
		})
	}
}

func TestNormalizeTransactionType(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"buy", "purchase"},
		{"BUY", "purchase"},
		{"sell", "sale"},
		{"Purchase", "purchase"},
		{"Sale (Full)", "sale"},
		{"sale_partial", "sale"},
		{"Exchange", "exchange"},
		{"  buy  ", "purchase"},
		{"receive", "receive"},
	}

	for _, tt := range tests {
		if got := normalizeTransactionType(tt.input); got != tt.want {
			t.Errorf("normalizeTransactionType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValueToAmountRange(t *testing.T) {
	i64 := func(v int64) *int64 { return &v }

	tests := []struct {
		value *int64
		want  string
	}{
		{nil, "Unknown"},
		{i64(500), "$1 - $1,000"},
		{i64(1000), "$1 - $1,000"},
		{i64(1001), "$1,001 - $15,000"},
		{i64(15000), "$1,001 - $15,000"},
		{i64(50000), "$15,001 - $50,000"},
		{i64(100000), "$50,001 - $100,000"},
		{i64(250000), "$100,001 - $250,000"},
		{i64(500000), "$250,001 - $500,000"},
		{i64(1000000), "$500,001 - $1,000,000"},
		{i64(5000000), "$1,000,001 - $5,000,000"},
		{i64(5000001), "$5,000,001+"},
	}

	for _, tt := range tests {
		if got := valueToAmountRange(tt.value); got != tt.want {
			t.Errorf("valueToAmountRange(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestNormalizeOwner(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"self", "Self"},
		{"SPOUSE", "Spouse"},
		{"joint", "Joint"},
		{"child", "Dependent Child"},
		{"dependent", "Dependent Child"},
		{"", ""},
		{"undisclosed person", "Undisclosed Person"},
	}

	for _, tt := range tests {
		if got := normalizeOwner(tt.input); got != tt.want {
			t.Errorf("normalizeOwner(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCleanTicker(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"AAPL:US", "AAPL"},
		{"aapl", "AAPL"},
		{"BRK.B:US", "BRK.B"},
		{"--", ""},
		{"N/A", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := cleanTicker(tt.input); got != tt.want {
			t.Errorf("cleanTicker(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMemberName(t *testing.T) {
	tests := []struct {
		first, last, want string
	}{
		{"Jane", "Doe", "Jane Doe"},
		{"", "Doe", "Doe"},
		{"Jane", "", "Jane"},
		{"", "", ""},
	}

	for _, tt := range tests {
		if got := memberName(tt.first, tt.last); got != tt.want {
			t.Errorf("memberName(%q, %q) = %q, want %q", tt.first, tt.last, got, tt.want)
		}
	}
}
