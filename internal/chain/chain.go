// Package chain defines the canonical option row and normalizes the raw
// provider payloads into it. Everything downstream (flow, grid, metric)
// operates on OptionRow only.
package chain

import (
	"sort"
	"strings"
)

// Side identifies which half of the chain a contract belongs to.
type Side string

const (
	Call Side = "CALL"
	Put  Side = "PUT"
)

// OptionRow is one observed contract quote. Prices and sizes may be zero:
// free-tier feeds are frequently incomplete and a zero row simply contributes
// zero premium downstream.
type OptionRow struct {
	ExpirationDate    string  `json:"expirationDate"` // ISO YYYY-MM-DD
	Strike            float64 `json:"strike"`
	Side              Side    `json:"side"`
	LastPrice         float64 `json:"lastPrice"`
	Bid               float64 `json:"bid"`
	Ask               float64 `json:"ask"`
	Volume            int64   `json:"volume"`
	OpenInterest      int64   `json:"openInterest"`
	ImpliedVolatility float64 `json:"impliedVolatility"`
}

// RawBuckets is the nested per-expiration shape: contracts partitioned into
// CALL/PUT arrays, the side implied by the bucket.
type RawBuckets struct {
	Call []RawEntry `json:"CALL"`
	Put  []RawEntry `json:"PUT"`
}

// RawEntry is one element of a provider chain payload. Two shapes share this
// struct: a flat row carrying its own expirationDate and type, or a
// per-expiration block whose Options field holds CALL/PUT buckets. Options
// being non-nil is the tag that selects the nested interpretation.
type RawEntry struct {
	ExpirationDate    string      `json:"expirationDate,omitempty"`
	Strike            float64     `json:"strike,omitempty"`
	StrikePrice       float64     `json:"strikePrice,omitempty"` // alias seen in flat Finnhub rows
	Type              string      `json:"type,omitempty"`
	LastPrice         float64     `json:"lastPrice,omitempty"`
	Bid               float64     `json:"bid,omitempty"`
	Ask               float64     `json:"ask,omitempty"`
	Volume            float64     `json:"volume,omitempty"`
	OpenInterest      float64     `json:"openInterest,omitempty"`
	ImpliedVolatility float64     `json:"impliedVolatility,omitempty"`
	Options           *RawBuckets `json:"options,omitempty"`
}

// Normalize flattens a raw chain payload into canonical rows. Rows without a
// strike, an expiration date, or a resolvable side are dropped silently;
// malformed upstream data must never abort a request.
func Normalize(entries []RawEntry) []OptionRow {
	var rows []OptionRow
	for _, e := range entries {
		if e.Options != nil {
			appendBucket(&rows, e.Options.Call, Call, e.ExpirationDate)
			appendBucket(&rows, e.Options.Put, Put, e.ExpirationDate)
			continue
		}
		if row, ok := normalizeOne(e, "", e.ExpirationDate); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

func appendBucket(rows *[]OptionRow, bucket []RawEntry, side Side, blockExp string) {
	for _, e := range bucket {
		if row, ok := normalizeOne(e, side, blockExp); ok {
			*rows = append(*rows, row)
		}
	}
}

// normalizeOne maps one raw record to the canonical row. The row's own
// expiration and type win over context from the enclosing block.
func normalizeOne(e RawEntry, fallbackSide Side, fallbackExp string) (OptionRow, bool) {
	exp := e.ExpirationDate
	if exp == "" {
		exp = fallbackExp
	}

	strike := e.Strike
	if strike == 0 {
		strike = e.StrikePrice
	}

	side := parseSide(e.Type)
	if side == "" {
		side = fallbackSide
	}

	if exp == "" || strike <= 0 || side == "" {
		return OptionRow{}, false
	}

	return OptionRow{
		ExpirationDate:    exp,
		Strike:            strike,
		Side:              side,
		LastPrice:         e.LastPrice,
		Bid:               e.Bid,
		Ask:               e.Ask,
		Volume:            int64(e.Volume),
		OpenInterest:      int64(e.OpenInterest),
		ImpliedVolatility: e.ImpliedVolatility,
	}, true
}

func parseSide(s string) Side {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CALL", "C":
		return Call
	case "PUT", "P":
		return Put
	}
	return ""
}

// Expirations returns the unique expiration dates present in rows, sorted
// ascending. ISO dates sort correctly as strings.
func Expirations(rows []OptionRow) []string {
	seen := make(map[string]bool)
	var dates []string
	for _, r := range rows {
		if !seen[r.ExpirationDate] {
			seen[r.ExpirationDate] = true
			dates = append(dates, r.ExpirationDate)
		}
	}
	sort.Strings(dates)
	return dates
}
