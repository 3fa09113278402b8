// Package flow estimates the dollar premium traded per contract row and
// builds the "top flow" leaderboard for one expiration.
package flow

import (
	"math"
	"sort"

	"github.com/ostac/heatseeker/internal/chain"
)

// Price picks a usable contract price: last trade if present, otherwise the
// bid/ask midpoint when both sides are quoted, otherwise zero.
func Price(row chain.OptionRow) float64 {
	if row.LastPrice > 0 {
		return row.LastPrice
	}
	if row.Bid > 0 && row.Ask > 0 {
		return (row.Bid + row.Ask) / 2
	}
	return 0
}

// Premium is the estimated dollar notional traded for the row:
// price x volume x 100 shares per contract. Kept at full float precision;
// rounding happens once at the response edge, never during accumulation.
func Premium(row chain.OptionRow) float64 {
	return Price(row) * float64(row.Volume) * 100
}

// Item is one leaderboard entry. Premium is rounded to whole dollars for
// display.
type Item struct {
	Side         chain.Side `json:"side"`
	Strike       float64    `json:"strike"`
	Volume       int64      `json:"volume"`
	OpenInterest int64      `json:"oi"`
	Bid          float64    `json:"bid"`
	Ask          float64    `json:"ask"`
	Last         float64    `json:"last"`
	IV           float64    `json:"iv"`
	Premium      int64      `json:"premium"`
}

// Top ranks rows by premium descending and keeps the first limit entries.
// Rows whose premium works out to zero carry no signal and are excluded.
func Top(rows []chain.OptionRow, limit int) []Item {
	items := make([]Item, 0, len(rows))
	for _, r := range rows {
		prem := Premium(r)
		if prem <= 0 {
			continue
		}
		items = append(items, Item{
			Side:         r.Side,
			Strike:       r.Strike,
			Volume:       r.Volume,
			OpenInterest: r.OpenInterest,
			Bid:          r.Bid,
			Ask:          r.Ask,
			Last:         r.LastPrice,
			IV:           r.ImpliedVolatility,
			Premium:      int64(math.Round(prem)),
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Premium > items[j].Premium
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
