// Package grid aggregates normalized option rows into the strike x expiration
// premium matrices behind every heatmap view.
package grid

import (
	"errors"
	"math"
	"sort"

	"github.com/ostac/heatseeker/internal/chain"
	"github.com/ostac/heatseeker/internal/flow"
)

// ErrNoData is the only error the aggregation layer ever surfaces: the chain
// held zero usable rows. Aggregate itself never returns it (an empty input
// yields an empty but valid Grid); it exists for callers that must report
// "nothing to show" instead of rendering an empty table.
var ErrNoData = errors.New("option chain contains no usable rows")

// Grid is the aggregated output. Matrices are dense and strike-major:
// Matrix[r][c] is the summed premium at Strikes[r] for Expirations[c].
// Cells with no contracts hold zero, and NetMatrix is exactly
// CallMatrix - PutMatrix everywhere.
type Grid struct {
	Expirations []string    `json:"expirations"`
	Strikes     []float64   `json:"strikes"`
	CallMatrix  [][]float64 `json:"callMatrix"`
	PutMatrix   [][]float64 `json:"putMatrix"`
	NetMatrix   [][]float64 `json:"netMatrix"`
}

// Options tunes the axes. The strike sort direction is deliberately a caller
// decision: aggregation views read ascending, dense display tables want the
// high strike on top.
type Options struct {
	// StrikeLimit caps the strike axis. When exceeded the sorted axis is
	// decimated by uniform stride (keep every ceil(n/limit)-th strike), which
	// keeps the axis deterministic and evenly covering the observed range.
	StrikeLimit int
	// Descending sorts the strike axis high-to-low.
	Descending bool
}

// Aggregate groups rows by (expiration, strike), sums call and put premium
// separately, and lays the sums out as dense matrices. Expirations are the
// first expirationLimit unique dates in ascending ISO order; the strike axis
// is the union of strikes observed within those expirations.
func Aggregate(rows []chain.OptionRow, expirationLimit int, opts Options) *Grid {
	if expirationLimit < 1 {
		expirationLimit = 1
	}

	exps := chain.Expirations(rows)
	if len(exps) > expirationLimit {
		exps = exps[:expirationLimit]
	}
	expIndex := make(map[string]int, len(exps))
	for i, e := range exps {
		expIndex[e] = i
	}

	type cell struct{ call, put float64 }
	sums := make(map[string]map[float64]*cell)
	strikeSet := make(map[float64]bool)

	for _, r := range rows {
		if _, ok := expIndex[r.ExpirationDate]; !ok {
			continue
		}
		byStrike := sums[r.ExpirationDate]
		if byStrike == nil {
			byStrike = make(map[float64]*cell)
			sums[r.ExpirationDate] = byStrike
		}
		c := byStrike[r.Strike]
		if c == nil {
			c = &cell{}
			byStrike[r.Strike] = c
		}
		prem := flow.Premium(r)
		if r.Side == chain.Call {
			c.call += prem
		} else {
			c.put += prem
		}
		strikeSet[r.Strike] = true
	}

	strikes := make([]float64, 0, len(strikeSet))
	for k := range strikeSet {
		strikes = append(strikes, k)
	}
	sort.Float64s(strikes)
	strikes = decimate(strikes, opts.StrikeLimit)
	if opts.Descending {
		reverse(strikes)
	}

	g := &Grid{
		Expirations: exps,
		Strikes:     strikes,
		CallMatrix:  make([][]float64, len(strikes)),
		PutMatrix:   make([][]float64, len(strikes)),
		NetMatrix:   make([][]float64, len(strikes)),
	}
	for r, k := range strikes {
		g.CallMatrix[r] = make([]float64, len(exps))
		g.PutMatrix[r] = make([]float64, len(exps))
		g.NetMatrix[r] = make([]float64, len(exps))
		for c, exp := range exps {
			if cel := sums[exp][k]; cel != nil {
				call := math.Round(cel.call)
				put := math.Round(cel.put)
				g.CallMatrix[r][c] = call
				g.PutMatrix[r][c] = put
				g.NetMatrix[r][c] = call - put
			}
		}
	}
	return g
}

// Empty reports whether the grid has no axes at all.
func (g *Grid) Empty() bool {
	return len(g.Strikes) == 0 || len(g.Expirations) == 0
}

// decimate applies uniform stride sampling so the axis still spans the full
// observed strike range after capping.
func decimate(strikes []float64, limit int) []float64 {
	if limit <= 0 || len(strikes) <= limit {
		return strikes
	}
	step := (len(strikes) + limit - 1) / limit
	kept := make([]float64, 0, limit)
	for i := 0; i < len(strikes); i += step {
		kept = append(kept, strikes[i])
	}
	return kept
}

func reverse(xs []float64) {
	for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
		xs[i], xs[j] = xs[j], xs[i]
	}
}
