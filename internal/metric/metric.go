// Package metric computes the per-cell value displayed in the heatmap:
// raw net flow, strike-weighted notional, or a Black-Scholes net gamma
// exposure proxy.
package metric

import (
	"fmt"
	"math"
	"strings"
	"time"

	gaussian "github.com/chobie/go-gaussian"
)

// Kind selects the cell metric.
type Kind string

const (
	// NetOI is the plain side-net of the aggregated cell values
	// (call minus put). The name follows the original UI label; the unit is
	// whatever the grid was aggregated over, premium dollars here.
	NetOI    Kind = "net_oi"
	Notional Kind = "notional"
	NetGEX   Kind = "netgex"
)

// ParseKind maps a query-string value onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case NetOI, "":
		return NetOI, nil
	case Notional:
		return Notional, nil
	case NetGEX:
		return NetGEX, nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Context carries the market inputs NetGEX needs. A zero Context is valid and
// simply drives the gamma term to zero.
type Context struct {
	Spot              float64
	ImpliedVol        float64 // annualized, e.g. 0.60
	TimeToExpiryYears float64
}

var stdNormal = gaussian.NewGaussian(0, 1)

// Gamma is the Black-Scholes gamma phi(d1) / (S sigma sqrt(T)). Degenerate
// inputs (any of S, K, T, sigma non-positive) return 0 rather than NaN so a
// missing quote or IV degrades the metric to zero instead of failing the
// request.
func Gamma(spot, strike, years, sigma float64) float64 {
	if spot <= 0 || strike <= 0 || years <= 0 || sigma <= 0 {
		return 0
	}
	rt := sigma * math.Sqrt(years)
	d1 := (math.Log(spot/strike) + 0.5*sigma*sigma*years) / rt
	return stdNormal.Pdf(d1) / (spot * rt)
}

// Value evaluates the metric for one (call, put, strike) cell.
func Value(kind Kind, call, put, strike float64, ctx Context) float64 {
	net := call - put
	switch kind {
	case Notional:
		return net * strike * 100
	case NetGEX:
		g := Gamma(ctx.Spot, strike, ctx.TimeToExpiryYears, ctx.ImpliedVol)
		return 100 * ctx.Spot * ctx.Spot * g * net
	default:
		return net
	}
}

// YearsUntil converts an ISO expiration date to the time-to-expiry in years,
// flooring at one day so same-day expiries don't blow up the d1 denominator.
func YearsUntil(expiration string, now time.Time) float64 {
	exp, err := time.Parse("2006-01-02", expiration)
	if err != nil {
		return 1.0 / 365
	}
	days := exp.Sub(now).Hours() / 24
	if days < 1 {
		days = 1
	}
	return days / 365
}
