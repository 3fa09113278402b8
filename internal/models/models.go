package models

import (
	"github.com/ostac/heatseeker/internal/flow"
	"github.com/ostac/heatseeker/internal/grid"
)

// SearchRequest asks for a symbol snapshot: spot price plus available
// expirations. Decoded from query params by gorilla/schema.
type SearchRequest struct {
	Ticker string `schema:"ticker"`
	Symbol string `schema:"symbol"` // accepted alias for ticker
}

// SearchResponse is /api/search output.
type SearchResponse struct {
	Symbol      string   `json:"symbol"`
	Price       float64  `json:"price"`
	Expirations []string `json:"expirations"`
}

// FlowRequest asks for the top-flow leaderboard of one expiration.
type FlowRequest struct {
	Ticker string `schema:"ticker"`
	Symbol string `schema:"symbol"`
	Date   string `schema:"date"`  // ISO; blank = first expiration with data
	Limit  int    `schema:"limit"` // clamped to [1, 200], default 60
}

// FlowResponse is /api/flow output.
type FlowResponse struct {
	Symbol string      `json:"symbol"`
	Date   string      `json:"date"`
	Count  int         `json:"count"`
	Items  []flow.Item `json:"items"`
}

// GridRequest asks for the raw premium grid.
type GridRequest struct {
	Ticker string `schema:"ticker"`
	Symbol string `schema:"symbol"`
	Limit  int    `schema:"limit"` // expiry columns, clamped to [1, 12]
	Rows   int    `schema:"rows"`  // strike rows before decimation, 0 = config default
	Order  string `schema:"order"` // "asc" or "desc" strike axis, default asc
}

// GridResponse is /api/grid output: the Grid plus the symbol it was built
// for.
type GridResponse struct {
	Symbol string `json:"symbol"`
	*grid.Grid
}

// HeatmapRequest asks for the metric-annotated grid.
type HeatmapRequest struct {
	Ticker string  `schema:"ticker"`
	Symbol string  `schema:"symbol"`
	Limit  int     `schema:"limit"`
	Rows   int     `schema:"rows"`
	Metric string  `schema:"metric"` // net_oi | notional | netgex
	IV     float64 `schema:"iv"`     // annualized percent, e.g. 60; 0 = config default
}

// HeatmapResponse extends the grid with the per-cell metric value and heat
// bucket. Buckets index Palette.
type HeatmapResponse struct {
	Symbol       string      `json:"symbol"`
	Metric       string      `json:"metric"`
	Spot         float64     `json:"spot"`
	ImpliedVol   float64     `json:"impliedVol"`
	Expirations  []string    `json:"expirations"`
	Strikes      []float64   `json:"strikes"`
	MetricMatrix [][]float64 `json:"metricMatrix"`
	HeatMatrix   [][]int     `json:"heatMatrix"`
	Palette      []string    `json:"palette"`
}

// TopEntry is one row of the trending leaderboard.
type TopEntry struct {
	Symbol string `json:"symbol"`
	Value  int64  `json:"value"`
}

// TopResponse is /api/top output.
type TopResponse struct {
	Top []TopEntry `json:"top"`
}

// HealthResponse is /api/health output.
type HealthResponse struct {
	OK       bool   `json:"ok"`
	Provider string `json:"source"`
	Time     string `json:"time"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
