// Package handlers is the HTTP layer: decode query params, call the core
// packages, encode JSON. No aggregation logic lives here.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/schema"

	"github.com/ostac/heatseeker/internal/chain"
	"github.com/ostac/heatseeker/internal/config"
	"github.com/ostac/heatseeker/internal/flow"
	"github.com/ostac/heatseeker/internal/grid"
	"github.com/ostac/heatseeker/internal/heat"
	"github.com/ostac/heatseeker/internal/logger"
	"github.com/ostac/heatseeker/internal/metric"
	"github.com/ostac/heatseeker/internal/models"
	"github.com/ostac/heatseeker/internal/providers"
	"github.com/ostac/heatseeker/internal/providers/yahoo"
)

// OptionsHandler serves the options-flow API. It is a dumb HTTP layer: every
// request is fetch, normalize, aggregate, encode, with no state between calls.
type OptionsHandler struct {
	market  *providers.Manager
	cfg     *config.Config
	decoder *schema.Decoder
	now     func() time.Time
}

// NewOptionsHandler creates the handler around a provider manager.
func NewOptionsHandler(market *providers.Manager, cfg *config.Config) *OptionsHandler {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return &OptionsHandler{
		market:  market,
		cfg:     cfg,
		decoder: decoder,
		now:     time.Now,
	}
}

// HealthHandler reports liveness and which upstream serves the chains.
func (h *OptionsHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		OK:       true,
		Provider: h.market.Name(),
		Time:     h.now().UTC().Format(time.RFC3339),
	})
}

// SearchHandler returns the spot price and the available expirations for a
// ticker: GET /api/search?ticker=AAPL
func (h *OptionsHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := h.decoder.Decode(&req, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, "bad query: "+err.Error())
		return
	}
	symbol := tickerOf(req.Ticker, req.Symbol)
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "ticker required")
		return
	}

	entries, err := h.market.GetOptionChain(r.Context(), symbol)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	rows := chain.Normalize(entries)

	// Quote failures degrade to price 0; expirations are the useful part.
	price := 0.0
	if quote, err := h.market.GetQuote(r.Context(), symbol); err == nil {
		price = quote.Price
	} else {
		logger.Warnf("quote unavailable for %s: %v", symbol, err)
	}

	writeJSON(w, http.StatusOK, models.SearchResponse{
		Symbol:      symbol,
		Price:       price,
		Expirations: chain.Expirations(rows),
	})
}

// FlowHandler returns the top-premium contracts for one expiration:
// GET /api/flow?ticker=AAPL&date=2025-01-17&limit=60
func (h *OptionsHandler) FlowHandler(w http.ResponseWriter, r *http.Request) {
	var req models.FlowRequest
	if err := h.decoder.Decode(&req, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, "bad query: "+err.Error())
		return
	}
	symbol := tickerOf(req.Ticker, req.Symbol)
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "ticker required")
		return
	}
	limit := clamp(req.Limit, 1, 200, h.cfg.FlowLimit)

	entries, err := h.market.GetOptionChain(r.Context(), symbol)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	rows := chain.Normalize(entries)

	date, dayRows := pickExpiration(rows, strings.TrimSpace(req.Date))
	if date == "" {
		// No usable expiration: empty but well-formed, per the degrade-to-zero
		// policy.
		writeJSON(w, http.StatusOK, models.FlowResponse{Symbol: symbol, Items: []flow.Item{}})
		return
	}

	items := flow.Top(dayRows, limit)
	writeJSON(w, http.StatusOK, models.FlowResponse{
		Symbol: symbol,
		Date:   date,
		Count:  len(items),
		Items:  items,
	})
}

// GridHandler returns the strike x expiration premium matrices:
// GET /api/grid?ticker=AAPL&limit=6&rows=40&order=desc
func (h *OptionsHandler) GridHandler(w http.ResponseWriter, r *http.Request) {
	var req models.GridRequest
	if err := h.decoder.Decode(&req, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, "bad query: "+err.Error())
		return
	}
	symbol := tickerOf(req.Ticker, req.Symbol)
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "ticker required")
		return
	}

	entries, err := h.market.GetOptionChain(r.Context(), symbol)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	rows := chain.Normalize(entries)

	g := grid.Aggregate(rows,
		clamp(req.Limit, 1, 12, h.cfg.Grid.ExpirationLimit),
		grid.Options{
			StrikeLimit: clamp(req.Rows, 1, 200, h.cfg.Grid.StrikeRowCap),
			Descending:  strings.EqualFold(req.Order, "desc"),
		})

	writeJSON(w, http.StatusOK, models.GridResponse{Symbol: symbol, Grid: g})
}

// HeatmapHandler returns the grid annotated with a selectable metric and heat
// buckets: GET /api/heatmap?ticker=AAPL&metric=netgex&iv=60
func (h *OptionsHandler) HeatmapHandler(w http.ResponseWriter, r *http.Request) {
	var req models.HeatmapRequest
	if err := h.decoder.Decode(&req, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, "bad query: "+err.Error())
		return
	}
	symbol := tickerOf(req.Ticker, req.Symbol)
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "ticker required")
		return
	}
	kind, err := metric.ParseKind(req.Metric)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.market.GetOptionChain(r.Context(), symbol)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	rows := chain.Normalize(entries)

	g := grid.Aggregate(rows,
		clamp(req.Limit, 1, 12, h.cfg.Grid.ExpirationLimit),
		grid.Options{StrikeLimit: clamp(req.Rows, 1, 200, h.cfg.Grid.StrikeRowCap)})

	// Spot is only needed for the gamma term; without a quote net GEX reads
	// zero everywhere, which is the documented degradation.
	spot := 0.0
	if kind == metric.NetGEX {
		if quote, err := h.market.GetQuote(r.Context(), symbol); err == nil {
			spot = quote.Price
		} else {
			logger.Warnf("quote unavailable for %s, net GEX will be zero: %v", symbol, err)
		}
	}

	iv := req.IV / 100
	if iv <= 0 {
		iv = h.cfg.Grid.DefaultIV
	}

	metricMatrix := make([][]float64, len(g.Strikes))
	now := h.now()
	for ri, strike := range g.Strikes {
		metricMatrix[ri] = make([]float64, len(g.Expirations))
		for ci, exp := range g.Expirations {
			ctx := metric.Context{
				Spot:              spot,
				ImpliedVol:        iv,
				TimeToExpiryYears: metric.YearsUntil(exp, now),
			}
			metricMatrix[ri][ci] = metric.Value(kind, g.CallMatrix[ri][ci], g.PutMatrix[ri][ci], strike, ctx)
		}
	}

	writeJSON(w, http.StatusOK, models.HeatmapResponse{
		Symbol:       symbol,
		Metric:       string(kind),
		Spot:         spot,
		ImpliedVol:   iv,
		Expirations:  g.Expirations,
		Strikes:      g.Strikes,
		MetricMatrix: metricMatrix,
		HeatMatrix:   heat.BucketMatrix(metricMatrix),
		Palette:      heat.Palette[:],
	})
}

// TopHandler returns the trending-by-volume leaderboard:
// GET /api/top
func (h *OptionsHandler) TopHandler(w http.ResponseWriter, r *http.Request) {
	trending, err := yahoo.Trending(r.Context(), 10)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	resp := models.TopResponse{Top: []models.TopEntry{}}
	for _, t := range trending {
		resp.Top = append(resp.Top, models.TopEntry{Symbol: t.Symbol, Value: t.Volume})
	}
	writeJSON(w, http.StatusOK, resp)
}

// pickExpiration selects which expiration the flow view shows: the exact
// requested date if it has rows, else the first date at or after it with
// rows, else the earliest date with rows at all.
func pickExpiration(rows []chain.OptionRow, date string) (string, []chain.OptionRow) {
	byDate := make(map[string][]chain.OptionRow)
	for _, r := range rows {
		byDate[r.ExpirationDate] = append(byDate[r.ExpirationDate], r)
	}
	if len(byDate[date]) > 0 {
		return date, byDate[date]
	}
	for _, d := range chain.Expirations(rows) {
		if date != "" && d < date {
			continue
		}
		if len(byDate[d]) > 0 {
			return d, byDate[d]
		}
	}
	// Requested date is past every expiration; fall back to the earliest.
	for _, d := range chain.Expirations(rows) {
		if len(byDate[d]) > 0 {
			return d, byDate[d]
		}
	}
	return "", nil
}

func tickerOf(ticker, symbol string) string {
	t := strings.TrimSpace(ticker)
	if t == "" {
		t = strings.TrimSpace(symbol)
	}
	return strings.ToUpper(t)
}

// clamp bounds v to [min, max], substituting fallback when v is unset.
func clamp(v, min, max, fallback int) int {
	if v == 0 {
		v = fallback
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Errorf("encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}

// writeUpstreamError maps provider failures to 502: the request was fine, the
// data source wasn't.
func writeUpstreamError(w http.ResponseWriter, err error) {
	logger.Errorf("upstream failure: %v", err)
	writeError(w, http.StatusBadGateway, err.Error())
}
