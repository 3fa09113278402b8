package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostac/heatseeker/internal/chain"
	"github.com/ostac/heatseeker/internal/config"
	"github.com/ostac/heatseeker/internal/models"
	"github.com/ostac/heatseeker/internal/providers"
)

// stubProvider serves a canned chain and quote so handler tests never touch
// the network.
type stubProvider struct {
	entries  []chain.RawEntry
	quote    *providers.Quote
	chainErr error
	quoteErr error
}

func (s *stubProvider) GetOptionChain(ctx context.Context, symbol string) ([]chain.RawEntry, error) {
	return s.entries, s.chainErr
}

func (s *stubProvider) GetQuote(ctx context.Context, symbol string) (*providers.Quote, error) {
	return s.quote, s.quoteErr
}

func (s *stubProvider) Name() string { return "stub" }
func (s *stubProvider) Close() error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Port: "8080",
		Grid: config.GridConfig{
			ExpirationLimit: 6,
			StrikeRowCap:    80,
			DefaultIV:       0.60,
		},
		FlowLimit: 60,
	}
}

func newTestHandler(stub *stubProvider) *OptionsHandler {
	h := NewOptionsHandler(providers.NewManager(stub), testConfig())
	h.now = func() time.Time {
		return time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)
	}
	return h
}

func flatEntry(exp string, strike float64, typ string, last float64, vol float64) chain.RawEntry {
	return chain.RawEntry{ExpirationDate: exp, Strike: strike, Type: typ, LastPrice: last, Volume: vol}
}

func sampleChain() []chain.RawEntry {
	return []chain.RawEntry{
		flatEntry("2025-01-17", 100, "CALL", 2.5, 10), // 2500
		flatEntry("2025-01-17", 100, "PUT", 1.0, 4),   // 400
		flatEntry("2025-02-21", 105, "CALL", 3.0, 2),  // 600
	}
}

func doGET(t *testing.T, handler http.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestHealthHandler(t *testing.T) {
	h := newTestHandler(&stubProvider{})

	rec := doGET(t, h.HealthHandler, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.HealthResponse
	decodeBody(t, rec, &resp)
	assert.True(t, resp.OK)
	assert.Equal(t, "stub", resp.Provider)
	assert.Equal(t, "2025-01-02T12:00:00Z", resp.Time)
}

func TestSearchHandler(t *testing.T) {
	h := newTestHandler(&stubProvider{
		entries: sampleChain(),
		quote:   &providers.Quote{Symbol: "AAPL", Price: 101.5},
	})

	rec := doGET(t, h.SearchHandler, "/api/search?ticker=aapl")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.SearchResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "AAPL", resp.Symbol)
	assert.Equal(t, 101.5, resp.Price)
	assert.Equal(t, []string{"2025-01-17", "2025-02-21"}, resp.Expirations)
}

func TestSearchHandlerQuoteFailureDegrades(t *testing.T) {
	h := newTestHandler(&stubProvider{
		entries:  sampleChain(),
		quoteErr: errors.New("rate limited"),
	})

	rec := doGET(t, h.SearchHandler, "/api/search?ticker=AAPL")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.SearchResponse
	decodeBody(t, rec, &resp)
	assert.Zero(t, resp.Price)
	assert.Len(t, resp.Expirations, 2)
}

func TestSearchHandlerMissingTicker(t *testing.T) {
	h := newTestHandler(&stubProvider{})

	rec := doGET(t, h.SearchHandler, "/api/search")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchHandlerUpstreamFailure(t *testing.T) {
	h := newTestHandler(&stubProvider{chainErr: errors.New("boom")})

	rec := doGET(t, h.SearchHandler, "/api/search?ticker=AAPL")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var resp models.ErrorResponse
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp.Error, "boom")
}

func TestFlowHandlerExactDate(t *testing.T) {
	h := newTestHandler(&stubProvider{entries: sampleChain()})

	rec := doGET(t, h.FlowHandler, "/api/flow?ticker=AAPL&date=2025-01-17")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.FlowResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "2025-01-17", resp.Date)
	require.Equal(t, 2, resp.Count)
	// sorted by premium descending
	assert.Equal(t, int64(2500), resp.Items[0].Premium)
	assert.Equal(t, int64(400), resp.Items[1].Premium)
}

func TestFlowHandlerDateRollsForward(t *testing.T) {
	h := newTestHandler(&stubProvider{entries: sampleChain()})

	// no contracts expire on the 18th; the next date with rows is Feb 21
	rec := doGET(t, h.FlowHandler, "/api/flow?ticker=AAPL&date=2025-01-18")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.FlowResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "2025-02-21", resp.Date)
	assert.Equal(t, 1, resp.Count)
}

func TestFlowHandlerDatePastEverything(t *testing.T) {
	h := newTestHandler(&stubProvider{entries: sampleChain()})

	rec := doGET(t, h.FlowHandler, "/api/flow?ticker=AAPL&date=2031-01-01")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.FlowResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "2025-01-17", resp.Date)
}

func TestFlowHandlerEmptyChain(t *testing.T) {
	h := newTestHandler(&stubProvider{})

	rec := doGET(t, h.FlowHandler, "/api/flow?ticker=AAPL")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.FlowResponse
	decodeBody(t, rec, &resp)
	assert.Empty(t, resp.Items)
	assert.Empty(t, resp.Date)
}

func TestGridHandler(t *testing.T) {
	h := newTestHandler(&stubProvider{entries: sampleChain()})

	rec := doGET(t, h.GridHandler, "/api/grid?ticker=AAPL&order=desc")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.GridResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "AAPL", resp.Symbol)
	assert.Equal(t, []string{"2025-01-17", "2025-02-21"}, resp.Expirations)
	assert.Equal(t, []float64{105, 100}, resp.Strikes)
	// strike 100, Jan column: 2500 call vs 400 put
	assert.Equal(t, 2500.0, resp.CallMatrix[1][0])
	assert.Equal(t, 400.0, resp.PutMatrix[1][0])
	assert.Equal(t, 2100.0, resp.NetMatrix[1][0])
}

func TestGridHandlerClampsLimit(t *testing.T) {
	h := newTestHandler(&stubProvider{entries: sampleChain()})

	rec := doGET(t, h.GridHandler, "/api/grid?ticker=AAPL&limit=500")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.GridResponse
	decodeBody(t, rec, &resp)
	// limit is capped at 12, well above the two dates in the sample
	assert.Len(t, resp.Expirations, 2)
}

func TestGridHandlerMissingTicker(t *testing.T) {
	h := newTestHandler(&stubProvider{})

	rec := doGET(t, h.GridHandler, "/api/grid")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHeatmapHandlerDefaultMetric(t *testing.T) {
	h := newTestHandler(&stubProvider{entries: sampleChain()})

	rec := doGET(t, h.HeatmapHandler, "/api/heatmap?ticker=AAPL")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.HeatmapResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "net_oi", resp.Metric)
	assert.Equal(t, 0.60, resp.ImpliedVol)
	require.Len(t, resp.MetricMatrix, 2)
	// net_oi is just the net premium
	assert.Equal(t, 2100.0, resp.MetricMatrix[0][0])
	assert.Len(t, resp.HeatMatrix, 2)
	assert.Len(t, resp.Palette, 10)
	// the largest positive cell lands in the hottest bucket
	assert.Equal(t, 9, resp.HeatMatrix[0][0])
}

func TestHeatmapHandlerNetGEXWithoutQuote(t *testing.T) {
	h := newTestHandler(&stubProvider{
		entries:  sampleChain(),
		quoteErr: errors.New("no quote"),
	})

	rec := doGET(t, h.HeatmapHandler, "/api/heatmap?ticker=AAPL&metric=netgex")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.HeatmapResponse
	decodeBody(t, rec, &resp)
	assert.Zero(t, resp.Spot)
	for _, row := range resp.MetricMatrix {
		for _, v := range row {
			assert.Zero(t, v)
		}
	}
}

func TestHeatmapHandlerNetGEX(t *testing.T) {
	h := newTestHandler(&stubProvider{
		entries: sampleChain(),
		quote:   &providers.Quote{Symbol: "AAPL", Price: 100},
	})

	rec := doGET(t, h.HeatmapHandler, "/api/heatmap?ticker=AAPL&metric=netgex&iv=50")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.HeatmapResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, 100.0, resp.Spot)
	assert.Equal(t, 0.50, resp.ImpliedVol)
	// net premium at (100, Jan) is positive, so gamma exposure is too
	assert.Greater(t, resp.MetricMatrix[0][0], 0.0)
}

func TestHeatmapHandlerUnknownMetric(t *testing.T) {
	h := newTestHandler(&stubProvider{entries: sampleChain()})

	rec := doGET(t, h.HeatmapHandler, "/api/heatmap?ticker=AAPL&metric=vega")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTickerOf(t *testing.T) {
	assert.Equal(t, "AAPL", tickerOf(" aapl ", ""))
	assert.Equal(t, "TSLA", tickerOf("", "tsla"))
	assert.Equal(t, "SPY", tickerOf("spy", "tsla"))
	assert.Equal(t, "", tickerOf("", ""))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 60, clamp(0, 1, 200, 60))
	assert.Equal(t, 1, clamp(-5, 1, 200, 60))
	assert.Equal(t, 200, clamp(999, 1, 200, 60))
	assert.Equal(t, 42, clamp(42, 1, 200, 60))
}
