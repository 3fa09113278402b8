// Package finnhub implements the MarketProvider interface against the
// Finnhub REST API. The free tier serves the whole chain in one call as
// per-expiration CALL/PUT buckets.
package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ostac/heatseeker/internal/chain"
	"github.com/ostac/heatseeker/internal/providers"
)

const (
	// DefaultBaseURL is the Finnhub v1 REST root.
	DefaultBaseURL = "https://finnhub.io/api/v1"

	// DefaultTimeout matches the upstream fetch budget; Finnhub chains for
	// liquid tickers run to several MB on a slow free-tier lane.
	DefaultTimeout = 15 * time.Second
)

// Client talks to Finnhub. Credentials live here and nowhere else.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a Finnhub client. The token is required; failing here at
// construction beats a 401 on the first user request.
func NewClient(token string) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("finnhub: API token is required")
	}
	return &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}, nil
}

// chainResponse is Finnhub's /stock/option-chain envelope:
// {"code":"AAPL","data":[{"expirationDate":"2025-01-17","options":{"CALL":[...],"PUT":[...]}}]}
type chainResponse struct {
	Code string           `json:"code"`
	Data []chain.RawEntry `json:"data"`
}

// quoteResponse is Finnhub's /quote payload; c is current price, pc previous
// close.
type quoteResponse struct {
	Current       float64 `json:"c"`
	PreviousClose float64 `json:"pc"`
}

// GetOptionChain fetches the full chain for one symbol.
func (c *Client) GetOptionChain(ctx context.Context, symbol string) ([]chain.RawEntry, error) {
	var resp chainResponse
	if err := c.getJSON(ctx, "/stock/option-chain", url.Values{"symbol": {symbol}}, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetQuote fetches the underlying spot, falling back to the previous close
// when the live price is absent (weekends, free-tier gaps).
func (c *Client) GetQuote(ctx context.Context, symbol string) (*providers.Quote, error) {
	var resp quoteResponse
	if err := c.getJSON(ctx, "/quote", url.Values{"symbol": {symbol}}, &resp); err != nil {
		return nil, err
	}
	price := resp.Current
	if price == 0 {
		price = resp.PreviousClose
	}
	return &providers.Quote{Symbol: symbol, Price: price}, nil
}

// Name returns "finnhub".
func (c *Client) Name() string { return "finnhub" }

// Close is a no-op; the client holds no persistent connections.
func (c *Client) Close() error { return nil }

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	params.Set("token", c.token)
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return fmt.Errorf("finnhub %s: HTTP %d: %s", path, resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
