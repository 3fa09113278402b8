// Package yahoo implements the MarketProvider interface against Yahoo
// Finance's undocumented v7 options endpoint. Yahoo serves one expiration per
// request, so a chain fetch is the landing page plus one page per additional
// expiration, remapped into the nested CALL/PUT block shape the normalizer
// understands.
package yahoo

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
	// DefaultBaseURL is the options endpoint root; query2 mirrors query1.
	DefaultBaseURL = "https://query2.finance.yahoo.com/v7/finance/options"

	// TrendingURL lists the most active US tickers.
	TrendingURL = "https://query1.finance.yahoo.com/v1/finance/trending/US"

	DefaultTimeout = 15 * time.Second

	// userAgent: Yahoo rejects default Go clients, a browser UA is required.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118 Safari/537.36"
)

// Client fetches option chains from Yahoo Finance.
type Client struct {
	baseURL        string
	maxExpirations int
	httpClient     *http.Client
}

// NewClient creates a Yahoo client fetching at most maxExpirations
// per-expiration pages per chain. Yahoo needs no credentials but each extra
// expiration is an extra round trip, so the cap matters.
func NewClient(maxExpirations int) *Client {
	if maxExpirations < 1 {
		maxExpirations = 1
	}
	return &Client{
		baseURL:        DefaultBaseURL,
		maxExpirations: maxExpirations,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// optionsResponse is the v7 envelope:
// {"optionChain":{"result":[{"expirationDates":[...],"quote":{...},"options":[{"expirationDate":...,"calls":[...],"puts":[...]}]}]}}
type optionsResponse struct {
	OptionChain struct {
		Result []struct {
			ExpirationDates []int64 `json:"expirationDates"`
			Quote           struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PostMarketPrice    float64 `json:"postMarketPrice"`
			} `json:"quote"`
			Options []struct {
				ExpirationDate int64            `json:"expirationDate"`
				Calls          []chain.RawEntry `json:"calls"`
				Puts           []chain.RawEntry `json:"puts"`
			} `json:"options"`
		} `json:"result"`
	} `json:"optionChain"`
}

// GetOptionChain fetches the landing page plus the remaining expirations and
// flattens them into per-expiration blocks. Pages that fail after the first
// are skipped; a partial chain beats no chain.
func (c *Client) GetOptionChain(ctx context.Context, symbol string) ([]chain.RawEntry, error) {
	first, err := c.fetchPage(ctx, symbol, 0)
	if err != nil {
		return nil, err
	}

	entries := blocksFrom(first)
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		seen[e.ExpirationDate] = true
	}

	dates := expirationDates(first)
	if len(dates) > c.maxExpirations {
		dates = dates[:c.maxExpirations]
	}
	for _, epoch := range dates {
		iso := epochToISO(epoch)
		if seen[iso] {
			continue
		}
		page, err := c.fetchPage(ctx, symbol, epoch)
		if err != nil {
			continue
		}
		for _, e := range blocksFrom(page) {
			if !seen[e.ExpirationDate] {
				seen[e.ExpirationDate] = true
				entries = append(entries, e)
			}
		}
	}
	return entries, nil
}

// GetQuote reads the underlying price embedded in the options landing page.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*providers.Quote, error) {
	page, err := c.fetchPage(ctx, symbol, 0)
	if err != nil {
		return nil, err
	}
	if len(page.OptionChain.Result) == 0 {
		return &providers.Quote{Symbol: symbol}, nil
	}
	q := page.OptionChain.Result[0].Quote
	price := q.RegularMarketPrice
	if price == 0 {
		price = q.PostMarketPrice
	}
	return &providers.Quote{Symbol: symbol, Price: price}, nil
}

// Name returns "yahoo".
func (c *Client) Name() string { return "yahoo" }

// Close is a no-op.
func (c *Client) Close() error { return nil }

func (c *Client) fetchPage(ctx context.Context, symbol string, epoch int64) (*optionsResponse, error) {
	reqURL := c.baseURL + "/" + url.PathEscape(symbol)
	if epoch > 0 {
		reqURL += fmt.Sprintf("?date=%d", epoch)
	}
	var resp optionsResponse
	if err := getJSON(ctx, c.httpClient, reqURL, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// blocksFrom converts a page's calls/puts arrays into nested RawEntry blocks
// keyed by ISO date.
func blocksFrom(page *optionsResponse) []chain.RawEntry {
	var entries []chain.RawEntry
	if len(page.OptionChain.Result) == 0 {
		return entries
	}
	for _, opt := range page.OptionChain.Result[0].Options {
		entries = append(entries, chain.RawEntry{
			ExpirationDate: epochToISO(opt.ExpirationDate),
			Options: &chain.RawBuckets{
				Call: opt.Calls,
				Put:  opt.Puts,
			},
		})
	}
	return entries
}

func expirationDates(page *optionsResponse) []int64 {
	if len(page.OptionChain.Result) == 0 {
		return nil
	}
	return page.OptionChain.Result[0].ExpirationDates
}

func epochToISO(epoch int64) string {
	return time.Unix(epoch, 0).UTC().Format("2006-01-02")
}

// TrendingSymbol is one entry from Yahoo's trending list.
type TrendingSymbol struct {
	Symbol string `json:"symbol"`
	Volume int64  `json:"value"`
}

// Trending returns the most active US symbols by market volume. Used by the
// leaderboard pane; best effort, standalone from the chain provider so the
// pane works even when Finnhub serves the chains.
func Trending(ctx context.Context, count int) ([]TrendingSymbol, error) {
	httpClient := &http.Client{Timeout: DefaultTimeout}

	var resp struct {
		Finance struct {
			Result []struct {
				Quotes []struct {
					Symbol string `json:"symbol"`
					Quote  struct {
						RegularMarketVolume int64 `json:"regularMarketVolume"`
					} `json:"quote"`
				} `json:"quotes"`
			} `json:"result"`
		} `json:"finance"`
	}
	if err := getJSON(ctx, httpClient, fmt.Sprintf("%s?count=%d", TrendingURL, count), &resp); err != nil {
		return nil, err
	}

	var top []TrendingSymbol
	if len(resp.Finance.Result) > 0 {
		for _, q := range resp.Finance.Result[0].Quotes {
			if q.Symbol == "" {
				continue
			}
			top = append(top, TrendingSymbol{Symbol: q.Symbol, Volume: q.Quote.RegularMarketVolume})
			if len(top) >= count {
				break
			}
		}
	}
	return top, nil
}

func getJSON(ctx context.Context, httpClient *http.Client, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Referer", "https://finance.yahoo.com/")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return fmt.Errorf("yahoo: HTTP %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
