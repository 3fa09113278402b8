package providers

import (
	"context"

	"github.com/ostac/heatseeker/internal/chain"
)

// Quote is a spot-price snapshot for the underlying. Only the heatmap's net
// GEX metric consumes it; a zero price degrades that metric to zero rather
// than failing the request.
type Quote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// MarketProvider is the interface every upstream market-data source
// implements. Providers return the raw chain entries untouched; shape
// normalization is the chain package's job, so the rest of the service never
// sees provider-specific JSON.
type MarketProvider interface {
	// GetOptionChain fetches the full option chain for a symbol.
	GetOptionChain(ctx context.Context, symbol string) ([]chain.RawEntry, error)

	// GetQuote fetches the current spot price for the underlying.
	GetQuote(ctx context.Context, symbol string) (*Quote, error)

	// Name returns the provider name (e.g. "finnhub", "yahoo").
	Name() string

	// Close cleans up any resources.
	Close() error
}
