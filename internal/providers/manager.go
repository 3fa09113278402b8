package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/ostac/heatseeker/internal/chain"
	"github.com/ostac/heatseeker/internal/logger"
)

// SlowRequestThreshold is how long an upstream call may take before the
// manager logs it as slow. Free-tier feeds routinely crawl.
const SlowRequestThreshold = 5 * time.Second

// Manager wraps a MarketProvider with timing logs and uniform error
// wrapping. Handlers talk to the manager, never to a provider directly.
type Manager struct {
	provider MarketProvider
}

// NewManager creates a new provider manager.
func NewManager(provider MarketProvider) *Manager {
	return &Manager{provider: provider}
}

// GetOptionChain fetches the raw chain, logging slow upstream calls.
func (m *Manager) GetOptionChain(ctx context.Context, symbol string) ([]chain.RawEntry, error) {
	start := time.Now()
	entries, err := m.provider.GetOptionChain(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("provider %s: option chain for %s: %w", m.provider.Name(), symbol, err)
	}
	if elapsed := time.Since(start); elapsed > SlowRequestThreshold {
		logger.Warnf("slow request: %s option chain for %s took %v", m.provider.Name(), symbol, elapsed)
	}
	logger.Debugf("%s: %d chain entries for %s", m.provider.Name(), len(entries), symbol)
	return entries, nil
}

// GetQuote fetches the spot price. Callers that can degrade (grid, heatmap)
// should treat an error here as spot=0, not as a failed request.
func (m *Manager) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	start := time.Now()
	quote, err := m.provider.GetQuote(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("provider %s: quote for %s: %w", m.provider.Name(), symbol, err)
	}
	if elapsed := time.Since(start); elapsed > SlowRequestThreshold {
		logger.Warnf("slow request: %s quote for %s took %v", m.provider.Name(), symbol, elapsed)
	}
	return quote, nil
}

// Name returns the wrapped provider's name.
func (m *Manager) Name() string { return m.provider.Name() }

// Close cleans up the provider.
func (m *Manager) Close() error { return m.provider.Close() }
