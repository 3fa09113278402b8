package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostac/heatseeker/internal/chain"
)

func TestPriceFallbackChain(t *testing.T) {
	// last trade wins
	assert.Equal(t, 2.5, Price(chain.OptionRow{LastPrice: 2.5, Bid: 2.0, Ask: 3.0}))
	// then bid/ask midpoint
	assert.Equal(t, 2.5, Price(chain.OptionRow{Bid: 2.0, Ask: 3.0}))
	// one-sided quotes don't make a midpoint
	assert.Equal(t, 0.0, Price(chain.OptionRow{Bid: 2.0}))
	assert.Equal(t, 0.0, Price(chain.OptionRow{Ask: 3.0}))
	// fully dark row is worth zero, not an error
	assert.Equal(t, 0.0, Price(chain.OptionRow{}))
}

func TestPremiumWorkedExample(t *testing.T) {
	call := chain.OptionRow{LastPrice: 2.5, Volume: 10}
	put := chain.OptionRow{LastPrice: 1.0, Volume: 4}

	assert.Equal(t, 2500.0, Premium(call))
	assert.Equal(t, 400.0, Premium(put))
}

func TestPremiumScalesLinearlyWithVolume(t *testing.T) {
	base := chain.OptionRow{LastPrice: 1.37, Volume: 10}
	triple := chain.OptionRow{LastPrice: 1.37, Volume: 30}

	assert.InDelta(t, 3.0, Premium(triple)/Premium(base), 1e-12)
}

func TestTopOrdersByPremiumDescending(t *testing.T) {
	rows := []chain.OptionRow{
		{Side: chain.Call, Strike: 100, LastPrice: 1.0, Volume: 1},  // 100
		{Side: chain.Put, Strike: 95, LastPrice: 5.0, Volume: 10},   // 5000
		{Side: chain.Call, Strike: 105, LastPrice: 2.0, Volume: 5},  // 1000
	}

	items := Top(rows, 10)
	require.Len(t, items, 3)
	assert.Equal(t, int64(5000), items[0].Premium)
	assert.Equal(t, int64(1000), items[1].Premium)
	assert.Equal(t, int64(100), items[2].Premium)
}

func TestTopExcludesZeroPremium(t *testing.T) {
	rows := []chain.OptionRow{
		{Side: chain.Call, Strike: 100, LastPrice: 0, Bid: 0, Ask: 0, Volume: 50},
		{Side: chain.Call, Strike: 100, LastPrice: 2.0, Volume: 0},
		{Side: chain.Put, Strike: 100, LastPrice: 2.0, Volume: 1},
	}

	items := Top(rows, 10)
	require.Len(t, items, 1)
	assert.Equal(t, chain.Put, items[0].Side)
}

func TestTopHonorsLimit(t *testing.T) {
	var rows []chain.OptionRow
	for i := 1; i <= 20; i++ {
		rows = append(rows, chain.OptionRow{Side: chain.Call, Strike: float64(i), LastPrice: 1, Volume: int64(i)})
	}

	items := Top(rows, 5)
	require.Len(t, items, 5)
	// the five biggest volumes survive
	assert.Equal(t, int64(2000), items[0].Premium)
	assert.Equal(t, int64(1600), items[4].Premium)
}
