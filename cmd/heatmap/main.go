// Command heatmap prints the strike x expiration heatmap for one ticker as a
// terminal table, running the same pipeline as the server minus HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ostac/heatseeker/internal/chain"
	"github.com/ostac/heatseeker/internal/config"
	"github.com/ostac/heatseeker/internal/grid"
	"github.com/ostac/heatseeker/internal/heat"
	"github.com/ostac/heatseeker/internal/logger"
	"github.com/ostac/heatseeker/internal/metric"
	"github.com/ostac/heatseeker/internal/providers"
	"github.com/ostac/heatseeker/internal/providers/finnhub"
	"github.com/ostac/heatseeker/internal/providers/yahoo"
)

// shade maps heat buckets onto a glyph ramp, dark to bright.
var shade = [heat.Buckets]string{" ", ".", ":", "-", "=", "+", "*", "#", "%", "@"}

var rootCmd = &cobra.Command{
	Use:   "heatmap --ticker AAPL --expiries 4 --metric net_oi",
	Short: "Fetch an option chain and print the net-flow heatmap",
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker, _ := cmd.Flags().GetString("ticker")
		expiries, _ := cmd.Flags().GetInt("expiries")
		rows, _ := cmd.Flags().GetInt("rows")
		metricName, _ := cmd.Flags().GetString("metric")
		iv, _ := cmd.Flags().GetFloat64("iv")

		kind, err := metric.ParseKind(metricName)
		if err != nil {
			return err
		}

		cfg := config.Load()
		if err := cfg.Validate(); err != nil {
			return err
		}
		provider, err := newProvider(cfg)
		if err != nil {
			return err
		}
		market := providers.NewManager(provider)
		defer market.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		entries, err := market.GetOptionChain(ctx, ticker)
		if err != nil {
			return err
		}
		optionRows := chain.Normalize(entries)

		g := grid.Aggregate(optionRows, expiries, grid.Options{
			StrikeLimit: rows,
			Descending:  true, // high strike on top, like the web table
		})
		if g.Empty() {
			return fmt.Errorf("%s: %w", ticker, grid.ErrNoData)
		}

		spot := 0.0
		if kind == metric.NetGEX {
			if quote, err := market.GetQuote(ctx, ticker); err == nil {
				spot = quote.Price
			} else {
				logger.Warnf("quote unavailable, net GEX will be zero: %v", err)
			}
		}
		if iv <= 0 {
			iv = cfg.Grid.DefaultIV * 100
		}

		printTable(g, kind, spot, iv/100)
		return nil
	},
}

func printTable(g *grid.Grid, kind metric.Kind, spot, iv float64) {
	now := time.Now()
	values := make([][]float64, len(g.Strikes))
	for ri, strike := range g.Strikes {
		values[ri] = make([]float64, len(g.Expirations))
		for ci, exp := range g.Expirations {
			ctx := metric.Context{Spot: spot, ImpliedVol: iv, TimeToExpiryYears: metric.YearsUntil(exp, now)}
			values[ri][ci] = metric.Value(kind, g.CallMatrix[ri][ci], g.PutMatrix[ri][ci], strike, ctx)
		}
	}
	maxAbs := heat.WindowMax(values)

	table := tablewriter.NewWriter(os.Stdout)
	header := append([]string{"Strike"}, g.Expirations...)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetBorder(false)

	for ri, strike := range g.Strikes {
		row := []string{strconv.FormatFloat(strike, 'f', -1, 64)}
		for ci := range g.Expirations {
			v := values[ri][ci]
			row = append(row, fmt.Sprintf("%s %.0f", shade[heat.Bucket(v, maxAbs)], v))
		}
		table.Append(row)
	}
	table.Render()
}

func newProvider(cfg *config.Config) (providers.MarketProvider, error) {
	switch cfg.Provider.Source {
	case "yahoo":
		return yahoo.NewClient(cfg.Provider.YahooMaxExpirations), nil
	default:
		return finnhub.NewClient(cfg.Provider.FinnhubAPIKey)
	}
}

func main() {
	rootCmd.Flags().String("ticker", "AAPL", "underlying symbol")
	rootCmd.Flags().Int("expiries", 4, "number of expiration columns")
	rootCmd.Flags().Int("rows", 20, "maximum strike rows")
	rootCmd.Flags().String("metric", string(metric.NetOI), "cell metric: net_oi, notional, or netgex")
	rootCmd.Flags().Float64("iv", 0, "annualized implied volatility in percent for netgex (0 = config default)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
