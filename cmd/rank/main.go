package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"StockPercentile/internal/config"
	"StockPercentile/internal/model"
	"StockPercentile/internal/output"
)

var (
	cfgPath string
	source  string
	price   float64
	asJSON  bool
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "rank SYMBOL [SYMBOL...]",
	Short: "Rank the current price of a stock against its 1y, 3y and 5y history",
	Long: `Rank looks up the latest quote and daily closing history for each symbol
and reports the percentile of the current price within the most recent
252, 756 and 1260 trading days, with the min, max and average of each window.

Without an API key the demo source produces synthetic data.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRank,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "configs/config.yaml", "path to config file")
	rootCmd.Flags().StringVarP(&source, "source", "s", "", "price source: demo, yahoo, alphavantage or alpaca (overrides config)")
	rootCmd.Flags().Float64VarP(&price, "price", "p", 0, "rank this price instead of the latest quote")
	rootCmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "timeout per symbol")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath, config.WithProvider(source))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	col, err := cfg.NewCollector()
	if err != nil {
		return err
	}

	overridePrice := cmd.Flags().Changed("price")
	failed := 0
	for i, symbol := range args {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		var report *model.Report
		if overridePrice {
			report, err = col.CollectAt(ctx, symbol, price)
		} else {
			report, err = col.Collect(ctx, symbol)
		}
		cancel()
		if err != nil {
			log.Printf("[ERROR] %s: %v", symbol, err)
			failed++
			continue
		}

		out := cmd.OutOrStdout()
		if asJSON {
			err = output.WriteJSON(out, report)
		} else {
			if i > 0 {
				fmt.Fprintln(out)
			}
			err = output.WriteTable(out, report)
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", report.Symbol, err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d lookups failed", failed, len(args))
	}
	return nil
}

func main() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Printf("[FATAL] %v", err)
		stop()
		os.Exit(1)
	}
}
