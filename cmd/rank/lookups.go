package main

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"StockPercentile/internal/recorder"
)

var lookupLimit int

var lookupsCmd = &cobra.Command{
	Use:   "lookups",
	Short: "Show recently recorded lookups from the SQLite history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			return err
		}
		defer rec.Close()

		lookups, err := rec.RecentLookups(lookupLimit)
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.Header([]string{"Time", "Symbol", "Price", "1y", "3y", "5y", "Band", "Source"})
		var data [][]string
		for _, l := range lookups {
			src := l.Source
			if l.Demo {
				src += "*"
			}
			data = append(data, []string{
				l.Timestamp.Local().Format("2006-01-02 15:04"),
				l.Symbol,
				strconv.FormatFloat(l.Price, 'f', 2, 64),
				formatOptional(l.Percentile1Y),
				formatOptional(l.Percentile3Y),
				formatOptional(l.Percentile5Y),
				l.Band,
				src,
			})
		}
		if len(data) > 0 {
			if err := table.Bulk(data); err != nil {
				return err
			}
		}
		return table.Render()
	},
}

func formatOptional(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *p)
}

func init() {
	lookupsCmd.Flags().IntVarP(&lookupLimit, "limit", "n", 20, "number of lookups to show")
	rootCmd.AddCommand(lookupsCmd)
}
