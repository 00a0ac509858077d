package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"StockPercentile/internal/model"
	"StockPercentile/internal/strategy"
)

var bandColors = map[model.Band]*color.Color{
	model.BandLow:          color.New(color.FgGreen, color.Bold),
	model.BandBelowMedian:  color.New(color.FgCyan),
	model.BandAboveMedian:  color.New(color.FgYellow),
	model.BandHigh:         color.New(color.FgRed, color.Bold),
	model.BandInsufficient: color.New(color.FgHiBlack),
}

func colorBand(b model.Band) string {
	if c, ok := bandColors[b]; ok {
		return c.Sprint(b)
	}
	return string(b)
}

// WriteTable prints a report as a per-window table followed by the interpretation.
func WriteTable(w io.Writer, r *model.Report) error {
	source := r.Source
	if r.Demo {
		source += " (demo data)"
	}
	fmt.Fprintf(w, "%s  %.2f  %+.2f (%+.2f%%)  source: %s\n\n",
		color.New(color.Bold).Sprint(r.Symbol), r.Quote.Price, r.Quote.Change, r.Quote.ChangePercent, source)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Window", "Percentile", "Band", "Min", "Max", "Avg", "Samples"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, win := range model.Windows {
		res := r.Percentiles[win.Name]
		if res == nil {
			data = append(data, []string{win.Name, "n/a", colorBand(model.BandInsufficient), "-", "-", "-", "0"})
			continue
		}
		band, _ := strategy.BandFor(res.Percentile)
		data = append(data, []string{
			win.Name,
			strconv.FormatFloat(res.Percentile, 'f', 1, 64) + "%",
			colorBand(band),
			fmt.Sprintf("%.2f", res.Min),
			fmt.Sprintf("%.2f", res.Max),
			fmt.Sprintf("%.2f", res.Avg),
			strconv.Itoa(res.SampleCount),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%s %s\n", colorBand(r.Interpretation.Band), r.Interpretation.Message)
	return err
}

// WriteJSON prints a report as indented JSON.
func WriteJSON(w io.Writer, r *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
