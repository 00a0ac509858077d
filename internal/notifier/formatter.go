package notifier

import (
	"fmt"
	"html"
	"maps"
	"slices"
	"strings"
	"time"

	"StockPercentile/internal/model"
)

// HelpText lists the bot commands.
const HelpText = `<b>StockPercentile</b>
/rank SYMBOL - percentile of the current price over 1y/3y/5y
/watchlist - refresh every symbol on the watchlist
/add SYMBOL - add a symbol to the watchlist
/remove SYMBOL - remove a symbol from the watchlist
/help - this message`

var bandIcons = map[model.Band]string{
	model.BandLow:          "🟢",
	model.BandBelowMedian:  "🟡",
	model.BandAboveMedian:  "🟠",
	model.BandHigh:         "🔴",
	model.BandInsufficient: "⚪",
}

// FormatPercentile renders one window value, or "n/a" when absent.
func FormatPercentile(res *model.PercentileResult) string {
	if res == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", res.Percentile)
}

// FormatReport formats a single lookup into a Telegram message.
func FormatReport(r *model.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s <b>%s</b> | %s\n", bandIcons[r.Interpretation.Band], html.EscapeString(r.Symbol), r.GeneratedAt.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Price: %.2f (%+.2f, %+.2f%%)\n", r.Quote.Price, r.Quote.Change, r.Quote.ChangePercent))
	if r.Demo {
		b.WriteString("<i>demo data</i>\n")
	}
	b.WriteString("\n")

	for _, w := range model.Windows {
		res := r.Percentiles[w.Name]
		if res == nil {
			b.WriteString(fmt.Sprintf("  %s: n/a\n", w.Name))
			continue
		}
		b.WriteString(fmt.Sprintf("  %s: %s (min %.2f / avg %.2f / max %.2f, n=%d)\n",
			w.Name, FormatPercentile(res), res.Min, res.Avg, res.Max, res.SampleCount))
	}

	b.WriteString(fmt.Sprintf("\n%s\n", html.EscapeString(r.Interpretation.Message)))
	return b.String()
}

// FormatDigest formats a watchlist refresh. changed maps symbol to its band
// before the refresh; failed maps symbol to error text.
func FormatDigest(reports []*model.Report, changed map[string]model.Band, failed map[string]string, at time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Watchlist</b> | %s\n\n", at.Format("2006-01-02 15:04")))

	for _, r := range reports {
		b.WriteString(fmt.Sprintf("%s <b>%s</b> %.2f  1y %s | 3y %s | 5y %s",
			bandIcons[r.Interpretation.Band], html.EscapeString(r.Symbol), r.Quote.Price,
			FormatPercentile(r.Percentiles[model.Window1Y]),
			FormatPercentile(r.Percentiles[model.Window3Y]),
			FormatPercentile(r.Percentiles[model.Window5Y])))
		if r.Interpretation.Divergent {
			b.WriteString(" ⚠️")
		}
		if prev, ok := changed[r.Symbol]; ok {
			b.WriteString(fmt.Sprintf(" (%s → %s)", prev, r.Interpretation.Band))
		}
		b.WriteString("\n")
	}

	if len(failed) > 0 {
		b.WriteString("\n❌ <b>Failed:</b>\n")
		for _, sym := range slices.Sorted(maps.Keys(failed)) {
			b.WriteString(fmt.Sprintf("  %s: %s\n", html.EscapeString(sym), html.EscapeString(failed[sym])))
		}
	}
	if len(reports) == 0 && len(failed) == 0 {
		b.WriteString("Watchlist is empty.\n")
	}
	return b.String()
}
