package notifier

import (
	"errors"
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"AssetCompare/internal/model"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const na = "N/A"

// Percent renders a decimal ratio as a percentage with two decimals.
func Percent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return na
	}
	return decimal.NewFromFloat(v).Shift(2).StringFixed(2) + " %"
}

// Ratio renders a plain number with two decimals.
func Ratio(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return na
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

func pe(v *float64) string {
	if v == nil {
		return na
	}
	return Ratio(*v)
}

// Price renders an amount in its currency, e.g. "$1,234.50".
func Price(v float64, currency string) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return na
	}
	// GBp and other minor units are not ISO codes and keep their suffix
	if currency != strings.ToUpper(currency) || money.GetCurrency(currency) == nil {
		return fmt.Sprintf("%s %s", decimal.NewFromFloat(v).StringFixed(2), currency)
	}
	return money.NewFromFloat(v, currency).Display()
}

// Period renders the analysis window like the dashboard header.
func Period(start, end time.Time) string {
	return fmt.Sprintf("Period | %s - %s", start.Format("02/01/2006"), end.Format("02/01/2006"))
}

// FormatReport renders a comparison as Markdown for terminal display.
func FormatReport(res *model.ComparisonResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# %s vs %s\n\n", res.A.Name, res.B.Name))
	b.WriteString(Period(res.Start, res.End) + fmt.Sprintf(" | %s prices\n\n", res.Field))

	b.WriteString("| Asset | Business days | Return | Risk | Dividend yield | P/E | Sharpe | Correlation |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, row := range []struct {
		s model.AssetSeries
		m model.AssetMetrics
	}{{res.A, res.MetricsA}, {res.B, res.MetricsB}} {
		b.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s | %s | %s | %s |\n",
			row.s.Name, row.m.BusinessDays, Percent(row.m.GeometricReturn), Percent(row.m.StdDev),
			Percent(row.m.DividendYield), pe(row.s.TrailingPE), Ratio(row.m.Sharpe), Ratio(res.Correlation)))
	}
	b.WriteString("\n")

	b.WriteString("## Range\n\n")
	for _, row := range []struct {
		s model.AssetSeries
		m model.AssetMetrics
	}{{res.A, res.MetricsA}, {res.B, res.MetricsB}} {
		b.WriteString(fmt.Sprintf("- %s (%s): low %s, high %s, last at %s of range\n",
			row.s.Name, row.s.Symbol, Price(row.m.Low, row.s.Currency), Price(row.m.High, row.s.Currency), Percent(row.m.Position)))
	}
	b.WriteString("\n")

	switch {
	case res.Fx == nil:
	case res.Fx.Symbol == "":
		b.WriteString(fmt.Sprintf("> %s prices rescaled from %s to %s.\n\n", res.B.Name, res.Fx.From, res.Fx.To))
	default:
		b.WriteString(fmt.Sprintf("> %s prices converted from %s to %s with %s (%d quotes).\n\n",
			res.B.Name, res.Fx.From, res.Fx.To, res.Fx.Symbol, len(res.Fx.Rates)))
	}

	b.WriteString(fmt.Sprintf("## Prices (%s)\n\n", res.A.Currency))
	writeTable(&b, res.Prices, 10, func(v float64) string { return Price(v, res.A.Currency) })

	b.WriteString("## Returns (%)\n\n")
	writeTable(&b, res.Returns, 10, func(v float64) string { return Ratio(v) })

	b.WriteString("## Risk vs return (%)\n\n")
	b.WriteString("| Asset | Risk | Return |\n|---|---:|---:|\n")
	for _, rr := range res.RiskReturn() {
		b.WriteString(fmt.Sprintf("| %s | %s | %s |\n", rr.Name, Ratio(rr.Risk), Ratio(rr.Return)))
	}
	return b.String()
}

// writeTable writes the last n rows of t.
func writeTable(b *strings.Builder, t model.Table, n int, cell func(float64) string) {
	b.WriteString("| Date |")
	for _, c := range t.Columns {
		b.WriteString(" " + c + " |")
	}
	b.WriteString("\n|---|")
	for range t.Columns {
		b.WriteString("---:|")
	}
	b.WriteString("\n")
	rows := t.Rows
	if len(rows) > n {
		rows = rows[len(rows)-n:]
	}
	for _, r := range rows {
		b.WriteString("| " + r.Date.Format(time.DateOnly) + " |")
		for _, v := range r.Values {
			b.WriteString(" " + cell(v) + " |")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// FormatMessage formats a comparison as a Telegram HTML message.
func FormatMessage(res *model.ComparisonResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>%s vs %s</b>\n%s\n\n", html.EscapeString(res.A.Name), html.EscapeString(res.B.Name), Period(res.Start, res.End)))
	for _, row := range []struct {
		s model.AssetSeries
		m model.AssetMetrics
	}{{res.A, res.MetricsA}, {res.B, res.MetricsB}} {
		b.WriteString(fmt.Sprintf("<b>%s</b> (%d days)\n", html.EscapeString(row.s.Name), row.m.BusinessDays))
		b.WriteString(fmt.Sprintf("  Return: %s | Risk: %s\n", Percent(row.m.GeometricReturn), Percent(row.m.StdDev)))
		b.WriteString(fmt.Sprintf("  Dividend yield: %s | P/E: %s | Sharpe: %s\n",
			Percent(row.m.DividendYield), pe(row.s.TrailingPE), Ratio(row.m.Sharpe)))
	}
	b.WriteString(fmt.Sprintf("\n🔗 Correlation: %s\n", Ratio(res.Correlation)))
	if res.Fx != nil {
		b.WriteString(fmt.Sprintf("💱 %s converted %s→%s\n", html.EscapeString(res.B.Name), res.Fx.From, res.Fx.To))
	}
	return b.String()
}

// FormatError turns a pipeline error into a short user-facing message.
func FormatError(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidRange):
		return "❌ The start date must be before the end date."
	case errors.Is(err, model.ErrUnknownTicker):
		return fmt.Sprintf("❌ Unknown ticker: %v", err)
	case errors.Is(err, model.ErrDataFetch):
		return fmt.Sprintf("❌ No price data for the selected period: %v", err)
	case errors.Is(err, model.ErrFxUnavailable):
		return fmt.Sprintf("❌ Exchange rates unavailable, assets cannot be compared: %v", err)
	case errors.Is(err, model.ErrInsufficientData):
		return fmt.Sprintf("❌ Not enough observations: %v", err)
	default:
		return fmt.Sprintf("❌ Analysis failed: %v", err)
	}
}
