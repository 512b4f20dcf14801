// Package render turns upstream market data into markdown for MCP clients.
// Every formatter is total: nil means the exchange supplied nothing and
// renders as "N/A", never as zero and never as a panic.
package render

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"tickerscope/internal/domain"
)

const notAvailable = "N/A"

// Price formats a nullable price in USD-style notation. Precision widens as
// the magnitude shrinks so sub-cent assets stay readable.
func Price(v *float64) string {
	if v == nil {
		return notAvailable
	}
	abs := math.Abs(*v)
	switch {
	case abs >= 1000:
		return "$" + groupThousands(fmt.Sprintf("%.2f", *v))
	case abs >= 1:
		return fmt.Sprintf("$%.2f", *v)
	case abs >= 0.01:
		return fmt.Sprintf("$%.4f", *v)
	case abs == 0:
		return "$0.00"
	default:
		return fmt.Sprintf("$%.8f", *v)
	}
}

// Quantity formats a nullable volume-like number compactly (K/M/B suffixes).
func Quantity(v *float64) string {
	if v == nil {
		return notAvailable
	}
	abs := math.Abs(*v)
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", *v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", *v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.2fK", *v/1e3)
	default:
		return fmt.Sprintf("%.2f", *v)
	}
}

// Percent formats a nullable percentage with an explicit sign.
func Percent(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return fmt.Sprintf("%+.2f%%", *v)
}

// Direction returns a trend marker for a nullable percent change.
func Direction(v *float64) string {
	switch {
	case v == nil:
		return "•"
	case *v > 0:
		return "📈"
	case *v < 0:
		return "📉"
	default:
		return "•"
	}
}

// Timestamp formats epoch milliseconds as UTC RFC 3339.
func Timestamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// Ticker renders a single ticker as a markdown block.
func Ticker(t *domain.Ticker) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s on %s\n\n", t.Symbol, t.Exchange)
	fmt.Fprintf(&b, "%s **Last:** %s\n", Direction(t.ChangePercent), Price(t.Last))
	fmt.Fprintf(&b, "- **Bid:** %s / **Ask:** %s\n", Price(t.Bid), Price(t.Ask))
	fmt.Fprintf(&b, "- **24h Range:** %s – %s (open %s)\n", Price(t.Low), Price(t.High), Price(t.Open))
	fmt.Fprintf(&b, "- **Change:** %s (%s)\n", Price(t.Change), Percent(t.ChangePercent))
	fmt.Fprintf(&b, "- **Volume:** %s base / %s quote\n", Quantity(t.Volume), Quantity(t.QuoteVolume))
	if t.Timestamp != "" {
		fmt.Fprintf(&b, "- **As of:** %s\n", t.Timestamp)
	}
	return b.String()
}

// TickerTable renders a list of tickers as a markdown table.
func TickerTable(tickers []domain.Ticker, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Tickers (%d of %d)\n\n", len(tickers), total)
	b.WriteString("| Symbol | Exchange | Last | Change | Volume |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, t := range tickers {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			t.Symbol, t.Exchange, Price(t.Last), Percent(t.ChangePercent), Quantity(t.Volume))
	}
	return b.String()
}

// maxHistoryRows caps the candle table; older candles are summarized only.
const maxHistoryRows = 10

// History renders an OHLCV response: a summary line plus the most recent
// candles (at most maxHistoryRows) in a table, newest last.
func History(resp *domain.OHLCVResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s history for %s on %s\n\n", resp.Interval, resp.Symbol, resp.Exchange)
	fmt.Fprintf(&b, "%d candles", resp.Count)
	if len(resp.Candles) > 0 {
		first := resp.Candles[0]
		last := resp.Candles[len(resp.Candles)-1]
		fmt.Fprintf(&b, " from %s to %s", Timestamp(first.Timestamp), Timestamp(last.Timestamp))
	}
	b.WriteString("\n\n")

	candles := resp.Candles
	if len(candles) > maxHistoryRows {
		fmt.Fprintf(&b, "Showing the %d most recent:\n\n", maxHistoryRows)
		candles = candles[len(candles)-maxHistoryRows:]
	}

	b.WriteString("| Time | Open | High | Low | Close | Volume |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, c := range candles {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			Timestamp(c.Timestamp),
			Price(domain.Float(c.Open)), Price(domain.Float(c.High)),
			Price(domain.Float(c.Low)), Price(domain.Float(c.Close)),
			Quantity(domain.Float(c.Volume)))
	}
	return b.String()
}

// Exchanges renders the exchange list with a status icon per entry.
func Exchanges(exchanges []domain.Exchange) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Supported Exchanges (%d)\n\n", len(exchanges))
	for _, ex := range exchanges {
		icon := "⚠️"
		if strings.EqualFold(ex.Status, "operational") {
			icon = "✅"
		}
		fmt.Fprintf(&b, "- %s **%s** (`%s`) — %s", icon, ex.Name, ex.ID, ex.Status)
		if ex.Website != "" {
			fmt.Fprintf(&b, " — %s", ex.Website)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Markets renders an exchange's markets grouped by quote currency.
func Markets(exchange string, page *domain.MarketsPage) string {
	byQuote := make(map[string][]domain.Market)
	for _, m := range page.Markets {
		byQuote[m.Quote] = append(byQuote[m.Quote], m)
	}
	quotes := make([]string, 0, len(byQuote))
	for quote := range byQuote {
		quotes = append(quotes, quote)
	}
	sort.Strings(quotes)

	var b strings.Builder
	fmt.Fprintf(&b, "## Markets on %s (%d of %d)\n", exchange, len(page.Markets), page.Total)
	for _, quote := range quotes {
		fmt.Fprintf(&b, "\n### Quoted in %s\n\n", quote)
		for _, m := range byQuote[quote] {
			status := "active"
			if !m.Active {
				status = "inactive"
			}
			fmt.Fprintf(&b, "- `%s` (%s/%s, %s)\n", m.Symbol, m.Base, m.Quote, status)
		}
	}
	return b.String()
}
