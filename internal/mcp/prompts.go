package mcp

import (
	"context"
	"fmt"
	"strings"

	"tickerscope/internal/analysis"
	"tickerscope/internal/domain"
	"tickerscope/internal/render"
	"tickerscope/internal/upstream"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const promptHistoryLimit = 100

func promptResult(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{{
			Role:    "user",
			Content: &mcp.TextContent{Text: text},
		}},
	}
}

func promptArg(req *mcp.GetPromptRequest, name string) string {
	if req == nil || req.Params == nil {
		return ""
	}
	return strings.TrimSpace(req.Params.Arguments[name])
}

func registerPrompts(server *mcp.Server, market MarketReader) {
	server.AddPrompt(&mcp.Prompt{
		Name:        "analyze_price_movement",
		Description: "Build an analysis brief for the current price action of one trading pair on one exchange",
		Arguments: []*mcp.PromptArgument{
			{Name: "exchange", Description: "Exchange id (e.g. binance)", Required: true},
			{Name: "symbol", Description: "Trading pair in BASE/QUOTE form (e.g. BTC/USDT)", Required: true},
		},
	}, func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		if market == nil {
			return promptResult("Price movement analysis", "Market data is not configured."), nil
		}
		exchange := promptArg(req, "exchange")
		symbol := strings.ToUpper(promptArg(req, "symbol"))
		if exchange == "" || symbol == "" {
			return promptResult("Price movement analysis",
				"Both `exchange` and `symbol` arguments are required, e.g. exchange=binance symbol=BTC/USDT."), nil
		}

		ticker, err := market.GetTicker(ctx, exchange, symbol)
		if err != nil {
			return promptResult("Price movement analysis",
				fmt.Sprintf("Ticker data for %s on %s is currently unavailable (%v). Analysis cannot proceed without it.", symbol, exchange, err)), nil
		}
		if ticker == nil {
			return promptResult("Price movement analysis",
				fmt.Sprintf("No ticker exists for %s on %s. Verify the pair and exchange before analyzing.", symbol, exchange)), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Analyze the current price movement of %s on %s using the snapshot below.\n\n", symbol, exchange)
		b.WriteString(render.Ticker(ticker))
		b.WriteString("\nAnswer the following:\n")
		b.WriteString("1. Is the pair trading closer to its 24h high or low, and what does that suggest?\n")
		b.WriteString("2. How wide is the bid/ask spread relative to the last price, and what does that imply about liquidity?\n")
		b.WriteString("3. Is the 24h change significant for this asset class?\n")
		b.WriteString("4. Does the volume support or contradict the price move?\n")
		return promptResult(fmt.Sprintf("Price movement analysis for %s on %s", symbol, exchange), b.String()), nil
	})

	server.AddPrompt(&mcp.Prompt{
		Name:        "analyze_ohlcv",
		Description: "Build an analysis brief over recent OHLCV candles for one trading pair",
		Arguments: []*mcp.PromptArgument{
			{Name: "exchange", Description: "Exchange id (e.g. binance)", Required: true},
			{Name: "symbol", Description: "Trading pair in BASE/QUOTE form (e.g. BTC/USDT)", Required: true},
			{Name: "interval", Description: "Candle interval: 1m, 5m, 15m, 1h, 1d (default 1h)", Required: false},
			{Name: "period", Description: "Free-text description of the period of interest", Required: false},
		},
	}, func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		if market == nil {
			return promptResult("OHLCV analysis", "Market data is not configured."), nil
		}
		exchange := promptArg(req, "exchange")
		symbol := strings.ToUpper(promptArg(req, "symbol"))
		if exchange == "" || symbol == "" {
			return promptResult("OHLCV analysis",
				"Both `exchange` and `symbol` arguments are required, e.g. exchange=binance symbol=BTC/USDT."), nil
		}
		interval, err := normalizeInterval(promptArg(req, "interval"))
		if err != nil {
			return promptResult("OHLCV analysis", err.Error()), nil
		}
		period := promptArg(req, "period")

		resp, err := market.GetHistory(ctx, exchange, symbol, upstream.HistoryQuery{
			Interval: interval,
			Limit:    promptHistoryLimit,
		})
		if err != nil {
			return promptResult("OHLCV analysis",
				fmt.Sprintf("Candle history for %s on %s is currently unavailable (%v). Analysis cannot proceed without it.", symbol, exchange, err)), nil
		}
		if len(resp.Candles) == 0 {
			return promptResult("OHLCV analysis",
				fmt.Sprintf("No %s candles exist for %s on %s. Nothing to analyze.", interval, symbol, exchange)), nil
		}

		summary := analysis.SummarizeCandles(resp.Candles)

		var b strings.Builder
		fmt.Fprintf(&b, "Analyze the recent %s OHLCV history of %s on %s", interval, symbol, exchange)
		if period != "" {
			fmt.Fprintf(&b, " (period of interest: %s)", period)
		}
		b.WriteString(".\n\n### Series statistics\n\n")
		fmt.Fprintf(&b, "- Candles analyzed: %d\n", summary.Count)
		fmt.Fprintf(&b, "- Overall change (first open → last close): %s\n", render.Percent(domain.Float(summary.ChangePercent)))
		fmt.Fprintf(&b, "- Period high: %s at %s\n", render.Price(domain.Float(summary.HighestCandle.High)), render.Timestamp(summary.HighestCandle.Timestamp))
		fmt.Fprintf(&b, "- Period low: %s at %s\n", render.Price(domain.Float(summary.LowestCandle.Low)), render.Timestamp(summary.LowestCandle.Timestamp))
		fmt.Fprintf(&b, "- Volume: %s total, %s average per candle, %d spike(s) above 2x average\n",
			render.Quantity(domain.Float(summary.TotalVolume)),
			render.Quantity(domain.Float(summary.AverageVolume)),
			summary.VolumeSpikes)
		fmt.Fprintf(&b, "- Candles: %d bullish vs %d bearish\n", summary.BullishCount, summary.BearishCount)
		b.WriteString("\n")
		b.WriteString(render.History(resp))
		b.WriteString("\nAnswer the following:\n")
		b.WriteString("1. Is the series trending, ranging, or reversing?\n")
		b.WriteString("2. Do the volume spikes coincide with the largest price moves?\n")
		b.WriteString("3. Where are the nearest support and resistance levels implied by the period high/low?\n")
		b.WriteString("4. Does the bullish/bearish candle balance confirm the overall change?\n")
		return promptResult(fmt.Sprintf("OHLCV analysis for %s on %s (%s)", symbol, exchange, interval), b.String()), nil
	})

	server.AddPrompt(&mcp.Prompt{
		Name:        "compare_exchanges",
		Description: "Compare the price of one trading pair across several exchanges",
		Arguments: []*mcp.PromptArgument{
			{Name: "symbol", Description: "Trading pair in BASE/QUOTE form (e.g. BTC/USDT)", Required: true},
			{Name: "exchanges", Description: "Comma-separated exchange ids (default binance,coinbase,kraken)", Required: false},
		},
	}, func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		if market == nil {
			return promptResult("Exchange comparison", "Market data is not configured."), nil
		}
		symbol := strings.ToUpper(promptArg(req, "symbol"))
		if symbol == "" {
			return promptResult("Exchange comparison",
				"The `symbol` argument is required, e.g. symbol=BTC/USDT."), nil
		}
		exchanges := parseExchangeList(promptArg(req, "exchanges"))

		// One fetch per exchange, in the order given. Failures degrade to an
		// unavailable entry instead of aborting the comparison.
		tickers := make(map[string]*domain.Ticker, len(exchanges))
		for _, exchange := range exchanges {
			ticker, err := market.GetTicker(ctx, exchange, symbol)
			if err != nil {
				continue
			}
			tickers[exchange] = ticker
		}
		cmp := analysis.CompareTickers(exchanges, tickers)

		if len(cmp.Quotes) == 0 {
			return promptResult("Exchange comparison",
				fmt.Sprintf("No exchange returned a usable price for %s (tried: %s). Comparison is not possible right now.",
					symbol, strings.Join(exchanges, ", "))), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Compare the price of %s across exchanges.\n\n### Quotes\n\n", symbol)
		for _, quote := range cmp.Quotes {
			fmt.Fprintf(&b, "- %s: %s\n", quote.Exchange, render.Price(domain.Float(quote.Last)))
		}
		if len(cmp.Unavailable) > 0 {
			fmt.Fprintf(&b, "\nUnavailable (excluded from the spread): %s\n", strings.Join(cmp.Unavailable, ", "))
		}
		b.WriteString("\n### Spread\n\n")
		fmt.Fprintf(&b, "- Lowest: %s on %s\n", render.Price(domain.Float(cmp.LowestPrice)), cmp.LowestExchange)
		fmt.Fprintf(&b, "- Highest: %s on %s\n", render.Price(domain.Float(cmp.HighestPrice)), cmp.HighestExchange)
		fmt.Fprintf(&b, "- Spread: %s (%s of the lowest price)\n",
			render.Price(domain.Float(cmp.Spread)), render.Percent(domain.Float(cmp.SpreadPercent)))
		b.WriteString("\nAnswer the following:\n")
		b.WriteString("1. Is the spread large enough to matter after typical trading fees?\n")
		b.WriteString("2. What could explain the price difference between these venues?\n")
		b.WriteString("3. Which exchange would you prefer for buying, and which for selling?\n")
		return promptResult(fmt.Sprintf("Exchange comparison for %s", symbol), b.String()), nil
	})
}

func parseExchangeList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		out := make([]string, 0, len(domain.FallbackExchanges))
		for _, ex := range domain.FallbackExchanges {
			out = append(out, ex.ID)
		}
		return out
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		exchange := strings.ToLower(strings.TrimSpace(part))
		if exchange == "" {
			continue
		}
		if _, ok := seen[exchange]; ok {
			continue
		}
		seen[exchange] = struct{}{}
		out = append(out, exchange)
	}
	return out
}
