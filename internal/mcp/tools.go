package mcp

import (
	"context"
	"errors"
	"fmt"

	"tickerscope/internal/render"
	"tickerscope/internal/upstream"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// rateLimitMessage is fixed wording: upstream details are deliberately not
// echoed for 429s.
const rateLimitMessage = "⏳ **Rate limit exceeded.** The pricing API is throttling requests; wait a moment and try again."

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

// upstreamErrorResult converts any error from the client into flagged
// markdown. Nothing raw crosses the tool boundary.
func upstreamErrorResult(err error) *mcp.CallToolResult {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsRateLimited():
			return errorResult(rateLimitMessage)
		case apiErr.IsNotFound():
			detail := apiErr.Details
			if detail == "" {
				detail = apiErr.Message
			}
			return errorResult(fmt.Sprintf("❌ **Not found.** %s", detail))
		case apiErr.IsAuth():
			return errorResult("🔒 **Authentication failed.** Check that MARKET_API_KEY is set to a valid pricing API key.")
		case apiErr.IsUnavailable():
			return errorResult("🚧 **Pricing API unavailable.** The upstream service is temporarily down; try again later.")
		default:
			return errorResult(fmt.Sprintf("⚠️ **Pricing API error (%d):** %s", apiErr.Status, apiErr.Message))
		}
	}
	return errorResult(fmt.Sprintf("⚠️ **Unexpected error:** %v", err))
}

func registerTools(server *mcp.Server, market MarketReader) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_ticker",
		Description: "Get the current ticker (price, bid/ask, 24h stats) for a trading pair on one exchange",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in getTickerInput) (*mcp.CallToolResult, any, error) {
		if market == nil {
			return errorResult("market data service unavailable"), nil, nil
		}
		exchange, err := requireField("exchange", in.Exchange)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		symbol, err := normalizeSymbol(in.Symbol)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}

		ticker, err := market.GetTicker(ctx, exchange, symbol)
		if err != nil {
			return upstreamErrorResult(err), nil, nil
		}
		if ticker == nil {
			// Single-entity lookup: absence is flagged so an agent knows the
			// pair/exchange combination itself was wrong.
			return errorResult(fmt.Sprintf("❌ No ticker found for %s on %s.", symbol, exchange)), nil, nil
		}
		return textResult(render.Ticker(ticker)), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_tickers",
		Description: "List current tickers, optionally filtered by exchange and/or symbols",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in getTickersInput) (*mcp.CallToolResult, any, error) {
		if market == nil {
			return errorResult("market data service unavailable"), nil, nil
		}
		limit, err := normalizeLimit(in.Limit, defaultTickersLimit, maxTickersLimit)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}

		page, err := market.GetTickers(ctx, upstream.TickersQuery{
			Exchange: in.Exchange,
			Symbols:  in.Symbols,
			Limit:    limit,
		})
		if err != nil {
			return upstreamErrorResult(err), nil, nil
		}
		if len(page.Tickers) == 0 {
			// Listings treat emptiness as information, not failure.
			return textResult("No tickers found for the given filters."), nil, nil
		}
		return textResult(render.TickerTable(page.Tickers, page.Total)), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_history",
		Description: "Get OHLCV candle history for a trading pair on one exchange",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in getHistoryInput) (*mcp.CallToolResult, any, error) {
		if market == nil {
			return errorResult("market data service unavailable"), nil, nil
		}
		exchange, err := requireField("exchange", in.Exchange)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		symbol, err := normalizeSymbol(in.Symbol)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		interval, err := normalizeInterval(in.Interval)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		limit, err := normalizeLimit(in.Limit, defaultHistoryLimit, maxHistoryLimit)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}

		resp, err := market.GetHistory(ctx, exchange, symbol, upstream.HistoryQuery{
			Interval: interval,
			Start:    in.Start,
			End:      in.End,
			Limit:    limit,
		})
		if err != nil {
			return upstreamErrorResult(err), nil, nil
		}
		if len(resp.Candles) == 0 {
			return textResult(fmt.Sprintf("No %s candles found for %s on %s in the requested range.", interval, symbol, exchange)), nil, nil
		}
		return textResult(render.History(resp)), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_exchanges",
		Description: "List all exchanges known to the pricing API with their status",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ getExchangesInput) (*mcp.CallToolResult, any, error) {
		if market == nil {
			return errorResult("market data service unavailable"), nil, nil
		}
		exchanges, err := market.GetExchanges(ctx)
		if err != nil {
			return upstreamErrorResult(err), nil, nil
		}
		if len(exchanges) == 0 {
			return textResult("No exchanges reported by the pricing API."), nil, nil
		}
		return textResult(render.Exchanges(exchanges)), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_markets",
		Description: "List trading pairs available on one exchange, grouped by quote currency",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in getMarketsInput) (*mcp.CallToolResult, any, error) {
		if market == nil {
			return errorResult("market data service unavailable"), nil, nil
		}
		exchange, err := requireField("exchange", in.Exchange)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		limit, err := normalizeLimit(in.Limit, defaultMarketsLimit, maxMarketsLimit)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}

		page, err := market.GetMarkets(ctx, exchange, upstream.MarketsQuery{
			Quote: in.Quote,
			Limit: limit,
		})
		if err != nil {
			return upstreamErrorResult(err), nil, nil
		}
		if len(page.Markets) == 0 {
			return textResult(fmt.Sprintf("No markets found on %s for the given filters.", exchange)), nil, nil
		}
		return textResult(render.Markets(exchange, page)), nil, nil
	})
}
