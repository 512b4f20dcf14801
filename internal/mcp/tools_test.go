package mcp

import (
	"context"
	"strings"
	"testing"
	"time"

	"tickerscope/internal/upstream"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestToolsAreListed(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	session := connectInMemory(ctx, t, testServer(defaultStubMarket()))

	tools, err := session.ListTools(ctx, &sdkmcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("list tools failed: %v", err)
	}

	want := map[string]bool{
		"get_ticker": false, "get_tickers": false, "get_history": false,
		"get_exchanges": false, "get_markets": false,
	}
	for _, tool := range tools.Tools {
		if _, ok := want[tool.Name]; ok {
			want[tool.Name] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Fatalf("tool %s not listed", name)
		}
	}
}

func TestGetTickerTool(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	session := connectInMemory(ctx, t, testServer(defaultStubMarket()))

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "get_ticker",
		Arguments: map[string]any{"exchange": "binance", "symbol": "btc/usdt"},
	})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	text := resultText(t, res)
	if !strings.Contains(text, "BTC/USDT on binance") {
		t.Fatalf("missing heading: %s", text)
	}
	if !strings.Contains(text, "$50,000.00") {
		t.Fatalf("missing price: %s", text)
	}
}

func TestGetTickerNotFoundIsFlagged(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	session := connectInMemory(ctx, t, testServer(defaultStubMarket()))

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "get_ticker",
		Arguments: map[string]any{"exchange": "kraken", "symbol": "DOGE/USDT"},
	})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected flagged result for missing ticker")
	}
	text := resultText(t, res)
	if !strings.Contains(text, "DOGE/USDT") || !strings.Contains(text, "kraken") {
		t.Fatalf("not-found text must name symbol and exchange: %s", text)
	}
}

func TestGetTickersLimitValidationSkipsUpstream(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	market := defaultStubMarket()
	session := connectInMemory(ctx, t, testServer(market))

	for _, limit := range []int{-1, 51, 1000} {
		res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
			Name:      "get_tickers",
			Arguments: map[string]any{"limit": limit},
		})
		if err != nil {
			t.Fatalf("call failed: %v", err)
		}
		if !res.IsError {
			t.Fatalf("limit %d should fail validation", limit)
		}
		if !strings.Contains(resultText(t, res), "between 1 and 50") {
			t.Fatalf("error must name the bounds: %s", resultText(t, res))
		}
	}
	if market.calls != 0 {
		t.Fatalf("validation failures must not reach upstream, got %d calls", market.calls)
	}
}

func TestGetTickersDefaultsAndEmptyResult(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	market := defaultStubMarket()
	session := connectInMemory(ctx, t, testServer(market))

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "get_tickers", Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, res))
	}
	if market.lastTickersQuery.Limit != defaultTickersLimit {
		t.Fatalf("expected default limit %d, got %d", defaultTickersLimit, market.lastTickersQuery.Limit)
	}

	market.tickersPage = nil
	res, err = session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "get_tickers", Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if res.IsError {
		t.Fatal("empty listing must be informational, not an error")
	}
	if !strings.Contains(resultText(t, res), "No tickers found") {
		t.Fatalf("unexpected empty text: %s", resultText(t, res))
	}
}

func TestGetHistoryTool(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	market := defaultStubMarket()
	session := connectInMemory(ctx, t, testServer(market))

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "get_history",
		Arguments: map[string]any{"exchange": "binance", "symbol": "BTC/USDT", "interval": "1h"},
	})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, res))
	}
	if market.lastHistoryQuery.Interval != "1h" || market.lastHistoryQuery.Limit != defaultHistoryLimit {
		t.Fatalf("unexpected history query: %+v", market.lastHistoryQuery)
	}
	if !strings.Contains(resultText(t, res), "3 candles") {
		t.Fatalf("missing summary: %s", resultText(t, res))
	}
}

func TestGetHistoryRejectsUnknownInterval(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	market := defaultStubMarket()
	session := connectInMemory(ctx, t, testServer(market))

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "get_history",
		Arguments: map[string]any{"exchange": "binance", "symbol": "BTC/USDT", "interval": "3h"},
	})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected validation error for unknown interval")
	}
	if market.calls != 0 {
		t.Fatal("validation failure must not reach upstream")
	}
}

func TestGetExchangesTool(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	session := connectInMemory(ctx, t, testServer(defaultStubMarket()))

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "get_exchanges", Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "✅ **Binance**") {
		t.Fatalf("missing exchange entry: %s", text)
	}
}

func TestGetMarketsTool(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	market := defaultStubMarket()
	session := connectInMemory(ctx, t, testServer(market))

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "get_markets",
		Arguments: map[string]any{"exchange": "binance", "quote": "USDT"},
	})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, res))
	}
	if market.lastMarketsQuery.Quote != "USDT" || market.lastMarketsQuery.Limit != defaultMarketsLimit {
		t.Fatalf("unexpected markets query: %+v", market.lastMarketsQuery)
	}
	if !strings.Contains(resultText(t, res), "Quoted in USDT") {
		t.Fatalf("missing quote group: %s", resultText(t, res))
	}
}

func TestRateLimitErrorIsFixedLiteral(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	market := defaultStubMarket()
	market.tickerErr = &upstream.APIError{Status: 429, Message: "slow down", Details: "bucket empty"}
	session := connectInMemory(ctx, t, testServer(market))

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "get_ticker",
		Arguments: map[string]any{"exchange": "binance", "symbol": "BTC/USDT"},
	})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected flagged result")
	}
	text := resultText(t, res)
	if text != rateLimitMessage {
		t.Fatalf("rate-limit text must be the fixed literal, got: %s", text)
	}
	if strings.Contains(text, "bucket empty") {
		t.Fatalf("429 details must not leak: %s", text)
	}
}

func TestNotFoundErrorIncludesDetails(t *testing.T) {
	res := upstreamErrorResult(&upstream.APIError{Status: 404, Message: "not found", Details: "no market BTC-USDT on hitbtc"})
	if !res.IsError {
		t.Fatal("expected flagged result")
	}
	text := res.Content[0].(*sdkmcp.TextContent).Text
	if !strings.Contains(text, "no market BTC-USDT on hitbtc") {
		t.Fatalf("404 details must appear verbatim: %s", text)
	}

	// without details, the message is used
	res = upstreamErrorResult(&upstream.APIError{Status: 404, Message: "nothing here"})
	text = res.Content[0].(*sdkmcp.TextContent).Text
	if !strings.Contains(text, "nothing here") {
		t.Fatalf("404 message fallback missing: %s", text)
	}
}

func TestUnexpectedErrorIsWrapped(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	market := defaultStubMarket()
	market.exchangesErr = context.DeadlineExceeded
	session := connectInMemory(ctx, t, testServer(market))

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "get_exchanges", Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected flagged result")
	}
	if !strings.Contains(resultText(t, res), "Unexpected error") {
		t.Fatalf("generic errors must be labeled: %s", resultText(t, res))
	}
}
