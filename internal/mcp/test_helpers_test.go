package mcp

import (
	"context"
	"testing"
	"time"

	"tickerscope/internal/domain"
	"tickerscope/internal/upstream"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type stubMarket struct {
	tickers   map[string]*domain.Ticker // keyed exchange|symbol
	tickerErr error

	tickersPage      *domain.TickersPage
	tickersErr       error
	lastTickersQuery upstream.TickersQuery

	history          *domain.OHLCVResponse
	historyErr       error
	lastHistoryQuery upstream.HistoryQuery

	exchanges    []domain.Exchange
	exchangesErr error

	markets          *domain.MarketsPage
	marketsErr       error
	lastMarketsQuery upstream.MarketsQuery

	calls int
}

func (s *stubMarket) GetTicker(ctx context.Context, exchange, symbol string) (*domain.Ticker, error) {
	s.calls++
	if s.tickerErr != nil {
		return nil, s.tickerErr
	}
	return s.tickers[exchange+"|"+symbol], nil
}

func (s *stubMarket) GetTickers(ctx context.Context, q upstream.TickersQuery) (*domain.TickersPage, error) {
	s.calls++
	s.lastTickersQuery = q
	if s.tickersErr != nil {
		return nil, s.tickersErr
	}
	if s.tickersPage == nil {
		return &domain.TickersPage{}, nil
	}
	return s.tickersPage, nil
}

func (s *stubMarket) GetHistory(ctx context.Context, exchange, symbol string, q upstream.HistoryQuery) (*domain.OHLCVResponse, error) {
	s.calls++
	s.lastHistoryQuery = q
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	if s.history == nil {
		return &domain.OHLCVResponse{Exchange: exchange, Symbol: symbol, Interval: q.Interval}, nil
	}
	return s.history, nil
}

func (s *stubMarket) GetExchanges(ctx context.Context) ([]domain.Exchange, error) {
	s.calls++
	if s.exchangesErr != nil {
		return nil, s.exchangesErr
	}
	return s.exchanges, nil
}

func (s *stubMarket) GetMarkets(ctx context.Context, exchange string, q upstream.MarketsQuery) (*domain.MarketsPage, error) {
	s.calls++
	s.lastMarketsQuery = q
	if s.marketsErr != nil {
		return nil, s.marketsErr
	}
	if s.markets == nil {
		return &domain.MarketsPage{}, nil
	}
	return s.markets, nil
}

func defaultStubMarket() *stubMarket {
	return &stubMarket{
		tickers: map[string]*domain.Ticker{
			"binance|BTC/USDT": {
				Symbol: "BTC/USDT", Exchange: "binance",
				Last: domain.Float(50000), ChangePercent: domain.Float(2.1),
				Volume: domain.Float(1200), Timestamp: "2024-01-01T00:00:00Z",
			},
		},
		tickersPage: &domain.TickersPage{
			Tickers: []domain.Ticker{
				{Symbol: "BTC/USDT", Exchange: "binance", Last: domain.Float(50000)},
				{Symbol: "ETH/USDT", Exchange: "binance", Last: domain.Float(3000)},
			},
			Total: 2,
		},
		history: &domain.OHLCVResponse{
			Exchange: "binance", Symbol: "BTC/USDT", Interval: "1h",
			Candles: []domain.Candle{
				{Timestamp: 1700000000000, Open: 10, High: 12, Low: 9, Close: 12, Volume: 100},
				{Timestamp: 1700003600000, Open: 12, High: 13, Low: 11, Close: 11, Volume: 100},
				{Timestamp: 1700007200000, Open: 11, High: 15, Low: 10, Close: 15, Volume: 500},
			},
			Count: 3,
		},
		exchanges: domain.FallbackExchanges,
		markets: &domain.MarketsPage{
			Markets: []domain.Market{
				{Symbol: "BTC/USDT", Exchange: "binance", Base: "BTC", Quote: "USDT", Active: true},
				{Symbol: "ETH/BTC", Exchange: "binance", Base: "ETH", Quote: "BTC", Active: true},
			},
			Total: 2,
		},
	}
}

func testServer(market MarketReader) *sdkmcp.Server {
	return NewServer(nil, market, ServerConfig{RequestTimeout: time.Second})
}

func connectInMemory(ctx context.Context, t *testing.T, srv *sdkmcp.Server) *sdkmcp.ClientSession {
	t.Helper()
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()

	runCtx, cancel := context.WithCancel(ctx)
	go func() { _ = srv.Run(runCtx, serverTransport) }()
	t.Cleanup(cancel)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "mcp-test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func resultText(t *testing.T, res *sdkmcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := res.Content[0].(*sdkmcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func promptText(t *testing.T, res *sdkmcp.GetPromptResult) string {
	t.Helper()
	if len(res.Messages) == 0 {
		t.Fatal("prompt result has no messages")
	}
	text, ok := res.Messages[0].Content.(*sdkmcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Messages[0].Content)
	}
	return text.Text
}
