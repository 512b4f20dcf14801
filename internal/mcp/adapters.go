package mcp

import (
	"context"

	"tickerscope/internal/domain"
	"tickerscope/internal/upstream"
)

// MarketReader exposes the pricing-API operations the MCP surface needs.
// Satisfied by *upstream.Client; stubbed in tests.
type MarketReader interface {
	GetTicker(ctx context.Context, exchange, symbol string) (*domain.Ticker, error)
	GetTickers(ctx context.Context, q upstream.TickersQuery) (*domain.TickersPage, error)
	GetHistory(ctx context.Context, exchange, symbol string, q upstream.HistoryQuery) (*domain.OHLCVResponse, error)
	GetExchanges(ctx context.Context) ([]domain.Exchange, error)
	GetMarkets(ctx context.Context, exchange string, q upstream.MarketsQuery) (*domain.MarketsPage, error)
}
