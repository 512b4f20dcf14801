package mcp

import (
	"fmt"
	"strings"

	"tickerscope/internal/domain"
)

const (
	defaultTickersLimit = 20
	maxTickersLimit     = 50
	defaultHistoryLimit = 100
	maxHistoryLimit     = 500
	defaultMarketsLimit = 50
	maxMarketsLimit     = 100

	defaultInterval = "1h"
)

type getTickerInput struct {
	Exchange string `json:"exchange" jsonschema:"exchange id (e.g. binance, kraken)"`
	Symbol   string `json:"symbol" jsonschema:"trading pair in BASE/QUOTE form (e.g. BTC/USDT)"`
}

type getTickersInput struct {
	Exchange string   `json:"exchange,omitempty" jsonschema:"optional exchange id to filter by"`
	Symbols  []string `json:"symbols,omitempty" jsonschema:"optional trading pairs in BASE/QUOTE form"`
	Limit    int      `json:"limit,omitempty" jsonschema:"number of tickers to return, 1-50, default 20"`
}

type getHistoryInput struct {
	Exchange string `json:"exchange" jsonschema:"exchange id (e.g. binance, kraken)"`
	Symbol   string `json:"symbol" jsonschema:"trading pair in BASE/QUOTE form (e.g. BTC/USDT)"`
	Interval string `json:"interval,omitempty" jsonschema:"candle interval: 1m, 5m, 15m, 1h, 1d (default 1h)"`
	Start    string `json:"start,omitempty" jsonschema:"optional range start (ISO-8601)"`
	End      string `json:"end,omitempty" jsonschema:"optional range end (ISO-8601)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"number of candles to return, 1-500, default 100"`
}

type getExchangesInput struct{}

type getMarketsInput struct {
	Exchange string `json:"exchange" jsonschema:"exchange id (e.g. binance, kraken)"`
	Quote    string `json:"quote,omitempty" jsonschema:"optional quote currency filter (e.g. USDT)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"number of markets to return, 1-100, default 50"`
}

// requireField trims and validates a required string argument.
func requireField(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return value, nil
}

// normalizeSymbol trims and upper-cases a required trading-pair argument.
func normalizeSymbol(symbol string) (string, error) {
	symbol, err := requireField("symbol", symbol)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(symbol), nil
}

// normalizeLimit applies the default for an absent limit and rejects values
// outside [1, max]. Out-of-range limits are a validation failure, not a
// clamp, so the caller learns the real bounds.
func normalizeLimit(limit, def, max int) (int, error) {
	if limit == 0 {
		return def, nil
	}
	if limit < 1 || limit > max {
		return 0, fmt.Errorf("limit must be between 1 and %d (got %d)", max, limit)
	}
	return limit, nil
}

// normalizeInterval applies the default and validates against the supported
// interval set.
func normalizeInterval(interval string) (string, error) {
	interval = strings.TrimSpace(interval)
	if interval == "" {
		return defaultInterval, nil
	}
	if !domain.IsSupportedInterval(interval) {
		return "", fmt.Errorf("interval must be one of %s (got %q)",
			strings.Join(domain.SupportedIntervals, ", "), interval)
	}
	return interval, nil
}
