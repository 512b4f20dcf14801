package domain

// Ticker is a snapshot of recent trading statistics for one symbol on one
// exchange. Numeric fields are pointers: a nil value means the exchange did
// not supply the figure, which is distinct from zero.
type Ticker struct {
	Symbol        string   `json:"symbol"`
	Exchange      string   `json:"exchange"`
	Last          *float64 `json:"last"`
	Bid           *float64 `json:"bid"`
	Ask           *float64 `json:"ask"`
	High          *float64 `json:"high"`
	Low           *float64 `json:"low"`
	Open          *float64 `json:"open"`
	Volume        *float64 `json:"volume"`
	QuoteVolume   *float64 `json:"quoteVolume"`
	Change        *float64 `json:"change"`
	ChangePercent *float64 `json:"changePercent"`
	Timestamp     string   `json:"timestamp"`
}

// Candle is one OHLCV aggregate. Timestamp is epoch milliseconds.
type Candle struct {
	Timestamp   int64    `json:"timestamp"`
	Open        float64  `json:"open"`
	High        float64  `json:"high"`
	Low         float64  `json:"low"`
	Close       float64  `json:"close"`
	Volume      float64  `json:"volume"`
	QuoteVolume *float64 `json:"quoteVolume,omitempty"`
	Trades      *int64   `json:"trades,omitempty"`
}

// Bullish reports whether the candle closed at or above its open.
func (c Candle) Bullish() bool {
	return c.Close >= c.Open
}

type Exchange struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Website string `json:"website,omitempty"`
}

type Market struct {
	Symbol    string           `json:"symbol"`
	Exchange  string           `json:"exchange"`
	Base      string           `json:"base"`
	Quote     string           `json:"quote"`
	Active    bool             `json:"active"`
	Precision *MarketPrecision `json:"precision,omitempty"`
	Limits    *MarketLimits    `json:"limits,omitempty"`
}

type MarketPrecision struct {
	Price  *int `json:"price,omitempty"`
	Amount *int `json:"amount,omitempty"`
}

type MarketLimits struct {
	MinAmount *float64 `json:"minAmount,omitempty"`
	MaxAmount *float64 `json:"maxAmount,omitempty"`
}

// TickersPage is one page of a filtered ticker listing.
type TickersPage struct {
	Tickers []Ticker `json:"tickers"`
	Total   int      `json:"total"`
}

// MarketsPage is one page of a market listing for an exchange.
type MarketsPage struct {
	Markets []Market `json:"markets"`
	Total   int      `json:"total"`
}

// OHLCVResponse is the upstream history payload for one exchange/symbol.
type OHLCVResponse struct {
	Exchange string   `json:"exchange"`
	Symbol   string   `json:"symbol"`
	Interval string   `json:"interval"`
	Candles  []Candle `json:"candles"`
	Count    int      `json:"count"`
	Start    string   `json:"start,omitempty"`
	End      string   `json:"end,omitempty"`
}

// SupportedIntervals are the candle intervals accepted by the history tool.
var SupportedIntervals = []string{"1m", "5m", "15m", "1h", "1d"}

// IsSupportedInterval reports whether interval is one of SupportedIntervals.
func IsSupportedInterval(interval string) bool {
	for _, supported := range SupportedIntervals {
		if interval == supported {
			return true
		}
	}
	return false
}

// FallbackExchanges backs the exchanges resource when the upstream listing
// is unreachable, and is the default set for exchange comparisons.
var FallbackExchanges = []Exchange{
	{ID: "binance", Name: "Binance", Status: "operational"},
	{ID: "coinbase", Name: "Coinbase", Status: "operational"},
	{ID: "kraken", Name: "Kraken", Status: "operational"},
}

// Float returns a pointer to v; shorthand for building nullable fields.
func Float(v float64) *float64 {
	return &v
}
