// Package analysis computes the aggregates embedded in prompt briefs. All
// functions are pure; ordering of inputs decides tie-breaks (first wins).
package analysis

import "tickerscope/internal/domain"

// volumeSpikeFactor marks a candle as a spike when its volume exceeds this
// multiple of the series average.
const volumeSpikeFactor = 2.0

// ExchangeQuote pairs an exchange id with the last price it reported.
type ExchangeQuote struct {
	Exchange string
	Last     float64
}

// Comparison summarizes last prices across exchanges for one symbol.
type Comparison struct {
	Quotes      []ExchangeQuote
	Unavailable []string

	LowestExchange  string
	LowestPrice     float64
	HighestExchange string
	HighestPrice    float64
	Spread          float64
	SpreadPercent   float64
}

// CompareTickers aggregates tickers fetched per exchange. Tickers that are
// nil or carry no last price land in Unavailable and are excluded from the
// spread. Exchanges slice gives the iteration order; the first exchange
// attaining an extreme keeps it on ties.
func CompareTickers(exchanges []string, tickers map[string]*domain.Ticker) Comparison {
	var cmp Comparison
	for _, exchange := range exchanges {
		ticker := tickers[exchange]
		if ticker == nil || ticker.Last == nil {
			cmp.Unavailable = append(cmp.Unavailable, exchange)
			continue
		}
		last := *ticker.Last
		cmp.Quotes = append(cmp.Quotes, ExchangeQuote{Exchange: exchange, Last: last})

		if cmp.LowestExchange == "" || last < cmp.LowestPrice {
			cmp.LowestExchange = exchange
			cmp.LowestPrice = last
		}
		if cmp.HighestExchange == "" || last > cmp.HighestPrice {
			cmp.HighestExchange = exchange
			cmp.HighestPrice = last
		}
	}

	if len(cmp.Quotes) > 0 {
		cmp.Spread = cmp.HighestPrice - cmp.LowestPrice
		if cmp.LowestPrice != 0 {
			cmp.SpreadPercent = cmp.Spread / cmp.LowestPrice * 100
		}
	}
	return cmp
}

// CandleSummary aggregates an OHLCV series for the analysis prompts.
type CandleSummary struct {
	Count         int
	ChangePercent float64

	HighestCandle domain.Candle
	LowestCandle  domain.Candle

	TotalVolume   float64
	AverageVolume float64
	VolumeSpikes  int

	BullishCount int
	BearishCount int
}

// SummarizeCandles computes the series aggregates. The series is trusted to
// be ordered by timestamp ascending; an empty series yields a zero summary.
func SummarizeCandles(candles []domain.Candle) CandleSummary {
	summary := CandleSummary{Count: len(candles)}
	if len(candles) == 0 {
		return summary
	}

	first := candles[0]
	last := candles[len(candles)-1]
	if first.Open != 0 {
		summary.ChangePercent = (last.Close - first.Open) / first.Open * 100
	}

	summary.HighestCandle = first
	summary.LowestCandle = first
	for _, c := range candles {
		if c.High > summary.HighestCandle.High {
			summary.HighestCandle = c
		}
		if c.Low < summary.LowestCandle.Low {
			summary.LowestCandle = c
		}
		summary.TotalVolume += c.Volume
		if c.Bullish() {
			summary.BullishCount++
		} else {
			summary.BearishCount++
		}
	}
	summary.AverageVolume = summary.TotalVolume / float64(len(candles))

	threshold := summary.AverageVolume * volumeSpikeFactor
	for _, c := range candles {
		if c.Volume > threshold {
			summary.VolumeSpikes++
		}
	}
	return summary
}
