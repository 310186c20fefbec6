package yahoo

import "time"

// HistoricalPrice is one daily OHLCV bar from the Yahoo Finance chart API.
type HistoricalPrice struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   int64
	AdjClose float64
}
