package marketdata

import (
	"github.com/aristath/portfolio-optimizer/internal/clients/yahoo"
	"github.com/aristath/portfolio-optimizer/internal/modules/optimization"
)

// Provider yields an ordered sequence of (timestamp, adjusted close)
// observations for a symbol over a named range (e.g. "1y", "5y").
type Provider interface {
	HistoricalPrices(symbol string, period string) ([]optimization.PricePoint, error)
}

// YahooProvider adapts the Yahoo Finance client to the Provider interface.
type YahooProvider struct {
	client *yahoo.Client
}

// NewYahooProvider creates a Yahoo-backed price provider.
func NewYahooProvider(client *yahoo.Client) *YahooProvider {
	return &YahooProvider{client: client}
}

// HistoricalPrices fetches daily bars and keeps the adjusted closes.
func (p *YahooProvider) HistoricalPrices(symbol string, period string) ([]optimization.PricePoint, error) {
	bars, err := p.client.GetHistoricalPrices(symbol, period)
	if err != nil {
		return nil, err
	}

	points := make([]optimization.PricePoint, 0, len(bars))
	for _, bar := range bars {
		points = append(points, optimization.PricePoint{
			Date:     bar.Date,
			AdjClose: bar.AdjClose,
		})
	}
	return points, nil
}
