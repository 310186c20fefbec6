package marketdata

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-optimizer/internal/modules/optimization"
)

// Service fetches, caches, and aligns historical price series. It is the
// boundary where provider failures become data-source errors; everything
// past this point works on clean, aligned series.
type Service struct {
	provider Provider
	store    *Store // optional; fetches are not cached when nil
	log      zerolog.Logger
}

// NewService creates the market data service.
func NewService(provider Provider, store *Store, log zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		store:    store,
		log:      log.With().Str("component", "marketdata").Logger(),
	}
}

// AlignedSeries returns one price series per symbol, restricted to the
// timestamps present for every symbol. Dates missing from any series are
// dropped entirely rather than imputed.
func (s *Service) AlignedSeries(symbols []string, period string) ([]optimization.PriceSeries, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: no symbols requested", optimization.ErrInvalidArgument)
	}

	raw := make([][]optimization.PricePoint, len(symbols))
	for i, symbol := range symbols {
		points, err := s.load(symbol, period)
		if err != nil {
			return nil, err
		}
		raw[i] = points
	}

	common := commonDates(raw)
	if len(common) == 0 {
		return nil, fmt.Errorf("%w: no common trading dates across %d symbols",
			optimization.ErrDataSource, len(symbols))
	}

	series := make([]optimization.PriceSeries, len(symbols))
	for i, symbol := range symbols {
		byDate := make(map[string]optimization.PricePoint, len(raw[i]))
		for _, p := range raw[i] {
			byDate[p.Date.UTC().Format(dateLayout)] = p
		}

		points := make([]optimization.PricePoint, 0, len(common))
		for _, d := range common {
			points = append(points, byDate[d.UTC().Format(dateLayout)])
		}
		series[i] = optimization.PriceSeries{Symbol: symbol, Points: points}
	}

	s.log.Debug().
		Strs("symbols", symbols).
		Int("common_dates", len(common)).
		Msg("Aligned price series")

	return series, nil
}

// Refresh force-fetches the latest window for each symbol and updates the
// cache.
func (s *Service) Refresh(symbols []string, period string) error {
	for _, symbol := range symbols {
		points, err := s.fetch(symbol, period)
		if err != nil {
			return err
		}
		if s.store != nil {
			if err := s.store.SavePrices(symbol, points); err != nil {
				return fmt.Errorf("failed to cache prices for %s: %w", symbol, err)
			}
		}
	}
	return nil
}

// load returns cached prices when present, fetching otherwise.
func (s *Service) load(symbol string, period string) ([]optimization.PricePoint, error) {
	if s.store != nil {
		cached, err := s.store.Prices(symbol)
		if err != nil {
			return nil, err
		}
		if len(cached) > 0 {
			return cached, nil
		}
	}

	points, err := s.fetch(symbol, period)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if err := s.store.SavePrices(symbol, points); err != nil {
			// Cache misses are recoverable; the fetched data is still good.
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache prices")
		}
	}
	return points, nil
}

// fetch pulls from the provider and normalizes failures into the
// data-source error surface.
func (s *Service) fetch(symbol string, period string) ([]optimization.PricePoint, error) {
	points, err := s.provider.HistoricalPrices(symbol, period)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch prices for %s: %v",
			optimization.ErrDataSource, symbol, err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: provider returned no prices for %s over %s",
			optimization.ErrDataSource, symbol, period)
	}
	return points, nil
}

// commonDates returns the timestamps present in every series, ascending.
func commonDates(series [][]optimization.PricePoint) []time.Time {
	if len(series) == 0 {
		return nil
	}

	counts := make(map[string]int)
	dates := make(map[string]time.Time)
	for _, points := range series {
		seen := make(map[string]bool, len(points))
		for _, p := range points {
			key := p.Date.UTC().Format(dateLayout)
			if seen[key] {
				continue
			}
			seen[key] = true
			counts[key]++
			dates[key] = p.Date
		}
	}

	var common []time.Time
	for key, count := range counts {
		if count == len(series) {
			common = append(common, dates[key])
		}
	}
	sort.Slice(common, func(i, j int) bool { return common[i].Before(common[j]) })
	return common
}
