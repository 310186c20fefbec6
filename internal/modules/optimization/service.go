package optimization

import (
	"fmt"

	"github.com/rs/zerolog"
)

// PriceSource supplies aligned historical price series for a set of
// symbols. Provider failures must already be wrapped as data-source errors
// before they reach this package.
type PriceSource interface {
	AlignedSeries(symbols []string, period string) ([]PriceSeries, error)
}

// Service orchestrates a full optimization run: fetch prices, build the
// return matrix, search, persist the outcome.
type Service struct {
	prices PriceSource
	repo   *RunRepository // optional; runs are not persisted when nil
	log    zerolog.Logger
}

// NewService creates the optimization service.
func NewService(prices PriceSource, repo *RunRepository, log zerolog.Logger) *Service {
	return &Service{
		prices: prices,
		repo:   repo,
		log:    log.With().Str("component", "optimizer_service").Logger(),
	}
}

// Run executes the given spec end to end and returns the result.
func (s *Service) Run(spec RunSpec) (*Result, error) {
	if len(spec.Symbols) == 0 {
		return nil, fmt.Errorf("%w: no symbols in run spec", ErrInvalidArgument)
	}

	objective, err := NewObjective(spec.Objective)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Strs("symbols", spec.Symbols).
		Str("period", spec.Period).
		Str("return_type", string(spec.ReturnType)).
		Int("trials", spec.Trials).
		Int64("seed", spec.Seed).
		Int("workers", spec.Workers).
		Msg("Starting optimization run")

	series, err := s.prices.AlignedSeries(spec.Symbols, spec.Period)
	if err != nil {
		return nil, err
	}

	returns, err := BuildReturnMatrix(series, spec.ReturnType)
	if err != nil {
		return nil, err
	}

	constraints := NewConstraintSet(spec.Symbols, spec.Constraints...)

	optimizer := NewOptimizer(s.log)
	optimizer.Workers = spec.Workers

	result, err := optimizer.Optimize(returns, constraints, objective, spec.Trials, spec.Seed)
	if err != nil {
		return nil, err
	}

	if s.repo != nil {
		if _, err := s.repo.SaveRun(spec, result); err != nil {
			// A persistence failure should not discard a finished run.
			s.log.Warn().Err(err).Msg("Failed to persist optimization run")
		}
	}

	return result, nil
}
