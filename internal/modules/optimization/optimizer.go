package optimization

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/aristath/portfolio-optimizer/pkg/formulas"
)

const (
	// maxDrawAttempts bounds how many times a single trial may redraw
	// before it is counted as a failed draw.
	maxDrawAttempts = 100

	// correlationReportThreshold is the absolute correlation above which a
	// pair of assets is flagged in the result diagnostics.
	correlationReportThreshold = 0.8
)

// Optimizer searches for a feasible weight vector minimizing an objective
// by repeatedly sampling candidates from a seeded generator. All randomness
// comes from generators derived from the run seed, never from global state,
// so runs with identical inputs are bit-for-bit reproducible.
type Optimizer struct {
	// Workers distributes trials across goroutines when > 1. Each worker
	// draws from its own sub-generator seeded seed+index, and results are
	// reduced in worker order, so a given worker count is deterministic.
	Workers int

	// MaxDuration optionally cuts the search early. The best candidate
	// found so far is still returned as long as one feasible candidate
	// exists.
	MaxDuration time.Duration

	log zerolog.Logger
}

// NewOptimizer creates an optimizer with the default serial search.
func NewOptimizer(log zerolog.Logger) *Optimizer {
	return &Optimizer{
		Workers: 1,
		log:     log.With().Str("component", "optimizer").Logger(),
	}
}

// searchState is the running best of one sequential search.
type searchState struct {
	best        []float64
	bestValue   float64
	evaluated   int
	failedDraws int
}

// Optimize runs the random search and returns the best feasible allocation.
func (o *Optimizer) Optimize(returns *ReturnMatrix, constraints *ConstraintSet, objective Objective, trials int, seed int64) (*Result, error) {
	if trials <= 0 {
		return nil, fmt.Errorf("%w: trials must be positive, got %d", ErrInvalidArgument, trials)
	}
	if returns == nil {
		return nil, fmt.Errorf("%w: nil return matrix", ErrInvalidArgument)
	}
	if objective == nil {
		return nil, fmt.Errorf("%w: nil objective", ErrInvalidArgument)
	}
	if constraints == nil || constraints.NumAssets() != returns.Assets() {
		return nil, fmt.Errorf("%w: constraint set does not cover the %d assets in the return matrix",
			ErrInvalidArgument, returns.Assets())
	}
	if returns.Periods() < 2 {
		return nil, fmt.Errorf("%w: %d return periods, need at least 2",
			ErrDegenerateSeries, returns.Periods())
	}

	// Infeasibility must surface before any sampling work is spent.
	if err := constraints.Validate(); err != nil {
		return nil, err
	}

	sampler := newSampler(constraints)

	var deadline time.Time
	if o.MaxDuration > 0 {
		deadline = time.Now().Add(o.MaxDuration)
	}

	start := time.Now()
	var state searchState
	var err error
	if o.Workers > 1 {
		state, err = o.searchParallel(returns, constraints, objective, sampler, trials, seed, deadline)
	} else {
		state, err = o.search(returns, constraints, objective, sampler, trials, seed, deadline)
	}
	if err != nil {
		return nil, err
	}

	if state.best == nil {
		return nil, fmt.Errorf("%w: %d trials evaluated, %d failed draws",
			ErrNoFeasibleSolution, state.evaluated, state.failedDraws)
	}

	symbols := returns.Symbols()

	weights := make(map[string]float64, len(symbols))
	for i, s := range symbols {
		weights[s] = state.best[i]
	}

	// Standalone risk per asset, independent of the trials: the objective
	// baseline each asset would have on its own.
	standalone := make(map[string]float64, len(symbols))
	columns := make([][]float64, len(symbols))
	for i, s := range symbols {
		columns[i] = returns.Column(i)
		standalone[s] = formulas.StdDev(columns[i])
	}

	var correlations []CorrelationPair
	for i := range symbols {
		for j := i + 1; j < len(symbols); j++ {
			corr := formulas.Correlation(columns[i], columns[j])
			if math.Abs(corr) >= correlationReportThreshold {
				correlations = append(correlations, CorrelationPair{
					Symbol1:     symbols[i],
					Symbol2:     symbols[j],
					Correlation: corr,
				})
			}
		}
	}

	o.log.Info().
		Int("trials", state.evaluated).
		Int("failed_draws", state.failedDraws).
		Float64("objective_value", state.bestValue).
		Dur("elapsed", time.Since(start)).
		Msg("Optimization complete")

	return &Result{
		Timestamp:      time.Now().UTC(),
		ObjectiveName:  objective.Name(),
		ObjectiveValue: state.bestValue,
		Trials:         state.evaluated,
		FailedDraws:    state.failedDraws,
		symbols:        symbols,
		weights:        weights,
		standaloneRisk: standalone,
		correlations:   correlations,
	}, nil
}

// search runs trials sequentially from a single generator. Ties keep the
// earliest-found candidate: only a strictly lower score replaces the best.
func (o *Optimizer) search(returns *ReturnMatrix, constraints *ConstraintSet, objective Objective, smp *sampler, trials int, seed int64, deadline time.Time) (searchState, error) {
	rng := rand.New(rand.NewSource(seed))
	state := searchState{bestValue: math.Inf(1)}

	for t := 0; t < trials; t++ {
		if !deadline.IsZero() && state.best != nil && time.Now().After(deadline) {
			o.log.Warn().
				Int("trial", t).
				Int("budget", trials).
				Msg("Wall-clock budget reached, returning best so far")
			break
		}

		state.evaluated++

		candidate, ok := smp.draw(rng, constraints)
		if !ok {
			state.failedDraws++
			continue
		}

		value, err := objective.Evaluate(candidate, returns)
		if err != nil {
			return state, err
		}
		if value < state.bestValue {
			state.bestValue = value
			state.best = candidate
		}
	}

	return state, nil
}

// searchParallel partitions the trial budget across workers. Worker i is
// seeded seed+i and searches independently; local bests are reduced in
// worker-index order with the same strictly-lower rule, so the outcome is
// deterministic for a fixed worker count.
func (o *Optimizer) searchParallel(returns *ReturnMatrix, constraints *ConstraintSet, objective Objective, smp *sampler, trials int, seed int64, deadline time.Time) (searchState, error) {
	workers := o.Workers
	if workers > trials {
		workers = trials
	}

	locals := make([]searchState, workers)

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		share := trials / workers
		if i < trials%workers {
			share++
		}
		workerSeed := seed + int64(i)
		i := i
		g.Go(func() error {
			state, err := o.search(returns, constraints, objective, smp, share, workerSeed, deadline)
			if err != nil {
				return err
			}
			locals[i] = state
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return searchState{}, err
	}

	merged := searchState{bestValue: math.Inf(1)}
	for _, local := range locals {
		merged.evaluated += local.evaluated
		merged.failedDraws += local.failedDraws
		if local.best != nil && local.bestValue < merged.bestValue {
			merged.bestValue = local.bestValue
			merged.best = local.best
		}
	}
	return merged, nil
}

// sampler draws candidate weight vectors. Bounds and the normalization
// target are resolved once per run, not per trial.
type sampler struct {
	n       int
	target  float64
	bounded bool
	lo      []float64
	hi      []float64
}

func newSampler(constraints *ConstraintSet) *sampler {
	s := &sampler{
		n:       constraints.NumAssets(),
		target:  constraints.normalizationTarget(),
		bounded: constraints.hasAssetBounds(),
	}
	if s.bounded {
		lo, hi := constraints.assetBounds()
		// Sampling needs finite spans; unbounded sides fall back to [0, 1]
		// of the total allocation, which feasibility checking still guards.
		for i := range lo {
			if math.IsInf(lo[i], -1) {
				lo[i] = 0
			}
			if math.IsInf(hi[i], 1) {
				hi[i] = math.Max(lo[i], s.target)
			}
		}
		s.lo, s.hi = lo, hi
	}
	return s
}

// draw samples one candidate, retrying up to maxDrawAttempts before giving
// up on the trial. When box or long-only constraints are present, values
// are drawn inside each asset's bounds and renormalized; otherwise raw
// non-negative draws are normalized to the target sum. An all-zero draw is
// redrawn rather than divided by.
func (s *sampler) draw(rng *rand.Rand, constraints *ConstraintSet) ([]float64, bool) {
	for attempt := 0; attempt < maxDrawAttempts; attempt++ {
		w := make([]float64, s.n)
		if s.bounded {
			for i := range w {
				w[i] = s.lo[i] + rng.Float64()*(s.hi[i]-s.lo[i])
			}
		} else {
			for i := range w {
				w[i] = rng.Float64()
			}
		}

		sum := floats.Sum(w)
		if sum == 0 {
			continue
		}
		floats.Scale(s.target/sum, w)

		if constraints.IsFeasible(w) {
			return w, true
		}
	}
	return nil, false
}
