package optimization

import "errors"

// Terminal error conditions for an optimization run. None of these are
// retried internally; callers decide whether re-fetching data or relaxing
// constraints is worth another run. Call sites wrap these with context
// (symbol, constraint, attempt counts) via fmt.Errorf and %w.
var (
	// ErrInsufficientData is returned when a price series has fewer than
	// two observations, so no return can be computed.
	ErrInsufficientData = errors.New("insufficient price data")

	// ErrMisalignedSeries is returned when input price series do not share
	// an identical timestamp index.
	ErrMisalignedSeries = errors.New("misaligned price series")

	// ErrInfeasibleConstraintSet is returned by ConstraintSet.Validate when
	// the constraints contradict each other before any sampling is done.
	ErrInfeasibleConstraintSet = errors.New("infeasible constraint set")

	// ErrDegenerateSeries is returned when a return series has fewer than
	// two periods, leaving the sample standard deviation undefined.
	ErrDegenerateSeries = errors.New("degenerate return series")

	// ErrNoFeasibleSolution is returned when the search exhausts its trial
	// budget without ever drawing a feasible candidate.
	ErrNoFeasibleSolution = errors.New("no feasible solution found")

	// ErrInvalidArgument is returned for malformed inputs such as a
	// non-positive trial count or an unknown objective.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDataSource marks failures of the external price provider
	// (network failure, unknown symbol, empty range). PriceSource
	// implementations wrap their provider errors with this sentinel
	// before they reach the return builder.
	ErrDataSource = errors.New("data source failure")
)
