package optimization

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/aristath/portfolio-optimizer/pkg/formulas"
)

// Objective maps a weight vector and a return matrix to a scalar risk score.
// Implementations must be pure and cheap: they are called once per trial,
// thousands of times per run.
type Objective interface {
	Name() string
	Evaluate(weights []float64, returns *ReturnMatrix) (float64, error)
}

// NewObjective resolves a risk measure identifier. Only minimization is
// supported, so the direction is implicit.
func NewObjective(name string) (Objective, error) {
	switch name {
	case "", "stddev":
		return StdDevObjective{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown objective %q", ErrInvalidArgument, name)
	}
}

// StdDevObjective scores a weight vector by the sample standard deviation
// (n-1 divisor) of the portfolio period-return sequence. The portfolio
// return at period t is the weighted sum of asset returns, computed as a
// single matrix-vector product rather than an element-by-element loop.
type StdDevObjective struct{}

func (StdDevObjective) Name() string { return "stddev" }

func (StdDevObjective) Evaluate(weights []float64, returns *ReturnMatrix) (float64, error) {
	if returns == nil {
		return 0, fmt.Errorf("%w: nil return matrix", ErrInvalidArgument)
	}
	if len(weights) != returns.Assets() {
		return 0, fmt.Errorf("%w: %d weights for %d assets",
			ErrInvalidArgument, len(weights), returns.Assets())
	}
	if returns.Periods() < 2 {
		return 0, fmt.Errorf("%w: %d periods, need at least 2 for sample standard deviation",
			ErrDegenerateSeries, returns.Periods())
	}

	portfolio := mat.NewVecDense(returns.Periods(), nil)
	portfolio.MulVec(returns.data, mat.NewVecDense(len(weights), weights))

	return formulas.StdDev(portfolio.RawVector().Data), nil
}
