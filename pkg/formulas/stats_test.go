package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-12)
}

func TestStdDev_SampleDivisor(t *testing.T) {
	// Sample variance of [1,2,3,4] is 5/3 (n-1 divisor), not 5/4.
	assert.InDelta(t, math.Sqrt(5.0/3.0), StdDev([]float64{1, 2, 3, 4}), 1e-12)

	// Undefined for fewer than 2 observations
	assert.Equal(t, 0.0, StdDev([]float64{1}))
	assert.Equal(t, 0.0, StdDev(nil))
}

func TestVariance(t *testing.T) {
	assert.InDelta(t, 5.0/3.0, Variance([]float64{1, 2, 3, 4}), 1e-12)
	assert.Equal(t, 0.0, Variance([]float64{1}))
}

func TestCorrelation(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{2, 4, 6, 8}
	assert.InDelta(t, 1.0, Correlation(x, y), 1e-12)

	inverse := []float64{8, 6, 4, 2}
	assert.InDelta(t, -1.0, Correlation(x, inverse), 1e-12)

	assert.Equal(t, 0.0, Correlation(x, []float64{1, 2}))
}

func TestCovariance(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{2, 4, 6, 8}
	assert.InDelta(t, 2*Variance(x), Covariance(x, y), 1e-12)
}

func TestAnnualizedVolatility(t *testing.T) {
	returns := []float64{0.01, -0.02, 0.015, 0.005}
	expected := StdDev(returns) * math.Sqrt(252)
	assert.InDelta(t, expected, AnnualizedVolatility(returns), 1e-12)
}

func TestSimpleReturns(t *testing.T) {
	returns := SimpleReturns([]float64{100, 110, 121})
	assert.Len(t, returns, 2)
	assert.InDelta(t, 0.10, returns[0], 1e-12)
	assert.InDelta(t, 0.10, returns[1], 1e-12)

	assert.Empty(t, SimpleReturns([]float64{100}))
}

func TestLogReturns(t *testing.T) {
	returns := LogReturns([]float64{100, 110, 121})
	assert.Len(t, returns, 2)
	assert.InDelta(t, math.Log(1.1), returns[0], 1e-12)
	assert.InDelta(t, math.Log(1.1), returns[1], 1e-12)

	assert.Empty(t, LogReturns(nil))
}
