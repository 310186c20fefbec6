package optimization

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstraints_Satisfied(t *testing.T) {
	tests := []struct {
		name       string
		constraint Constraint
		weights    []float64
		want       bool
	}{
		{"weight sum inside window", WeightSum{Min: 0.99, Max: 1.01}, []float64{0.5, 0.5}, true},
		{"weight sum below min", WeightSum{Min: 0.99, Max: 1.01}, []float64{0.4, 0.5}, false},
		{"weight sum above max", WeightSum{Min: 0.99, Max: 1.01}, []float64{0.6, 0.5}, false},
		{"long only all positive", LongOnly{}, []float64{0.3, 0.7}, true},
		{"long only zero allowed", LongOnly{}, []float64{0.0, 1.0}, true},
		{"long only short position", LongOnly{}, []float64{-0.1, 1.1}, false},
		{"box inside", Box{Min: 0.1, Max: 0.3}, []float64{0.2, 0.25}, true},
		{"box on boundary", Box{Min: 0.1, Max: 0.3}, []float64{0.1, 0.3}, true},
		{"box below min", Box{Min: 0.1, Max: 0.3}, []float64{0.05, 0.3}, false},
		{"box above max", Box{Min: 0.1, Max: 0.3}, []float64{0.2, 0.35}, false},
		{
			"per-asset box each against own bound",
			BoxPerAsset{Min: []float64{0.0, 0.2}, Max: []float64{0.1, 0.8}},
			[]float64{0.05, 0.5},
			true,
		},
		{
			"per-asset box violates one bound",
			BoxPerAsset{Min: []float64{0.0, 0.2}, Max: []float64{0.1, 0.8}},
			[]float64{0.15, 0.5},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.constraint.Satisfied(tt.weights))
		})
	}
}

func TestConstraintSet_IsFeasible(t *testing.T) {
	cs := NewConstraintSet([]string{"A", "B", "C"},
		WeightSum{Min: 0.99, Max: 1.01},
		LongOnly{},
		Box{Min: 0.0, Max: 0.5},
	)

	assert.True(t, cs.IsFeasible([]float64{0.3, 0.3, 0.4}))
	assert.False(t, cs.IsFeasible([]float64{0.6, 0.2, 0.2}))  // box max
	assert.False(t, cs.IsFeasible([]float64{-0.1, 0.6, 0.5})) // long only
	assert.False(t, cs.IsFeasible([]float64{0.5, 0.5}))       // wrong length
}

func TestConstraintSet_DuplicatesMostRestrictiveWins(t *testing.T) {
	cs := NewConstraintSet([]string{"A", "B"},
		Box{Min: 0.0, Max: 1.0},
	)
	cs.Add(Box{Min: 0.1, Max: 0.3})

	assert.True(t, cs.IsFeasible([]float64{0.2, 0.3}))
	assert.False(t, cs.IsFeasible([]float64{0.05, 0.3})) // inside first box, outside second
}

func TestConstraintSet_ValidateFeasible(t *testing.T) {
	cs := NewConstraintSet([]string{"A", "B", "C", "D", "E"},
		WeightSum{Min: 0.99, Max: 1.01},
		LongOnly{},
		Box{Min: 0.1, Max: 0.3},
	)
	assert.NoError(t, cs.Validate())
}

func TestConstraintSet_ValidateMinBoundsExceedSumMax(t *testing.T) {
	// Five assets pinned at 0.3 must sum to 1.5, above the 1.01 cap.
	cs := NewConstraintSet([]string{"A", "B", "C", "D", "E"},
		WeightSum{Min: 0.0, Max: 1.01},
		Box{Min: 0.3, Max: 0.3},
	)

	err := cs.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInfeasibleConstraintSet))
}

func TestConstraintSet_ValidateMaxBoundsBelowSumMin(t *testing.T) {
	cs := NewConstraintSet([]string{"A", "B", "C", "D", "E"},
		WeightSum{Min: 0.9, Max: 1.0},
		Box{Min: 0.0, Max: 0.1},
	)

	err := cs.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInfeasibleConstraintSet))
}

func TestConstraintSet_ValidateContradictoryWeightSums(t *testing.T) {
	cs := NewConstraintSet([]string{"A", "B"},
		WeightSum{Min: 0.9, Max: 1.0},
		WeightSum{Min: 1.2, Max: 1.5},
	)

	err := cs.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInfeasibleConstraintSet))
}

func TestConstraintSet_ValidatePerAssetLengthMismatch(t *testing.T) {
	cs := NewConstraintSet([]string{"A", "B", "C"},
		BoxPerAsset{Min: []float64{0, 0}, Max: []float64{1, 1}},
	)

	err := cs.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestConstraintSet_ValidateLongOnlySkipsUnboundedSides(t *testing.T) {
	// Long-only gives finite lower bounds but infinite uppers; only the
	// minimum-side check is meaningful.
	cs := NewConstraintSet([]string{"A", "B"},
		WeightSum{Min: 0.99, Max: 1.01},
		LongOnly{},
	)
	assert.NoError(t, cs.Validate())
}

func TestConstraintSet_AssetBounds(t *testing.T) {
	cs := NewConstraintSet([]string{"A", "B"},
		LongOnly{},
		Box{Min: -0.5, Max: 0.4},
		BoxPerAsset{Min: []float64{0.1, math.Inf(-1)}, Max: []float64{math.Inf(1), 0.2}},
	)

	lo, hi := cs.assetBounds()
	assert.Equal(t, []float64{0.1, 0.0}, lo)
	assert.Equal(t, []float64{0.4, 0.2}, hi)
}

func TestConstraintSet_NormalizationTarget(t *testing.T) {
	tests := []struct {
		name string
		cs   *ConstraintSet
		want float64
	}{
		{"no weight sum defaults to 1", NewConstraintSet([]string{"A"}, LongOnly{}), 1.0},
		{"window containing 1", NewConstraintSet([]string{"A"}, WeightSum{Min: 0.9, Max: 1.1}), 1.0},
		{"window below 1 clamps down", NewConstraintSet([]string{"A"}, WeightSum{Min: 0.2, Max: 0.5}), 0.5},
		{"window above 1 clamps up", NewConstraintSet([]string{"A"}, WeightSum{Min: 1.5, Max: 2.0}), 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cs.normalizationTarget())
		})
	}
}
