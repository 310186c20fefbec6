package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/portfolio-optimizer/internal/modules/optimization"
)

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "optimizer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSpec_Full(t *testing.T) {
	path := writeSpec(t, `
symbols: [AAPL, MSFT, GOOG, AMZN, META]
period: 5y
return_type: simple
objective:
  measure: stddev
  direction: minimize
trials: 5000
seed: 7
workers: 4
constraints:
  weight_sum: {min: 0.98, max: 1.02}
  long_only: true
  box: {min: 0.1, max: 0.3}
`)

	spec, err := LoadSpec(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT", "GOOG", "AMZN", "META"}, spec.Symbols)
	assert.Equal(t, "5y", spec.Period)
	assert.Equal(t, optimization.ReturnSimple, spec.ReturnType)
	assert.Equal(t, "stddev", spec.Objective)
	assert.Equal(t, 5000, spec.Trials)
	assert.Equal(t, int64(7), spec.Seed)
	assert.Equal(t, 4, spec.Workers)

	require.Len(t, spec.Constraints, 3)
	assert.Equal(t, optimization.WeightSum{Min: 0.98, Max: 1.02}, spec.Constraints[0])
	assert.Equal(t, optimization.LongOnly{}, spec.Constraints[1])
	assert.Equal(t, optimization.Box{Min: 0.1, Max: 0.3}, spec.Constraints[2])
}

func TestLoadSpec_Defaults(t *testing.T) {
	path := writeSpec(t, `
symbols: [AAPL, MSFT]
`)

	spec, err := LoadSpec(path)
	require.NoError(t, err)

	assert.Equal(t, "1y", spec.Period)
	assert.Equal(t, optimization.ReturnLog, spec.ReturnType)
	assert.Equal(t, "stddev", spec.Objective)
	assert.Equal(t, 10000, spec.Trials)
	assert.Equal(t, int64(42), spec.Seed)
	assert.Equal(t, 1, spec.Workers)

	// Default constraints: weight sum near 1 and long-only
	require.Len(t, spec.Constraints, 2)
	assert.Equal(t, optimization.WeightSum{Min: 0.99, Max: 1.01}, spec.Constraints[0])
	assert.Equal(t, optimization.LongOnly{}, spec.Constraints[1])
}

func TestLoadSpec_PerSymbolBox(t *testing.T) {
	path := writeSpec(t, `
symbols: [AAPL, MSFT, GOOG]
constraints:
  box_per_symbol:
    MSFT: {min: 0.2, max: 0.5}
`)

	spec, err := LoadSpec(path)
	require.NoError(t, err)

	var box optimization.BoxPerAsset
	found := false
	for _, c := range spec.Constraints {
		if b, ok := c.(optimization.BoxPerAsset); ok {
			box = b
			found = true
		}
	}
	require.True(t, found)

	// MSFT is the second symbol; the others stay unbounded
	assert.Equal(t, 0.2, box.Min[1])
	assert.Equal(t, 0.5, box.Max[1])
	assert.True(t, box.Min[0] < 0 && box.Max[0] > 1)
}

func TestLoadSpec_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing symbols", `period: 1y`},
		{"negative trials", "symbols: [AAPL]\ntrials: -1"},
		{"bad return type", "symbols: [AAPL]\nreturn_type: geometric"},
		{"maximize unsupported", "symbols: [AAPL]\nobjective:\n  direction: maximize"},
		{"duplicate symbol", "symbols: [AAPL, AAPL]"},
		{"unknown box symbol", "symbols: [AAPL]\nconstraints:\n  box_per_symbol:\n    TSLA: {min: 0, max: 1}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSpec(t, tt.content)
			_, err := LoadSpec(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadSpec_MissingFile(t *testing.T) {
	_, err := LoadSpec(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
