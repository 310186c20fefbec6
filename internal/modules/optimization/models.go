package optimization

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
)

// ReturnType selects how period-over-period returns are computed from prices.
type ReturnType string

const (
	ReturnLog    ReturnType = "log"
	ReturnSimple ReturnType = "simple"
)

// PricePoint is a single (timestamp, adjusted close) observation.
type PricePoint struct {
	Date     time.Time
	AdjClose float64
}

// PriceSeries is an ordered sequence of price observations for one symbol.
// Timestamps must be strictly increasing with no duplicates; the series is
// read-only input to BuildReturnMatrix.
type PriceSeries struct {
	Symbol string
	Points []PricePoint
}

// RunSpec describes a single optimization run: which symbols over which
// window, how returns are computed, the constraints, and the search budget.
type RunSpec struct {
	Symbols     []string
	Period      string // data-provider range, e.g. "1y", "5y"
	ReturnType  ReturnType
	Objective   string // risk measure identifier, e.g. "stddev"
	Constraints []Constraint
	Trials      int
	Seed        int64
	Workers     int // <= 1 runs the search serially
}

// ReturnMatrix is a period-by-asset table of returns. Rows are time-ordered
// periods aligned across all assets; columns follow the symbol order given
// at construction. Immutable after construction.
type ReturnMatrix struct {
	symbols []string
	dates   []time.Time // period-end timestamp per row, may be nil
	data    *mat.Dense  // rows = periods, cols = assets
}

// NewReturnMatrix builds a ReturnMatrix from row-major return data.
// Every row must have one entry per symbol.
func NewReturnMatrix(symbols []string, rows [][]float64) (*ReturnMatrix, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: no symbols", ErrInvalidArgument)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no return periods", ErrInvalidArgument)
	}

	data := mat.NewDense(len(rows), len(symbols), nil)
	for t, row := range rows {
		if len(row) != len(symbols) {
			return nil, fmt.Errorf("%w: row %d has %d entries, want %d",
				ErrInvalidArgument, t, len(row), len(symbols))
		}
		data.SetRow(t, row)
	}

	return &ReturnMatrix{
		symbols: append([]string(nil), symbols...),
		data:    data,
	}, nil
}

// Symbols returns the asset symbols in column order.
func (m *ReturnMatrix) Symbols() []string {
	return append([]string(nil), m.symbols...)
}

// Periods returns the number of return periods (rows).
func (m *ReturnMatrix) Periods() int {
	r, _ := m.data.Dims()
	return r
}

// Assets returns the number of assets (columns).
func (m *ReturnMatrix) Assets() int {
	return len(m.symbols)
}

// At returns the return of asset a over period t.
func (m *ReturnMatrix) At(t, a int) float64 {
	return m.data.At(t, a)
}

// Column returns a copy of the return series for the asset at index a.
func (m *ReturnMatrix) Column(a int) []float64 {
	col := make([]float64, m.Periods())
	mat.Col(col, a, m.data)
	return col
}

// Dates returns the period-end timestamps, one per row. May be nil when the
// matrix was constructed from raw return data rather than price series.
func (m *ReturnMatrix) Dates() []time.Time {
	if m.dates == nil {
		return nil
	}
	return append([]time.Time(nil), m.dates...)
}
