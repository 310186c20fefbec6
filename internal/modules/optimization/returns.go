package optimization

import (
	"fmt"
	"time"

	"github.com/aristath/portfolio-optimizer/pkg/formulas"
)

// BuildReturnMatrix converts aligned price series into a ReturnMatrix.
// All series must share an identical, strictly increasing timestamp index;
// alignment is a precondition checked here, not repaired. The first period
// has no defined return, so the matrix has one row fewer than the input
// series. Purely functional over its inputs.
func BuildReturnMatrix(series []PriceSeries, returnType ReturnType) (*ReturnMatrix, error) {
	if returnType != ReturnLog && returnType != ReturnSimple {
		return nil, fmt.Errorf("%w: unknown return type %q", ErrInvalidArgument, returnType)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: no price series", ErrInvalidArgument)
	}

	ref := series[0]
	if len(ref.Points) < 2 {
		return nil, fmt.Errorf("%w: %s has %d observations, need at least 2",
			ErrInsufficientData, ref.Symbol, len(ref.Points))
	}

	symbols := make([]string, len(series))
	for i, s := range series {
		symbols[i] = s.Symbol

		if len(s.Points) < 2 {
			return nil, fmt.Errorf("%w: %s has %d observations, need at least 2",
				ErrInsufficientData, s.Symbol, len(s.Points))
		}
		if len(s.Points) != len(ref.Points) {
			return nil, fmt.Errorf("%w: %s has %d observations, %s has %d",
				ErrMisalignedSeries, s.Symbol, len(s.Points), ref.Symbol, len(ref.Points))
		}
		for j, p := range s.Points {
			if !p.Date.Equal(ref.Points[j].Date) {
				return nil, fmt.Errorf("%w: %s has %s at position %d, %s has %s",
					ErrMisalignedSeries, s.Symbol, p.Date.Format("2006-01-02"), j,
					ref.Symbol, ref.Points[j].Date.Format("2006-01-02"))
			}
			if p.AdjClose <= 0 {
				return nil, fmt.Errorf("%w: %s has non-positive price %.4f on %s",
					ErrInvalidArgument, s.Symbol, p.AdjClose, p.Date.Format("2006-01-02"))
			}
		}
	}

	rows := make([][]float64, len(ref.Points)-1)
	for t := range rows {
		rows[t] = make([]float64, len(series))
	}

	prices := make([]float64, len(ref.Points))
	for a, s := range series {
		for j, p := range s.Points {
			prices[j] = p.AdjClose
		}

		var returns []float64
		switch returnType {
		case ReturnLog:
			returns = formulas.LogReturns(prices)
		case ReturnSimple:
			returns = formulas.SimpleReturns(prices)
		}

		for t, r := range returns {
			rows[t][a] = r
		}
	}

	matrix, err := NewReturnMatrix(symbols, rows)
	if err != nil {
		return nil, err
	}

	dates := make([]time.Time, 0, len(ref.Points)-1)
	for _, p := range ref.Points[1:] {
		dates = append(dates, p.Date)
	}
	matrix.dates = dates

	return matrix, nil
}
