package optimization

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSeries(symbol string, prices []float64) PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]PricePoint, len(prices))
	for i, p := range prices {
		points[i] = PricePoint{Date: start.AddDate(0, 0, i), AdjClose: p}
	}
	return PriceSeries{Symbol: symbol, Points: points}
}

func TestBuildReturnMatrix_LogReturns(t *testing.T) {
	series := []PriceSeries{makeSeries("AAA", []float64{100, 110, 121})}

	matrix, err := BuildReturnMatrix(series, ReturnLog)
	require.NoError(t, err)

	// N prices produce N-1 return periods
	assert.Equal(t, 2, matrix.Periods())
	assert.Equal(t, 1, matrix.Assets())

	expected := math.Log(1.1)
	assert.InDelta(t, expected, matrix.At(0, 0), 1e-12)
	assert.InDelta(t, expected, matrix.At(1, 0), 1e-12)
}

func TestBuildReturnMatrix_SimpleReturns(t *testing.T) {
	series := []PriceSeries{makeSeries("AAA", []float64{100, 110, 121})}

	matrix, err := BuildReturnMatrix(series, ReturnSimple)
	require.NoError(t, err)

	assert.InDelta(t, 0.10, matrix.At(0, 0), 1e-12)
	assert.InDelta(t, 0.10, matrix.At(1, 0), 1e-12)
}

func TestBuildReturnMatrix_RowCount(t *testing.T) {
	prices := make([]float64, 50)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	series := []PriceSeries{
		makeSeries("AAA", prices),
		makeSeries("BBB", prices),
	}

	matrix, err := BuildReturnMatrix(series, ReturnLog)
	require.NoError(t, err)

	assert.Equal(t, len(prices)-1, matrix.Periods())
	assert.Equal(t, 2, matrix.Assets())
	assert.Len(t, matrix.Dates(), len(prices)-1)
}

func TestBuildReturnMatrix_InsufficientData(t *testing.T) {
	series := []PriceSeries{
		makeSeries("AAA", []float64{100, 110}),
		makeSeries("BBB", []float64{50}),
	}

	_, err := BuildReturnMatrix(series, ReturnLog)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientData))
	assert.Contains(t, err.Error(), "BBB")
}

func TestBuildReturnMatrix_MisalignedLength(t *testing.T) {
	series := []PriceSeries{
		makeSeries("AAA", []float64{100, 110, 121}),
		makeSeries("BBB", []float64{50, 55}),
	}

	_, err := BuildReturnMatrix(series, ReturnLog)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMisalignedSeries))
}

func TestBuildReturnMatrix_MisalignedDates(t *testing.T) {
	a := makeSeries("AAA", []float64{100, 110, 121})
	b := makeSeries("BBB", []float64{50, 55, 60})
	b.Points[1].Date = b.Points[1].Date.AddDate(0, 0, 1) // shift one timestamp

	_, err := BuildReturnMatrix([]PriceSeries{a, b}, ReturnLog)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMisalignedSeries))
	assert.Contains(t, err.Error(), "BBB")
}

func TestBuildReturnMatrix_InvalidInputs(t *testing.T) {
	valid := []PriceSeries{makeSeries("AAA", []float64{100, 110})}

	tests := []struct {
		name       string
		series     []PriceSeries
		returnType ReturnType
	}{
		{"no series", nil, ReturnLog},
		{"unknown return type", valid, ReturnType("geometric")},
		{"non-positive price", []PriceSeries{makeSeries("AAA", []float64{100, -1})}, ReturnLog},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildReturnMatrix(tt.series, tt.returnType)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidArgument))
		})
	}
}

func TestBuildReturnMatrix_DoesNotMutateInput(t *testing.T) {
	series := []PriceSeries{makeSeries("AAA", []float64{100, 110, 121})}
	before := append([]PricePoint(nil), series[0].Points...)

	_, err := BuildReturnMatrix(series, ReturnLog)
	require.NoError(t, err)
	assert.Equal(t, before, series[0].Points)
}
