package transform

import (
	"math"
	"testing"

	"bioimage-transform/bioimage"
	"bioimage-transform/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdOtsu(t *testing.T) {
	values := [][]float64{{1, 2, 3}, {7, 8, 9}}

	tests := []struct {
		name  string
		dtype bioimage.DType
		opts  []Option
		want  []bool
	}{
		{"uint8", bioimage.Uint8, nil, []bool{false, false, false, true, true, true}},
		{"float", bioimage.Float64, nil, []bool{false, false, false, true, true, true}},
		{"uint8 multiplier", bioimage.Uint8, []Option{Multiplier(0.6)}, []bool{false, true, true, true, true, true}},
		{"uint16 strict multiplier", bioimage.Uint16, []Option{Multiplier(3)}, []bool{false, false, false, false, false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ThresholdOtsu(rows(t, tt.dtype, values), tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, bioimage.Bool, out.DType())
			assert.Equal(t, tt.want, out.Array().Bools())
		})
	}
}

func TestOtsuValue(t *testing.T) {
	tests := []struct {
		name string
		in   *bioimage.Array
		want float64
	}{
		{"uint8", rows(t, bioimage.Uint8, [][]float64{{1, 2, 3}, {7, 8, 9}}), 3},
		{"float", rows(t, bioimage.Float64, [][]float64{{1, 2, 3}, {7, 8, 9}}), 1 + 64.5*8.0/256},
		{"constant", rows(t, bioimage.Uint8, [][]float64{{5, 5}}), 5},
		{"mask", rows(t, bioimage.Bool, [][]float64{{0, 1, 1}}), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OtsuValue(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestThresholdOtsuNonFinite(t *testing.T) {
	tests := []struct {
		name   string
		values [][]float64
	}{
		{"nan", [][]float64{{1, 2, math.NaN()}, {7, 8, 9}}},
		{"positive infinity", [][]float64{{1, 2, math.Inf(1)}, {7, 8, 9}}},
		{"negative infinity", [][]float64{{math.Inf(-1), 2, 3}, {7, 8, 9}}},
		{"all nan", [][]float64{{math.NaN(), math.NaN()}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := rows(t, bioimage.Float64, tt.values)

			_, err := OtsuValue(a)
			assert.ErrorIs(t, err, core.ErrDomain)

			var de *core.DomainError
			_, err = ThresholdOtsu(a)
			require.ErrorAs(t, err, &de)
			assert.Equal(t, "threshold_otsu", de.Transform)
		})
	}
}

func TestFloatHistogramClampsToEdgeBins(t *testing.T) {
	counts, centres := floatHistogram([]float64{-1, 0, 0.5, 1, 2}, 0, 1)
	require.Len(t, counts, floatBins)
	require.Len(t, centres, floatBins)
	assert.Equal(t, 2.0, counts[0])
	assert.Equal(t, 1.0, counts[floatBins/2])
	assert.Equal(t, 2.0, counts[floatBins-1])
}

func TestThresholdOtsuConstantImage(t *testing.T) {
	out, err := ThresholdOtsu(rows(t, bioimage.Uint8, [][]float64{{5, 5}, {5, 5}}))
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, false, false}, out.Array().Bools())
}
