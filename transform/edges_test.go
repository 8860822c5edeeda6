package transform

import (
	"math"
	"testing"

	"bioimage-transform/bioimage"
	"bioimage-transform/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepEdge(t *testing.T, dtype bioimage.DType, size int) *bioimage.Array {
	grid := make([][]float64, size)
	for y := range grid {
		grid[y] = make([]float64, size)
		for x := size / 2; x < size; x++ {
			grid[y][x] = 1
		}
	}
	return rows(t, dtype, grid)
}

func TestSobelStepEdge(t *testing.T) {
	lib := newTestLibrary(t)

	out, err := lib.Sobel(stepEdge(t, bioimage.Uint8, 4))
	require.NoError(t, err)
	assert.Equal(t, bioimage.Float64, out.DType())

	edge := 1 / math.Sqrt2
	for y := 0; y < 4; y++ {
		assert.InDeltaSlice(t, []float64{0, edge, edge, 0}, out.Values()[y*4:y*4+4], 1e-9, "row %d", y)
	}
}

func TestSobelFlatImage(t *testing.T) {
	out, err := Sobel(rows(t, bioimage.Float64, [][]float64{{3, 3, 3}, {3, 3, 3}, {3, 3, 3}}))
	require.NoError(t, err)
	assert.InDeltaSlice(t, make([]float64, 9), out.Values(), 1e-12)
}

func TestSobelMask(t *testing.T) {
	lib := newTestLibrary(t)
	in := stepEdge(t, bioimage.Float64, 6)

	full := make([][]float64, 6)
	for y := range full {
		full[y] = []float64{1, 1, 1, 1, 1, 1}
	}
	full[4][1] = 0
	mask := rows(t, bioimage.Bool, full)

	plain, err := lib.Sobel(in)
	require.NoError(t, err)
	masked, err := lib.Sobel(in, Mask(mask))
	require.NoError(t, err)

	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			border := y == 0 || x == 0 || y == 5 || x == 5
			nearHole := y >= 3 && y <= 5 && x <= 2
			if border || nearHole {
				assert.Zero(t, masked.At(y, x), "(%d, %d)", y, x)
			} else {
				assert.Equal(t, plain.At(y, x), masked.At(y, x), "(%d, %d)", y, x)
			}
		}
	}
	assert.Greater(t, masked.At(2, 2), 0.0)
}

func TestSobelMaskValidation(t *testing.T) {
	lib := newTestLibrary(t)
	in := stepEdge(t, bioimage.Float64, 4)

	_, err := lib.Sobel(in, Mask(stepEdge(t, bioimage.Uint8, 4)))
	assert.ErrorIs(t, err, core.ErrContract)

	_, err = lib.Sobel(in, Mask(stepEdge(t, bioimage.Bool, 3)))
	assert.Error(t, err)
}

func TestSobelNonFinite(t *testing.T) {
	lib := newTestLibrary(t)

	for _, tt := range nonFinite {
		t.Run(tt.name, func(t *testing.T) {
			out, err := lib.Sobel(spike(t, 8, 3, tt.bad))
			require.NoError(t, err)
			assert.Equal(t, []int{8, 8}, out.Shape())
			assert.False(t, isFinite(out.At(3, 4)), "neighbour of the bad pixel must be non-finite")
			assert.True(t, isFinite(out.At(6, 6)), "pixels away from the bad pixel must stay finite")
		})
	}
}
