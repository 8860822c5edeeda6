package transform

import (
	"math"
	"testing"

	"bioimage-transform/bioimage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLibrary returns an untracked library that fails the test if any
// Mat is still open when the test ends.
func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	lib := New(nil)
	t.Cleanup(func() {
		assert.Zero(t, lib.ActiveMats(), "OpenCV Mats leaked: %v", lib.mem.Active())
	})
	return lib
}

func rows(t *testing.T, dtype bioimage.DType, values [][]float64) *bioimage.Array {
	t.Helper()
	a, err := bioimage.FromRows(dtype, values)
	require.NoError(t, err)
	return a
}

// spike returns a size×size ramp with bad written at (at, at).
func spike(t *testing.T, size, at int, bad float64) *bioimage.Array {
	grid := make([][]float64, size)
	for y := range grid {
		grid[y] = make([]float64, size)
		for x := range grid[y] {
			grid[y][x] = float64(x+y) / float64(2*size)
		}
	}
	grid[at][at] = bad
	return rows(t, bioimage.Float64, grid)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
