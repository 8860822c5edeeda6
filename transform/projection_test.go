package transform

import (
	"math/rand"
	"testing"

	"bioimage-transform/bioimage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoSliceStack(t *testing.T, dtype bioimage.DType, s0, s1 [][]float64) *bioimage.Array {
	t.Helper()
	stack, err := bioimage.Dstack(rows(t, dtype, s0), rows(t, dtype, s1))
	require.NoError(t, err)
	return stack
}

func TestMaxMinIntensityProjection(t *testing.T) {
	lib := newTestLibrary(t)
	stack := twoSliceStack(t, bioimage.Uint8,
		[][]float64{{0, 1, 2}, {0, 1, 2}, {0, 1, 2}},
		[][]float64{{2, 1, 0}, {2, 1, 0}, {2, 1, 0}},
	)

	maxImg, err := lib.MaxIntensityProjection(stack)
	require.NoError(t, err)
	assert.Equal(t, bioimage.Uint8, maxImg.DType())
	assert.Equal(t, []int{3, 3}, maxImg.Shape())
	assert.Equal(t, []float64{2, 1, 2, 2, 1, 2, 2, 1, 2}, maxImg.Values())

	minImg, err := lib.MinIntensityProjection(stack)
	require.NoError(t, err)
	assert.Equal(t, bioimage.Uint8, minImg.DType())
	assert.Equal(t, []float64{0, 1, 0, 0, 1, 0, 0, 1, 0}, minImg.Values())
}

func TestMeanIntensityProjection(t *testing.T) {
	for _, dtype := range []bioimage.DType{bioimage.Uint8, bioimage.Float64} {
		t.Run(dtype.String(), func(t *testing.T) {
			stack := twoSliceStack(t, dtype,
				[][]float64{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}},
				[][]float64{{0, 1, 2}, {0, 1, 2}, {0, 1, 2}},
			)
			mean, err := MeanIntensityProjection(stack)
			require.NoError(t, err)
			assert.Equal(t, bioimage.Float64, mean.DType())
			assert.Equal(t, []float64{0, 0.5, 1, 0.5, 1, 1.5, 1, 1.5, 2}, mean.Values())
		})
	}
}

func TestMedianIntensityProjection(t *testing.T) {
	slices := []*bioimage.Array{
		rows(t, bioimage.Uint16, [][]float64{{9, 1}}),
		rows(t, bioimage.Uint16, [][]float64{{1, 2}}),
		rows(t, bioimage.Uint16, [][]float64{{4, 3}}),
	}
	odd, err := bioimage.Dstack(slices...)
	require.NoError(t, err)

	median, err := MedianIntensityProjection(odd)
	require.NoError(t, err)
	assert.Equal(t, bioimage.Float64, median.DType())
	assert.Equal(t, []float64{4, 2}, median.Values())

	even, err := bioimage.Dstack(append(slices, rows(t, bioimage.Uint16, [][]float64{{5, 10}}))...)
	require.NoError(t, err)
	median, err = MedianIntensityProjection(even)
	require.NoError(t, err)
	assert.Equal(t, []float64{4.5, 2.5}, median.Values())

	assert.Equal(t, []float64{9, 1, 4, 5}, even.Values()[:4], "input stack was reordered")
}

func TestProjectionSingleSlice(t *testing.T) {
	slice := rows(t, bioimage.Uint8, [][]float64{{3, 1}, {4, 1}})
	stack, err := bioimage.Dstack(slice)
	require.NoError(t, err)

	for name, project := range map[string]func(bioimage.Arrayer, ...Option) (*bioimage.Image, error){
		"max":    MaxIntensityProjection,
		"min":    MinIntensityProjection,
		"mean":   MeanIntensityProjection,
		"median": MedianIntensityProjection,
	} {
		t.Run(name, func(t *testing.T) {
			out, err := project(stack)
			require.NoError(t, err)
			assert.Equal(t, slice.Values(), out.Values())
			assert.Equal(t, []int{2, 2}, out.Shape())
		})
	}
}

func TestProjectionRejectsFlatImages(t *testing.T) {
	_, err := MaxIntensityProjection(rows(t, bioimage.Uint8, [][]float64{{1, 2}}))
	assert.Error(t, err)
}

func TestProjectionReturnsTaggedImage(t *testing.T) {
	stack := twoSliceStack(t, bioimage.Uint8, [][]float64{{1}}, [][]float64{{2}})
	out, err := MaxIntensityProjection(stack)
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID())
	assert.Equal(t, []string{"Created image from array", "Applied max_intensity_projection transform"}, out.History())
}

func TestMaxProjectionDominatesMin(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		h, w, d := 1+rng.Intn(6), 1+rng.Intn(6), 1+rng.Intn(5)
		values := make([]float64, h*w*d)
		for i := range values {
			values[i] = float64(rng.Intn(65536))
		}
		stack, err := bioimage.FromValues(bioimage.Uint16, []int{h, w, d}, values)
		require.NoError(t, err)

		hi, err := MaxIntensityProjection(stack)
		require.NoError(t, err)
		lo, err := MinIntensityProjection(stack)
		require.NoError(t, err)
		mean, err := MeanIntensityProjection(stack)
		require.NoError(t, err)

		for i, m := range hi.Values() {
			assert.GreaterOrEqual(t, m, lo.Values()[i])
			assert.GreaterOrEqual(t, m, mean.Values()[i])
			assert.LessOrEqual(t, lo.Values()[i], mean.Values()[i])
		}
	}
}
