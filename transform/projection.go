package transform

import (
	"fmt"
	"sort"

	"bioimage-transform/bioimage"
	"bioimage-transform/core"
)

// MaxIntensityProjection reduces an H×W×D stack to the per-pixel maximum
// along the depth axis.
func (l *Library) MaxIntensityProjection(in bioimage.Arrayer, opts ...Option) (*bioimage.Image, error) {
	return l.apply("max_intensity_projection", core.Contract{}, in, opts, func(a *bioimage.Array, _ params) (*bioimage.Array, error) {
		return reduceStack(a, 0, maxOf)
	})
}

func (l *Library) MinIntensityProjection(in bioimage.Arrayer, opts ...Option) (*bioimage.Image, error) {
	return l.apply("min_intensity_projection", core.Contract{}, in, opts, func(a *bioimage.Array, _ params) (*bioimage.Array, error) {
		return reduceStack(a, 0, minOf)
	})
}

// MeanIntensityProjection always produces Float64.
func (l *Library) MeanIntensityProjection(in bioimage.Arrayer, opts ...Option) (*bioimage.Image, error) {
	return l.apply("mean_intensity_projection", core.Contract{Output: bioimage.Float64}, in, opts, func(a *bioimage.Array, _ params) (*bioimage.Array, error) {
		return reduceStack(a, bioimage.Float64, meanOf)
	})
}

// MedianIntensityProjection always produces Float64; an even depth
// averages the two middle values.
func (l *Library) MedianIntensityProjection(in bioimage.Arrayer, opts ...Option) (*bioimage.Image, error) {
	return l.apply("median_intensity_projection", core.Contract{Output: bioimage.Float64}, in, opts, func(a *bioimage.Array, _ params) (*bioimage.Array, error) {
		return reduceStack(a, bioimage.Float64, medianOf)
	})
}

// reduceStack applies reduce to every depth column of a 3-D array. A zero
// dtype keeps the input dtype.
func reduceStack(a *bioimage.Array, dtype bioimage.DType, reduce func([]float64) float64) (*bioimage.Array, error) {
	if a.NDim() != 3 {
		return nil, fmt.Errorf("projection needs an H×W×D stack, got %d-D", a.NDim())
	}
	shape := a.Shape()
	rows, cols, depth := shape[0], shape[1], shape[2]
	if dtype == 0 {
		dtype = a.DType()
	}

	values := a.Values()
	out := make([]float64, rows*cols)
	column := make([]float64, depth)
	for i := range out {
		copy(column, values[i*depth:(i+1)*depth])
		out[i] = reduce(column)
	}
	return bioimage.FromValues(dtype, []int{rows, cols}, out)
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func minOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func meanOf(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// medianOf sorts xs in place.
func medianOf(xs []float64) float64 {
	sort.Float64s(xs)
	n := len(xs)
	if n%2 == 1 {
		return xs[n/2]
	}
	return (xs[n/2-1] + xs[n/2]) / 2
}
