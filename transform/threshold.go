package transform

import (
	"bioimage-transform/bioimage"
	"bioimage-transform/core"
)

// floatBins is the histogram resolution used for floating point images.
const floatBins = 256

// ThresholdOtsu marks pixels strictly above Otsu's threshold scaled by
// Multiplier. Multipliers below 1 admit more foreground.
func (l *Library) ThresholdOtsu(in bioimage.Arrayer, opts ...Option) (*bioimage.Image, error) {
	return l.apply("threshold_otsu", core.Contract{Output: bioimage.Bool}, in, opts, func(a *bioimage.Array, p params) (*bioimage.Array, error) {
		level, err := OtsuValue(a)
		if err != nil {
			return nil, err
		}
		cut := level * p.multiplier
		values := a.Values()
		for i, v := range values {
			if v > cut {
				values[i] = 1
			} else {
				values[i] = 0
			}
		}
		return bioimage.FromValues(bioimage.Bool, a.Shape(), values)
	})
}

// OtsuValue returns the Otsu threshold of a: the bin centre that
// maximises the between-class variance. Integer and boolean arrays are
// binned per integer value between their minimum and maximum, floating
// point arrays into 256 equal bins. Arrays holding NaN or infinite
// values have no usable histogram and fail with a *core.DomainError.
func OtsuValue(a *bioimage.Array) (float64, error) {
	if err := requireFinite("threshold_otsu", a); err != nil {
		return 0, err
	}
	lo, hi := a.MinMax()
	if lo == hi {
		return lo, nil
	}

	var counts, centres []float64
	if a.DType().IsFloat() {
		counts, centres = floatHistogram(a.Values(), lo, hi)
	} else {
		counts, centres = integerHistogram(a.Values(), lo, hi)
	}
	return otsuFromHistogram(counts, centres), nil
}

func integerHistogram(values []float64, lo, hi float64) (counts, centres []float64) {
	bins := int(hi-lo) + 1
	counts = make([]float64, bins)
	centres = make([]float64, bins)
	for i := range centres {
		centres[i] = lo + float64(i)
	}
	for _, v := range values {
		counts[int(v-lo)]++
	}
	return counts, centres
}

func floatHistogram(values []float64, lo, hi float64) (counts, centres []float64) {
	width := (hi - lo) / floatBins
	counts = make([]float64, floatBins)
	centres = make([]float64, floatBins)
	for i := range centres {
		centres[i] = lo + (float64(i)+0.5)*width
	}
	for _, v := range values {
		idx := int((v - lo) / width)
		switch {
		case idx < 0:
			idx = 0
		case idx >= floatBins:
			idx = floatBins - 1
		}
		counts[idx]++
	}
	return counts, centres
}

// otsuFromHistogram splits the histogram after every bin and keeps the
// first split with the largest between-class variance.
func otsuFromHistogram(counts, centres []float64) float64 {
	n := len(counts)
	weight1 := make([]float64, n)
	weight2 := make([]float64, n)
	mean1 := make([]float64, n)
	mean2 := make([]float64, n)

	var w, sum float64
	for i := 0; i < n; i++ {
		w += counts[i]
		sum += counts[i] * centres[i]
		weight1[i] = w
		mean1[i] = sum / w
	}
	w, sum = 0, 0
	for i := n - 1; i >= 0; i-- {
		w += counts[i]
		sum += counts[i] * centres[i]
		weight2[i] = w
		mean2[i] = sum / w
	}

	best, bestIdx := -1.0, 0
	for i := 0; i < n-1; i++ {
		diff := mean1[i] - mean2[i+1]
		variance := weight1[i] * weight2[i+1] * diff * diff
		if variance > best {
			best = variance
			bestIdx = i
		}
	}
	return centres[bestIdx]
}
