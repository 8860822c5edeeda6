package bioimage

import "math"

// Normalise rescales a into the unit range as a Float64 array. A constant
// array has no range to stretch: it becomes all ones when its value is
// positive and all zeros otherwise.
func Normalise(a *Array) *Array {
	lo, hi := a.MinMax()
	out := &Array{dtype: Float64, shape: a.Shape(), data: make([]float64, len(a.data))}
	span := hi - lo
	if span == 0 {
		if lo > 0 {
			for i := range out.data {
				out.data[i] = 1
			}
		}
		return out
	}
	for i, v := range a.data {
		out.data[i] = (v - lo) / span
	}
	return out
}

// IsConstant reports whether every element of a has the same value.
func IsConstant(a *Array) bool {
	lo, hi := a.MinMax()
	return lo == hi
}

// AllFinite reports whether a holds no NaN or infinite element.
func AllFinite(a *Array) bool {
	for _, v := range a.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
