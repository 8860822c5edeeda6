package bioimage

import (
	"fmt"
	"math"
)

// Arrayer is anything a transformation accepts as input: a raw *Array or
// an *Image.
type Arrayer interface {
	Array() *Array
}

// Array is a dense row-major n-dimensional array with a fixed element
// type. Values are held as float64, which represents every supported
// dtype exactly.
type Array struct {
	dtype DType
	shape []int
	data  []float64
}

// New returns a zero-filled array.
func New(dtype DType, shape ...int) (*Array, error) {
	n, err := checkShape(shape)
	if err != nil {
		return nil, err
	}
	if !dtype.Valid() {
		return nil, fmt.Errorf("unsupported dtype %v", dtype)
	}
	return &Array{dtype: dtype, shape: append([]int(nil), shape...), data: make([]float64, n)}, nil
}

// FromValues copies values into a new array after checking that they fit
// the shape and are legal for dtype.
func FromValues(dtype DType, shape []int, values []float64) (*Array, error) {
	n, err := checkShape(shape)
	if err != nil {
		return nil, err
	}
	if !dtype.Valid() {
		return nil, fmt.Errorf("unsupported dtype %v", dtype)
	}
	if len(values) != n {
		return nil, fmt.Errorf("shape %v needs %d values, got %d", shape, n, len(values))
	}
	for i, v := range values {
		if !dtype.accepts(v) {
			return nil, fmt.Errorf("value %v at offset %d is not a valid %v", v, i, dtype)
		}
	}
	return &Array{
		dtype: dtype,
		shape: append([]int(nil), shape...),
		data:  append([]float64(nil), values...),
	}, nil
}

func FromFloat64(shape []int, values []float64) (*Array, error) {
	return FromValues(Float64, shape, values)
}

func FromUint8(shape []int, values []uint8) (*Array, error) {
	data := make([]float64, len(values))
	for i, v := range values {
		data[i] = float64(v)
	}
	return FromValues(Uint8, shape, data)
}

func FromUint16(shape []int, values []uint16) (*Array, error) {
	data := make([]float64, len(values))
	for i, v := range values {
		data[i] = float64(v)
	}
	return FromValues(Uint16, shape, data)
}

func FromBool(shape []int, values []bool) (*Array, error) {
	data := make([]float64, len(values))
	for i, v := range values {
		if v {
			data[i] = 1
		}
	}
	return FromValues(Bool, shape, data)
}

// FromRows builds a 2-D array from equal-length rows.
func FromRows(dtype DType, rows [][]float64) (*Array, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows")
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(r), cols)
		}
		data = append(data, r...)
	}
	return FromValues(dtype, []int{len(rows), cols}, data)
}

// Dstack stacks equal-shape 2-D slices along a new third axis, giving an
// H×W×D array.
func Dstack(slices ...*Array) (*Array, error) {
	if len(slices) == 0 {
		return nil, fmt.Errorf("nothing to stack")
	}
	first := slices[0]
	if first.NDim() != 2 {
		return nil, fmt.Errorf("stack slices must be 2-D, got %d-D", first.NDim())
	}
	rows, cols, depth := first.shape[0], first.shape[1], len(slices)
	out := &Array{
		dtype: first.dtype,
		shape: []int{rows, cols, depth},
		data:  make([]float64, rows*cols*depth),
	}
	for k, s := range slices {
		if s.dtype != first.dtype {
			return nil, fmt.Errorf("slice %d is %v, want %v", k, s.dtype, first.dtype)
		}
		if !sameShape(s.shape, first.shape) {
			return nil, fmt.Errorf("slice %d has shape %v, want %v", k, s.shape, first.shape)
		}
		for i, v := range s.data {
			out.data[i*depth+k] = v
		}
	}
	return out, nil
}

// Array implements Arrayer.
func (a *Array) Array() *Array { return a }

func (a *Array) DType() DType { return a.dtype }

func (a *Array) Shape() []int { return append([]int(nil), a.shape...) }

func (a *Array) NDim() int { return len(a.shape) }

func (a *Array) Len() int { return len(a.data) }

// At returns the element at the given index. It panics when the index does
// not match the array's rank or is out of range, like slice indexing.
func (a *Array) At(idx ...int) float64 {
	return a.data[a.offset(idx)]
}

// Set stores v at idx. v must be valid for the array's dtype.
func (a *Array) Set(v float64, idx ...int) error {
	if !a.dtype.accepts(v) {
		return fmt.Errorf("value %v is not a valid %v", v, a.dtype)
	}
	a.data[a.offset(idx)] = v
	return nil
}

// Values returns a copy of the elements in row-major order.
func (a *Array) Values() []float64 {
	return append([]float64(nil), a.data...)
}

// Bools returns the elements as booleans (non-zero is true).
func (a *Array) Bools() []bool {
	out := make([]bool, len(a.data))
	for i, v := range a.data {
		out[i] = v != 0
	}
	return out
}

func (a *Array) Clone() *Array {
	return &Array{dtype: a.dtype, shape: a.Shape(), data: a.Values()}
}

// Equal reports whether b has the same dtype, shape and elements.
func (a *Array) Equal(b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.dtype != b.dtype || !sameShape(a.shape, b.shape) {
		return false
	}
	for i := range a.data {
		if a.data[i] != b.data[i] {
			return false
		}
	}
	return true
}

// MinMax returns the smallest and largest element, ignoring NaNs.
func (a *Array) MinMax() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range a.data {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func (a *Array) String() string {
	return fmt.Sprintf("Array(%v, shape=%v)", a.dtype, a.shape)
}

func (a *Array) offset(idx []int) int {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("bioimage: index %v for %d-D array", idx, len(a.shape)))
	}
	off := 0
	for i, x := range idx {
		if x < 0 || x >= a.shape[i] {
			panic(fmt.Sprintf("bioimage: index %v out of range for shape %v", idx, a.shape))
		}
		off = off*a.shape[i] + x
	}
	return off
}

func checkShape(shape []int) (int, error) {
	if len(shape) == 0 || len(shape) > 3 {
		return 0, fmt.Errorf("arrays must have 1 to 3 dimensions, got %d", len(shape))
	}
	n := 1
	for _, d := range shape {
		if d <= 0 {
			return 0, fmt.Errorf("invalid shape %v", shape)
		}
		n *= d
	}
	return n, nil
}

// SameShape reports whether a and b have identical shapes, whatever
// their dtypes.
func (a *Array) SameShape(b *Array) bool { return sameShape(a.shape, b.shape) }

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
