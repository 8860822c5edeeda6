package bioimage

import "fmt"

// DType is the element type of an Array. The zero value means
// "unspecified" and is never the dtype of a constructed Array.
type DType int

const (
	Bool DType = iota + 1
	Uint8
	Uint16
	Float64
)

func (d DType) String() string {
	switch d {
	case Bool:
		return "bool"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Float64:
		return "float64"
	case 0:
		return "any"
	default:
		return fmt.Sprintf("dtype(%d)", int(d))
	}
}

// Valid reports whether d is one of the supported element types.
func (d DType) Valid() bool {
	return d >= Bool && d <= Float64
}

func (d DType) IsInteger() bool {
	return d == Uint8 || d == Uint16
}

func (d DType) IsFloat() bool {
	return d == Float64
}

// Max returns the largest representable value of an integer dtype.
func (d DType) Max() (float64, bool) {
	switch d {
	case Uint8:
		return 255, true
	case Uint16:
		return 65535, true
	default:
		return 0, false
	}
}

func (d DType) accepts(v float64) bool {
	switch d {
	case Bool:
		return v == 0 || v == 1
	case Uint8, Uint16:
		hi, _ := d.Max()
		return v >= 0 && v <= hi && v == float64(int64(v))
	case Float64:
		return true
	default:
		return false
	}
}
