package conversion

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"bioimage-transform/bioimage"
	"bioimage-transform/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// MatTypeFor returns the single-channel Mat type an array of the given
// dtype is exchanged in. Booleans travel as 0/1 bytes.
func MatTypeFor(dtype bioimage.DType) (gocv.MatType, error) {
	switch dtype {
	case bioimage.Bool, bioimage.Uint8:
		return gocv.MatTypeCV8UC1, nil
	case bioimage.Uint16:
		return gocv.MatTypeCV16UC1, nil
	case bioimage.Float64:
		return gocv.MatTypeCV64FC1, nil
	default:
		return 0, fmt.Errorf("no Mat type for dtype %v", dtype)
	}
}

// ToMat copies a 2-D array into a new Mat of its natural type.
func ToMat(a *bioimage.Array, tracker safe.MemoryTracker, tag string) (*safe.Mat, error) {
	matType, err := MatTypeFor(a.DType())
	if err != nil {
		return nil, err
	}
	return ToMatAs(a, matType, tracker, tag)
}

// ToMatAs copies a 2-D array into a new Mat of the requested type.
func ToMatAs(a *bioimage.Array, matType gocv.MatType, tracker safe.MemoryTracker, tag string) (*safe.Mat, error) {
	if a.NDim() != 2 {
		return nil, fmt.Errorf("%s: Mat conversion needs a 2-D array, got %d-D", tag, a.NDim())
	}
	if err := safe.ValidateMatType(matType, tag); err != nil {
		return nil, err
	}

	shape := a.Shape()
	dst, err := safe.NewMatWithTracker(shape[0], shape[1], matType, tracker, tag)
	if err != nil {
		return nil, fmt.Errorf("destination Mat creation failed: %w", err)
	}

	if err := fill(dst, a.Values()); err != nil {
		dst.Close()
		return nil, err
	}
	return dst, nil
}

func fill(dst *safe.Mat, values []float64) error {
	mat := dst.GetMat()

	switch dst.Type() {
	case gocv.MatTypeCV8UC1:
		buf, err := mat.DataPtrUint8()
		if err != nil {
			return fmt.Errorf("Mat data access failed: %w", err)
		}
		for i, v := range values {
			buf[i] = uint8(math.Round(v))
		}
	case gocv.MatTypeCV16UC1:
		buf, err := mat.DataPtrUint16()
		if err != nil {
			return fmt.Errorf("Mat data access failed: %w", err)
		}
		for i, v := range values {
			buf[i] = uint16(math.Round(v))
		}
	case gocv.MatTypeCV64FC1:
		buf, err := mat.DataPtrFloat64()
		if err != nil {
			return fmt.Errorf("Mat data access failed: %w", err)
		}
		copy(buf, values)
	default:
		return fmt.Errorf("unsupported MatType %d", int(dst.Type()))
	}
	return nil
}

// FromMat reads a single-channel Mat back into an array of the given
// dtype. For Bool every non-zero element becomes true.
func FromMat(src *safe.Mat, dtype bioimage.DType) (*bioimage.Array, error) {
	if err := safe.ValidateMatForOperation(src, "Mat to array conversion"); err != nil {
		return nil, err
	}

	values, err := Values(src)
	if err != nil {
		return nil, err
	}
	if dtype == bioimage.Bool {
		for i, v := range values {
			if v != 0 {
				values[i] = 1
			}
		}
	}
	return bioimage.FromValues(dtype, []int{src.Rows(), src.Cols()}, values)
}

// Values returns the elements of a single-channel Mat in row-major order.
func Values(src *safe.Mat) ([]float64, error) {
	mat := src.GetMat()
	n := src.Rows() * src.Cols()
	values := make([]float64, n)

	switch src.Type() {
	case gocv.MatTypeCV8UC1:
		buf, err := mat.DataPtrUint8()
		if err != nil {
			return nil, fmt.Errorf("Mat data access failed: %w", err)
		}
		for i := 0; i < n; i++ {
			values[i] = float64(buf[i])
		}
	case gocv.MatTypeCV16UC1:
		buf, err := mat.DataPtrUint16()
		if err != nil {
			return nil, fmt.Errorf("Mat data access failed: %w", err)
		}
		for i := 0; i < n; i++ {
			values[i] = float64(buf[i])
		}
	case gocv.MatTypeCV64FC1:
		buf, err := mat.DataPtrFloat64()
		if err != nil {
			return nil, fmt.Errorf("Mat data access failed: %w", err)
		}
		copy(values, buf[:n])
	default:
		return nil, fmt.Errorf("unsupported MatType %d", int(src.Type()))
	}
	return values, nil
}

// ToGoImage converts a 2-D Uint8 or Uint16 array to a Go grayscale image.
func ToGoImage(a *bioimage.Array) (image.Image, error) {
	if a.NDim() != 2 {
		return nil, fmt.Errorf("image conversion needs a 2-D array, got %d-D", a.NDim())
	}
	shape := a.Shape()
	rows, cols := shape[0], shape[1]
	values := a.Values()

	switch a.DType() {
	case bioimage.Uint8:
		img := image.NewGray(image.Rect(0, 0, cols, rows))
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				img.SetGray(x, y, color.Gray{Y: uint8(values[y*cols+x])})
			}
		}
		return img, nil
	case bioimage.Uint16:
		img := image.NewGray16(image.Rect(0, 0, cols, rows))
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				img.SetGray16(x, y, color.Gray16{Y: uint16(values[y*cols+x])})
			}
		}
		return img, nil
	default:
		return nil, fmt.Errorf("no grayscale image type for dtype %v", a.DType())
	}
}

// Displayable converts a 2-D array into something an image encoder can
// store: Uint8 or Uint16. With safeRange every dtype is min-max
// normalised into the full 8-bit range. Otherwise booleans become 0/255,
// integers pass through and floats are clipped to [0,1] and scaled.
func Displayable(a *bioimage.Array, safeRange bool) (*bioimage.Array, error) {
	if a.NDim() != 2 {
		return nil, fmt.Errorf("only 2-D arrays can be written, got %d-D", a.NDim())
	}
	if safeRange {
		return scaleTo8Bit(bioimage.Normalise(a).Values(), a.Shape())
	}

	switch a.DType() {
	case bioimage.Uint8, bioimage.Uint16:
		return a.Clone(), nil
	case bioimage.Bool:
		return scaleTo8Bit(a.Values(), a.Shape())
	case bioimage.Float64:
		values := a.Values()
		for i, v := range values {
			values[i] = math.Max(0, math.Min(1, v))
		}
		return scaleTo8Bit(values, a.Shape())
	default:
		return nil, fmt.Errorf("cannot write dtype %v", a.DType())
	}
}

// scaleTo8Bit maps unit-range values onto 0..255.
func scaleTo8Bit(unit []float64, shape []int) (*bioimage.Array, error) {
	out := make([]float64, len(unit))
	for i, v := range unit {
		out[i] = math.Round(v * 255)
	}
	return bioimage.FromValues(bioimage.Uint8, shape, out)
}
