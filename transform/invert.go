package transform

import (
	"fmt"

	"bioimage-transform/bioimage"
	"bioimage-transform/core"
	"bioimage-transform/internal/opencv/conversion"
	"bioimage-transform/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Invert negates boolean images and reflects unsigned integer images
// through the dtype's maximum, so 0 becomes 255 for Uint8. The reflection
// assumes the data uses the full range of its dtype. 2-D images go
// through OpenCV; other ranks are reflected element by element. Float64
// has no maximum to reflect through and is rejected.
func (l *Library) Invert(in bioimage.Arrayer, opts ...Option) (*bioimage.Image, error) {
	return l.apply("invert", core.Contract{}, in, opts, func(a *bioimage.Array, _ params) (*bioimage.Array, error) {
		switch a.DType() {
		case bioimage.Bool:
			values := a.Values()
			for i, v := range values {
				values[i] = 1 - v
			}
			return bioimage.FromValues(bioimage.Bool, a.Shape(), values)
		case bioimage.Uint8, bioimage.Uint16:
			if a.NDim() == 2 {
				return l.bitwiseNot(a)
			}
			hi, _ := a.DType().Max()
			values := a.Values()
			for i, v := range values {
				values[i] = hi - v
			}
			return bioimage.FromValues(a.DType(), a.Shape(), values)
		default:
			return nil, fmt.Errorf("invert: dtype %s has no maximum to invert through", a.DType())
		}
	})
}

func (l *Library) bitwiseNot(a *bioimage.Array) (*bioimage.Array, error) {
	src, err := conversion.ToMat(a, l.mem, "invert_src")
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst, err := safe.NewMatWithTracker(src.Rows(), src.Cols(), src.Type(), l.mem, "invert_dst")
	if err != nil {
		return nil, fmt.Errorf("failed to create destination Mat: %w", err)
	}
	defer dst.Close()

	srcMat := src.GetMat()
	dstMat := dst.GetMat()
	gocv.BitwiseNot(srcMat, &dstMat)

	return conversion.FromMat(dst, a.DType())
}
