package transform

import (
	"fmt"
	"image"
	"math"

	"bioimage-transform/bioimage"
	"bioimage-transform/core"
	"bioimage-transform/internal/opencv/conversion"
	"bioimage-transform/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// claheBins is the number of grey levels OpenCV equalizes over.
const claheBins = 256

// EqualizeAdaptiveCLAHE applies contrast limited adaptive histogram
// equalization over a Tiles×Tiles grid. The result is Float64 spanning
// exactly [0,1]. Constant images and images holding NaN or infinite
// values have no histogram to equalize and fail with a *core.DomainError.
func (l *Library) EqualizeAdaptiveCLAHE(in bioimage.Arrayer, opts ...Option) (*bioimage.Image, error) {
	const name = "equalize_adaptive_clahe"
	return l.apply(name, core.Contract{Output: bioimage.Float64}, in, opts, func(a *bioimage.Array, p params) (*bioimage.Array, error) {
		if err := require2D(name, a); err != nil {
			return nil, err
		}
		if err := requireFinite(name, a); err != nil {
			return nil, err
		}
		if bioimage.IsConstant(a) {
			return nil, &core.DomainError{Transform: name, Reason: "cannot equalize a constant image"}
		}

		levels, err := quantize(bioimage.Normalise(a))
		if err != nil {
			return nil, err
		}
		equalized, err := l.clahe(levels, p.tiles, p.clipLimit)
		if err != nil {
			return nil, err
		}

		out := bioimage.Normalise(equalized)
		if lo, hi := out.MinMax(); lo != 0 || hi != 1 {
			return nil, fmt.Errorf("%w: %s produced range [%v, %v]", core.ErrInvariant, name, lo, hi)
		}
		return out, nil
	})
}

// quantize maps a unit-range array onto 8-bit grey levels.
func quantize(unit *bioimage.Array) (*bioimage.Array, error) {
	values := unit.Values()
	for i, v := range values {
		values[i] = math.Round(v * (claheBins - 1))
	}
	q, err := bioimage.FromValues(bioimage.Uint8, unit.Shape(), values)
	if err != nil {
		return nil, fmt.Errorf("failed to quantize to 8-bit levels: %w", err)
	}
	return q, nil
}

func (l *Library) clahe(a *bioimage.Array, tiles int, clipLimit float64) (*bioimage.Array, error) {
	src, err := conversion.ToMat(a, l.mem, "clahe_src")
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst, err := safe.NewMatWithTracker(src.Rows(), src.Cols(), src.Type(), l.mem, "clahe_dst")
	if err != nil {
		return nil, fmt.Errorf("failed to create destination Mat: %w", err)
	}
	defer dst.Close()

	// OpenCV expresses the clip limit relative to a uniform histogram
	clahe := gocv.NewCLAHEWithParams(clipLimit*claheBins, image.Point{X: tiles, Y: tiles})
	defer clahe.Close()

	srcMat := src.GetMat()
	dstMat := dst.GetMat()
	clahe.Apply(srcMat, &dstMat)

	return conversion.FromMat(dst, bioimage.Uint8)
}
