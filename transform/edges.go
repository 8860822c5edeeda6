package transform

import (
	"fmt"
	"math"

	"bioimage-transform/bioimage"
	"bioimage-transform/core"
	"bioimage-transform/internal/opencv/conversion"
	"bioimage-transform/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Sobel returns the gradient magnitude sqrt((gx²+gy²)/2) computed with
// the normalised 3×3 Sobel kernels. With a Mask, pixels whose 3×3
// neighbourhood leaves the mask or the image are set to zero. NaN and
// infinite pixels make their 3×3 neighbourhood non-finite.
func (l *Library) Sobel(in bioimage.Arrayer, opts ...Option) (*bioimage.Image, error) {
	const name = "sobel"
	return l.apply(name, core.Contract{Output: bioimage.Float64}, in, opts, func(a *bioimage.Array, p params) (*bioimage.Array, error) {
		if err := require2D(name, a); err != nil {
			return nil, err
		}

		var mask *bioimage.Array
		if p.mask != nil {
			mask = p.mask.Array()
			if mask == nil {
				return nil, fmt.Errorf("%s: nil mask", name)
			}
			if mask.DType() != bioimage.Bool {
				return nil, &core.ContractError{Transform: name, Stage: "mask", Want: bioimage.Bool, Got: mask.DType()}
			}
			if !mask.SameShape(a) {
				return nil, fmt.Errorf("%s: mask shape %v does not match image shape %v", name, mask.Shape(), a.Shape())
			}
		}

		out, err := l.sobelMagnitude(a)
		if err != nil {
			return nil, err
		}
		if mask == nil {
			return out, nil
		}

		values := out.Values()
		for i, inside := range erodeMask(mask) {
			if !inside {
				values[i] = 0
			}
		}
		return bioimage.FromValues(bioimage.Float64, out.Shape(), values)
	})
}

func (l *Library) sobelMagnitude(a *bioimage.Array) (*bioimage.Array, error) {
	src, err := conversion.ToMatAs(a, gocv.MatTypeCV64FC1, l.mem, "sobel_src")
	if err != nil {
		return nil, err
	}
	defer src.Close()

	rows, cols := src.Rows(), src.Cols()
	gx, err := safe.NewMatWithTracker(rows, cols, gocv.MatTypeCV64FC1, l.mem, "sobel_gx")
	if err != nil {
		return nil, fmt.Errorf("failed to create gradient Mat: %w", err)
	}
	defer gx.Close()
	gy, err := safe.NewMatWithTracker(rows, cols, gocv.MatTypeCV64FC1, l.mem, "sobel_gy")
	if err != nil {
		return nil, fmt.Errorf("failed to create gradient Mat: %w", err)
	}
	defer gy.Close()
	mag, err := safe.NewMatWithTracker(rows, cols, gocv.MatTypeCV64FC1, l.mem, "sobel_magnitude")
	if err != nil {
		return nil, fmt.Errorf("failed to create magnitude Mat: %w", err)
	}
	defer mag.Close()

	// 1/4 normalises the kernel, 1/sqrt(2) averages the two directions
	scale := 0.25 / math.Sqrt2

	srcMat := src.GetMat()
	gxMat := gx.GetMat()
	gyMat := gy.GetMat()
	magMat := mag.GetMat()
	gocv.Sobel(srcMat, &gxMat, gocv.MatTypeCV64F, 1, 0, 3, scale, 0, gocv.BorderReflect)
	gocv.Sobel(srcMat, &gyMat, gocv.MatTypeCV64F, 0, 1, 3, scale, 0, gocv.BorderReflect)
	gocv.Magnitude(gxMat, gyMat, &magMat)

	return conversion.FromMat(mag, bioimage.Float64)
}

// erodeMask keeps the pixels whose whole 3×3 neighbourhood is inside the
// image and the mask.
func erodeMask(mask *bioimage.Array) []bool {
	shape := mask.Shape()
	rows, cols := shape[0], shape[1]
	in := mask.Bools()
	out := make([]bool, len(in))
	for y := 1; y < rows-1; y++ {
		for x := 1; x < cols-1; x++ {
			inside := true
			for dy := -1; dy <= 1 && inside; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if !in[(y+dy)*cols+x+dx] {
						inside = false
						break
					}
				}
			}
			out[y*cols+x] = inside
		}
	}
	return out
}
