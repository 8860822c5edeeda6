package transform

import (
	"fmt"
	"image"

	"bioimage-transform/bioimage"
	"bioimage-transform/core"
	"bioimage-transform/internal/opencv/conversion"
	"bioimage-transform/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// SmoothGaussian convolves a Float64 image with a Gaussian of standard
// deviation Sigma, replicating edge pixels beyond the border. NaN and
// infinite pixels are not rejected; they spread over the kernel support.
func (l *Library) SmoothGaussian(in bioimage.Arrayer, opts ...Option) (*bioimage.Image, error) {
	contract := core.Contract{Input: bioimage.Float64, Output: bioimage.Float64}
	return l.apply("smooth_gaussian", contract, in, opts, func(a *bioimage.Array, p params) (*bioimage.Array, error) {
		if err := require2D("smooth_gaussian", a); err != nil {
			return nil, err
		}
		return l.gaussianBlur(a, p.sigma)
	})
}

func (l *Library) gaussianBlur(a *bioimage.Array, sigma float64) (*bioimage.Array, error) {
	src, err := conversion.ToMat(a, l.mem, "gaussian_src")
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst, err := safe.NewMatWithTracker(src.Rows(), src.Cols(), src.Type(), l.mem, "gaussian_dst")
	if err != nil {
		return nil, fmt.Errorf("failed to create destination Mat: %w", err)
	}
	defer dst.Close()

	// truncate the kernel at four standard deviations
	radius := int(4*sigma + 0.5)
	kernelSize := 2*radius + 1

	srcMat := src.GetMat()
	dstMat := dst.GetMat()
	gocv.GaussianBlur(srcMat, &dstMat, image.Point{X: kernelSize, Y: kernelSize}, sigma, sigma, gocv.BorderReplicate)

	return conversion.FromMat(dst, bioimage.Float64)
}
