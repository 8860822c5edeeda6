package transform

import (
	"fmt"

	"bioimage-transform/bioimage"
	"bioimage-transform/core"
	"bioimage-transform/internal/opencv/conversion"
	"bioimage-transform/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// statArea is the column of the connected component stats holding the
// pixel count.
const statArea = 4

var binaryContract = core.Contract{Input: bioimage.Bool, Output: bioimage.Bool}

// RemoveSmallObjects clears every connected component with fewer than
// MinSize pixels. Connectivity 1 joins edge neighbours only, 2 also
// joins diagonal neighbours.
func (l *Library) RemoveSmallObjects(in bioimage.Arrayer, opts ...Option) (*bioimage.Image, error) {
	return l.apply("remove_small_objects", binaryContract, in, opts, func(a *bioimage.Array, p params) (*bioimage.Array, error) {
		if err := require2D("remove_small_objects", a); err != nil {
			return nil, err
		}
		return l.removeSmallObjects(a, p.minSize, p.connectivity)
	})
}

func (l *Library) removeSmallObjects(a *bioimage.Array, minSize, connectivity int) (*bioimage.Array, error) {
	src, err := conversion.ToMat(a, l.mem, "components_src")
	if err != nil {
		return nil, err
	}
	defer src.Close()

	labels := safe.NewEmptyWithTracker(l.mem, "components_labels")
	defer labels.Close()
	stats := safe.NewEmptyWithTracker(l.mem, "components_stats")
	defer stats.Close()
	centroids := safe.NewEmptyWithTracker(l.mem, "components_centroids")
	defer centroids.Close()

	neighbours := 4
	if connectivity == 2 {
		neighbours = 8
	}

	srcMat := src.GetMat()
	labelsMat := labels.GetMat()
	statsMat := stats.GetMat()
	centroidsMat := centroids.GetMat()
	count := gocv.ConnectedComponentsWithStatsWithParams(srcMat, &labelsMat, &statsMat, &centroidsMat,
		neighbours, gocv.MatTypeCV32S, gocv.CCL_DEFAULT)

	keep := make([]bool, count)
	for i := 1; i < count; i++ { // label 0 is background
		keep[i] = int(statsMat.GetIntAt(i, statArea)) >= minSize
	}

	rows, cols := src.Rows(), src.Cols()
	values := make([]float64, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if keep[labelsMat.GetIntAt(y, x)] {
				values[y*cols+x] = 1
			}
		}
	}
	return bioimage.FromValues(bioimage.Bool, a.Shape(), values)
}

// DilateBinary grows foreground regions by the Footprint, a 3×3 cross by
// default. Pixels beyond the border count as background.
func (l *Library) DilateBinary(in bioimage.Arrayer, opts ...Option) (*bioimage.Image, error) {
	return l.apply("dilate_binary", binaryContract, in, opts, func(a *bioimage.Array, p params) (*bioimage.Array, error) {
		if err := require2D("dilate_binary", a); err != nil {
			return nil, err
		}
		fp, err := footprint(p.footprint)
		if err != nil {
			return nil, err
		}
		return l.morph(a, mirror(fp), true)
	})
}

// ErodeBinary shrinks foreground regions by the Footprint. Pixels beyond
// the border count as foreground.
func (l *Library) ErodeBinary(in bioimage.Arrayer, opts ...Option) (*bioimage.Image, error) {
	return l.apply("erode_binary", binaryContract, in, opts, func(a *bioimage.Array, p params) (*bioimage.Array, error) {
		if err := require2D("erode_binary", a); err != nil {
			return nil, err
		}
		fp, err := footprint(p.footprint)
		if err != nil {
			return nil, err
		}
		return l.morph(a, fp, false)
	})
}

// Cross returns the 3×3 four-connected structuring element.
func Cross() *bioimage.Array {
	cross, _ := bioimage.FromRows(bioimage.Bool, [][]float64{
		{0, 1, 0},
		{1, 1, 1},
		{0, 1, 0},
	})
	return cross
}

// footprint validates a structuring element and returns it as 0/1 bytes.
func footprint(in bioimage.Arrayer) (*bioimage.Array, error) {
	if in == nil {
		in = Cross()
	}
	fp := in.Array()
	if fp == nil || fp.NDim() != 2 {
		return nil, fmt.Errorf("footprint must be a 2-D array")
	}
	shape := fp.Shape()
	if shape[0]%2 == 0 || shape[1]%2 == 0 {
		return nil, fmt.Errorf("footprint dimensions must be odd, got %v", shape)
	}

	values := fp.Values()
	included := 0
	for i, v := range values {
		if v != 0 {
			values[i] = 1
			included++
		}
	}
	if included == 0 {
		return nil, fmt.Errorf("footprint has no included offsets")
	}
	return bioimage.FromValues(bioimage.Uint8, shape, values)
}

// mirror reflects a footprint through its centre.
func mirror(fp *bioimage.Array) *bioimage.Array {
	values := fp.Values()
	for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
		values[i], values[j] = values[j], values[i]
	}
	out, _ := bioimage.FromValues(fp.DType(), fp.Shape(), values)
	return out
}

func (l *Library) morph(a, fp *bioimage.Array, dilate bool) (*bioimage.Array, error) {
	src, err := conversion.ToMat(a, l.mem, "morph_src")
	if err != nil {
		return nil, err
	}
	defer src.Close()

	kernel, err := conversion.ToMat(fp, l.mem, "morph_kernel")
	if err != nil {
		return nil, err
	}
	defer kernel.Close()

	dst, err := safe.NewMatWithTracker(src.Rows(), src.Cols(), src.Type(), l.mem, "morph_dst")
	if err != nil {
		return nil, fmt.Errorf("failed to create destination Mat: %w", err)
	}
	defer dst.Close()

	srcMat := src.GetMat()
	dstMat := dst.GetMat()
	if dilate {
		gocv.Dilate(srcMat, &dstMat, kernel.GetMat())
	} else {
		gocv.Erode(srcMat, &dstMat, kernel.GetMat())
	}

	return conversion.FromMat(dst, bioimage.Bool)
}
