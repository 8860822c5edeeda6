package persist

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"bioimage-transform/bioimage"
	"bioimage-transform/internal/opencv/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
	"golang.org/x/image/tiff"
)

func TestFormatFor(t *testing.T) {
	tests := map[string]string{
		"a/1_invert.png": "png",
		"b.JPG":          "jpeg",
		"c.jpeg":         "jpeg",
		"d.tif":          "tiff",
		"e.TIFF":         "tiff",
	}
	for path, want := range tests {
		got, err := FormatFor(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFor("f.gif")
	assert.Error(t, err)
}

func TestSaveToPathPNG(t *testing.T) {
	mem := memory.NewTracker()
	s := NewSaver(nil, mem, false)
	path := filepath.Join(t.TempDir(), "1_threshold_otsu.png")

	a, _ := bioimage.FromRows(bioimage.Bool, [][]float64{{0, 1}, {1, 0}})
	require.NoError(t, s.SaveToPath(path, a))
	assert.Zero(t, mem.GetStats().ActiveMats)

	mat := gocv.IMRead(path, gocv.IMReadGrayScale)
	defer mat.Close()
	require.False(t, mat.Empty())
	assert.Equal(t, uint8(0), mat.GetUCharAt(0, 0))
	assert.Equal(t, uint8(255), mat.GetUCharAt(0, 1))
}

func TestSaveToPathTIFF(t *testing.T) {
	s := NewSaver(nil, nil, false)
	path := filepath.Join(t.TempDir(), "2_max_intensity_projection.tif")

	a, _ := bioimage.FromRows(bioimage.Uint16, [][]float64{{0, 1000}, {65535, 7}})
	require.NoError(t, s.SaveToPath(path, a))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := tiff.Decode(f)
	require.NoError(t, err)
	gray, ok := img.(*image.Gray16)
	require.True(t, ok)
	assert.Equal(t, uint16(65535), gray.Gray16At(0, 1).Y)
}

func TestSaveToPathRejectsStacks(t *testing.T) {
	s := NewSaver(nil, nil, false)
	a, _ := bioimage.New(bioimage.Uint8, 2, 2, 3)
	assert.Error(t, s.SaveToPath(filepath.Join(t.TempDir(), "x.png"), a))
}

func TestSaveToPathSafeRange(t *testing.T) {
	s := NewSaver(nil, nil, true)
	path := filepath.Join(t.TempDir(), "3_sobel.tif")
	a, _ := bioimage.FromRows(bioimage.Float64, [][]float64{{-3, 5}})
	require.NoError(t, s.SaveToPath(path, a))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := tiff.Decode(f)
	require.NoError(t, err)
	gray, ok := img.(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, uint8(0), gray.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), gray.GrayAt(1, 0).Y)
}
