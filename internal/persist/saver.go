package persist

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"bioimage-transform/bioimage"
	"bioimage-transform/internal/logger"
	"bioimage-transform/internal/opencv/conversion"
	"bioimage-transform/internal/opencv/safe"

	"gocv.io/x/gocv"
	"golang.org/x/image/tiff"
)

// Saver writes 2-D arrays as image files. The format follows the file
// suffix: PNG and JPEG go through OpenCV, TIFF through x/image.
type Saver struct {
	logger    logger.Logger
	mem       safe.MemoryTracker
	safeRange bool
}

func NewSaver(log logger.Logger, mem safe.MemoryTracker, safeRange bool) *Saver {
	if log == nil {
		log = logger.Nop()
	}
	return &Saver{logger: log, mem: mem, safeRange: safeRange}
}

// FormatFor maps a file name to the format used to write it.
func FormatFor(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return "png", nil
	case ".jpg", ".jpeg":
		return "jpeg", nil
	case ".tif", ".tiff":
		return "tiff", nil
	default:
		return "", fmt.Errorf("no image format for suffix %q", ext)
	}
}

func (s *Saver) SaveToPath(path string, a *bioimage.Array) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}

	data, err := conversion.Displayable(a, s.safeRange)
	if err != nil {
		return err
	}
	if lo, hi := a.MinMax(); !s.safeRange && a.DType() == bioimage.Float64 && (lo < 0 || hi > 1) {
		s.logger.Warning("ImageSaver", "float values outside [0,1] clipped", map[string]interface{}{
			"path": path,
			"min":  lo,
			"max":  hi,
		})
	}

	s.logger.Debug("ImageSaver", "saving image", map[string]interface{}{
		"format": format,
		"path":   path,
		"dtype":  data.DType().String(),
	})

	switch format {
	case "tiff":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := s.encode(f, data, format); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	default:
		mat, err := conversion.ToMat(data, s.mem, "save_"+format)
		if err != nil {
			return err
		}
		defer mat.Close()

		if !gocv.IMWrite(path, mat.GetMat()) {
			err := fmt.Errorf("OpenCV could not write %s", path)
			s.logger.Error("ImageSaver", err, map[string]interface{}{"format": format})
			return err
		}
	}

	s.logger.Info("ImageSaver", "image saved", map[string]interface{}{
		"format": format,
		"path":   path,
	})
	return nil
}

func (s *Saver) encode(writer io.Writer, data *bioimage.Array, format string) error {
	img, err := conversion.ToGoImage(data)
	if err != nil {
		return err
	}

	switch format {
	case "tiff":
		err = tiff.Encode(writer, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		return fmt.Errorf("format %q is not supported for streaming", format)
	}

	if err != nil {
		s.logger.Error("ImageSaver", err, map[string]interface{}{"format": format})
		return err
	}
	return nil
}
