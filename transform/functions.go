package transform

import "bioimage-transform/bioimage"

// The functions below run the filters of an untracked Library: results
// carry an identity and history but are never written.

func MaxIntensityProjection(in bioimage.Arrayer, opts ...Option) (*bioimage.Image, error) {
	return std.MaxIntensityProjection(in, opts...)
}

func MinIntensityProjection(in bioimage.Arrayer, opts ...Option) (*bioimage.Image, error) {
	return std.MinIntensityProjection(in, opts...)
}

func MeanIntensityProjection(in bioimage.Arrayer, opts ...Option) (*bioimage.Image, error) {
	return std.MeanIntensityProjection(in, opts...)
}

func MedianIntensityProjection(in bioimage.Arrayer, opts ...Option) (*bioimage.Image, error) {
	return std.MedianIntensityProjection(in, opts...)
}

func SmoothGaussian(in bioimage.Arrayer, opts ...Option) (*bioimage.Image, error) {
	return std.SmoothGaussian(in, opts...)
}

func EqualizeAdaptiveCLAHE(in bioimage.Arrayer, opts ...Option) (*bioimage.Image, error) {
	return std.EqualizeAdaptiveCLAHE(in, opts...)
}

func ThresholdOtsu(in bioimage.Arrayer, opts ...Option) (*bioimage.Image, error) {
	return std.ThresholdOtsu(in, opts...)
}

func RemoveSmallObjects(in bioimage.Arrayer, opts ...Option) (*bioimage.Image, error) {
	return std.RemoveSmallObjects(in, opts...)
}

func Invert(in bioimage.Arrayer, opts ...Option) (*bioimage.Image, error) {
	return std.Invert(in, opts...)
}

func DilateBinary(in bioimage.Arrayer, opts ...Option) (*bioimage.Image, error) {
	return std.DilateBinary(in, opts...)
}

func ErodeBinary(in bioimage.Arrayer, opts ...Option) (*bioimage.Image, error) {
	return std.ErodeBinary(in, opts...)
}

func Sobel(in bioimage.Arrayer, opts ...Option) (*bioimage.Image, error) {
	return std.Sobel(in, opts...)
}
