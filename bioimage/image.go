package bioimage

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// imageNamespace roots the identities of images created directly from
// arrays.
var imageNamespace = uuid.MustParse("6f1c2a4e-5d3b-4f0a-9c8e-2b7d1e4a9f30")

// Image is an immutable, identity-bearing wrapper around an Array. Every
// transformation produces a new Image.
type Image struct {
	array   *Array
	id      uuid.UUID
	history []string
	path    string
}

// NewImage wraps a copy of a. Its identity is derived from the content
// alone, so equal arrays produce equal identities.
func NewImage(a *Array) *Image {
	arr := a.Clone()
	return &Image{
		array:   arr,
		id:      uuid.NewSHA1(imageNamespace, Digest(arr)),
		history: []string{"Created image from array"},
	}
}

// Derive builds the Image produced by applying the named transformation
// to parent. The identity is a name-based UUID in the parent's namespace,
// so it depends on the whole chain of transformations and the content.
func Derive(parent *Image, transform string, a *Array) *Image {
	arr := a.Clone()
	name := append([]byte(transform+"\x00"), Digest(arr)...)
	history := append(parent.History(), fmt.Sprintf("Applied %s transform", transform))
	return &Image{
		array:   arr,
		id:      uuid.NewSHA1(parent.id, name),
		history: history,
	}
}

// AsImage returns in unchanged when it already is an Image, otherwise a new
// Image created from its array.
func AsImage(in Arrayer) *Image {
	if img, ok := in.(*Image); ok {
		return img
	}
	return NewImage(in.Array())
}

// WithPath returns a copy of img recording that it was written to path.
func (img *Image) WithPath(path string) *Image {
	return &Image{
		array:   img.array,
		id:      img.id,
		history: append(img.History(), fmt.Sprintf("Wrote to %s", path)),
		path:    path,
	}
}

// Array returns a copy of the underlying array.
func (img *Image) Array() *Array { return img.array.Clone() }

// ID is the image's derived identity.
func (img *Image) ID() string { return img.id.String() }

func (img *Image) History() []string { return append([]string(nil), img.history...) }

// Path is where the image was written, or "" if it never was.
func (img *Image) Path() string { return img.path }

func (img *Image) DType() DType { return img.array.dtype }

func (img *Image) Shape() []int { return img.array.Shape() }

func (img *Image) At(idx ...int) float64 { return img.array.At(idx...) }

func (img *Image) Values() []float64 { return img.array.Values() }

func (img *Image) String() string {
	return fmt.Sprintf("Image(%s, %v, shape=%v)", img.id, img.array.dtype, img.array.shape)
}

// Digest is the SHA-256 fingerprint of an array's dtype, shape and
// elements.
func Digest(a *Array) []byte {
	h := sha256.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(a.dtype))
	h.Write(buf[:])
	for _, d := range a.shape {
		binary.LittleEndian.PutUint64(buf[:], uint64(d))
		h.Write(buf[:])
	}
	for _, v := range a.data {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	return h.Sum(nil)
}
