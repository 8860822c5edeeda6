// Package transform is a library of tracked image transformations for
// microscopy images: projections, smoothing, equalization, thresholding,
// morphology and edge detection.
//
// Every filter is a core.Transform: it accepts a raw *bioimage.Array or a
// *bioimage.Image, checks its dtype contract, and returns a new Image whose
// identity is derived from the input. With a configured core.Tracker the
// results are also named, written and journaled.
package transform

import (
	"fmt"
	"math"

	"bioimage-transform/bioimage"
	"bioimage-transform/core"
	"bioimage-transform/internal/opencv/memory"
)

// Library binds the filters to a Tracker. The zero Tracker (nil) gives
// untracked filters.
type Library struct {
	tracker *core.Tracker
	mem     *memory.Tracker
}

func New(tracker *core.Tracker) *Library {
	return &Library{
		tracker: tracker,
		mem:     memory.NewTracker(),
	}
}

// std backs the package-level functions.
var std = New(nil)

func (l *Library) Tracker() *core.Tracker { return l.tracker }

// ActiveMats reports how many OpenCV Mats allocated by the library are
// still open. It is zero between calls.
func (l *Library) ActiveMats() int64 {
	return l.mem.GetStats().ActiveMats
}

type params struct {
	sigma        float64
	tiles        int
	clipLimit    float64
	multiplier   float64
	minSize      int
	connectivity int
	footprint    bioimage.Arrayer
	mask         bioimage.Arrayer
}

// Option tunes a single filter call. Every option is range checked, even
// ones the filter does not read.
type Option func(*params)

// Sigma is the Gaussian standard deviation (default 1).
func Sigma(s float64) Option { return func(p *params) { p.sigma = s } }

// Tiles is the number of CLAHE tiles per axis (default 8).
func Tiles(n int) Option { return func(p *params) { p.tiles = n } }

// ClipLimit is the CLAHE clip limit in (0,1], higher gives more contrast
// (default 0.01).
func ClipLimit(c float64) Option { return func(p *params) { p.clipLimit = c } }

// Multiplier scales the Otsu threshold (default 1.0).
func Multiplier(m float64) Option { return func(p *params) { p.multiplier = m } }

// MinSize is the smallest component RemoveSmallObjects keeps (default 50).
func MinSize(n int) Option { return func(p *params) { p.minSize = n } }

// Connectivity is 1 for 4-connected and 2 for 8-connected components
// (default 1).
func Connectivity(c int) Option { return func(p *params) { p.connectivity = c } }

// Footprint is the structuring element for DilateBinary and ErodeBinary.
func Footprint(f bioimage.Arrayer) Option { return func(p *params) { p.footprint = f } }

// Mask restricts Sobel to pixels whose neighbourhood is entirely true.
func Mask(m bioimage.Arrayer) Option { return func(p *params) { p.mask = m } }

func newParams(opts []Option) params {
	p := params{
		sigma:        1,
		tiles:        8,
		clipLimit:    0.01,
		multiplier:   1,
		minSize:      50,
		connectivity: 1,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func (p params) validate(name string) error {
	switch {
	case !(p.sigma > 0) || math.IsInf(p.sigma, 0):
		return fmt.Errorf("%s: sigma must be positive, got %v", name, p.sigma)
	case p.tiles < 1:
		return fmt.Errorf("%s: tiles must be at least 1, got %d", name, p.tiles)
	case !(p.clipLimit > 0 && p.clipLimit <= 1):
		return fmt.Errorf("%s: clip limit must be in (0,1], got %v", name, p.clipLimit)
	case math.IsNaN(p.multiplier) || math.IsInf(p.multiplier, 0):
		return fmt.Errorf("%s: multiplier must be finite, got %v", name, p.multiplier)
	case p.minSize < 0:
		return fmt.Errorf("%s: min size must not be negative, got %d", name, p.minSize)
	case p.connectivity != 1 && p.connectivity != 2:
		return fmt.Errorf("%s: connectivity must be 1 or 2, got %d", name, p.connectivity)
	}
	return nil
}

// apply validates the options and runs fn through the tracker under name.
func (l *Library) apply(name string, contract core.Contract, in bioimage.Arrayer, opts []Option, fn func(*bioimage.Array, params) (*bioimage.Array, error)) (*bioimage.Image, error) {
	p := newParams(opts)
	if err := p.validate(name); err != nil {
		return nil, err
	}
	return l.tracker.Transformation(name, contract, func(a *bioimage.Array) (*bioimage.Array, error) {
		return fn(a, p)
	})(in)
}

func require2D(name string, a *bioimage.Array) error {
	if a.NDim() != 2 {
		return fmt.Errorf("%s: needs a 2-D image, got %d-D", name, a.NDim())
	}
	return nil
}

// requireFinite rejects NaN and infinite pixels for transforms that bin
// intensities.
func requireFinite(name string, a *bioimage.Array) error {
	if !bioimage.AllFinite(a) {
		return &core.DomainError{Transform: name, Reason: "image contains NaN or infinite values"}
	}
	return nil
}
