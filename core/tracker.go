package core

import (
	"context"
	"fmt"

	"bioimage-transform/bioimage"
	"bioimage-transform/internal/logger"
	"bioimage-transform/internal/persist"
	"bioimage-transform/provenance"

	"github.com/rs/zerolog"
)

// Func is a plain array-in, array-out algorithm.
type Func func(a *bioimage.Array) (*bioimage.Array, error)

// Transform is a Func after it has been wrapped by a Tracker: it accepts
// raw arrays or Images and always returns an Image.
type Transform func(in bioimage.Arrayer) (*bioimage.Image, error)

// Writer persists a result array at path.
type Writer interface {
	SaveToPath(path string, a *bioimage.Array) error
}

// Tracker carries the state shared by every transformation it wraps:
// naming, writing and the provenance journal. A nil *Tracker is valid and
// only checks contracts and tags results.
type Tracker struct {
	names     *AutoName
	writer    Writer
	autoWrite bool
	safeDType bool
	journal   *provenance.Journal
	logger    logger.Logger
}

type Option func(*Tracker)

func WithAutoName(n *AutoName) Option {
	return func(t *Tracker) { t.names = n }
}

// WithAutoWrite makes every transformation write its result to the next
// auto-generated name.
func WithAutoWrite(enabled bool) Option {
	return func(t *Tracker) { t.autoWrite = enabled }
}

// WithSafeDType stretches written results to the full 8-bit range so that
// float and 16-bit images remain viewable.
func WithSafeDType(enabled bool) Option {
	return func(t *Tracker) { t.safeDType = enabled }
}

// WithWriter replaces the suffix-driven file writer.
func WithWriter(w Writer) Option {
	return func(t *Tracker) { t.writer = w }
}

// WithJournal records every transformation in j. The Tracker takes
// ownership and closes j in Close.
func WithJournal(j *provenance.Journal) Option {
	return func(t *Tracker) { t.journal = j }
}

func WithLogger(l logger.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// WithZerolog logs through an existing zerolog logger.
func WithZerolog(l zerolog.Logger) Option {
	return WithLogger(logger.Wrap(l))
}

func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = logger.Nop()
	}
	if t.names == nil {
		t.names = NewAutoName("")
	}
	if t.writer == nil {
		t.writer = persist.NewSaver(t.logger, nil, t.safeDType)
	}
	return t
}

// AutoName exposes the naming counter, or nil for a nil Tracker.
func (t *Tracker) AutoName() *AutoName {
	if t == nil {
		return nil
	}
	return t.names
}

// Journal returns the provenance journal, if one is attached.
func (t *Tracker) Journal() *provenance.Journal {
	if t == nil {
		return nil
	}
	return t.journal
}

func (t *Tracker) Close() error {
	if t == nil || t.journal == nil {
		return nil
	}
	return t.journal.Close()
}

// Transformation wraps fn so that each call checks the contract, tags the
// result with an identity derived from the input, and, when the tracker
// is configured for it, writes and journals the result.
func (t *Tracker) Transformation(name string, contract Contract, fn Func) Transform {
	return func(in bioimage.Arrayer) (*bioimage.Image, error) {
		img, err := inputImage(name, in)
		if err != nil {
			return nil, err
		}

		arr := img.Array()
		if err := contract.CheckInput(name, arr); err != nil {
			return nil, err
		}

		out, err := fn(arr)
		if err != nil {
			return nil, err
		}
		if out == nil {
			return nil, fmt.Errorf("%s: produced no array", name)
		}
		if err := contract.CheckOutput(name, out); err != nil {
			return nil, err
		}

		result := bioimage.Derive(img, name, out)
		if t == nil {
			return result, nil
		}
		return t.track(name, img, result)
	}
}

func (t *Tracker) track(name string, parent, result *bioimage.Image) (*bioimage.Image, error) {
	t.logger.Debug("Tracker", "transformation applied", map[string]interface{}{
		"transform": name,
		"identity":  result.ID(),
		"dtype":     result.DType().String(),
		"shape":     result.Shape(),
	})

	if t.autoWrite {
		path := t.names.Next(name)
		if err := t.writer.SaveToPath(path, result.Array()); err != nil {
			return nil, fmt.Errorf("while writing %s result: %w", name, err)
		}
		result = result.WithPath(path)
		t.logger.Info("Tracker", "result written", map[string]interface{}{
			"transform": name,
			"path":      path,
		})
	}

	if t.journal != nil {
		_, err := t.journal.Record(context.Background(), provenance.Entry{
			Transform: name,
			Identity:  result.ID(),
			Parent:    parent.ID(),
			DType:     result.DType().String(),
			Shape:     fmt.Sprint(result.Shape()),
			Path:      result.Path(),
		})
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func inputImage(name string, in bioimage.Arrayer) (*bioimage.Image, error) {
	switch v := in.(type) {
	case nil:
		return nil, fmt.Errorf("%s: nil input", name)
	case *bioimage.Image:
		if v == nil {
			return nil, fmt.Errorf("%s: nil input", name)
		}
		return v, nil
	}
	if in.Array() == nil {
		return nil, fmt.Errorf("%s: nil input", name)
	}
	return bioimage.AsImage(in), nil
}
