package core

import (
	"fmt"
	"path/filepath"
	"sync"
)

const (
	DefaultPrefixFormat = "%d_"
	DefaultSuffix       = ".png"
)

// AutoName hands out sequential, collision-free file names for
// transformation results written to a directory.
type AutoName struct {
	mu           sync.Mutex
	directory    string
	count        int
	prefixFormat string
	namespace    string
	suffix       string
}

type AutoNameOption func(*AutoName)

// WithNamespace inserts ns between the counter prefix and the name.
func WithNamespace(ns string) AutoNameOption {
	return func(n *AutoName) { n.namespace = ns }
}

// WithPrefixFormat sets the fmt verb string used to render the counter.
func WithPrefixFormat(format string) AutoNameOption {
	return func(n *AutoName) { n.prefixFormat = format }
}

func WithSuffix(suffix string) AutoNameOption {
	return func(n *AutoName) { n.suffix = suffix }
}

func NewAutoName(directory string, opts ...AutoNameOption) *AutoName {
	n := &AutoName{
		directory:    directory,
		prefixFormat: DefaultPrefixFormat,
		suffix:       DefaultSuffix,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Next increments the counter and returns the path for a result of the
// named transformation, e.g. "out/3_threshold_otsu.png".
func (n *AutoName) Next(name string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.count++
	fname := fmt.Sprintf(n.prefixFormat, n.count) + n.namespace + name + n.suffix
	return filepath.Join(n.directory, fname)
}

func (n *AutoName) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}

// Reset starts numbering again from one.
func (n *AutoName) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count = 0
}

func (n *AutoName) Directory() string { return n.directory }
