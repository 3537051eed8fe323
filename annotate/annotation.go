// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package annotate

import (
	"fmt"
	"sort"
	"sync"

	"github.com/grailbio/bio-annotate/pileup"
)

// Site is the input to a single annotation call: the site identity and, for
// each sample, the reads piled up at that site.
type Site struct {
	// RefName and Pos (0-based) identify the site.  Annotations may only pass
	// them through, e.g. into error messages.
	RefName string
	Pos     int
	// Pileups maps sample name to that sample's pileup.  A sample can be
	// present with an empty pileup.
	Pileups map[string]pileup.Pileup
}

// Result maps INFO keys to formatted values.  A nil Result means the
// annotation could not be computed for the site, and nothing should be
// emitted.
type Result map[string]string

// InfoFieldAnnotation is implemented by every site-level annotation.
// Implementations must be safe for concurrent calls to Annotate.
type InfoFieldAnnotation interface {
	// KeyNames returns the INFO keys the annotation may produce.
	KeyNames() []string
	// HeaderLines returns one header line per key, in KeyNames order.
	HeaderLines() []HeaderLine
	// Annotate computes the annotation for one site.  It returns (nil, nil)
	// when there is nothing to report, and an error when the input is
	// malformed; an error never comes with a partial Result.
	Annotate(site *Site) (Result, error)
}

// Registry is a name -> annotation dispatch table.  It is safe for concurrent
// use.
type Registry struct {
	mu          sync.RWMutex
	annotations map[string]InfoFieldAnnotation
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{annotations: make(map[string]InfoFieldAnnotation)}
}

// NewStandardRegistry returns a Registry holding every annotation shipped
// with this package, with minBaseQual as the clipping threshold.
func NewStandardRegistry(minBaseQual byte) *Registry {
	r := NewRegistry()
	r.Register(ReadMeanLenKey, NewReadMeanLen(minBaseQual))
	return r
}

// DefaultRegistry is NewStandardRegistry(DefaultMinBaseQual).
var DefaultRegistry = NewStandardRegistry(DefaultMinBaseQual)

// Register adds a under name.  It panics if name is already taken.
func (r *Registry) Register(name string, a InfoFieldAnnotation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.annotations[name]; ok {
		panic(fmt.Sprintf("annotate.Register: annotation %s registered twice", name))
	}
	r.annotations[name] = a
}

// Lookup returns the annotation registered under name.
func (r *Registry) Lookup(name string) (InfoFieldAnnotation, bool) {
	r.mu.RLock()
	a, ok := r.annotations[name]
	r.mu.RUnlock()
	return a, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.annotations))
	for name := range r.annotations {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Resolve looks up each of names, failing on the first unknown one.
func (r *Registry) Resolve(names []string) ([]InfoFieldAnnotation, error) {
	result := make([]InfoFieldAnnotation, 0, len(names))
	for _, name := range names {
		a, ok := r.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("annotate.Resolve: unknown annotation %q (have %v)", name, r.Names())
		}
		result = append(result, a)
	}
	return result, nil
}
