package extract

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Registry maps file extensions to extractors.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]Extractor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{extractors: make(map[string]Extractor)}
}

// DefaultRegistry returns a registry holding the built-in extractors
// configured with opts.
func DefaultRegistry(opts Options) *Registry {
	r := NewRegistry()
	r.Register(NewPDFExtractor(opts), ".pdf")
	r.Register(NewImageExtractor(opts), ".png", ".jpg", ".jpeg", ".tif", ".tiff")
	r.Register(NewCSVExtractor(), ".csv")
	return r
}

// Register associates an extractor with one or more file extensions.
// Extensions are matched case-insensitively and must include the dot.
// Panics if an extension is already registered.
func (r *Registry) Register(e Extractor, exts ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range exts {
		ext = strings.ToLower(ext)
		if _, exists := r.extractors[ext]; exists {
			panic(fmt.Sprintf("extractor already registered: %s", ext))
		}
		r.extractors[ext] = e
	}
}

// For returns the extractor registered for an extension, or nil.
func (r *Registry) For(ext string) Extractor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.extractors[strings.ToLower(ext)]
}

// ForFile returns the extractor for a path's extension.
// Returns ErrUnsupported if none is registered.
func (r *Registry) ForFile(path string) (Extractor, error) {
	e := r.For(filepath.Ext(path))
	if e == nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
	}
	return e, nil
}

// Supported reports whether a path has a registered extractor.
func (r *Registry) Supported(path string) bool {
	return r.For(filepath.Ext(path)) != nil
}

// Extensions returns all registered extensions, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.extractors))
	for ext := range r.extractors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
