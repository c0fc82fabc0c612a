package normalisers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/normalisers/html"
	"github.com/custodia-labs/sercha-ingest/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps formats to their extractors.
type Registry struct {
	mu         sync.RWMutex
	extractors map[domain.Format]driven.Extractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[domain.Format]driven.Extractor),
	}
}

// NewDefaultRegistry creates a registry with the built-in extractors.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// RegisterDefaults registers the plain text, Markdown and HTML extractors.
func RegisterDefaults(r *Registry) {
	r.Register(plaintext.New())
	r.Register(html.New())
}

// Register adds an extractor for every format it handles.
// A later registration for the same format replaces the earlier one.
func (r *Registry) Register(e driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range e.Formats() {
		r.extractors[f] = e
	}
}

// Supports reports whether a format has an extractor.
func (r *Registry) Supports(format domain.Format) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.extractors[format]
	return ok
}

// Extract runs the extractor registered for format.
func (r *Registry) Extract(ctx context.Context, format domain.Format, text string) (string, error) {
	r.mu.RLock()
	e, ok := r.extractors[format]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: format %q", domain.ErrUnsupportedType, format)
	}
	return e.Extract(ctx, text)
}

// Formats returns all supported formats in lexical order.
func (r *Registry) Formats() []domain.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	formats := make([]domain.Format, 0, len(r.extractors))
	for f := range r.extractors {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}
