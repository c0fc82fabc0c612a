// Package plaintext provides the pass-through extractor for plain text and
// Markdown. Markdown is ingested as written so chunks keep their headings
// and lists for downstream readers.
package plaintext

import (
	"context"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text and Markdown documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Formats returns the formats this extractor handles.
func (e *Extractor) Formats() []domain.Format {
	return []domain.Format{domain.FormatPlainText, domain.FormatMarkdown}
}

// Extract returns the text unchanged.
func (e *Extractor) Extract(_ context.Context, text string) (string, error) {
	return text, nil
}
