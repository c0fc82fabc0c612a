package driven

import (
	"context"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// TextNormaliser repairs encoding defects in raw input.
// Implementations must be total: every input, including nil, yields a
// valid UTF-8 string without NUL or stray control characters.
type TextNormaliser interface {
	// Normalise decodes content under the declared charset and cleans it.
	// An empty charset means UTF-8.
	Normalise(content []byte, charset string) string

	// Clean re-applies the cleaning rules to already decoded text.
	Clean(text string) string
}

// Extractor turns format-specific text into plain text for chunking.
type Extractor interface {
	// Formats returns the formats this extractor handles.
	Formats() []domain.Format

	// Extract returns the text content of a normalised document.
	Extract(ctx context.Context, text string) (string, error)
}

// ExtractorRegistry selects the extractor for a declared format.
type ExtractorRegistry interface {
	// Supports reports whether a format can be ingested.
	Supports(format domain.Format) bool

	// Extract dispatches to the extractor registered for format.
	// Returns domain.ErrUnsupportedType for unknown formats.
	Extract(ctx context.Context, format domain.Format, text string) (string, error)

	// Formats returns all supported formats.
	Formats() []domain.Format
}
