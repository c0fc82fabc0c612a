package domain

import (
	"path/filepath"
	"strings"
)

// Format is the declared text format of a raw document.
type Format string

// Supported document formats.
const (
	// FormatPlainText is unstructured text.
	FormatPlainText Format = "plaintext"

	// FormatMarkdown is Markdown source, ingested as written.
	FormatMarkdown Format = "markdown"

	// FormatHTML is an HTML page; text is extracted before normalisation.
	FormatHTML Format = "html"
)

// SupportedFormats returns every format the pipeline can ingest.
func SupportedFormats() []Format {
	return []Format{FormatPlainText, FormatMarkdown, FormatHTML}
}

// IsValid returns true if the format is one the pipeline can ingest.
func (f Format) IsValid() bool {
	switch f {
	case FormatPlainText, FormatMarkdown, FormatHTML:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f Format) String() string {
	return string(f)
}

// FormatFromExtension maps a file name or URI to a format.
// Returns an empty Format when the extension is not supported.
func FormatFromExtension(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".text":
		return FormatPlainText
	case ".md", ".markdown":
		return FormatMarkdown
	case ".html", ".htm":
		return FormatHTML
	default:
		return ""
	}
}

// FormatFromMIMEType maps a MIME type to a format.
// Parameters such as "; charset=utf-8" are ignored.
func FormatFromMIMEType(mimeType string) Format {
	base, _, _ := strings.Cut(mimeType, ";")
	switch strings.ToLower(strings.TrimSpace(base)) {
	case "text/plain":
		return FormatPlainText
	case "text/markdown", "text/x-markdown":
		return FormatMarkdown
	case "text/html", "application/xhtml+xml":
		return FormatHTML
	default:
		return ""
	}
}

// RawDocument is a document as received from a caller, before normalisation.
// It is treated as immutable once received.
type RawDocument struct {
	// URI is the document identifier. It is opaque to the core.
	URI string

	// Content is the raw payload. A nil slice means no payload was supplied;
	// an empty, non-nil slice is a valid empty document.
	Content []byte

	// Format is the declared format. When empty it is derived from MIMEType,
	// then from the URI extension.
	Format Format

	// MIMEType is the content type reported by the caller, if any.
	MIMEType string

	// Charset is the declared text encoding. Empty means UTF-8.
	Charset string

	// Metadata contains caller-supplied JSON-compatible values.
	Metadata map[string]any
}

// ResolveFormat returns the declared format, falling back to the MIME type
// and then the URI extension.
func (r *RawDocument) ResolveFormat() Format {
	if r.Format != "" {
		return r.Format
	}
	if f := FormatFromMIMEType(r.MIMEType); f != "" {
		return f
	}
	return FormatFromExtension(r.URI)
}
