package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// DefaultSource is the metadata source label for local files.
const DefaultSource = "filesystem"

// Ensure Loader implements the interfaces.
var (
	_ driven.DocumentLoader  = (*Loader)(nil)
	_ driven.DocumentWatcher = (*Loader)(nil)
)

// DefaultDebounce is the quiet period before watched changes are emitted.
const DefaultDebounce = 250 * time.Millisecond

// Loader loads local files as raw documents.
type Loader struct {
	source   string
	debounce time.Duration
}

// Option configures a Loader.
type Option func(*Loader)

// WithDebounce sets the watch quiet period.
func WithDebounce(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.debounce = d
		}
	}
}

// New creates a loader that tags documents with the given source label.
func New(source string, opts ...Option) *Loader {
	if source == "" {
		source = DefaultSource
	}
	l := &Loader{source: source, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Source returns the metadata source label.
func (l *Loader) Source() string {
	return l.source
}

// Load reads the file at uri.
func (l *Loader) Load(ctx context.Context, uri string) (*domain.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := ResolvePath(uri)
	format := domain.FormatFromExtension(path)
	if format == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, filepath.Ext(path))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if content == nil {
		content = []byte{}
	}

	return &domain.RawDocument{
		URI:      path,
		Content:  content,
		Format:   format,
		MIMEType: detectMIMEType(path),
		Metadata: map[string]any{
			"source":        l.source,
			"original_path": path,
			"filename":      filepath.Base(path),
		},
	}, nil
}

// List walks root and returns every loadable, non-hidden file in lexical order.
func (l *Loader) List(ctx context.Context, root string) ([]string, error) {
	root = ResolvePath(root)
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, root)
		}
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, root)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path != root && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if domain.FormatFromExtension(path) != "" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// ResolvePath converts a file:// URI or bare path to a local path.
func ResolvePath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

// mimeFallbacks covers extensions the platform MIME table may not know.
var mimeFallbacks = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".text":     "text/plain",
	".html":     "text/html",
	".htm":      "text/html",
}

// detectMIMEType returns the MIME type for a path without parameters.
func detectMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "text/plain"
	}
	if m, ok := mimeFallbacks[ext]; ok {
		return m
	}
	if m := mime.TypeByExtension(ext); m != "" {
		if i := strings.Index(m, ";"); i >= 0 {
			m = m[:i]
		}
		return strings.TrimSpace(m)
	}
	return "application/octet-stream"
}

// isHidden reports whether a path has a dot-prefixed element.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && strings.HasPrefix(part, ".") && part != ".." {
			return true
		}
	}
	return false
}
