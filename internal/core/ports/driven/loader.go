package driven

import (
	"context"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// DocumentLoader reads raw documents by location.
type DocumentLoader interface {
	// Load reads the document at uri. Returns domain.ErrNotFound when it
	// does not exist.
	Load(ctx context.Context, uri string) (*domain.RawDocument, error)

	// List returns the loadable documents under root in lexical order.
	List(ctx context.Context, root string) ([]string, error)
}

// DocumentWatcher reports documents that were created or modified.
type DocumentWatcher interface {
	// Watch emits the URI of every changed loadable document under root
	// until ctx is cancelled, then closes the channel.
	Watch(ctx context.Context, root string) (<-chan string, error)
}
