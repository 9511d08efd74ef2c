package driven

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// DocumentLoader reads raw documentation pages from a location.
type DocumentLoader interface {
	// Load returns every supported page under the given paths.
	Load(ctx context.Context, paths ...string) ([]domain.RawDocument, error)

	// Watch emits changes under the given paths until ctx is cancelled.
	// Both channels are closed when watching stops.
	Watch(ctx context.Context, paths ...string) (<-chan domain.RawDocumentChange, <-chan error, error)
}
