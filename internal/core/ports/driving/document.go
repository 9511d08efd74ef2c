package driving

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// DocumentService inspects and manages ingested documents.
type DocumentService interface {
	// List returns all ingested documents.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID or URI.
	Get(ctx context.Context, idOrURI string) (*domain.Document, error)

	// Tree returns a document's chunks in ingestion order.
	Tree(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// Chunk returns a single chunk with its blocks.
	Chunk(ctx context.Context, chunkID string) (*domain.Chunk, error)

	// Delete removes a document and everything beneath it.
	Delete(ctx context.Context, documentID string) error

	// Stats summarises the store contents.
	Stats(ctx context.Context) (domain.StoreStats, error)
}
