package driven

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// ChunkStore persists documents, their chunk trees and structured blocks,
// and answers nearest-neighbour queries over chunk embeddings.
//
// SaveChunk is atomic: the chunk row and all of its block rows commit
// together or not at all, so readers never observe a chunk without its
// blocks. Writes for different documents may proceed concurrently.
type ChunkStore interface {
	// SaveDocument creates or updates a document, assigning an ID when empty.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetDocumentByURI retrieves a document by its source location.
	// Returns domain.ErrNotFound when no document has that URI.
	GetDocumentByURI(ctx context.Context, uri string) (*domain.Document, error)

	// ListDocuments returns all documents ordered by URI.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document, cascading to its chunks and blocks.
	DeleteDocument(ctx context.Context, id string) error

	// SaveChunk persists a chunk and its structured blocks in one
	// transaction and returns the assigned chunk ID.
	SaveChunk(ctx context.Context, chunk *domain.Chunk, blocks []domain.StructuredBlock) (string, error)

	// GetChunk retrieves a chunk by ID with its blocks attached.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// ListChunks returns a document's chunks in ingestion order.
	ListChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChildren returns the direct children of a chunk in insertion order.
	GetChildren(ctx context.Context, parentID string) ([]domain.Chunk, error)

	// GetBlocks returns the structured blocks owned by a chunk.
	GetBlocks(ctx context.Context, chunkID string) ([]domain.StructuredBlock, error)

	// Search returns chunks ordered by ascending distance to query,
	// restricted to distance < maxDistance and truncated to limit.
	// Blocks are attached to every result. An empty result is not an error.
	// A query whose length differs from the stored vectors returns
	// domain.ErrDimensionMismatch.
	Search(ctx context.Context, query []float32, limit int, maxDistance float64) ([]domain.SearchResult, error)

	// Stats returns row counts for the store.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// Close releases resources.
	Close() error
}
