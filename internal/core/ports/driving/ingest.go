package driving

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// IngestService turns documentation pages into stored chunk trees.
type IngestService interface {
	// Ingest chunks, extracts, embeds and stores a single raw page.
	// Re-ingesting a URI replaces the previously stored document.
	Ingest(ctx context.Context, raw *domain.RawDocument) (*domain.IngestReport, error)

	// IngestAll ingests pages concurrently, one tree builder per page.
	// A failed page does not stop the others; all errors are joined.
	IngestAll(ctx context.Context, raws []domain.RawDocument) ([]domain.IngestReport, error)

	// Remove deletes the document stored for a URI.
	Remove(ctx context.Context, uri string) error
}
