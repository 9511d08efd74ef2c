package driven

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// PostProcessor is one stage of chunk production. The first stage receives
// nil chunks and splits the document; later stages rewrite what they are
// given, such as moving JSON and tables into structured blocks.
type PostProcessor interface {
	// Name is the key used in pipeline configuration.
	Name() string

	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline turns a normalised document into ordered chunks
// ready for the tree builder.
type PostProcessorPipeline interface {
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
