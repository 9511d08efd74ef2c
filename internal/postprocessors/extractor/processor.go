package extractor

import (
	"context"
	"maps"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/logger"
)

// Name is the processor name used in pipeline configuration.
const Name = "block_extractor"

// Processor extracts structured blocks from every chunk, replacing them
// in the chunk content with the placeholder token.
// It implements the PostProcessor interface.
type Processor struct{}

// New creates a block extraction processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// Process attaches extracted blocks to each chunk and substitutes their
// raw text. Blocks inherit a copy of the chunk metadata.
func (p *Processor) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	total := 0
	for i := range chunks {
		blocks := Extract(chunks[i].Content)
		if len(blocks) == 0 {
			continue
		}
		for j := range blocks {
			blocks[j].Metadata = maps.Clone(chunks[i].Metadata)
		}
		chunks[i].Content = Substitute(chunks[i].Content, blocks)
		chunks[i].Blocks = blocks
		total += len(blocks)
	}

	logger.Debug("extracted %d structured blocks from %d chunks of %s", total, len(chunks), doc.URI)
	return chunks, nil
}
