package services

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/logger"
)

// embedFunc produces the embedding for a piece of text.
type embedFunc func(ctx context.Context, text string) ([]float32, error)

// treeNode is the last persisted chunk at a header level.
type treeNode struct {
	id    string
	title string
}

// treeBuilder assigns parents to a document's chunks and persists them.
// It carries the current H1 and H2 across the sequence, so one builder
// serves exactly one document and must not be shared between goroutines.
type treeBuilder struct {
	store      driven.ChunkStore
	embed      embedFunc
	documentID string

	cur1 *treeNode
	cur2 *treeNode

	position int
	report   domain.IngestReport
}

func newTreeBuilder(store driven.ChunkStore, embed embedFunc, doc *domain.Document) *treeBuilder {
	return &treeBuilder{
		store:      store,
		embed:      embed,
		documentID: doc.ID,
		report: domain.IngestReport{
			DocumentID: doc.ID,
			URI:        doc.URI,
		},
	}
}

// Add places the next chunk in the tree and persists it. Chunks must
// arrive in document order.
func (b *treeBuilder) Add(ctx context.Context, chunk domain.Chunk) (string, error) {
	level := chunk.Headers.Level()

	if level == 3 && chunk.Headers.H2 != "" && (b.cur2 == nil || b.cur2.title != chunk.Headers.H2) {
		if err := b.synthesiseH2(ctx, &chunk); err != nil {
			return "", err
		}
	}

	var parentID *string
	switch level {
	case 1:
		b.cur2 = nil
	case 2:
		parentID = b.idOf(b.cur1)
	case 3:
		if b.cur2 != nil && b.cur2.title == chunk.Headers.H2 {
			parentID = b.idOf(b.cur2)
		} else {
			parentID = b.idOf(b.cur1)
		}
	}

	embedding, err := b.embed(ctx, chunk.Content)
	if err != nil {
		return "", fmt.Errorf("embed chunk %d: %w", chunk.Position, err)
	}

	blocks := chunk.Blocks
	if !strings.Contains(chunk.Content, domain.PlaceholderToken) {
		blocks = nil
	}

	chunk.DocumentID = b.documentID
	chunk.ParentID = parentID
	chunk.HeaderLevel = level
	chunk.Embedding = embedding
	chunk.Position = b.position
	chunk.Blocks = nil

	id, err := b.store.SaveChunk(ctx, &chunk, blocks)
	if err != nil {
		return "", fmt.Errorf("save chunk %d: %w", chunk.Position, err)
	}
	b.position++
	b.report.Chunks++
	b.report.Blocks += len(blocks)

	switch level {
	case 1:
		b.cur1 = &treeNode{id: id, title: chunk.Headers.H1}
	case 2:
		b.cur2 = &treeNode{id: id, title: chunk.Headers.H2}
	}

	return id, nil
}

// synthesiseH2 persists a level-2 node for an H3 whose H2 has no chunk
// of its own, and makes it the current H2. The node inherits the H3's
// metadata so it carries the same source as its siblings.
func (b *treeBuilder) synthesiseH2(ctx context.Context, orphan *domain.Chunk) error {
	headers := orphan.Headers
	title := headers.H2
	logger.Debug("Synthesising H2 %q for orphaned H3 %q", title, headers.H3)

	embedding, err := b.embed(ctx, title)
	if err != nil {
		return fmt.Errorf("embed placeholder %q: %w", title, err)
	}

	placeholder := domain.Chunk{
		DocumentID:  b.documentID,
		ParentID:    b.idOf(b.cur1),
		Position:    b.position,
		Content:     "## " + title,
		Embedding:   embedding,
		HeaderLevel: 2,
		Headers:     domain.HeaderTitles{H1: headers.H1, H2: title},
		Placeholder: true,
		Metadata:    placeholderMetadata(orphan.Metadata),
	}

	id, err := b.store.SaveChunk(ctx, &placeholder, nil)
	if err != nil {
		return fmt.Errorf("save placeholder %q: %w", title, err)
	}
	b.position++
	b.report.Chunks++
	b.report.Placeholders++
	b.cur2 = &treeNode{id: id, title: title}
	return nil
}

func placeholderMetadata(md map[string]any) map[string]any {
	out := maps.Clone(md)
	if out == nil {
		out = make(map[string]any, 1)
	}
	out["synthesised"] = true
	return out
}

func (b *treeBuilder) idOf(n *treeNode) *string {
	if n == nil {
		return nil
	}
	id := n.id
	return &id
}

// Report returns the counts accumulated so far.
func (b *treeBuilder) Report() domain.IngestReport {
	return b.report
}
