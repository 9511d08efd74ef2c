package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
// Search is an exact scan over every stored embedding.
type ChunkStore struct {
	mu        sync.RWMutex
	metric    domain.DistanceMetric
	documents map[string]domain.Document
	chunks    map[string]domain.Chunk
	order     map[string][]string // document ID -> chunk IDs in insertion order
	blocks    map[string][]domain.StructuredBlock
}

// NewChunkStore creates an empty store using the given distance metric.
func NewChunkStore(metric domain.DistanceMetric) *ChunkStore {
	if !metric.IsValid() {
		metric = domain.DistanceL2
	}
	return &ChunkStore{
		metric:    metric,
		documents: make(map[string]domain.Document),
		chunks:    make(map[string]domain.Chunk),
		order:     make(map[string][]string),
		blocks:    make(map[string][]domain.StructuredBlock),
	}
}

// SaveDocument stores or updates a document.
func (s *ChunkStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.URI == "" {
		return fmt.Errorf("%w: document URI is required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	for id, existing := range s.documents {
		if existing.URI == doc.URI && id != doc.ID {
			return fmt.Errorf("%w: document for %s", domain.ErrAlreadyExists, doc.URI)
		}
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *ChunkStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetDocumentByURI retrieves a document by its source location.
func (s *ChunkStore) GetDocumentByURI(_ context.Context, uri string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.documents {
		if doc.URI == uri {
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListDocuments returns all documents ordered by URI.
func (s *ChunkStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := slices.Collect(maps.Values(s.documents))
	sort.Slice(docs, func(i, j int) bool { return docs[i].URI < docs[j].URI })
	return docs, nil
}

// DeleteDocument removes a document with its chunks and blocks.
func (s *ChunkStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	for _, chunkID := range s.order[id] {
		delete(s.chunks, chunkID)
		delete(s.blocks, chunkID)
	}
	delete(s.order, id)
	delete(s.documents, id)
	return nil
}

// SaveChunk stores a chunk and its blocks. Blocks are validated before
// anything is written, so a failure stores neither.
func (s *ChunkStore) SaveChunk(_ context.Context, chunk *domain.Chunk, blocks []domain.StructuredBlock) (string, error) {
	if chunk == nil {
		return "", fmt.Errorf("%w: chunk is nil", domain.ErrInvalidInput)
	}
	for i := range blocks {
		if _, err := json.Marshal(blocks[i].JSON); err != nil {
			return "", fmt.Errorf("encode block %d: %w", i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[chunk.DocumentID]; !ok {
		return "", fmt.Errorf("document %s: %w", chunk.DocumentID, domain.ErrNotFound)
	}
	if chunk.ParentID != nil {
		if _, ok := s.chunks[*chunk.ParentID]; !ok {
			return "", fmt.Errorf("parent %s: %w", *chunk.ParentID, domain.ErrNotFound)
		}
	}

	if chunk.ID == "" {
		chunk.ID = uuid.NewString()
	}
	chunk.CreatedAt = time.Now()

	stored := *chunk
	stored.Blocks = nil
	s.chunks[chunk.ID] = stored
	s.order[chunk.DocumentID] = append(s.order[chunk.DocumentID], chunk.ID)

	owned := make([]domain.StructuredBlock, len(blocks))
	for i, b := range blocks {
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		b.ChunkID = chunk.ID
		owned[i] = b
	}
	if len(owned) > 0 {
		s.blocks[chunk.ID] = owned
	}

	return chunk.ID, nil
}

// GetChunk retrieves a chunk by ID with its blocks attached.
func (s *ChunkStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunk, ok := s.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	chunk.Blocks = slices.Clone(s.blocks[id])
	return &chunk, nil
}

// ListChunks returns a document's chunks in ingestion order.
func (s *ChunkStore) ListChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.order[documentID]
	chunks := make([]domain.Chunk, 0, len(ids))
	for _, id := range ids {
		c := s.chunks[id]
		c.Blocks = slices.Clone(s.blocks[id])
		chunks = append(chunks, c)
	}
	return chunks, nil
}

// GetChildren returns the direct children of a chunk in insertion order.
func (s *ChunkStore) GetChildren(_ context.Context, parentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	parent, ok := s.chunks[parentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	var children []domain.Chunk
	for _, id := range s.order[parent.DocumentID] {
		c := s.chunks[id]
		if c.ParentID != nil && *c.ParentID == parentID {
			children = append(children, c)
		}
	}
	return children, nil
}

// GetBlocks returns the structured blocks owned by a chunk.
func (s *ChunkStore) GetBlocks(_ context.Context, chunkID string) ([]domain.StructuredBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.blocks[chunkID]), nil
}

// Search scans every embedded chunk and returns those strictly closer
// than maxDistance, nearest first.
func (s *ChunkStore) Search(
	_ context.Context, query []float32, limit int, maxDistance float64,
) ([]domain.SearchResult, error) {
	if limit <= 0 {
		return []domain.SearchResult{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]domain.SearchResult, 0)
	for id, chunk := range s.chunks {
		if len(chunk.Embedding) == 0 {
			continue
		}
		d, err := s.metric.Distance(query, chunk.Embedding)
		if err != nil {
			return nil, err
		}
		if d >= maxDistance {
			continue
		}
		chunk.Blocks = slices.Clone(s.blocks[id])
		results = append(results, domain.SearchResult{
			Chunk:       chunk,
			Distance:    d,
			DocumentURI: s.documents[chunk.DocumentID].URI,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Stats returns row counts for the store.
func (s *ChunkStore) Stats(_ context.Context) (domain.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := domain.StoreStats{
		Documents: len(s.documents),
		Chunks:    len(s.chunks),
	}
	for _, blocks := range s.blocks {
		for _, b := range blocks {
			switch b.Kind {
			case domain.BlockKindJSON:
				stats.JSONBlocks++
			case domain.BlockKindTable:
				stats.TableBlocks++
			}
		}
	}
	return stats, nil
}

// Close is a no-op.
func (s *ChunkStore) Close() error {
	return nil
}
