package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService inspects and manages ingested documents.
type DocumentService struct {
	store driven.ChunkStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(store driven.ChunkStore) *DocumentService {
	return &DocumentService{store: store}
}

// List returns all ingested documents.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	if s.store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	return s.store.ListDocuments(ctx)
}

// Get retrieves a document by ID, falling back to lookup by URI.
func (s *DocumentService) Get(ctx context.Context, idOrURI string) (*domain.Document, error) {
	if s.store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	if idOrURI == "" {
		return nil, fmt.Errorf("%w: document ID is required", domain.ErrInvalidInput)
	}

	doc, err := s.store.GetDocument(ctx, idOrURI)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return s.store.GetDocumentByURI(ctx, idOrURI)
}

// Tree returns a document's chunks in ingestion order.
func (s *DocumentService) Tree(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return s.store.ListChunks(ctx, doc.ID)
}

// Chunk returns a single chunk with its blocks.
func (s *DocumentService) Chunk(ctx context.Context, chunkID string) (*domain.Chunk, error) {
	if s.store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	return s.store.GetChunk(ctx, chunkID)
}

// Delete removes a document and everything beneath it.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return err
	}
	return s.store.DeleteDocument(ctx, doc.ID)
}

// Stats summarises the store contents.
func (s *DocumentService) Stats(ctx context.Context) (domain.StoreStats, error) {
	if s.store == nil {
		return domain.StoreStats{}, domain.ErrStoreUnavailable
	}
	return s.store.Stats(ctx)
}
