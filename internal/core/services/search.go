package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService retrieves the chunks nearest to a query embedding.
type SearchService struct {
	store    driven.ChunkStore
	embedder driven.EmbeddingService
	defaults domain.SearchSettings
}

// NewSearchService creates a new search service. Zero-valued search
// options fall back to defaults.
func NewSearchService(
	store driven.ChunkStore,
	embedder driven.EmbeddingService,
	defaults domain.SearchSettings,
) *SearchService {
	return &SearchService{
		store:    store,
		embedder: embedder,
		defaults: defaults,
	}
}

// Search embeds the query and returns chunks within the distance
// threshold, nearest first. No match is an empty slice, not an error.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}
	if s.store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	opts = s.withDefaults(opts)
	logger.Debug("Limit: %d, max distance: %.3f", opts.Limit, opts.MaxDistance)

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil, fmt.Errorf("embed query: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(embedding))

	results, err := s.store.Search(ctx, embedding, opts.Limit, opts.MaxDistance)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	if opts.WithParents {
		if err := s.hydrateParents(ctx, results); err != nil {
			return nil, err
		}
	}

	logger.Info("Final results: %d", len(results))
	return results, nil
}

func (s *SearchService) withDefaults(opts domain.SearchOptions) domain.SearchOptions {
	if opts.Limit <= 0 {
		opts.Limit = s.defaults.Limit
	}
	if opts.Limit <= 0 {
		opts.Limit = domain.DefaultAppSettings().Search.Limit
	}
	if opts.MaxDistance <= 0 {
		opts.MaxDistance = s.defaults.MaxDistance
	}
	if opts.MaxDistance <= 0 {
		opts.MaxDistance = domain.DefaultAppSettings().Search.MaxDistance
	}
	return opts
}

// hydrateParents attaches each result's enclosing header chunk.
func (s *SearchService) hydrateParents(ctx context.Context, results []domain.SearchResult) error {
	for i := range results {
		parentID := results[i].Chunk.ParentID
		if parentID == nil {
			continue
		}
		parent, err := s.store.GetChunk(ctx, *parentID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("get parent %s: %w", *parentID, err)
		}
		results[i].Parent = parent
	}
	return nil
}
