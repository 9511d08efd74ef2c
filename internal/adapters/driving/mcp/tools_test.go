package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

func ptr(s string) *string { return &s }

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns chunks with blocks and parent", func(t *testing.T) {
		parent := domain.Chunk{
			ID:          "c-1",
			HeaderLevel: 1,
			Headers:     domain.HeaderTitles{H1: "Orders"},
		}
		mockSearch := &mockSearchService{
			results: []domain.SearchResult{{
				Chunk: domain.Chunk{
					ID:          "c-2",
					DocumentID:  "doc-1",
					ParentID:    ptr("c-1"),
					HeaderLevel: 2,
					Headers:     domain.HeaderTitles{H1: "Orders", H2: "Create"},
					Content:     "## Create\n\n" + domain.PlaceholderToken,
					Blocks: []domain.StructuredBlock{{
						Kind: domain.BlockKindJSON,
						JSON: map[string]any{"id": "ord_1"},
					}},
				},
				Distance:    0.42,
				Parent:      &parent,
				DocumentURI: "/docs/orders.md",
			}},
		}

		server, err := NewServer(&Ports{Search: mockSearch})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "create order", Limit: 3})

		require.NoError(t, err)
		require.Equal(t, 1, output.Count)
		got := output.Results[0]
		assert.Equal(t, "c-2", got.ID)
		assert.Equal(t, "c-1", got.ParentID)
		assert.Equal(t, "Orders", got.ParentTitle)
		assert.Equal(t, "Create", got.Title)
		assert.Equal(t, "Orders > Create", got.Section)
		assert.Equal(t, "/docs/orders.md", got.DocumentURI)
		assert.InDelta(t, 0.42, got.Distance, 1e-9)
		require.Len(t, got.Blocks, 1)
		assert.Equal(t, "json", got.Blocks[0].Kind)
		assert.Equal(t, map[string]any{"id": "ord_1"}, got.Blocks[0].JSON)

		assert.Equal(t, 3, mockSearch.lastOpts.Limit)
		assert.True(t, mockSearch.lastOpts.WithParents)
	})

	t.Run("zero limit defers to service defaults", func(t *testing.T) {
		mockSearch := &mockSearchService{}
		server, err := NewServer(&Ports{Search: mockSearch})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "test"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.NotNil(t, output.Results)
		assert.Zero(t, mockSearch.lastOpts.Limit)
	})

	t.Run("empty query is rejected", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "  "})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("maps dimension mismatch", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{err: domain.ErrDimensionMismatch}})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "test"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "re-ingest")
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{err: errors.New("search failed")}})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "test"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "search failed")
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer with sources", func(t *testing.T) {
		answers := &mockAnswerService{answer: &domain.Answer{
			Query:     "how do I create an order?",
			Text:      "POST /orders",
			Generated: true,
			Results: []domain.SearchResult{{
				Chunk:       domain.Chunk{ID: "c-2", Headers: domain.HeaderTitles{H1: "Orders", H2: "Create"}},
				Distance:    0.3,
				DocumentURI: "/docs/orders.md",
			}},
		}}
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Answer: answers})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "how do I create an order?"})

		require.NoError(t, err)
		assert.Equal(t, "POST /orders", output.Answer)
		assert.True(t, output.Generated)
		require.Len(t, output.Sources, 1)
		assert.Equal(t, SourceOutput{
			ChunkID: "c-2", DocumentURI: "/docs/orders.md", Section: "Orders > Create", Distance: 0.3,
		}, output.Sources[0])
	})

	t.Run("empty question is rejected", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Answer: &mockAnswerService{}})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("propagates answer errors", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Search: &mockSearchService{},
			Answer: &mockAnswerService{err: domain.ErrEmbeddingUnavailable},
		})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q"})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}

func TestServer_handleGetChunk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the chunk", func(t *testing.T) {
		docs := &mockDocumentService{chunk: &domain.Chunk{
			ID:          "c-3",
			DocumentID:  "doc-1",
			HeaderLevel: 3,
			Headers:     domain.HeaderTitles{H1: "Orders", H2: "Create", H3: "Fields"},
			Blocks: []domain.StructuredBlock{{
				Kind:    domain.BlockKindTable,
				Headers: []string{"Name", "Type"},
				Rows:    []map[string]string{{"Name": "id", "Type": "string"}},
			}},
		}}
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Document: docs})
		require.NoError(t, err)

		_, out, err := server.handleGetChunk(ctx, nil, GetChunkInput{ID: "c-3"})

		require.NoError(t, err)
		assert.Equal(t, "Fields", out.Title)
		assert.Empty(t, out.ParentID)
		require.Len(t, out.Blocks, 1)
		assert.Equal(t, "table", out.Blocks[0].Kind)
		assert.Equal(t, []string{"Name", "Type"}, out.Blocks[0].Headers)
	})

	t.Run("missing id is rejected", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Document: &mockDocumentService{}})
		require.NoError(t, err)

		_, _, err = server.handleGetChunk(ctx, nil, GetChunkInput{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("not found", func(t *testing.T) {
		docs := &mockDocumentService{err: domain.ErrNotFound}
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Document: docs})
		require.NoError(t, err)

		_, _, err = server.handleGetChunk(ctx, nil, GetChunkInput{ID: "missing"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Contains(t, err.Error(), "no such document or chunk")
	})
}

func TestServer_handleListDocuments(t *testing.T) {
	ctx := context.Background()
	updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	docs := &mockDocumentService{
		documents: []domain.Document{
			{ID: "doc-1", URI: "/docs/orders.md", Title: "Orders", UpdatedAt: updated},
			{ID: "doc-2", URI: "/docs/users.md", Title: "Users", UpdatedAt: updated},
		},
		stats: domain.StoreStats{Documents: 2, Chunks: 9, JSONBlocks: 4, TableBlocks: 2},
	}
	server, err := NewServer(&Ports{Search: &mockSearchService{}, Document: docs})
	require.NoError(t, err)

	_, out, err := server.handleListDocuments(ctx, nil, ListDocumentsInput{})

	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, 9, out.Chunks)
	assert.Equal(t, 4, out.JSONBlocks)
	assert.Equal(t, 2, out.TableBlocks)
	assert.Equal(t, DocumentOutput{ID: "doc-1", URI: "/docs/orders.md", Title: "Orders", UpdatedAt: updated}, out.Documents[0])
}

func TestSection(t *testing.T) {
	assert.Empty(t, section(domain.HeaderTitles{}))
	assert.Equal(t, "A", section(domain.HeaderTitles{H1: "A"}))
	assert.Equal(t, "A > C", section(domain.HeaderTitles{H1: "A", H3: "C"}))
}
