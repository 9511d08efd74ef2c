package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

// createTestDocument creates a document to satisfy foreign key constraints.
func createTestDocument(t *testing.T, store *Store, uri string) *domain.Document {
	t.Helper()
	doc := &domain.Document{
		URI:      uri,
		Title:    filepath.Base(uri),
		Content:  "# " + uri,
		Metadata: map[string]any{"format": "markdown"},
	}
	require.NoError(t, store.SaveDocument(context.Background(), doc))
	return doc
}

func createTestChunk(t *testing.T, store *Store, docID string, parent *string, level int, emb []float32) string {
	t.Helper()
	id, err := store.SaveChunk(context.Background(), &domain.Chunk{
		DocumentID:  docID,
		ParentID:    parent,
		Content:     "chunk",
		Embedding:   emb,
		HeaderLevel: level,
	}, nil)
	require.NoError(t, err)
	return id
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "chunks.db"), store.Path())
	require.NoError(t, store.Close())

	// Reopening skips applied migrations
	store, err = NewStore(dir)
	require.NoError(t, err)
	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
	require.NoError(t, store.Close())
}

func TestStore_Documents(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	b := createTestDocument(t, store, "/docs/b.md")
	createTestDocument(t, store, "/docs/a.md")
	assert.NotEmpty(t, b.ID)

	got, err := store.GetDocument(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "/docs/b.md", got.URI)
	assert.Equal(t, "markdown", got.Metadata["format"])

	byURI, err := store.GetDocumentByURI(ctx, "/docs/b.md")
	require.NoError(t, err)
	assert.Equal(t, b.ID, byURI.ID)

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "/docs/a.md", docs[0].URI)

	b.Title = "Renamed"
	require.NoError(t, store.SaveDocument(ctx, b))
	got, err = store.GetDocument(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)

	err = store.SaveDocument(ctx, &domain.Document{URI: "/docs/a.md"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = store.GetDocument(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.GetDocumentByURI(ctx, "/nope.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_SaveChunkRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	doc := createTestDocument(t, store, "/docs/orders.md")
	root := createTestChunk(t, store, doc.ID, nil, 1, []float32{1, 2})

	chunk := &domain.Chunk{
		DocumentID:  doc.ID,
		ParentID:    &root,
		Position:    1,
		Content:     "## Create\n" + domain.PlaceholderToken + "\n" + domain.PlaceholderToken,
		Embedding:   []float32{0.5, -0.25},
		HeaderLevel: 2,
		Headers:     domain.HeaderTitles{H1: "Orders", H2: "Create"},
		Placeholder: true,
		Metadata:    map[string]any{"source": "/docs/orders.md"},
	}
	blocks := []domain.StructuredBlock{
		{
			Kind:    domain.BlockKindTable,
			Headers: []string{"Field", "Type"},
			Rows:    []map[string]string{{"Field": "item", "Type": "string"}},
			Offset:  40,
			Raw:     "| Field | Type |",
		},
		{Kind: domain.BlockKindJSON, JSON: map[string]any{"item": "book"}, Offset: 10, Raw: "```"},
	}

	id, err := store.SaveChunk(ctx, chunk, blocks)
	require.NoError(t, err)
	assert.Equal(t, id, chunk.ID)

	got, err := store.GetChunk(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.DocumentID)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, root, *got.ParentID)
	assert.Equal(t, []float32{0.5, -0.25}, got.Embedding)
	assert.Equal(t, chunk.Headers, got.Headers)
	assert.Equal(t, 2, got.HeaderLevel)
	assert.True(t, got.Placeholder)
	assert.Equal(t, "/docs/orders.md", got.Metadata["source"])

	require.Len(t, got.Blocks, 2)
	assert.Equal(t, domain.BlockKindJSON, got.Blocks[0].Kind, "blocks are ordered by offset")
	assert.Equal(t, map[string]any{"item": "book"}, got.Blocks[0].JSON)
	assert.Equal(t, domain.BlockKindTable, got.Blocks[1].Kind)
	assert.Equal(t, []string{"Field", "Type"}, got.Blocks[1].Headers)
	assert.Equal(t, "string", got.Blocks[1].Rows[0]["Type"])
	assert.Equal(t, id, got.Blocks[1].ChunkID)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StoreStats{Documents: 1, Chunks: 2, JSONBlocks: 1, TableBlocks: 1}, stats)
}

func TestStore_SaveChunkRollsBackBlocks(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	doc := createTestDocument(t, store, "/docs/orders.md")

	// The second block cannot be encoded, so the failure happens after the
	// chunk row and the first block row were written.
	_, err := store.SaveChunk(ctx, &domain.Chunk{DocumentID: doc.ID, Content: "x"},
		[]domain.StructuredBlock{
			{Kind: domain.BlockKindJSON, JSON: map[string]any{"ok": true}},
			{Kind: domain.BlockKindJSON, JSON: make(chan int)},
		})
	require.Error(t, err)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Chunks)
	assert.Zero(t, stats.JSONBlocks)
	assert.Zero(t, stats.TableBlocks)
}

func TestStore_SaveChunkUnknownBlockKind(t *testing.T) {
	store := setupTestStore(t)
	doc := createTestDocument(t, store, "/docs/orders.md")

	_, err := store.SaveChunk(context.Background(), &domain.Chunk{DocumentID: doc.ID},
		[]domain.StructuredBlock{{Kind: "image"}})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestStore_SaveChunkForeignKeys(t *testing.T) {
	store := setupTestStore(t)
	_, err := store.SaveChunk(context.Background(), &domain.Chunk{DocumentID: "missing"}, nil)
	assert.Error(t, err)
}

func TestStore_ChildrenAndList(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	doc := createTestDocument(t, store, "/docs/orders.md")

	root := createTestChunk(t, store, doc.ID, nil, 1, nil)
	first := createTestChunk(t, store, doc.ID, &root, 2, nil)
	second := createTestChunk(t, store, doc.ID, &root, 2, nil)
	createTestChunk(t, store, doc.ID, &first, 3, nil)

	children, err := store.GetChildren(ctx, root)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.ElementsMatch(t, []string{first, second}, []string{children[0].ID, children[1].ID})

	chunks, err := store.ListChunks(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, chunks, 4)
}

func TestStore_DeleteDocumentCascades(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	doc := createTestDocument(t, store, "/docs/orders.md")
	root := createTestChunk(t, store, doc.ID, nil, 1, nil)
	_, err := store.SaveChunk(ctx, &domain.Chunk{DocumentID: doc.ID, ParentID: &root, Position: 1},
		[]domain.StructuredBlock{
			{Kind: domain.BlockKindJSON, JSON: 1.0},
			{Kind: domain.BlockKindTable, Headers: []string{"A"}, Rows: []map[string]string{{"A": "1"}}},
		})
	require.NoError(t, err)

	require.NoError(t, store.DeleteDocument(ctx, doc.ID))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StoreStats{}, stats)
	assert.ErrorIs(t, store.DeleteDocument(ctx, doc.ID), domain.ErrNotFound)
}

func TestStore_Search(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	doc := createTestDocument(t, store, "/docs/orders.md")

	nearest := createTestChunk(t, store, doc.ID, nil, 1, []float32{0, 0})
	near := createTestChunk(t, store, doc.ID, nil, 1, []float32{0.2, 0})
	createTestChunk(t, store, doc.ID, nil, 1, []float32{0.7, 0})
	createTestChunk(t, store, doc.ID, nil, 1, []float32{4, 0})
	createTestChunk(t, store, doc.ID, nil, 1, nil)

	_, err := store.SaveChunk(ctx, &domain.Chunk{DocumentID: doc.ID, Embedding: []float32{0.1, 0}},
		[]domain.StructuredBlock{{Kind: domain.BlockKindJSON, JSON: map[string]any{"id": "ord_1"}}})
	require.NoError(t, err)

	results, err := store.Search(ctx, []float32{0, 0}, 2, 1.0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, nearest, results[0].Chunk.ID)
	assert.Len(t, results[1].Chunk.Blocks, 1, "blocks are attached to results")
	assert.Equal(t, "/docs/orders.md", results[0].DocumentURI)
	for i, r := range results {
		assert.Less(t, r.Distance, 1.0)
		if i > 0 {
			assert.LessOrEqual(t, results[i-1].Distance, r.Distance)
		}
	}

	results, err = store.Search(ctx, []float32{0, 0}, 10, 1.0)
	require.NoError(t, err)
	assert.Len(t, results, 4)
	assert.Equal(t, near, results[2].Chunk.ID)

	results, err = store.Search(ctx, []float32{50, 50}, 2, 1.0)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)

	_, err = store.Search(ctx, []float32{0, 0, 0}, 2, 1.0)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestStore_SearchCosine(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t, WithMetric(domain.DistanceCosine))
	doc := createTestDocument(t, store, "/docs/orders.md")

	same := createTestChunk(t, store, doc.ID, nil, 1, []float32{10, 0})
	createTestChunk(t, store, doc.ID, nil, 1, []float32{0, 1})

	results, err := store.Search(ctx, []float32{1, 0}, 5, 0.5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, same, results[0].Chunk.ID)
	assert.InDelta(t, 0, results[0].Distance, 1e-6)
}

func TestStore_ConcurrentDocuments(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	var wg sync.WaitGroup
	for _, uri := range []string{"/a.md", "/b.md", "/c.md", "/d.md"} {
		doc := createTestDocument(t, store, uri)
		wg.Add(1)
		go func(docID string) {
			defer wg.Done()
			var parent *string
			for i := 0; i < 5; i++ {
				id, err := store.SaveChunk(ctx, &domain.Chunk{
					DocumentID: docID, ParentID: parent, Position: i, Embedding: []float32{float32(i), 0},
				}, []domain.StructuredBlock{{Kind: domain.BlockKindJSON, JSON: float64(i)}})
				if !assert.NoError(t, err) {
					return
				}
				parent = &id
			}
		}(doc.ID)
	}
	wg.Wait()

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, stats.Chunks)
	assert.Equal(t, 20, stats.JSONBlocks)
}

func TestFloat32Codec(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3.4028235e38}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
