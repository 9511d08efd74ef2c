package postgres

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// testDatabaseEnv names a PostgreSQL URL with pgvector available.
const testDatabaseEnv = "DOCRAG_TEST_DATABASE_URL"

// setupTestStore creates a store in a throwaway schema.
func setupTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	dsn := os.Getenv(testDatabaseEnv)
	if dsn == "" {
		t.Skipf("%s not set", testDatabaseEnv)
	}
	ctx := context.Background()
	schema := "docrag_test_" + strings.ReplaceAll(uuid.NewString()[:8], "-", "")

	store, err := NewStore(ctx, dsn, 2, append(opts, WithSchema(schema))...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, err := store.pool.Exec(ctx, "DROP SCHEMA "+pgx.Identifier{schema}.Sanitize()+" CASCADE")
		assert.NoError(t, err)
		assert.NoError(t, store.Close())
	})
	return store
}

func createTestDocument(t *testing.T, store *Store, uri string) *domain.Document {
	t.Helper()
	doc := &domain.Document{URI: uri, Title: uri}
	require.NoError(t, store.SaveDocument(context.Background(), doc))
	return doc
}

func TestNewStore_Validation(t *testing.T) {
	_, err := NewStore(context.Background(), "", 2)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	_, err = NewStore(context.Background(), "postgres://localhost/db", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_DocumentsAndChunks(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	doc := createTestDocument(t, store, "/docs/orders.md")

	err := store.SaveDocument(ctx, &domain.Document{URI: "/docs/orders.md"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	rootID, err := store.SaveChunk(ctx, &domain.Chunk{
		DocumentID: doc.ID, Content: "# Orders", Embedding: []float32{5, 5}, HeaderLevel: 1,
		Headers: domain.HeaderTitles{H1: "Orders"},
	}, nil)
	require.NoError(t, err)

	childID, err := store.SaveChunk(ctx, &domain.Chunk{
		DocumentID: doc.ID, ParentID: &rootID, Position: 1, Content: "## Create",
		Embedding: []float32{0, 0}, HeaderLevel: 2,
	}, []domain.StructuredBlock{
		{Kind: domain.BlockKindTable, Headers: []string{"Field"}, Rows: []map[string]string{{"Field": "id"}}, Offset: 20},
		{Kind: domain.BlockKindJSON, JSON: map[string]any{"id": "ord_1"}, Offset: 5},
	})
	require.NoError(t, err)

	got, err := store.GetChunk(ctx, childID)
	require.NoError(t, err)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, rootID, *got.ParentID)
	assert.Equal(t, []float32{0, 0}, got.Embedding)
	require.Len(t, got.Blocks, 2)
	assert.Equal(t, domain.BlockKindJSON, got.Blocks[0].Kind)
	assert.Equal(t, []string{"Field"}, got.Blocks[1].Headers)

	children, err := store.GetChildren(ctx, rootID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, childID, children[0].ID)

	_, err = store.SaveChunk(ctx, &domain.Chunk{DocumentID: doc.ID, Embedding: []float32{1, 2, 3}}, nil)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	_, err = store.SaveChunk(ctx, &domain.Chunk{DocumentID: doc.ID},
		[]domain.StructuredBlock{{Kind: domain.BlockKindJSON, JSON: make(chan int)}})
	require.Error(t, err)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StoreStats{Documents: 1, Chunks: 2, JSONBlocks: 1, TableBlocks: 1}, stats)

	require.NoError(t, store.DeleteDocument(ctx, doc.ID))
	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StoreStats{}, stats)
}

func TestStore_Search(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	doc := createTestDocument(t, store, "/docs/orders.md")

	var ids []string
	for _, emb := range [][]float32{{0, 0}, {0.3, 0}, {0.9, 0}, {2, 0}} {
		id, err := store.SaveChunk(ctx, &domain.Chunk{DocumentID: doc.ID, Embedding: emb}, nil)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	results, err := store.Search(ctx, []float32{0, 0}, 2, 1.0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, ids[0], results[0].Chunk.ID)
	assert.Equal(t, ids[1], results[1].Chunk.ID)
	assert.InDelta(t, 0.3, results[1].Distance, 1e-6)
	assert.Equal(t, "/docs/orders.md", results[0].DocumentURI)

	results, err = store.Search(ctx, []float32{0, 0}, 10, 1.0)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	results, err = store.Search(ctx, []float32{40, 40}, 10, 1.0)
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = store.Search(ctx, []float32{0}, 2, 1.0)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}
