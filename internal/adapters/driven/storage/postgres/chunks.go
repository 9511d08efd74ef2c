package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

var chunkColumnNames = []string{"id", "document_id", "parent_id", "position", "content", "embedding",
	"header_level", "h1", "h2", "h3", "placeholder", "metadata", "created_at"}

var chunkColumns = strings.Join(chunkColumnNames, ", ")

func qualifiedChunkColumns(alias string) string {
	cols := make([]string, len(chunkColumnNames))
	for i, c := range chunkColumnNames {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

// SaveChunk persists a chunk and its blocks in one transaction.
func (s *Store) SaveChunk(ctx context.Context, chunk *domain.Chunk, blocks []domain.StructuredBlock) (string, error) {
	if chunk == nil {
		return "", fmt.Errorf("%w: chunk is nil", domain.ErrInvalidInput)
	}
	embedding, err := s.vector(chunk.Embedding)
	if err != nil {
		return "", err
	}

	metadataJSON, err := json.Marshal(chunk.Metadata)
	if err != nil {
		return "", fmt.Errorf("marshalling chunk metadata: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	id := chunk.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := time.Now().UTC()

	_, err = tx.Exec(ctx, `
		INSERT INTO document_chunks (`+chunkColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, id, chunk.DocumentID, chunk.ParentID, chunk.Position, chunk.Content, embedding,
		chunk.HeaderLevel, chunk.Headers.H1, chunk.Headers.H2, chunk.Headers.H3,
		chunk.Placeholder, metadataJSON, createdAt)
	if err != nil {
		return "", fmt.Errorf("saving chunk: %w", err)
	}

	for i := range blocks {
		if err := insertBlock(ctx, tx, id, &blocks[i]); err != nil {
			return "", fmt.Errorf("saving block %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("committing transaction: %w", err)
	}

	chunk.ID = id
	chunk.CreatedAt = createdAt
	return id, nil
}

// vector converts an embedding to a column value; empty embeddings are NULL.
func (s *Store) vector(embedding []float32) (any, error) {
	if len(embedding) == 0 {
		return nil, nil
	}
	if len(embedding) != s.dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(embedding), s.dimensions)
	}
	return pgvector.NewVector(embedding), nil
}

func insertBlock(ctx context.Context, tx pgx.Tx, chunkID string, block *domain.StructuredBlock) error {
	metadataJSON, err := json.Marshal(block.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling block metadata: %w", err)
	}

	id := block.ID
	if id == "" {
		id = uuid.NewString()
	}

	switch block.Kind {
	case domain.BlockKindJSON:
		payload, err := json.Marshal(block.JSON)
		if err != nil {
			return fmt.Errorf("marshalling json block: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO json_blocks (id, chunk_id, json_content, start_offset, raw, metadata)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, id, chunkID, payload, block.Offset, block.Raw, metadataJSON)
		if err != nil {
			return err
		}

	case domain.BlockKindTable:
		rows, err := json.Marshal(block.Rows)
		if err != nil {
			return fmt.Errorf("marshalling table rows: %w", err)
		}
		headers := block.Headers
		if headers == nil {
			headers = []string{}
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO table_blocks (id, chunk_id, table_content, headers, start_offset, raw, metadata)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, id, chunkID, rows, headers, block.Offset, block.Raw, metadataJSON)
		if err != nil {
			return err
		}

	default:
		return fmt.Errorf("%w: block kind %q", domain.ErrUnsupportedType, block.Kind)
	}

	block.ID = id
	block.ChunkID = chunkID
	return nil
}

// GetChunk retrieves a chunk by ID with its blocks attached.
func (s *Store) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+chunkColumns+" FROM document_chunks WHERE id = $1", id)
	chunk, err := scanChunk(row)
	if err != nil {
		return nil, err
	}
	if chunk.Blocks, err = s.GetBlocks(ctx, chunk.ID); err != nil {
		return nil, err
	}
	return chunk, nil
}

// ListChunks returns a document's chunks in ingestion order with blocks attached.
func (s *Store) ListChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	chunks, err := s.queryChunks(ctx, `
		SELECT `+chunkColumns+` FROM document_chunks
		WHERE document_id = $1 ORDER BY position, created_at
	`, documentID)
	if err != nil {
		return nil, err
	}
	for i := range chunks {
		if chunks[i].Blocks, err = s.GetBlocks(ctx, chunks[i].ID); err != nil {
			return nil, err
		}
	}
	return chunks, nil
}

// GetChildren returns the direct children of a chunk in insertion order.
func (s *Store) GetChildren(ctx context.Context, parentID string) ([]domain.Chunk, error) {
	return s.queryChunks(ctx, `
		SELECT `+chunkColumns+` FROM document_chunks
		WHERE parent_id = $1 ORDER BY position, created_at
	`, parentID)
}

// GetBlocks returns a chunk's structured blocks ordered by source offset.
func (s *Store) GetBlocks(ctx context.Context, chunkID string) ([]domain.StructuredBlock, error) {
	var blocks []domain.StructuredBlock

	rows, err := s.pool.Query(ctx, `
		SELECT id, json_content, start_offset, raw, metadata
		FROM json_blocks WHERE chunk_id = $1
	`, chunkID)
	if err != nil {
		return nil, fmt.Errorf("querying json blocks: %w", err)
	}
	for rows.Next() {
		var b domain.StructuredBlock
		var payload, metadataJSON []byte
		if err := rows.Scan(&b.ID, &payload, &b.Offset, &b.Raw, &metadataJSON); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning json block: %w", err)
		}
		if err := json.Unmarshal(payload, &b.JSON); err != nil {
			rows.Close()
			return nil, fmt.Errorf("decoding json block: %w", err)
		}
		b.Kind = domain.BlockKindJSON
		b.ChunkID = chunkID
		b.Metadata = unmarshalMetadata(metadataJSON)
		blocks = append(blocks, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating json blocks: %w", err)
	}

	rows, err = s.pool.Query(ctx, `
		SELECT id, table_content, headers, start_offset, raw, metadata
		FROM table_blocks WHERE chunk_id = $1
	`, chunkID)
	if err != nil {
		return nil, fmt.Errorf("querying table blocks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b domain.StructuredBlock
		var content, metadataJSON []byte
		if err := rows.Scan(&b.ID, &content, &b.Headers, &b.Offset, &b.Raw, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning table block: %w", err)
		}
		if err := json.Unmarshal(content, &b.Rows); err != nil {
			return nil, fmt.Errorf("decoding table block: %w", err)
		}
		b.Kind = domain.BlockKindTable
		b.ChunkID = chunkID
		b.Metadata = unmarshalMetadata(metadataJSON)
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating table blocks: %w", err)
	}

	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Offset < blocks[j].Offset })
	return blocks, nil
}

// Search orders embedded chunks by the metric's pgvector operator and
// keeps those strictly closer than maxDistance.
func (s *Store) Search(
	ctx context.Context, query []float32, limit int, maxDistance float64,
) ([]domain.SearchResult, error) {
	results := make([]domain.SearchResult, 0)
	if limit <= 0 {
		return results, nil
	}
	if len(query) != s.dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(query), s.dimensions)
	}

	op := s.operator()
	rows, err := s.pool.Query(ctx, `
		SELECT `+qualifiedChunkColumns("c")+`, d.uri, c.embedding `+op+` $1 AS distance
		FROM document_chunks c JOIN documents d ON d.id = c.document_id
		WHERE c.embedding IS NOT NULL AND c.embedding `+op+` $1 < $2
		ORDER BY distance, c.id
		LIMIT $3
	`, pgvector.NewVector(query), maxDistance, limit)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var uri string
		var distance float64
		chunk, err := scanChunkWith(rows, &uri, &distance)
		if err != nil {
			return nil, err
		}
		results = append(results, domain.SearchResult{Chunk: *chunk, Distance: distance, DocumentURI: uri})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}
	rows.Close()

	for i := range results {
		if results[i].Chunk.Blocks, err = s.GetBlocks(ctx, results[i].Chunk.ID); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (s *Store) queryChunks(ctx context.Context, query string, args ...any) ([]domain.Chunk, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

func scanChunk(row pgx.Row) (*domain.Chunk, error) {
	return scanChunkWith(row)
}

// scanChunkWith scans the chunk columns followed by any extra destinations.
func scanChunkWith(row pgx.Row, extra ...any) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embedding *pgvector.Vector
	var metadataJSON []byte

	dest := []any{
		&chunk.ID, &chunk.DocumentID, &chunk.ParentID, &chunk.Position, &chunk.Content, &embedding,
		&chunk.HeaderLevel, &chunk.Headers.H1, &chunk.Headers.H2, &chunk.Headers.H3,
		&chunk.Placeholder, &metadataJSON, &chunk.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	if embedding != nil {
		chunk.Embedding = embedding.Slice()
	}
	chunk.Metadata = unmarshalMetadata(metadataJSON)
	return &chunk, nil
}
