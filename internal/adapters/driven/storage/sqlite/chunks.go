package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

var chunkColumnNames = []string{
	"id", "document_id", "parent_id", "position", "content", "embedding",
	"header_level", "h1", "h2", "h3", "placeholder", "metadata", "created_at",
}

var chunkColumns = strings.Join(chunkColumnNames, ", ")

// qualifiedChunkColumns prefixes every chunk column with a table alias.
func qualifiedChunkColumns(alias string) string {
	cols := make([]string, len(chunkColumnNames))
	for i, c := range chunkColumnNames {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

// SaveChunk persists a chunk and its blocks in one transaction.
// Any failure rolls back the chunk row together with its blocks.
func (s *Store) SaveChunk(ctx context.Context, chunk *domain.Chunk, blocks []domain.StructuredBlock) (string, error) {
	if chunk == nil {
		return "", fmt.Errorf("%w: chunk is nil", domain.ErrInvalidInput)
	}

	metadataJSON, err := json.Marshal(chunk.Metadata)
	if err != nil {
		return "", fmt.Errorf("marshalling chunk metadata: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	id := chunk.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := time.Now().UTC()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO document_chunks (`+chunkColumns+`, dimensions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, chunk.DocumentID, chunk.ParentID, chunk.Position, chunk.Content,
		float32SliceToBytes(chunk.Embedding), chunk.HeaderLevel,
		chunk.Headers.H1, chunk.Headers.H2, chunk.Headers.H3,
		chunk.Placeholder, string(metadataJSON), createdAt, len(chunk.Embedding))
	if err != nil {
		return "", fmt.Errorf("saving chunk: %w", err)
	}

	for i := range blocks {
		if err := insertBlock(ctx, tx, id, &blocks[i]); err != nil {
			return "", fmt.Errorf("saving block %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing transaction: %w", err)
	}

	chunk.ID = id
	chunk.CreatedAt = createdAt
	return id, nil
}

func insertBlock(ctx context.Context, tx *sql.Tx, chunkID string, block *domain.StructuredBlock) error {
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
		_, err = tx.ExecContext(ctx, `
			INSERT INTO json_blocks (id, chunk_id, json_content, start_offset, raw, metadata)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, chunkID, string(payload), block.Offset, block.Raw, string(metadataJSON))
		if err != nil {
			return err
		}

	case domain.BlockKindTable:
		rows, err := json.Marshal(block.Rows)
		if err != nil {
			return fmt.Errorf("marshalling table rows: %w", err)
		}
		headers, err := json.Marshal(block.Headers)
		if err != nil {
			return fmt.Errorf("marshalling table headers: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO table_blocks (id, chunk_id, table_content, headers, start_offset, raw, metadata)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, chunkID, string(rows), string(headers), block.Offset, block.Raw, string(metadataJSON))
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
	row := s.db.QueryRowContext(ctx, "SELECT "+chunkColumns+" FROM document_chunks WHERE id = ?", id)
	chunk, err := scanChunk(row)
	if err != nil {
		return nil, err
	}
	if chunk.Blocks, err = s.GetBlocks(ctx, id); err != nil {
		return nil, err
	}
	return chunk, nil
}

// ListChunks returns a document's chunks in ingestion order with blocks attached.
func (s *Store) ListChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	chunks, err := s.queryChunks(ctx, `
		SELECT `+chunkColumns+` FROM document_chunks
		WHERE document_id = ? ORDER BY position
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
		WHERE parent_id = ? ORDER BY position
	`, parentID)
}

// GetBlocks returns the structured blocks owned by a chunk, in text order.
func (s *Store) GetBlocks(ctx context.Context, chunkID string) ([]domain.StructuredBlock, error) {
	var blocks []domain.StructuredBlock

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, json_content, start_offset, raw, metadata FROM json_blocks WHERE chunk_id = ?
	`, chunkID)
	if err != nil {
		return nil, fmt.Errorf("querying json blocks: %w", err)
	}
	for rows.Next() {
		b := domain.StructuredBlock{ChunkID: chunkID, Kind: domain.BlockKindJSON}
		var payload, metadataJSON string
		if err := rows.Scan(&b.ID, &payload, &b.Offset, &b.Raw, &metadataJSON); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning json block: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &b.JSON); err != nil {
			rows.Close()
			return nil, fmt.Errorf("unmarshalling json block: %w", err)
		}
		b.Metadata = unmarshalMetadata(metadataJSON)
		blocks = append(blocks, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating json blocks: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT id, table_content, headers, start_offset, raw, metadata FROM table_blocks WHERE chunk_id = ?
	`, chunkID)
	if err != nil {
		return nil, fmt.Errorf("querying table blocks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		b := domain.StructuredBlock{ChunkID: chunkID, Kind: domain.BlockKindTable}
		var content, headers, metadataJSON string
		if err := rows.Scan(&b.ID, &content, &headers, &b.Offset, &b.Raw, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning table block: %w", err)
		}
		if err := json.Unmarshal([]byte(content), &b.Rows); err != nil {
			return nil, fmt.Errorf("unmarshalling table rows: %w", err)
		}
		if err := json.Unmarshal([]byte(headers), &b.Headers); err != nil {
			return nil, fmt.Errorf("unmarshalling table headers: %w", err)
		}
		b.Metadata = unmarshalMetadata(metadataJSON)
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating table blocks: %w", err)
	}

	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Offset < blocks[j].Offset })
	return blocks, nil
}

// Search scans every embedded chunk and returns those strictly closer
// than maxDistance, nearest first, with blocks attached.
func (s *Store) Search(
	ctx context.Context, query []float32, limit int, maxDistance float64,
) ([]domain.SearchResult, error) {
	results := make([]domain.SearchResult, 0)
	if limit <= 0 {
		return results, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+qualifiedChunkColumns("c")+`, d.uri
		FROM document_chunks c JOIN documents d ON d.id = c.document_id
		WHERE c.dimensions > 0
	`)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var uri string
		chunk, err := scanChunkWith(rows, &uri)
		if err != nil {
			return nil, err
		}
		d, err := s.metric.Distance(query, chunk.Embedding)
		if err != nil {
			return nil, err
		}
		if d >= maxDistance {
			continue
		}
		results = append(results, domain.SearchResult{Chunk: *chunk, Distance: d, DocumentURI: uri})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}
	rows.Close()

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
	if len(results) > limit {
		results = results[:limit]
	}

	for i := range results {
		if results[i].Chunk.Blocks, err = s.GetBlocks(ctx, results[i].Chunk.ID); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (s *Store) queryChunks(ctx context.Context, query string, args ...any) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
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

func scanChunk(row rowScanner) (*domain.Chunk, error) {
	return scanChunkWith(row)
}

// scanChunkWith scans the chunk columns followed by any extra destinations.
func scanChunkWith(row rowScanner, extra ...any) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var parentID sql.NullString
	var embedding []byte
	var metadataJSON string

	dest := []any{
		&chunk.ID, &chunk.DocumentID, &parentID, &chunk.Position, &chunk.Content, &embedding,
		&chunk.HeaderLevel, &chunk.Headers.H1, &chunk.Headers.H2, &chunk.Headers.H3,
		&chunk.Placeholder, &metadataJSON, &chunk.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	if parentID.Valid {
		chunk.ParentID = &parentID.String
	}
	chunk.Embedding = bytesToFloat32Slice(embedding)
	chunk.Metadata = unmarshalMetadata(metadataJSON)
	return &chunk, nil
}

func unmarshalMetadata(data string) map[string]any {
	if data == "" || data == jsonNull {
		return nil
	}
	var md map[string]any
	if err := json.Unmarshal([]byte(data), &md); err != nil {
		return nil
	}
	return md
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
