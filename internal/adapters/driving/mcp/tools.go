package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// SearchInput is the input schema for the search_docs tool.
type SearchInput struct {
	Query       string  `json:"query" jsonschema:"natural-language description of what to find in the API documentation"`
	Limit       int     `json:"limit,omitempty" jsonschema:"maximum number of chunks to return (default from settings)"`
	MaxDistance float64 `json:"max_distance,omitempty" jsonschema:"exclude chunks at or beyond this embedding distance"`
}

// SearchOutput is the output schema for the search_docs tool.
type SearchOutput struct {
	Results []ChunkOutput `json:"results"`
	Count   int           `json:"count"`
}

// ChunkOutput is a chunk with its structured blocks.
type ChunkOutput struct {
	ID          string        `json:"id"`
	DocumentID  string        `json:"document_id"`
	DocumentURI string        `json:"document_uri,omitempty"`
	ParentID    string        `json:"parent_id,omitempty"`
	ParentTitle string        `json:"parent_title,omitempty"`
	Title       string        `json:"title,omitempty"`
	HeaderLevel int           `json:"header_level"`
	Section     string        `json:"section,omitempty"`
	Content     string        `json:"content"`
	Distance    float64       `json:"distance,omitempty"`
	Blocks      []BlockOutput `json:"blocks,omitempty"`
}

// BlockOutput is a JSON sample or table lifted out of a chunk.
type BlockOutput struct {
	Kind    string              `json:"kind"`
	JSON    any                 `json:"json,omitempty"`
	Headers []string            `json:"headers,omitempty"`
	Rows    []map[string]string `json:"rows,omitempty"`
}

// AskInput is the input schema for the ask_docs tool.
type AskInput struct {
	Question    string  `json:"question" jsonschema:"question about the API"`
	Limit       int     `json:"limit,omitempty" jsonschema:"maximum number of chunks used as context"`
	MaxDistance float64 `json:"max_distance,omitempty" jsonschema:"exclude chunks at or beyond this embedding distance"`
}

// AskOutput is the output schema for the ask_docs tool.
type AskOutput struct {
	Answer    string         `json:"answer"`
	Generated bool           `json:"generated"`
	Sources   []SourceOutput `json:"sources"`
}

// SourceOutput identifies a chunk an answer was built from.
type SourceOutput struct {
	ChunkID     string  `json:"chunk_id"`
	DocumentURI string  `json:"document_uri,omitempty"`
	Section     string  `json:"section,omitempty"`
	Distance    float64 `json:"distance"`
}

// GetChunkInput is the input schema for the get_chunk tool.
type GetChunkInput struct {
	ID string `json:"id" jsonschema:"chunk ID as returned by search_docs"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents   []DocumentOutput `json:"documents"`
	Count       int              `json:"count"`
	Chunks      int              `json:"chunks"`
	JSONBlocks  int              `json:"json_blocks"`
	TableBlocks int              `json:"table_blocks"`
}

// DocumentOutput summarises an ingested page.
type DocumentOutput struct {
	ID        string    `json:"id"`
	URI       string    `json:"uri"`
	Title     string    `json:"title,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "search_docs",
		Description: "Search the ingested API documentation. Returns the closest sections " +
			"with their JSON examples and tables.",
	}, s.handleSearch)

	if s.ports.Answer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask_docs",
			Description: "Answer a question about the API from the ingested documentation",
		}, s.handleAsk)
	}

	if s.ports.Document != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "get_chunk",
			Description: "Fetch one documentation section by chunk ID",
		}, s.handleGetChunk)
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_documents",
			Description: "List ingested documentation pages with store totals",
		}, s.handleListDocuments)
	}
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchOutput{}, toolError(fmt.Errorf("%w: query is required", domain.ErrInvalidInput))
	}

	opts := domain.SearchOptions{
		Limit:       input.Limit,
		MaxDistance: input.MaxDistance,
		WithParents: true,
	}
	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, toolError(err)
	}

	output := SearchOutput{
		Results: make([]ChunkOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		out := chunkOutput(&results[i].Chunk)
		out.DocumentURI = results[i].DocumentURI
		out.Distance = results[i].Distance
		if results[i].Parent != nil {
			out.ParentTitle = results[i].Parent.Title()
		}
		output.Results[i] = out
	}

	return nil, output, nil
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, AskOutput{}, toolError(fmt.Errorf("%w: question is required", domain.ErrInvalidInput))
	}

	answer, err := s.ports.Answer.Answer(ctx, input.Question, domain.SearchOptions{
		Limit:       input.Limit,
		MaxDistance: input.MaxDistance,
	})
	if err != nil {
		return nil, AskOutput{}, toolError(err)
	}

	output := AskOutput{
		Answer:    answer.Text,
		Generated: answer.Generated,
		Sources:   make([]SourceOutput, len(answer.Results)),
	}
	for i := range answer.Results {
		r := &answer.Results[i]
		output.Sources[i] = SourceOutput{
			ChunkID:     r.Chunk.ID,
			DocumentURI: r.DocumentURI,
			Section:     section(r.Chunk.Headers),
			Distance:    r.Distance,
		}
	}
	return nil, output, nil
}

func (s *Server) handleGetChunk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetChunkInput,
) (*mcp.CallToolResult, ChunkOutput, error) {
	if input.ID == "" {
		return nil, ChunkOutput{}, toolError(fmt.Errorf("%w: id is required", domain.ErrInvalidInput))
	}

	chunk, err := s.ports.Document.Chunk(ctx, input.ID)
	if err != nil {
		return nil, ChunkOutput{}, toolError(err)
	}
	return nil, chunkOutput(chunk), nil
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, toolError(err)
	}
	stats, err := s.ports.Document.Stats(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, toolError(err)
	}

	output := ListDocumentsOutput{
		Documents:   make([]DocumentOutput, len(docs)),
		Count:       len(docs),
		Chunks:      stats.Chunks,
		JSONBlocks:  stats.JSONBlocks,
		TableBlocks: stats.TableBlocks,
	}
	for i := range docs {
		output.Documents[i] = DocumentOutput{
			ID:        docs[i].ID,
			URI:       docs[i].URI,
			Title:     docs[i].Title,
			UpdatedAt: docs[i].UpdatedAt,
		}
	}
	return nil, output, nil
}

func chunkOutput(c *domain.Chunk) ChunkOutput {
	out := ChunkOutput{
		ID:          c.ID,
		DocumentID:  c.DocumentID,
		Title:       c.Title(),
		HeaderLevel: c.HeaderLevel,
		Section:     section(c.Headers),
		Content:     c.Content,
	}
	if c.ParentID != nil {
		out.ParentID = *c.ParentID
	}
	for i := range c.Blocks {
		b := &c.Blocks[i]
		out.Blocks = append(out.Blocks, BlockOutput{
			Kind:    b.Kind.String(),
			JSON:    b.JSON,
			Headers: b.Headers,
			Rows:    b.Rows,
		})
	}
	return out
}

// section joins the active header titles, e.g. "Orders > Create > Request".
func section(h domain.HeaderTitles) string {
	parts := make([]string, 0, 3)
	for _, t := range []string{h.H1, h.H2, h.H3} {
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " > ")
}
