// Package mcp provides an MCP (Model Context Protocol) server adapter for docrag.
// It lets AI assistants search and question ingested API documentation.
package mcp

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// toolError rewrites core errors into messages an assistant can act on.
// The sentinel stays in the chain for errors.Is.
func toolError(err error) error {
	var msg string
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound):
		msg = "no such document or chunk"
	case errors.Is(err, domain.ErrInvalidInput):
		msg = "invalid arguments"
	case errors.Is(err, domain.ErrDimensionMismatch):
		msg = "the index was built with a different embedding model; re-ingest the documentation"
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		msg = "embedding provider is unavailable; check 'docrag settings'"
	case errors.Is(err, domain.ErrRateLimited):
		msg = "provider rate limit reached; retry shortly"
	case errors.Is(err, domain.ErrStoreUnavailable):
		msg = "document store is unavailable"
	default:
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
