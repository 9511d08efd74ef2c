package mcp

import (
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Search retrieves chunks for a query.
	Search driving.SearchService

	// Answer generates answers from retrieved chunks. Optional.
	Answer driving.AnswerService

	// Document reads stored documents and chunks. Optional.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
