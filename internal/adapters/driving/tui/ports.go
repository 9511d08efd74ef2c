// Package tui provides the full-screen terminal interface for docrag.
// It is a driving adapter: every action goes through a driving port.
package tui

import (
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Chat answers questions with conversational follow-ups.
	Chat driving.ChatSession

	// Search finds documentation sections.
	Search driving.SearchService

	// Document browses ingested documents. Optional: the documents view
	// is hidden without it.
	Document driving.DocumentService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatSession
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
