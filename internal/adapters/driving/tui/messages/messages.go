// Package messages defines Bubbletea message types for the TUI.
// Messages carry the results of asynchronous commands back into Update.
package messages

import (
	"github.com/custodia-labs/docrag/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewChat is the conversational question view.
	ViewChat
	// ViewSearch is the search input and results view.
	ViewSearch
	// ViewDocuments lists ingested documents.
	ViewDocuments
	// ViewDocContent shows a document outline or a single section.
	ViewDocContent
	// ViewHelp is the keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewSearch:
		return "search"
	case ViewDocuments:
		return "documents"
	case ViewDocContent:
		return "doc_content"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// AnswerReceived carries a chat answer back to the model.
type AnswerReceived struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// SearchCompleted carries search results back to the model.
type SearchCompleted struct {
	Query   string
	Results []domain.SearchResult
	Err     error
}

// DocumentsLoaded carries the document list and store totals.
type DocumentsLoaded struct {
	Documents []domain.Document
	Stats     domain.StoreStats
	Err       error
}

// DocumentSelected opens the outline of a document.
type DocumentSelected struct {
	Document domain.Document
}

// TreeLoaded carries the chunks of a document in tree order.
type TreeLoaded struct {
	DocumentID string
	Chunks     []domain.Chunk
	Err        error
}

// ChunkSelected opens a single section. Back returns to From. When Chunk
// is set it is shown as is; otherwise ChunkID is loaded.
type ChunkSelected struct {
	ChunkID string
	Chunk   *domain.Chunk
	Parent  *domain.Chunk
	From    ViewType
}

// ChunkLoaded carries a single section with its parent, if any.
type ChunkLoaded struct {
	Chunk  *domain.Chunk
	Parent *domain.Chunk
	Err    error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
