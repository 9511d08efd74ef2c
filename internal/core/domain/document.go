package domain

import "time"

// PlaceholderToken replaces every structured block lifted out of chunk content.
const PlaceholderToken = "[EXTRACTED_CONTENT]"

// Document represents an ingested documentation page.
// It is the canonical representation after normalisation.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// URI is the original location (file path, URL, etc).
	// Re-ingesting the same URI replaces the previous document.
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full text content after normalisation.
	// This is the complete document text before chunking.
	Content string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last ingested.
	UpdatedAt time.Time
}

// HeaderTitles holds the nearest enclosing header title at each level.
// An empty string means no header of that level is active.
type HeaderTitles struct {
	H1 string
	H2 string
	H3 string
}

// Level returns the deepest level with a title, or 0 when none is set.
func (h HeaderTitles) Level() int {
	switch {
	case h.H3 != "":
		return 3
	case h.H2 != "":
		return 2
	case h.H1 != "":
		return 1
	default:
		return 0
	}
}

// Title returns the title at the given level (1..3).
func (h HeaderTitles) Title(level int) string {
	switch level {
	case 1:
		return h.H1
	case 2:
		return h.H2
	case 3:
		return h.H3
	default:
		return ""
	}
}

// IsZero reports whether no header title is set.
func (h HeaderTitles) IsZero() bool {
	return h.H1 == "" && h.H2 == "" && h.H3 == ""
}

// Chunk represents a header-scoped unit within a document.
// Chunks form a forest through ParentID: a parent always has a strictly
// lower HeaderLevel, and level-1 chunks are roots.
type Chunk struct {
	// ID is the unique identifier for the chunk, assigned on persistence.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// ParentID links to the enclosing header chunk, if any.
	ParentID *string

	// Position is the ingestion order within the document.
	Position int

	// Content is the chunk text with structured blocks replaced by
	// PlaceholderToken.
	Content string

	// Embedding is the vector representation of Content.
	Embedding []float32

	// HeaderLevel is 0 (no header), 1, 2 or 3.
	HeaderLevel int

	// Headers holds the active header titles at this chunk.
	Headers HeaderTitles

	// Placeholder marks a node synthesised to repair the header tree.
	Placeholder bool

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any

	// Blocks are the structured blocks extracted from this chunk.
	// Populated during ingestion and when hydrating search results.
	Blocks []StructuredBlock

	// CreatedAt is when the chunk was persisted.
	CreatedAt time.Time
}

// Title returns the chunk's own header title.
func (c *Chunk) Title() string {
	return c.Headers.Title(c.HeaderLevel)
}
