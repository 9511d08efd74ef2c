package domain

// BlockKind identifies the kind of a structured block.
type BlockKind string

// Available block kinds.
const (
	// BlockKindJSON is a bare fenced code block holding valid JSON.
	BlockKindJSON BlockKind = "json"

	// BlockKindTable is a markdown pipe table.
	BlockKindTable BlockKind = "table"
)

// IsValid returns true if the block kind is recognised.
func (k BlockKind) IsValid() bool {
	return k == BlockKindJSON || k == BlockKindTable
}

// String returns the string representation.
func (k BlockKind) String() string {
	return string(k)
}

// StructuredBlock is a JSON sample or table lifted out of a chunk.
// Blocks are immutable once stored and are deleted with their chunk.
type StructuredBlock struct {
	// ID is the unique identifier, assigned on persistence.
	ID string

	// ChunkID links to the owning chunk.
	ChunkID string

	// Kind is json or table.
	Kind BlockKind

	// JSON is the decoded payload of a JSON block.
	JSON any

	// Headers are the ordered column names of a table.
	Headers []string

	// Rows are the table records keyed by column name.
	// Duplicate column names collapse: later columns overwrite earlier ones.
	Rows []map[string]string

	// Offset is the byte offset of the block within the scanned text.
	Offset int

	// Raw is the matched source text that the placeholder replaced.
	Raw string

	// Metadata is copied from the owning chunk at extraction time.
	Metadata map[string]any
}
