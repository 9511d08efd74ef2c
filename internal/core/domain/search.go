package domain

// DistanceMetric selects how embedding distance is computed.
type DistanceMetric string

// Available distance metrics.
const (
	// DistanceL2 is Euclidean distance.
	DistanceL2 DistanceMetric = "l2"

	// DistanceCosine is one minus cosine similarity.
	DistanceCosine DistanceMetric = "cosine"
)

// IsValid returns true if the metric is recognised.
func (m DistanceMetric) IsValid() bool {
	return m == DistanceL2 || m == DistanceCosine
}

// String returns the string representation.
func (m DistanceMetric) String() string {
	return string(m)
}

// SearchOptions configures a retrieval query.
type SearchOptions struct {
	// Limit is the maximum number of results.
	Limit int

	// MaxDistance excludes results at or beyond this distance.
	MaxDistance float64

	// WithParents hydrates the parent chunk of every result.
	WithParents bool
}

// SearchResult represents a single retrieval hit.
type SearchResult struct {
	// Chunk is the matched chunk, with its structured blocks attached.
	Chunk Chunk

	// Distance to the query embedding. Lower is more similar.
	Distance float64

	// Parent is the enclosing header chunk, when requested and present.
	Parent *Chunk

	// DocumentURI is the source location of the owning document.
	DocumentURI string
}

// Answer is the response to a natural-language question.
type Answer struct {
	// Query is the question that was retrieved against.
	Query string

	// Text is the generated or fallback answer.
	Text string

	// Results are the chunks the answer was built from.
	Results []SearchResult

	// Generated is false when the answer is the raw-context fallback
	// or the no-results message.
	Generated bool
}

// StoreStats summarises the contents of a chunk store.
type StoreStats struct {
	Documents   int
	Chunks      int
	JSONBlocks  int
	TableBlocks int
}

// IngestReport summarises a single document ingestion.
type IngestReport struct {
	DocumentID   string
	URI          string
	Chunks       int
	Placeholders int
	Blocks       int
}
