package driving

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// SearchService retrieves chunks relevant to a natural-language query.
type SearchService interface {
	// Search embeds the query and returns the nearest chunks within the
	// distance threshold. Zero-valued options fall back to configured defaults.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
