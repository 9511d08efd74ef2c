package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

var (
	searchLimit       int
	searchMaxDistance float64
	searchJSON        bool
	searchBlocks      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search ingested documentation",
	Long: `Embeds the query and returns the closest documentation sections,
nearest first. Sections at or beyond the distance threshold are left out,
so a query with no good match prints nothing rather than noise.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from settings)")
	searchCmd.Flags().Float64Var(&searchMaxDistance, "max-distance", 0, "distance threshold (default from settings)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchBlocks, "blocks", false, "print JSON examples and tables")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts := domain.SearchOptions{
		Limit:       searchLimit,
		MaxDistance: searchMaxDistance,
		WithParents: true,
	}

	results, err := searchService.Search(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	outputSearchText(cmd, results)
	return nil
}

type searchResultJSON struct {
	ChunkID     string                `json:"chunk_id"`
	DocumentID  string                `json:"document_id"`
	DocumentURI string                `json:"document_uri"`
	Section     string                `json:"section"`
	HeaderLevel int                   `json:"header_level"`
	Distance    float64               `json:"distance"`
	ParentID    string                `json:"parent_id,omitempty"`
	Content     string                `json:"content"`
	Blocks      []structuredBlockJSON `json:"blocks,omitempty"`
}

type structuredBlockJSON struct {
	Kind    domain.BlockKind    `json:"kind"`
	JSON    any                 `json:"json,omitempty"`
	Headers []string            `json:"headers,omitempty"`
	Rows    []map[string]string `json:"rows,omitempty"`
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	out := make([]searchResultJSON, len(results))
	for i := range results {
		r := &results[i]
		out[i] = searchResultJSON{
			ChunkID:     r.Chunk.ID,
			DocumentID:  r.Chunk.DocumentID,
			DocumentURI: r.DocumentURI,
			Section:     sectionPath(r.Chunk.Headers),
			HeaderLevel: r.Chunk.HeaderLevel,
			Distance:    r.Distance,
			Content:     r.Chunk.Content,
		}
		if r.Chunk.ParentID != nil {
			out[i].ParentID = *r.Chunk.ParentID
		}
		for j := range r.Chunk.Blocks {
			b := &r.Chunk.Blocks[j]
			out[i].Blocks = append(out[i].Blocks, structuredBlockJSON{
				Kind: b.Kind, JSON: b.JSON, Headers: b.Headers, Rows: b.Rows,
			})
		}
	}

	data, err := marshalIndent(out, "")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, results []domain.SearchResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		r := &results[i]
		// Format: [N] Section path (distance)
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, sectionPath(r.Chunk.Headers), r.Distance)
		if r.DocumentURI != "" {
			cmd.Printf("      %s\n", r.DocumentURI)
		}
		if p := preview(r.Chunk.Content, 100); p != "" {
			cmd.Printf("      %s\n", p)
		}
		if jsonBlocks, tables := countBlocks(r.Chunk.Blocks); jsonBlocks+tables > 0 {
			cmd.Printf("      %d JSON example(s), %d table(s)\n", jsonBlocks, tables)
		}
		if searchBlocks {
			printBlocks(cmd, r.Chunk.Blocks, "      ")
		}
		cmd.Printf("      id: %s\n", r.Chunk.ID)
		cmd.Println()
	}
}
