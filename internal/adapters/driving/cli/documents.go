package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Inspect ingested documents",
	Long:    `List ingested pages, show their header tree, print single sections, or delete pages.`,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents with store totals",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsList,
}

var documentsShowCmd = &cobra.Command{
	Use:   "show [id-or-uri]",
	Short: "Show a document and its header tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsShow,
}

var documentsChunkCmd = &cobra.Command{
	Use:   "chunk [chunk-id]",
	Short: "Print one section with its JSON examples and tables",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsChunk,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete [id-or-uri]",
	Short: "Delete a document and all of its sections",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsDelete,
}

func init() {
	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsShowCmd)
	documentsCmd.AddCommand(documentsChunkCmd)
	documentsCmd.AddCommand(documentsDeleteCmd)
	rootCmd.AddCommand(documentsCmd)
}

func requireDocumentService(cmd *cobra.Command) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if documentService == nil {
		return errors.New("document service not configured")
	}
	return nil
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if err := requireDocumentService(cmd); err != nil {
		return err
	}
	ctx := cmd.Context()

	docs, err := documentService.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(docs) == 0 {
		cmd.Println("No documents ingested. Run 'docrag ingest <path>' first.")
		return nil
	}

	for i := range docs {
		title := docs[i].Title
		if title == "" {
			title = "(untitled)"
		}
		cmd.Printf("  %s  %s\n", docs[i].ID, title)
		cmd.Printf("      %s (updated %s)\n", docs[i].URI, docs[i].UpdatedAt.Format("2006-01-02 15:04"))
	}
	cmd.Println()

	stats, err := documentService.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}
	cmd.Printf("Total: %d documents, %d sections, %d JSON examples, %d tables\n",
		stats.Documents, stats.Chunks, stats.JSONBlocks, stats.TableBlocks)
	return nil
}

func runDocumentsShow(cmd *cobra.Command, args []string) error {
	if err := requireDocumentService(cmd); err != nil {
		return err
	}
	ctx := cmd.Context()

	doc, err := documentService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}
	chunks, err := documentService.Tree(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("failed to get document tree: %w", err)
	}

	cmd.Printf("ID:      %s\n", doc.ID)
	cmd.Printf("Title:   %s\n", doc.Title)
	cmd.Printf("URI:     %s\n", doc.URI)
	cmd.Printf("Created: %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("Updated: %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
	cmd.Println()
	cmd.Printf("Sections (%d):\n", len(chunks))
	for i := range chunks {
		printOutlineLine(cmd, &chunks[i])
	}
	return nil
}

// printOutlineLine writes one chunk indented by header level.
func printOutlineLine(cmd *cobra.Command, c *domain.Chunk) {
	indent := strings.Repeat("  ", max(c.HeaderLevel, 1))
	title := c.Title()
	if title == "" {
		title = "(preamble)"
	}
	var notes []string
	if c.Placeholder {
		notes = append(notes, "synthesised")
	}
	if jsonBlocks, tables := countBlocks(c.Blocks); jsonBlocks+tables > 0 {
		notes = append(notes, fmt.Sprintf("%d json, %d tables", jsonBlocks, tables))
	}
	suffix := ""
	if len(notes) > 0 {
		suffix = " [" + strings.Join(notes, "; ") + "]"
	}
	cmd.Printf("%sH%d %s%s  %s\n", indent, c.HeaderLevel, title, suffix, c.ID)
}

func runDocumentsChunk(cmd *cobra.Command, args []string) error {
	if err := requireDocumentService(cmd); err != nil {
		return err
	}

	chunk, err := documentService.Chunk(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get chunk: %w", err)
	}

	cmd.Printf("%s\n", sectionPath(chunk.Headers))
	cmd.Printf("Level %d, position %d", chunk.HeaderLevel, chunk.Position)
	if chunk.ParentID != nil {
		cmd.Printf(", parent %s", *chunk.ParentID)
	}
	cmd.Println()
	cmd.Println()
	cmd.Println(chunk.Content)
	if len(chunk.Blocks) > 0 {
		cmd.Println()
		printBlocks(cmd, chunk.Blocks, "")
	}
	return nil
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	if err := requireDocumentService(cmd); err != nil {
		return err
	}
	ctx := cmd.Context()

	doc, err := documentService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}
	if err := documentService.Delete(ctx, doc.ID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	cmd.Printf("Deleted %s (%s)\n", doc.ID, doc.URI)
	return nil
}
