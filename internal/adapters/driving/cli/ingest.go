package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/connectors/filesystem"
	"github.com/custodia-labs/docrag/internal/core/domain"
)

var (
	ingestWatch   bool
	ingestWorkers int
	ingestRate    float64
	ingestDryRun  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Ingest documentation pages",
	Long: `Reads markdown and plain text pages, splits them at H1-H3 headers, lifts
JSON examples and tables out of each section, embeds the sections and
stores them. Directories are walked recursively.

Re-ingesting a page replaces its previous sections.

Examples:
  docrag ingest ./docs
  docrag ingest --workers 8 --rate 20 ./docs/api.md
  docrag ingest --watch ./docs`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep running and re-ingest pages as they change")
	ingestCmd.Flags().IntVar(&ingestWorkers, "workers", 0, "pages ingested concurrently (default from settings)")
	ingestCmd.Flags().Float64Var(&ingestRate, "rate", 0, "maximum embedding requests per second (0 = unlimited)")
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "chunk and embed into memory without saving")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestDryRun && ingestWatch {
		return errors.New("--dry-run and --watch cannot be combined")
	}

	err := ensureServices(cmd.Context(), func(s *domain.AppSettings) {
		if ingestWorkers > 0 {
			s.Ingest.Workers = ingestWorkers
		}
		if ingestRate > 0 {
			s.Ingest.RatePerSecond = ingestRate
		}
		if ingestDryRun {
			s.Store.Backend = domain.StoreBackendMemory
		}
	})
	if err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := cmd.Context()
	loader := filesystem.New()

	raws, err := loader.Load(ctx, args...)
	if err != nil {
		return fmt.Errorf("failed to read pages: %w", err)
	}
	if len(raws) == 0 && !ingestWatch {
		return errors.New("no markdown or text pages found")
	}

	reports, ingestErr := ingestService.IngestAll(ctx, raws)
	printIngestReports(cmd, reports, len(raws))
	if ingestDryRun {
		cmd.Println("Dry run: nothing was saved.")
	}

	if !ingestWatch {
		if ingestErr != nil {
			return fmt.Errorf("some pages failed: %w", ingestErr)
		}
		return nil
	}
	return watchAndIngest(cmd, loader, args)
}

func printIngestReports(cmd *cobra.Command, reports []domain.IngestReport, total int) {
	var chunks, blocks, placeholders int
	for i := range reports {
		r := &reports[i]
		cmd.Printf("  %s: %d sections, %d blocks", r.URI, r.Chunks, r.Blocks)
		if r.Placeholders > 0 {
			cmd.Printf(", %d synthesised", r.Placeholders)
		}
		cmd.Println()
		chunks += r.Chunks
		blocks += r.Blocks
		placeholders += r.Placeholders
	}
	cmd.Printf("Ingested %d of %d pages: %d sections, %d blocks, %d synthesised headers\n",
		len(reports), total, chunks, blocks, placeholders)
}

func watchAndIngest(cmd *cobra.Command, loader *filesystem.Loader, paths []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	changes, errs, err := loader.Watch(ctx, paths...)
	if err != nil {
		return fmt.Errorf("failed to watch: %w", err)
	}
	cmd.Println("Watching for changes (Ctrl+C to stop)...")

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			cmd.PrintErrf("watch error: %v\n", err)
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			applyChange(ctx, cmd, change)
		}
	}
}

func applyChange(ctx context.Context, cmd *cobra.Command, change domain.RawDocumentChange) {
	uri := change.Document.URI
	if change.Type == domain.ChangeDeleted {
		err := ingestService.Remove(ctx, uri)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			// never ingested
		case err != nil:
			cmd.PrintErrf("  %s: %v\n", uri, err)
		default:
			cmd.Printf("  %s: removed\n", uri)
		}
		return
	}

	report, err := ingestService.Ingest(ctx, &change.Document)
	if err != nil {
		cmd.PrintErrf("  %s: %v\n", uri, err)
		return
	}
	cmd.Printf("  %s: %s, %d sections, %d blocks\n", uri, change.Type, report.Chunks, report.Blocks)
}
