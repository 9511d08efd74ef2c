package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

var (
	askLimit       int
	askMaxDistance float64
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the documentation",
	Long: `Retrieves the closest documentation sections and asks the configured LLM
to answer from them. Without a reachable LLM the retrieved sections are
printed instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askLimit, "limit", "n", 0, "maximum number of sections used as context")
	askCmd.Flags().Float64Var(&askMaxDistance, "max-distance", 0, "distance threshold (default from settings)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	answer, err := answerService.Answer(cmd.Context(), args[0], domain.SearchOptions{
		Limit:       askLimit,
		MaxDistance: askMaxDistance,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	printAnswer(cmd, answer)
	return nil
}

// printAnswer writes the answer text followed by the sections it used.
func printAnswer(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(answer.Text)
	if len(answer.Results) == 0 {
		return
	}

	cmd.Println()
	cmd.Println("Sources:")
	for i := range answer.Results {
		r := &answer.Results[i]
		cmd.Printf("  [%d] %s (%.3f) %s\n", i+1, sectionPath(r.Chunk.Headers), r.Distance, r.DocumentURI)
	}
}
