// Package cli provides the docrag command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/logger"
)

// version is overridden at build time with -ldflags "-X".
var version = "dev"

var (
	verbose   bool
	configDir string
)

// Driving ports used by the commands. They are built on first use by
// ensureSettings and ensureServices, or set directly by tests.
var (
	settingsService driving.SettingsService
	searchService   driving.SearchService
	answerService   driving.AnswerService
	documentService driving.DocumentService
	ingestService   driving.IngestService
	newChatSession  func() driving.ChatSession
)

var rootCmd = &cobra.Command{
	Use:   "docrag",
	Short: "Ask questions about API documentation",
	Long: `docrag ingests API documentation pages, splits them into a header tree,
lifts JSON examples and tables out of the text, and answers questions from
the closest sections using an LLM.

Get started:
  docrag settings            review providers and storage
  docrag ingest ./docs       ingest markdown pages
  docrag ask "how do I paginate orders?"`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return ensureSettings()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline stages and timings")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.docrag)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and releases any resources opened by it.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}
