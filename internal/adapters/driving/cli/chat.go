package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docrag/internal/adapters/driving/tui"
	"github.com/custodia-labs/docrag/internal/core/services"
)

var chatPlain bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask follow-up questions interactively",
	Long: `Starts a conversation over the ingested documentation. Follow-up
questions are rewritten using the previous question and answer before
retrieval.

A terminal gets the full-screen interface; piped input, or --plain, reads
one question per line. Type exit or quit to leave, /reset to start over.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "line-based chat without the full-screen interface")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if newChatSession == nil {
		return errors.New("chat service not configured")
	}

	if !chatPlain && isTerminal(os.Stdin) && isTerminal(os.Stdout) {
		return runChatTUI(cmd)
	}
	return runChatLoop(cmd)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func runChatLoop(cmd *cobra.Command) error {
	session := newChatSession()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case services.IsExitCommand(line):
			return nil
		case line == "/reset":
			session.Reset()
			cmd.Println("Conversation reset.")
			continue
		}

		answer, err := session.Ask(cmd.Context(), line)
		if err != nil {
			cmd.PrintErrf("Error: %v\n", err)
			continue
		}
		printAnswer(cmd, answer)
		cmd.Println()
	}
}

func runChatTUI(cmd *cobra.Command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	app, err := tui.NewApp(&tui.Ports{
		Chat:     newChatSession(),
		Search:   searchService,
		Document: documentService,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
