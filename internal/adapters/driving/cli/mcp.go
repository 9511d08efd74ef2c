package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can search
the ingested documentation.

By default the server speaks JSON-RPC over stdio. Use --http to serve the
streamable HTTP transport instead, for example to test with MCP Inspector.

Tools: search_docs, ask_docs, get_chunk, list_documents
Resources: docrag://documents, docrag://documents/{id}, docrag://documents/{id}/tree

Examples:
  # Stdio mode (default)
  docrag mcp

  # HTTP mode
  docrag mcp --http :8080

Desktop assistant configuration:
  {
    "mcpServers": {
      "docrag": {
        "command": "/path/to/docrag",
        "args": ["mcp"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().String("http", "", "serve streamable HTTP on this address instead of stdio")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("http")
	if err != nil {
		return fmt.Errorf("getting http flag: %w", err)
	}

	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Search:   searchService,
		Answer:   answerService,
		Document: documentService,
	})
	if err != nil {
		return err
	}

	if addr != "" {
		// stderr keeps stdout clean for clients that scrape it
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://%s\n", displayAddr(addr))
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}

// displayAddr fills in localhost for bare ":port" addresses.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
