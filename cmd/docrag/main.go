// Command docrag answers questions about API documentation.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docrag/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version string

func main() {
	// A .env file is optional; real environment variables take precedence.
	_ = godotenv.Load()

	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
