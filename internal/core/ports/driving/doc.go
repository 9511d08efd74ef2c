// Package driving holds the interfaces the CLI, TUI and MCP adapters call
// into. Services in internal/core/services implement them.
package driving
