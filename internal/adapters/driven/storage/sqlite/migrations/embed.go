// Package migrations holds the SQLite schema for documents, chunks and
// structured blocks.
package migrations

import "embed"

// FS holds the numbered up and down migration scripts.
//
//go:embed *.sql
var FS embed.FS
