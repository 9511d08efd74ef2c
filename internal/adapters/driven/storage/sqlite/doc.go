// Package sqlite provides the SQLite implementation of driven.ChunkStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Chunks live in document_chunks; extracted JSON samples and tables live in
// json_blocks and table_blocks, cascading on chunk deletion.
//
// # Search
//
// Embeddings are stored as little-endian float32 blobs. Search is an exact
// scan with distances computed in Go, which is adequate for a single API's
// documentation.
//
// # Data Location
//
// By default, the database is stored at ~/.docrag/data/chunks.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
