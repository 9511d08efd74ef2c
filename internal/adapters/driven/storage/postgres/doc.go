// Package postgres implements the chunk store on PostgreSQL with the
// pgvector extension.
//
// Embeddings live in a fixed-width vector column indexed with ivfflat, and
// nearest-neighbour queries run in the database using the L2 (<->) or
// cosine (<=>) operator. The schema is applied on every start and is
// idempotent; the configured dimension must match an existing table.
package postgres
