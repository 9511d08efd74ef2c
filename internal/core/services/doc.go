// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Ingestion runs normalise, chunk, extract, then builds the chunk tree
// one document at a time. Retrieval embeds the query and asks the
// ChunkStore for the nearest chunks; answering formats those chunks as
// context for the LLM.
package services
