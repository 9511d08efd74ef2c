// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ChunkStore: Chunk tree, structured block and document persistence
//   - EmbeddingService: Generates vector embeddings for chunks and queries
//   - Normaliser: Transforms raw pages into documents
//   - PostProcessor: Splits and enriches documents into chunks
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Language model completions. Without it, answers fall back
//     to the formatted retrieved context.
//   - PromptStore: Customisable prompts. Without it, built-in defaults are used.
//   - DocumentLoader: Reads pages from disk and watches for changes.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, loader, or normaliser package
package driven
