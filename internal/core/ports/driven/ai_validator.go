package driven

import "github.com/custodia-labs/docrag/internal/core/domain"

// AIConfigValidator checks provider settings before they are saved.
// Unconfigured providers are not an error.
type AIConfigValidator interface {
	// ValidateEmbedding checks that an embedding provider is usable.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM checks that a completion provider is usable.
	ValidateLLM(config *domain.LLMSettings) error
}
