package driving

import "github.com/custodia-labs/docrag/internal/core/domain"

// SettingsService reads and updates ~/.docrag/config.toml through typed
// settings.
type SettingsService interface {
	// Get returns stored settings layered over the defaults, with API keys
	// and the database URL filled from the environment when unset.
	Get() (*domain.AppSettings, error)

	// Save validates and writes every section.
	Save(settings *domain.AppSettings) error

	// Set parses value for a dotted key such as "search.max_distance".
	Set(key, value string) error

	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig pings the configured embedding provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig pings the configured completion provider.
	ValidateLLMConfig() error
}
