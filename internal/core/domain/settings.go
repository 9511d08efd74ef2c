package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGroq is the Groq OpenAI-compatible API.
	AIProviderGroq AIProvider = "groq"

	// AIProviderGemini is Google's Gemini API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderGroq, AIProviderGemini, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p.IsValid() && !p.IsLocal()
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// APIKeyEnv returns the environment variable consulted when no API key
// is configured.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderGroq:
		return "GROQ_API_KEY"
	case AIProviderGemini:
		return "GEMINI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderGroq:
		return "Groq (cloud)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// StoreBackend selects the chunk store implementation.
type StoreBackend string

// Available store backends.
const (
	// StoreBackendSQLite is the embedded SQLite store.
	StoreBackendSQLite StoreBackend = "sqlite"

	// StoreBackendPostgres is PostgreSQL with the pgvector extension.
	StoreBackendPostgres StoreBackend = "postgres"

	// StoreBackendMemory keeps everything in process memory.
	StoreBackendMemory StoreBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendSQLite, StoreBackendPostgres, StoreBackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StoreBackend) String() string {
	return string(b)
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible APIs).
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string

	// Dimensions is the embedding vector size.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderGroq || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible APIs).
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string

	// Temperature is the sampling temperature for answers.
	Temperature float64

	// MaxTokens caps the length of generated answers.
	MaxTokens int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderGemini {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// SearchSettings holds retrieval defaults.
type SearchSettings struct {
	// Limit is the default number of results.
	Limit int

	// MaxDistance is the default distance threshold.
	MaxDistance float64

	// Metric is the distance metric used by the store.
	Metric DistanceMetric
}

// StoreSettings holds chunk store configuration.
type StoreSettings struct {
	// Backend selects the store implementation.
	Backend StoreBackend

	// DataDir is where the SQLite database lives.
	DataDir string

	// DSN is the PostgreSQL connection string.
	DSN string
}

// CacheSettings holds embedding cache configuration.
type CacheSettings struct {
	// Enabled turns on the on-disk embedding cache.
	Enabled bool

	// Dir is the cache directory. Defaults to <data dir>/cache.
	Dir string
}

// IngestSettings holds ingestion throughput configuration.
type IngestSettings struct {
	// Workers is the number of documents ingested concurrently.
	Workers int

	// RatePerSecond caps embedding requests per second. Zero disables it.
	RatePerSecond float64
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Search    SearchSettings
	Store     StoreSettings
	Cache     CacheSettings
	Ingest    IngestSettings
}

// Validate checks the settings for values the services cannot run with.
func (s AppSettings) Validate() error {
	switch {
	case !s.Search.Metric.IsValid():
		return ErrInvalidSettings
	case s.Search.Limit <= 0 || s.Search.MaxDistance <= 0:
		return ErrInvalidSettings
	case !s.Store.Backend.IsValid():
		return ErrInvalidSettings
	case s.Store.Backend == StoreBackendPostgres && s.Store.DSN == "":
		return ErrInvalidSettings
	case s.Embedding.Dimensions < 0 || s.LLM.MaxTokens < 0:
		return ErrInvalidSettings
	}
	return nil
}

// DefaultAppSettings returns settings with sensible defaults.
// Embeddings and completions default to a local Ollama instance using
// a 1024-dimension embedding model.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:   AIProviderOllama,
			Model:      "mxbai-embed-large",
			Dimensions: 1024,
		},
		LLM: LLMSettings{
			Provider:    AIProviderOllama,
			Model:       "llama3.2",
			Temperature: 0.5,
			MaxTokens:   8000,
		},
		Search: SearchSettings{
			Limit:       5,
			MaxDistance: 1.5,
			Metric:      DistanceL2,
		},
		Store: StoreSettings{
			Backend: StoreBackendSQLite,
		},
		Cache: CacheSettings{
			Enabled: true,
		},
		Ingest: IngestSettings{
			Workers: 4,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGroq,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "mxbai-embed-large",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGemini: "text-embedding-004",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderGroq:      "llama-3.3-70b-versatile",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"bge-large":         1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"text-embedding-004": 768,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config for extensibility - new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default pipeline configuration:
// header chunking followed by structured block extraction.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"header_chunker", "block_extractor"},
		ProcessorConfigs: map[string]map[string]any{
			"header_chunker": {
				"max_level": 3,
			},
		},
	}
}
