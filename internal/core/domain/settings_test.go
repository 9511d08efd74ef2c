package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider AIProvider
		expected bool
	}{
		{"ollama", AIProviderOllama, true},
		{"openai", AIProviderOpenAI, true},
		{"groq", AIProviderGroq, true},
		{"gemini", AIProviderGemini, true},
		{"anthropic", AIProviderAnthropic, true},
		{"empty", AIProvider(""), false},
		{"unknown", AIProvider("mistral"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderGroq.RequiresAPIKey())
	assert.True(t, AIProviderGemini.RequiresAPIKey())
	assert.True(t, AIProviderAnthropic.RequiresAPIKey())
	assert.False(t, AIProvider("bogus").RequiresAPIKey())
}

func TestAIProvider_APIKeyEnv(t *testing.T) {
	assert.Equal(t, "GROQ_API_KEY", AIProviderGroq.APIKeyEnv())
	assert.Equal(t, "GEMINI_API_KEY", AIProviderGemini.APIKeyEnv())
	assert.Empty(t, AIProviderOllama.APIKeyEnv())
}

func TestAIProvider_Description(t *testing.T) {
	assert.Equal(t, "Groq (cloud)", AIProviderGroq.Description())
	assert.Equal(t, unknownDescription, AIProvider("x").Description())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		expected bool
	}{
		{"ollama without key", EmbeddingSettings{Provider: AIProviderOllama}, true},
		{"openai without key", EmbeddingSettings{Provider: AIProviderOpenAI}, false},
		{"openai with key", EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk"}, true},
		{"gemini with key", EmbeddingSettings{Provider: AIProviderGemini, APIKey: "k"}, true},
		{"groq has no embeddings", EmbeddingSettings{Provider: AIProviderGroq, APIKey: "k"}, false},
		{"unset", EmbeddingSettings{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.True(t, LLMSettings{Provider: AIProviderOllama}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderGroq}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderGroq, APIKey: "gsk"}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderGemini, APIKey: "k"}.IsConfigured())
	assert.False(t, LLMSettings{}.IsConfigured())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, AIProviderOllama, s.Embedding.Provider)
	assert.Equal(t, 1024, s.Embedding.Dimensions)
	assert.Equal(t, 5, s.Search.Limit)
	assert.InDelta(t, 1.5, s.Search.MaxDistance, 1e-9)
	assert.Equal(t, DistanceL2, s.Search.Metric)
	assert.InDelta(t, 0.5, s.LLM.Temperature, 1e-9)
	assert.Equal(t, 8000, s.LLM.MaxTokens)
	assert.Equal(t, StoreBackendSQLite, s.Store.Backend)
	require.NoError(t, s.Validate())
}

func TestAppSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppSettings)
	}{
		{"bad metric", func(s *AppSettings) { s.Search.Metric = "dot" }},
		{"zero limit", func(s *AppSettings) { s.Search.Limit = 0 }},
		{"zero distance", func(s *AppSettings) { s.Search.MaxDistance = 0 }},
		{"bad backend", func(s *AppSettings) { s.Store.Backend = "mongo" }},
		{"postgres without dsn", func(s *AppSettings) { s.Store.Backend = StoreBackendPostgres }},
		{"negative dimensions", func(s *AppSettings) { s.Embedding.Dimensions = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultAppSettings()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidSettings)
		})
	}
}

func TestStoreBackend_IsValid(t *testing.T) {
	assert.True(t, StoreBackendSQLite.IsValid())
	assert.True(t, StoreBackendPostgres.IsValid())
	assert.True(t, StoreBackendMemory.IsValid())
	assert.False(t, StoreBackend("").IsValid())
}

func TestDefaultModels(t *testing.T) {
	assert.Equal(t, "llama-3.3-70b-versatile", DefaultLLMModels()[AIProviderGroq])
	assert.Equal(t, "text-embedding-004", DefaultEmbeddingModels()[AIProviderGemini])
	assert.Equal(t, 1024, EmbeddingDimensions()["mxbai-embed-large"])
}

func TestDefaultPipelineConfig(t *testing.T) {
	cfg := DefaultPipelineConfig()

	assert.Equal(t, []string{"header_chunker", "block_extractor"}, cfg.Processors)
	assert.Equal(t, 3, cfg.GetProcessorConfig("header_chunker")["max_level"])
	assert.Nil(t, cfg.GetProcessorConfig("missing"))

	empty := PipelineConfig{}
	assert.Nil(t, empty.GetProcessorConfig("header_chunker"))
}
