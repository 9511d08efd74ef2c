package ai

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

func TestConfigValidator_ImplementsInterface(t *testing.T) {
	var _ driven.AIConfigValidator = (*ConfigValidator)(nil)
	require.NotNil(t, NewConfigValidator())
}

func TestConfigValidator_Unconfigured(t *testing.T) {
	v := NewConfigValidator()
	assert.NoError(t, v.ValidateEmbedding(nil))
	assert.NoError(t, v.ValidateEmbedding(&domain.EmbeddingSettings{Model: "m"}))
	assert.NoError(t, v.ValidateLLM(nil))
	assert.NoError(t, v.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderOpenAI}))
}

func TestConfigValidator_PingsProvider(t *testing.T) {
	status := http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}))
	defer server.Close()

	v := NewConfigValidator()
	embed := &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL}
	llm := &domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL}

	assert.NoError(t, v.ValidateEmbedding(embed))
	assert.NoError(t, v.ValidateLLM(llm))

	status = http.StatusUnauthorized
	assert.ErrorContains(t, v.ValidateEmbedding(embed), "status 401")
	assert.ErrorContains(t, v.ValidateLLM(llm), "status 401")
}

func TestConfigValidator_RejectsUnsupportedProvider(t *testing.T) {
	v := NewConfigValidator()
	err := v.ValidateEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"})
	assert.Error(t, err)
}
