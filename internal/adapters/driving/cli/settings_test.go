package cli

import (
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"short key", "abc123", "****"},
		{"exactly 8 chars", "12345678", "****"},
		{"long key", "sk-1234567890abcdef", "sk-1...cdef"},
		{"empty key", "", "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskAPIKey(tt.input))
		})
	}
}

func TestMaskDSN(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", "(not set)"},
		{"with password", "postgres://docrag:secret@db:5432/docs", "postgres://docrag:****@db:5432/docs"},
		{"user only", "postgres://docrag@db/docs", "postgres://docrag:****@db/docs"},
		{"no credentials", "postgres://db/docs", "postgres://db/docs"},
		{"key value form", "host=db password=secret", "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskDSN(tt.input))
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{"empty input returns default", "", 5, 1, 1},
		{"valid choice", "3", 5, 1, 3},
		{"below minimum", "0", 5, 1, 1},
		{"above maximum", "6", 5, 1, 1},
		{"not a number", "abc", 5, 2, 2},
		{"maximum is valid", "5", 5, 1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseChoice(tt.input, tt.maxVal, tt.defaultVal))
		})
	}
}

func TestSettingsCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0, len(settingsCmd.Commands()))
	for _, cmd := range settingsCmd.Commands() {
		names = append(names, cmd.Name())
	}

	assert.ElementsMatch(t, []string{"show", "set", "keys", "wizard", "embedding", "llm"}, names)
}

func TestSettingsShow(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("settings")

	require.NoError(t, err)
	for _, want := range []string{
		"[Embedding]", "Provider: Ollama (local)", "Dimensions: 1024",
		"[LLM]", "Max tokens: 8000",
		"[Search]", "Limit: 5", "Max distance: 1.5", "Metric: l2",
		"[Store]", "Backend: sqlite", "Data dir: (default)",
		"[Cache]", "Enabled: yes",
		"[Ingest]", "Workers: 4", "Rate: unlimited",
		"Configuration is valid.",
	} {
		assert.Contains(t, out, want)
	}
}

func TestSettingsShow_MasksSecrets(t *testing.T) {
	mocks, cleanup := setupTestMocks()
	defer cleanup()
	mocks.settings.settings.Embedding.Provider = domain.AIProviderOpenAI
	mocks.settings.settings.Embedding.APIKey = "sk-1234567890abcdef"
	mocks.settings.settings.Store.Backend = domain.StoreBackendPostgres
	mocks.settings.settings.Store.DSN = "postgres://docrag:hunter22@db/docs"

	out, err := executeCommand("settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "API Key: sk-1...cdef")
	assert.Contains(t, out, "DSN: postgres://docrag:****@db/docs")
	assert.NotContains(t, out, "hunter22")
	assert.NotContains(t, out, "sk-1234567890abcdef")
}

func TestSettingsShow_InvalidSettings(t *testing.T) {
	mocks, cleanup := setupTestMocks()
	defer cleanup()
	mocks.settings.settings.Store.Backend = domain.StoreBackendPostgres

	out, err := executeCommand("settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning:")
	assert.NotContains(t, out, "Configuration is valid.")
}

func TestSettingsSet(t *testing.T) {
	mocks, cleanup := setupTestMocks()
	defer cleanup()

	out, err := executeCommand("settings", "set", "search.limit", "8")

	require.NoError(t, err)
	assert.Equal(t, "8", mocks.settings.sets["search.limit"])
	assert.Contains(t, out, "Set search.limit = 8")
}

func TestSettingsSet_MasksAPIKeyAndWarnsOnEmbedding(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("settings", "set", "embedding.api_key", "sk-1234567890abcdef")

	require.NoError(t, err)
	assert.Contains(t, out, "Set embedding.api_key = sk-1...cdef")
	assert.Contains(t, out, "re-ingest")
}

func TestSettingsSet_Error(t *testing.T) {
	mocks, cleanup := setupTestMocks()
	defer cleanup()
	mocks.settings.err = domain.ErrInvalidSettings

	_, err := executeCommand("settings", "set", "search.metric", "manhattan")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidSettings)
}

func TestSettingsKeys_RequiresLister(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("settings", "keys")

	assert.EqualError(t, err, "settings service does not list keys")
}

func TestSettingsWizard(t *testing.T) {
	mocks, cleanup := setupTestMocks()
	defer cleanup()

	// Ollama with the default model, then skip the LLM.
	rootCmd.SetIn(strings.NewReader("1\n\nn\n"))
	out, err := executeCommand("settings", "wizard")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, mocks.settings.settings.Embedding.Provider)
	assert.Equal(t, domain.DefaultEmbeddingModels()[domain.AIProviderOllama], mocks.settings.settings.Embedding.Model)
	assert.Contains(t, out, "Skipped.")
	assert.Contains(t, out, "Configuration Complete!")
}

func TestSettingsLLM_RequiresAPIKey(t *testing.T) {
	if isTerminal(os.Stdin) {
		t.Skip("API keys are read from the terminal")
	}
	cleanup := setupTestServices()
	defer cleanup()

	providers := domain.AllLLMProviders()
	choice := 0
	for i, p := range providers {
		if p.RequiresAPIKey() {
			choice = i + 1
			break
		}
	}
	require.NotZero(t, choice)

	rootCmd.SetIn(strings.NewReader(strconv.Itoa(choice) + "\n\n\n"))
	_, err := executeCommand("settings", "llm")

	assert.EqualError(t, err, "API key is required for this provider")
}
