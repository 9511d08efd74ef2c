package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPCmd_Flags(t *testing.T) {
	assert.Equal(t, "mcp", mcpCmd.Use)
	flag := mcpCmd.Flags().Lookup("http")
	require.NotNil(t, flag)
	assert.Empty(t, flag.DefValue)
}

func TestMCPCmd_RejectsArgs(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("mcp", "serve")

	assert.Error(t, err)
}

func TestMCPCmd_RequiresSearchService(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	searchService = nil
	// Invalid settings stop wiring before any store is opened.
	configDir = t.TempDir()
	mocks := settingsService.(*mockSettingsService)
	mocks.settings.Search.Limit = 0

	_, err := executeCommand("mcp")

	assert.Error(t, err)
}

func TestDisplayAddr(t *testing.T) {
	assert.Equal(t, "localhost:8080", displayAddr(":8080"))
	assert.Equal(t, "127.0.0.1:9000", displayAddr("127.0.0.1:9000"))
}
