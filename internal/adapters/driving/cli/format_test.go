package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

func TestSectionPath(t *testing.T) {
	assert.Equal(t, "(untitled)", sectionPath(domain.HeaderTitles{}))
	assert.Equal(t, "Orders", sectionPath(domain.HeaderTitles{H1: "Orders"}))
	assert.Equal(t, "Orders > Create > Body", sectionPath(domain.HeaderTitles{H1: "Orders", H2: "Create", H3: "Body"}))
	assert.Equal(t, "Create", sectionPath(domain.HeaderTitles{H2: "Create"}))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "Creates an order.", preview("## Create\n\n  Creates an order.  \nMore", 80))
	assert.Empty(t, preview("# Only a header\n\n", 80))

	long := strings.Repeat("é", 50)
	got := preview(long, 10)
	assert.Equal(t, strings.Repeat("é", 7)+"...", got)
}

func TestCountBlocks(t *testing.T) {
	jsonBlocks, tables := countBlocks(sampleResults()[0].Chunk.Blocks)
	assert.Equal(t, 1, jsonBlocks)
	assert.Equal(t, 1, tables)

	jsonBlocks, tables = countBlocks(nil)
	assert.Zero(t, jsonBlocks+tables)
}

func TestPrintBlocks_FallsBackToRaw(t *testing.T) {
	cmd, buf := newBufferedCommand()
	printBlocks(cmd, []domain.StructuredBlock{
		{Kind: domain.BlockKindJSON, JSON: func() {}, Raw: `{"broken": true}`},
	}, "> ")

	assert.Equal(t, "> JSON example:\n> {\"broken\": true}\n", buf.String())
}

func TestPrintBlocks_KeepsHTMLCharacters(t *testing.T) {
	cmd, buf := newBufferedCommand()
	printBlocks(cmd, []domain.StructuredBlock{
		{Kind: domain.BlockKindJSON, JSON: map[string]any{"filter": "a<b && c>d"}},
	}, "")

	assert.Equal(t, "JSON example:\n{\n  \"filter\": \"a<b && c>d\"\n}\n", buf.String())
}

func TestMarshalIndent(t *testing.T) {
	data, err := marshalIndent(map[string]string{"section": "Orders > Create"}, "  ")

	require.NoError(t, err)
	assert.Equal(t, "{\n    \"section\": \"Orders > Create\"\n  }", string(data))

	_, err = marshalIndent(func() {}, "")
	assert.Error(t, err)
}
