package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()

	assert.Contains(t, mimeTypes, "text/markdown")
	assert.Contains(t, mimeTypes, "text/x-markdown")
	assert.Len(t, mimeTypes, 2)
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_PreservesStructure(t *testing.T) {
	content := "# Orders API\n\n## getOrders\n\n| Name | Type |\n|---|---|\n| id | string |\n\n```\n{\"a\": 1}\n```"
	raw := &domain.RawDocument{
		URI:      "/docs/orders-api.md",
		MIMEType: "text/markdown",
		Content:  []byte(content),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, raw.URI, doc.URI)
	assert.Equal(t, "Orders API", doc.Title)
	assert.Equal(t, content, doc.Content)
	assert.Equal(t, "markdown", doc.Metadata["format"])
	assert.Equal(t, "text/markdown", doc.Metadata["mime_type"])
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_LineEndingsAndBOM(t *testing.T) {
	raw := &domain.RawDocument{
		URI:     "page.md",
		Content: []byte("\uFEFF# Title\r\nBody\r\n"),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "# Title\nBody", result.Document.Content)
	assert.Equal(t, "Title", result.Document.Title)
}

func TestNormalise_FrontMatter(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "page.md",
		Content:  []byte("---\ntitle: \"Reports API\"\nsource: https://docs.example.com/reports\n---\n# Reports\nBody"),
		Metadata: map[string]any{"source": "file:///page.md"},
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "# Reports\nBody", doc.Content)
	assert.Equal(t, "Reports API", doc.Title)
	assert.Equal(t, "file:///page.md", doc.Metadata["source"])
}

func TestNormalise_UnterminatedFrontMatter(t *testing.T) {
	raw := &domain.RawDocument{URI: "page.md", Content: []byte("---\ntitle: x\n# Heading")}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "---\ntitle: x\n# Heading", result.Document.Content)
}

func TestNormalise_TitleExtraction(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		uri      string
		expected string
	}{
		{"first h1", "Intro\n# Main Title\n# Second", "doc.md", "Main Title"},
		{"h2 is not a title", "## Sub", "/path/api_reference-guide.md", "api reference guide"},
		{"h1 in code fence ignored", "```\n# comment\n```\ntext", "setup.md", "setup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := &domain.RawDocument{URI: tt.uri, Content: []byte(tt.content)}
			result, err := New().Normalise(context.Background(), raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.Document.Title)
		})
	}
}

func TestNormalise_MetadataCopied(t *testing.T) {
	raw := &domain.RawDocument{URI: "a.md", Content: []byte("x"), Metadata: map[string]any{"k": "v"}}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	result.Document.Metadata["k"] = "changed"
	assert.Equal(t, "v", raw.Metadata["k"])
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}
