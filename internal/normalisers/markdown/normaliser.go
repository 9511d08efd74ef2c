// Package markdown normalises markdown documentation pages.
package markdown

import (
	"context"
	"maps"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const frontMatterFence = "---"

// Normaliser handles Markdown documents.
// Header and table structure is preserved for the chunker; only line
// endings, a byte order mark and front matter are removed.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise converts a markdown page to a normalised document.
// Chunking is handled by the PostProcessor pipeline.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content := strings.TrimPrefix(string(raw.Content), "\uFEFF")
	content = strings.ReplaceAll(content, "\r\n", "\n")

	metadata := maps.Clone(raw.Metadata)
	if metadata == nil {
		metadata = make(map[string]any)
	}

	content, front := splitFrontMatter(content)
	for k, v := range front {
		if _, ok := metadata[k]; !ok {
			metadata[k] = v
		}
	}
	metadata["mime_type"] = raw.MIMEType
	metadata["format"] = "markdown"

	title, _ := metadata["title"].(string)
	if title == "" {
		title = extractMarkdownTitle(content, raw.URI)
	}

	now := time.Now()
	return &driven.NormaliseResult{
		Document: domain.Document{
			URI:       raw.URI,
			Title:     title,
			Content:   strings.TrimSpace(content),
			Metadata:  metadata,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}, nil
}

// splitFrontMatter removes a leading "---" delimited block and returns its
// simple "key: value" pairs.
func splitFrontMatter(content string) (string, map[string]string) {
	if !strings.HasPrefix(content, frontMatterFence+"\n") {
		return content, nil
	}

	rest := content[len(frontMatterFence)+1:]
	end := strings.Index(rest, "\n"+frontMatterFence)
	if end < 0 {
		return content, nil
	}

	front := make(map[string]string)
	for _, line := range strings.Split(rest[:end], "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if key != "" && value != "" {
			front[key] = value
		}
	}

	body := rest[end+len(frontMatterFence)+1:]
	return strings.TrimPrefix(body, "\n"), front
}

// extractMarkdownTitle extracts a title from the first H1 or falls back to filename.
func extractMarkdownTitle(content, uri string) string {
	inFence := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~") {
			inFence = !inFence
			continue
		}
		if !inFence && strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}

	filename := filepath.Base(uri)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
