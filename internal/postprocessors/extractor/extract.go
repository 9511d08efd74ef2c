// Package extractor lifts JSON samples and markdown tables out of chunk
// text so that embeddings are computed over prose only.
package extractor

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/logger"
)

const (
	backtickFence = "```"
	tildeFence    = "~~~"
)

// Extract returns the JSON and table blocks found in text, ordered by
// offset. Tables overlapping a JSON block are dropped so that the
// returned blocks never overlap.
func Extract(text string) []domain.StructuredBlock {
	blocks := ExtractJSON(text)
	for _, t := range ExtractTables(text) {
		if !overlapsAny(t, blocks) {
			blocks = append(blocks, t)
		}
	}
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Offset < blocks[j].Offset
	})
	return blocks
}

// ExtractJSON returns one block per bare fenced code block whose body
// decodes as JSON. A bare fence is a line that is exactly ``` once
// trimmed; fences carrying a language tag are skipped whole. Bodies that
// fail to decode are skipped.
func ExtractJSON(text string) []domain.StructuredBlock {
	lines := splitLines(text)
	var blocks []domain.StructuredBlock

	for i := 0; i < len(lines); i++ {
		t := lines[i].Trimmed()

		switch {
		case t == backtickFence:
			end := closingFence(lines, i+1, backtickFence)
			if end < 0 {
				return blocks
			}
			if b, ok := decodeFence(text, lines, i, end); ok {
				blocks = append(blocks, b)
			}
			i = end

		case strings.HasPrefix(t, backtickFence), strings.HasPrefix(t, tildeFence):
			marker := t[:3]
			end := closingFence(lines, i+1, marker)
			if end < 0 {
				return blocks
			}
			i = end
		}
	}

	return blocks
}

// closingFence returns the index of the first line at or after from that
// is exactly marker once trimmed, or -1.
func closingFence(lines []line, from int, marker string) int {
	for j := from; j < len(lines); j++ {
		if lines[j].Trimmed() == marker {
			return j
		}
	}
	return -1
}

func decodeFence(text string, lines []line, open, end int) (domain.StructuredBlock, bool) {
	var body string
	if end > open+1 {
		body = text[lines[open+1].Offset:lines[end-1].End()]
	}

	var payload any
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		logger.Debug("skipping fenced block at offset %d: %v", lines[open].Offset, err)
		return domain.StructuredBlock{}, false
	}

	return domain.StructuredBlock{
		Kind:   domain.BlockKindJSON,
		JSON:   payload,
		Offset: lines[open].Offset,
		Raw:    text[lines[open].Offset:lines[end].End()],
	}, true
}

// ExtractTables returns the markdown tables found in text, ordered by
// offset. A candidate is a pipe line followed by a separator line and
// one or more further pipe lines; candidates are handed to ParseTable.
func ExtractTables(text string) []domain.StructuredBlock {
	lines := splitLines(text)
	var blocks []domain.StructuredBlock

	for i := 0; i+2 < len(lines); {
		if !hasPipe(lines[i].Text) || !isSeparator(lines[i+1].Text) || !hasPipe(lines[i+2].Text) {
			i++
			continue
		}

		end := i + 2
		for end+1 < len(lines) && hasPipe(lines[end+1].Text) {
			end++
		}

		start := lines[i].Offset
		if b := ParseTable(text[start:lines[end].End()], start); b != nil {
			blocks = append(blocks, *b)
		}
		i = end + 1
	}

	sort.SliceStable(blocks, func(a, b int) bool {
		return blocks[a].Offset < blocks[b].Offset
	})
	return blocks
}

// Substitute replaces the raw text of each block with the placeholder
// token, one occurrence per block.
func Substitute(content string, blocks []domain.StructuredBlock) string {
	for _, b := range blocks {
		content = strings.Replace(content, b.Raw, domain.PlaceholderToken, 1)
	}
	return content
}

func overlapsAny(b domain.StructuredBlock, others []domain.StructuredBlock) bool {
	end := b.Offset + len(b.Raw)
	for _, o := range others {
		if b.Offset < o.Offset+len(o.Raw) && o.Offset < end {
			return true
		}
	}
	return false
}
