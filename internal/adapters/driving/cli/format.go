package cli

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// sectionPath joins the active header titles, e.g. "Orders > Create".
func sectionPath(h domain.HeaderTitles) string {
	parts := make([]string, 0, 3)
	for _, t := range []string{h.H1, h.H2, h.H3} {
		if t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		return "(untitled)"
	}
	return strings.Join(parts, " > ")
}

// preview returns the first non-header line of content, cut to maxLen runes.
func preview(content string, maxLen int) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		r := []rune(line)
		if len(r) > maxLen {
			return string(r[:maxLen-3]) + "..."
		}
		return line
	}
	return ""
}

// countBlocks returns the number of JSON and table blocks.
func countBlocks(blocks []domain.StructuredBlock) (jsonBlocks, tables int) {
	for i := range blocks {
		switch blocks[i].Kind {
		case domain.BlockKindJSON:
			jsonBlocks++
		case domain.BlockKindTable:
			tables++
		}
	}
	return jsonBlocks, tables
}

// printBlocks writes each structured block indented under a chunk.
func printBlocks(cmd *cobra.Command, blocks []domain.StructuredBlock, indent string) {
	for i := range blocks {
		b := &blocks[i]
		switch b.Kind {
		case domain.BlockKindJSON:
			data, err := marshalIndent(b.JSON, indent)
			if err != nil {
				data = []byte(b.Raw)
			}
			cmd.Printf("%sJSON example:\n%s%s\n", indent, indent, data)
		case domain.BlockKindTable:
			cmd.Printf("%sTable (%s):\n", indent, strings.Join(b.Headers, ", "))
			for _, row := range b.Rows {
				fields := make([]string, 0, len(b.Headers))
				for _, h := range b.Headers {
					fields = append(fields, h+"="+row[h])
				}
				cmd.Printf("%s  - %s\n", indent, strings.Join(fields, "; "))
			}
		}
	}
}

// marshalIndent pretty-prints v without escaping <, > and &, which are
// common in API examples and section titles.
func marshalIndent(v any, prefix string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(prefix, "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
