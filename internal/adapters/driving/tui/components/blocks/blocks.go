// Package blocks renders structured blocks lifted out of documentation
// sections: JSON examples as indented code and tables as grids.
package blocks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docrag/internal/core/domain"
)

// Render draws every block in order, each under a short caption.
func Render(s *styles.Styles, blocks []domain.StructuredBlock, width int) string {
	if len(blocks) == 0 {
		return ""
	}
	if s == nil {
		s = styles.DefaultStyles()
	}

	parts := make([]string, 0, len(blocks))
	for i := range blocks {
		parts = append(parts, Block(s, &blocks[i], i+1, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Block draws a single block under a caption numbered n.
func Block(s *styles.Styles, b *domain.StructuredBlock, n, width int) string {
	if s == nil {
		s = styles.DefaultStyles()
	}
	switch b.Kind {
	case domain.BlockKindJSON:
		return lipgloss.JoinVertical(lipgloss.Left,
			s.Subtitle.Render(fmt.Sprintf("JSON example %d", n)), renderJSON(s, b))
	case domain.BlockKindTable:
		return lipgloss.JoinVertical(lipgloss.Left,
			s.Subtitle.Render(fmt.Sprintf("Table %d", n)), renderTable(s, b, width))
	default:
		return strings.TrimSpace(b.Raw)
	}
}

// renderJSON pretty-prints the decoded value, falling back to the raw text.
func renderJSON(s *styles.Styles, b *domain.StructuredBlock) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	text := strings.TrimSpace(b.Raw)
	if err := enc.Encode(b.JSON); err == nil {
		text = strings.TrimSpace(buf.String())
	}
	return s.Code.Render(text)
}

// renderTable draws the rows in header order. Width 0 leaves the table
// at its natural size.
func renderTable(s *styles.Styles, b *domain.StructuredBlock, width int) string {
	rows := make([][]string, len(b.Rows))
	for i, row := range b.Rows {
		cells := make([]string, len(b.Headers))
		for j, h := range b.Headers {
			cells[j] = row[h]
		}
		rows[i] = cells
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(s.Theme().Border)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.TableHeader
			}
			return s.TableCell
		}).
		Headers(b.Headers...).
		Rows(rows...)
	if width > 0 {
		t = t.Width(width)
	}
	return t.String()
}
