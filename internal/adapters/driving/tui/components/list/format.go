package list

import (
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// SectionPath joins the active header titles, e.g. "Orders > Create".
func SectionPath(h domain.HeaderTitles) string {
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

// Preview returns the first line of content that is not a header or an
// extracted block placeholder.
func Preview(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == domain.PlaceholderToken || strings.HasPrefix(line, "#") {
			continue
		}
		return line
	}
	return ""
}

// Truncate cuts s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
