package extractor

import "strings"

// line is a single line of scanned text with its byte offset.
// Text excludes the terminating newline but keeps any carriage return.
type line struct {
	Text   string
	Offset int
}

// End returns the offset just past the line's last byte.
func (l line) End() int {
	return l.Offset + len(l.Text)
}

// Trimmed returns the line without surrounding whitespace.
func (l line) Trimmed() string {
	return strings.TrimSpace(l.Text)
}

// splitLines splits text on newlines, recording where each line starts.
func splitLines(text string) []line {
	if text == "" {
		return nil
	}

	lines := make([]line, 0, strings.Count(text, "\n")+1)
	start := 0
	for {
		i := strings.IndexByte(text[start:], '\n')
		if i < 0 {
			lines = append(lines, line{Text: text[start:], Offset: start})
			return lines
		}
		lines = append(lines, line{Text: text[start : start+i], Offset: start})
		start += i + 1
	}
}

// hasPipe reports whether s contains a column delimiter.
func hasPipe(s string) bool {
	return strings.Contains(s, "|")
}

// isSeparator reports whether s is a table header separator such as
// "|---|:--:|": a line with a pipe and nothing else but dashes, colons
// and spaces.
func isSeparator(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "|") {
		return false
	}
	for _, r := range s {
		switch r {
		case '-', ':', ' ', '\t', '|':
		default:
			return false
		}
	}
	return true
}
