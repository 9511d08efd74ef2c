package extractor

import (
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// minTableLines is header + separator + one data row.
const minTableLines = 3

// ParseTable parses a matched table span into headers and row records.
// offset is the span's position in the enclosing text; the returned
// block's Offset points at the header line. It returns nil when the span
// does not resolve to a table with at least one valid row.
//
// Leading prose captured before the header line is discarded. Data rows
// whose field count differs from the header count, or whose fields are
// all blank, are skipped without affecting other rows.
func ParseTable(span string, offset int) *domain.StructuredBlock {
	var kept []line
	for _, l := range splitLines(span) {
		if l.Trimmed() != "" {
			kept = append(kept, l)
		}
	}

	start := -1
	for i := 0; i+1 < len(kept); i++ {
		if hasPipe(kept[i].Text) && isSeparator(kept[i+1].Text) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}
	kept = kept[start:]
	if len(kept) < minTableLines {
		return nil
	}

	headers := splitHeader(kept[0].Trimmed())
	if len(headers) == 0 || allBlank(headers) {
		return nil
	}

	var rows []map[string]string
	for _, l := range kept[2:] {
		text := l.Trimmed()
		if isSeparator(text) {
			continue
		}
		fields := splitRow(text)
		if len(fields) != len(headers) || allBlank(fields) {
			continue
		}
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			row[h] = fields[i]
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil
	}

	raw := make([]string, len(kept))
	for i, l := range kept {
		raw[i] = l.Text
	}

	return &domain.StructuredBlock{
		Kind:    domain.BlockKindTable,
		Headers: headers,
		Rows:    rows,
		Offset:  offset + kept[0].Offset,
		Raw:     strings.Join(raw, "\n"),
	}
}

// splitHeader splits a header line into trimmed column names, dropping
// the empty leading and trailing fields produced by outer pipes.
func splitHeader(s string) []string {
	fields := trimAll(strings.Split(s, "|"))
	if len(fields) > 0 && fields[0] == "" {
		fields = fields[1:]
	}
	if len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	return fields
}

// splitRow splits a data line into trimmed fields. A line opening with a
// pipe loses its first and last fields; any other line loses only its
// last, so rows written without outer pipes come up one field short.
func splitRow(s string) []string {
	fields := strings.Split(s, "|")
	if strings.HasPrefix(s, "|") {
		fields = fields[1:]
	}
	if len(fields) > 0 {
		fields = fields[:len(fields)-1]
	}
	return trimAll(fields)
}

func trimAll(fields []string) []string {
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

func allBlank(fields []string) bool {
	for _, f := range fields {
		if f != "" {
			return false
		}
	}
	return true
}
