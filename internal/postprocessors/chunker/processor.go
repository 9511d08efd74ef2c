// Package chunker splits markdown documents into chunks at header boundaries.
package chunker

import (
	"context"
	"maps"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// Name is the processor name used in pipeline configuration.
const Name = "header_chunker"

// DefaultMaxLevel splits on #, ## and ###.
const DefaultMaxLevel = 3

// paragraphSeparator joins blank-line separated pieces of one section.
const paragraphSeparator = "\n\n"

// Processor splits document content into header-scoped chunks.
// Header lines stay in the chunk content, and each chunk carries the
// nearest enclosing title at every level. Headers inside fenced code
// blocks are ignored.
// It implements the PostProcessor interface.
type Processor struct {
	maxLevel int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxLevel sets the deepest header level that starts a new chunk (1..3).
func WithMaxLevel(level int) Option {
	return func(p *Processor) {
		if level >= 1 && level <= DefaultMaxLevel {
			p.maxLevel = level
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		maxLevel: DefaultMaxLevel,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// piece is a run of non-blank lines sharing the same header titles.
type piece struct {
	content string
	headers domain.HeaderTitles
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return nil, nil
	}

	sections := aggregate(p.split(doc.Content))
	chunks := make([]domain.Chunk, 0, len(sections))

	for i, s := range sections {
		chunks = append(chunks, domain.Chunk{
			DocumentID:  doc.ID,
			Position:    i,
			Content:     s.content,
			HeaderLevel: s.headers.Level(),
			Headers:     s.headers,
			Metadata:    chunkMetadata(doc),
		})
	}

	return chunks, nil
}

// split walks the document line by line, emitting a piece whenever a
// header or a blank line ends the current run.
func (p *Processor) split(content string) []piece {
	var (
		pieces  []piece
		current []string
		active  domain.HeaderTitles
		fence   string
	)

	flush := func(headers domain.HeaderTitles) {
		if len(current) > 0 {
			pieces = append(pieces, piece{content: strings.Join(current, "\n"), headers: headers})
			current = current[:0]
		}
	}

	for _, raw := range strings.Split(content, "\n") {
		raw = strings.TrimRight(raw, "\r")
		line := strings.TrimSpace(raw)

		if fence == "" {
			switch {
			case strings.HasPrefix(line, "```") && strings.Count(line, "```") == 1:
				fence = "```"
			case strings.HasPrefix(line, "~~~"):
				fence = "~~~"
			}
		} else if strings.HasPrefix(line, fence) {
			fence = ""
			current = append(current, line)
			continue
		}
		if fence != "" {
			current = append(current, raw)
			continue
		}

		if level, title, ok := p.header(line); ok {
			previous := active
			active = withHeader(active, level, title)
			flush(previous)
			current = append(current, line)
			continue
		}

		if line != "" {
			current = append(current, line)
		} else {
			flush(active)
		}
	}
	flush(active)

	return pieces
}

// header reports whether line is a markdown header this processor splits on.
func (p *Processor) header(line string) (int, string, bool) {
	for level := p.maxLevel; level >= 1; level-- {
		marker := strings.Repeat("#", level)
		if !strings.HasPrefix(line, marker) {
			continue
		}
		rest := line[len(marker):]
		if rest == "" || rest[0] == ' ' {
			return level, strings.TrimSpace(rest), true
		}
	}
	return 0, "", false
}

// withHeader sets the title at level and clears every deeper level.
func withHeader(h domain.HeaderTitles, level int, title string) domain.HeaderTitles {
	switch level {
	case 1:
		return domain.HeaderTitles{H1: title}
	case 2:
		return domain.HeaderTitles{H1: h.H1, H2: title}
	default:
		return domain.HeaderTitles{H1: h.H1, H2: h.H2, H3: title}
	}
}

// aggregate merges consecutive pieces with identical titles. A section
// that holds nothing but its header line is folded into a following
// deeper section, which then owns the merged content.
func aggregate(pieces []piece) []piece {
	var out []piece
	for _, pc := range pieces {
		if len(out) == 0 {
			out = append(out, pc)
			continue
		}

		last := &out[len(out)-1]
		switch {
		case last.headers == pc.headers:
			last.content += paragraphSeparator + pc.content
		case titleCount(last.headers) < titleCount(pc.headers) && endsWithHeader(last.content):
			last.content += "\n" + pc.content
			last.headers = pc.headers
		default:
			out = append(out, pc)
		}
	}
	return out
}

func titleCount(h domain.HeaderTitles) int {
	n := 0
	for _, t := range []string{h.H1, h.H2, h.H3} {
		if t != "" {
			n++
		}
	}
	return n
}

func endsWithHeader(content string) bool {
	lastLine := content[strings.LastIndexByte(content, '\n')+1:]
	return strings.HasPrefix(lastLine, "#")
}

func chunkMetadata(doc *domain.Document) map[string]any {
	md := maps.Clone(doc.Metadata)
	if md == nil {
		md = make(map[string]any)
	}
	if _, ok := md["source"]; !ok && doc.URI != "" {
		md["source"] = doc.URI
	}
	return md
}
