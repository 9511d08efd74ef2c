// Package doccontent provides the document outline and section view for
// the TUI.
package doccontent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/components/blocks"
	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
)

// ErrNoDocumentService indicates that no document service was provided.
var ErrNoDocumentService = errors.New("document service not available")

// Mode selects what the view is showing.
type Mode int

const (
	// ModeOutline lists a document's sections.
	ModeOutline Mode = iota
	// ModeChunk shows a single section with its blocks.
	ModeChunk
)

// View shows either a document outline or one section.
type View struct {
	styles          *styles.Styles
	documentService driving.DocumentService
	ctx             context.Context

	mode Mode

	document      *domain.Document
	chunks        []domain.Chunk
	selected      int
	outlineOffset int

	chunk        *domain.Chunk
	parent       *domain.Chunk
	from         messages.ViewType
	lines        []string
	scrollOffset int

	width   int
	height  int
	ready   bool
	err     error
	loading bool
}

// NewView creates a new document content view.
func NewView(s *styles.Styles, documentService driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:          s,
		documentService: documentService,
		ctx:             context.Background(),
		width:           80,
		height:          24,
		from:            messages.ViewDocuments,
	}
}

// WithContext sets the context used for loading.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// SetDocument switches to the outline of doc and loads its chunk tree.
func (v *View) SetDocument(doc domain.Document) tea.Cmd {
	v.mode = ModeOutline
	v.document = &doc
	v.chunks = nil
	v.selected = 0
	v.outlineOffset = 0
	v.err = nil
	v.loading = true

	svc, ctx, id := v.documentService, v.ctx, doc.ID
	return func() tea.Msg {
		if svc == nil {
			return messages.TreeLoaded{DocumentID: id, Err: ErrNoDocumentService}
		}
		chunks, err := svc.Tree(ctx, id)
		return messages.TreeLoaded{DocumentID: id, Chunks: chunks, Err: err}
	}
}

// OpenChunk switches to the section view. A hydrated chunk is shown
// immediately; otherwise the chunk and its parent are loaded by ID.
func (v *View) OpenChunk(msg messages.ChunkSelected) tea.Cmd {
	v.mode = ModeChunk
	v.from = msg.From
	v.scrollOffset = 0
	v.err = nil

	if msg.Chunk != nil {
		v.loading = false
		v.setChunk(msg.Chunk, msg.Parent)
		return nil
	}

	v.loading = true
	v.chunk, v.parent, v.lines = nil, nil, nil
	svc, ctx, id := v.documentService, v.ctx, msg.ChunkID
	return func() tea.Msg {
		if svc == nil {
			return messages.ChunkLoaded{Err: ErrNoDocumentService}
		}
		chunk, err := svc.Chunk(ctx, id)
		if err != nil {
			return messages.ChunkLoaded{Err: err}
		}
		var parent *domain.Chunk
		if chunk.ParentID != nil {
			parent, err = svc.Chunk(ctx, *chunk.ParentID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return messages.ChunkLoaded{Err: err}
			}
		}
		return messages.ChunkLoaded{Chunk: chunk, Parent: parent}
	}
}

// Update handles messages for the document content view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.mode == ModeChunk {
			return v.handleChunkKeys(msg)
		}
		return v.handleOutlineKeys(msg)

	case messages.TreeLoaded:
		if v.document == nil || msg.DocumentID != v.document.ID {
			return v, nil
		}
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.chunks = msg.Chunks
		return v, nil

	case messages.ChunkLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.setChunk(msg.Chunk, msg.Parent)
		return v, nil

	case messages.ErrorOccurred:
		v.loading = false
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleOutlineKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustOutlineScroll()
		}
	case "down", "j":
		if v.selected < len(v.chunks)-1 {
			v.selected++
			v.adjustOutlineScroll()
		}
	case "enter":
		if v.selected < len(v.chunks) {
			id := v.chunks[v.selected].ID
			return v, func() tea.Msg {
				return messages.ChunkSelected{ChunkID: id, From: messages.ViewDocContent}
			}
		}
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewDocuments}
		}
	}
	return v, nil
}

func (v *View) handleChunkKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "pgup", "ctrl+u":
		v.scrollOffset = max(v.scrollOffset-v.visibleLines(), 0)
	case "pgdown", "ctrl+d":
		v.scrollOffset = min(v.scrollOffset+v.visibleLines(), v.maxScrollOffset())
	case "home", "g":
		v.scrollOffset = 0
	case "end", "G":
		v.scrollOffset = v.maxScrollOffset()
	case "esc":
		if v.from == messages.ViewDocContent && v.document != nil {
			v.mode = ModeOutline
			v.err = nil
			return v, nil
		}
		from := v.from
		return v, func() tea.Msg {
			return messages.ViewChanged{View: from}
		}
	}
	return v, nil
}

func (v *View) setChunk(chunk, parent *domain.Chunk) {
	v.chunk = chunk
	v.parent = parent
	v.renderLines()
}

// renderLines lays out the chunk content with each placeholder replaced
// by the block extracted at that position. Blocks without a placeholder
// are appended at the end.
func (v *View) renderLines() {
	v.lines = nil
	if v.chunk == nil {
		return
	}

	width := max(v.width-4, 20)
	segments := strings.Split(v.chunk.Content, domain.PlaceholderToken)
	used := 0
	for i, segment := range segments {
		v.lines = append(v.lines, wrapText(strings.Trim(segment, "\n"), width)...)
		if i == len(segments)-1 {
			break
		}
		if used < len(v.chunk.Blocks) {
			v.lines = append(v.lines, v.blockLines(used, width)...)
			used++
		} else {
			v.lines = append(v.lines, domain.PlaceholderToken)
		}
	}
	for ; used < len(v.chunk.Blocks); used++ {
		v.lines = append(v.lines, v.blockLines(used, width)...)
	}
}

func (v *View) blockLines(i, width int) []string {
	rendered := blocks.Block(v.styles, &v.chunk.Blocks[i], i+1, width)
	return strings.Split(rendered, "\n")
}

// wrapText splits text into lines no wider than width runes.
func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)
		for len(runes) > width {
			out = append(out, string(runes[:width]))
			runes = runes[width:]
		}
		out = append(out, string(runes))
	}
	return out
}

func (v *View) adjustOutlineScroll() {
	visible := v.visibleLines()
	if v.selected < v.outlineOffset {
		v.outlineOffset = v.selected
	} else if v.selected >= v.outlineOffset+visible {
		v.outlineOffset = v.selected - visible + 1
	}
}

// visibleLines returns the number of body lines that fit.
func (v *View) visibleLines() int {
	// title, subtitle, separator, help and padding
	return max(v.height-7, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the document content view.
func (v *View) View() string {
	if v.mode == ModeChunk {
		return v.renderChunk()
	}
	return v.renderOutline()
}

func (v *View) renderOutline() string {
	var b strings.Builder

	title := "Document"
	if v.document != nil {
		title = v.document.Title
		if title == "" {
			title = v.document.ID
		}
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	if v.document != nil {
		b.WriteString(v.styles.Muted.Render(v.document.URI))
	}
	b.WriteString("\n")
	b.WriteString(v.separator())
	b.WriteString("\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading outline..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.chunks) == 0:
		b.WriteString(v.styles.Muted.Render("(No sections)"))
	default:
		visible := v.visibleLines()
		for i := v.outlineOffset; i < len(v.chunks) && i < v.outlineOffset+visible; i++ {
			b.WriteString(v.renderOutlineItem(i, &v.chunks[i]))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] open section  [esc] back"))
	return b.String()
}

func (v *View) renderOutlineItem(index int, c *domain.Chunk) string {
	indent := strings.Repeat("  ", max(c.HeaderLevel-1, 0))
	label := c.Title()
	if label == "" {
		label = list.Preview(c.Content)
	}
	if label == "" {
		label = "(untitled)"
	}
	if c.Placeholder {
		label += " (synthesised)"
	}
	label = list.Truncate(indent+label, max(v.width-6, 10))

	if index == v.selected {
		return v.styles.Selected.Render("> " + label)
	}
	if c.Placeholder {
		return v.styles.Muted.Render("  " + label)
	}
	return v.styles.Normal.Render("  " + label)
}

func (v *View) renderChunk() string {
	var b strings.Builder

	title := "Section"
	if v.chunk != nil {
		title = list.SectionPath(v.chunk.Headers)
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	if v.parent != nil {
		parentTitle := v.parent.Title()
		if parentTitle == "" {
			parentTitle = v.parent.ID
		}
		b.WriteString(v.styles.Muted.Render("Parent: " + parentTitle))
	}
	b.WriteString("\n")
	b.WriteString(v.separator())
	b.WriteString("\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading section..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.lines) == 0:
		b.WriteString(v.styles.Muted.Render("(No content)"))
	default:
		visible := v.visibleLines()
		for i := v.scrollOffset; i < len(v.lines) && i < v.scrollOffset+visible; i++ {
			b.WriteString(v.lines[i])
			b.WriteString("\n")
		}
		if len(v.lines) > visible {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  Line %d-%d of %d",
				v.scrollOffset+1,
				min(v.scrollOffset+visible, len(v.lines)),
				len(v.lines))))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back"))
	return b.String()
}

func (v *View) separator() string {
	return v.styles.Muted.Render(strings.Repeat("─", min(max(v.width-4, 1), 60)))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.renderLines()
	v.scrollOffset = min(v.scrollOffset, v.maxScrollOffset())
}

// Mode returns what the view is currently showing.
func (v *View) Mode() Mode {
	return v.mode
}

// Document returns the current document.
func (v *View) Document() *domain.Document {
	return v.document
}

// Chunks returns the loaded outline.
func (v *View) Chunks() []domain.Chunk {
	return v.chunks
}

// SelectedIndex returns the selected outline entry.
func (v *View) SelectedIndex() int {
	return v.selected
}

// Chunk returns the section being shown.
func (v *View) Chunk() *domain.Chunk {
	return v.chunk
}

// Parent returns the parent of the section being shown.
func (v *View) Parent() *domain.Chunk {
	return v.parent
}

// Lines returns the laid out section lines.
func (v *View) Lines() []string {
	return v.lines
}

// ScrollOffset returns the first visible section line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

// Loading reports whether a load is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
