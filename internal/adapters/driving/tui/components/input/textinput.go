// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/styles"
)

// minInputWidth is the narrowest the text field shrinks to.
const minInputWidth = 20

// TextInput is a labelled single-line input used for questions and queries.
type TextInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
	width     int
}

// New creates a focused input with the given label and placeholder.
func New(s *styles.Styles, label, placeholder string) *TextInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = 50

	return &TextInput{
		textinput: ti,
		styles:    s,
		label:     label,
		width:     50,
	}
}

// Init starts the cursor blinking.
func (t *TextInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (t *TextInput) Update(msg tea.Msg) (*TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.textinput, cmd = t.textinput.Update(msg)
	return t, cmd
}

// View renders the label and the bordered field.
func (t *TextInput) View() string {
	field := t.styles.InputField.Render(t.textinput.View())
	if t.label == "" {
		return field
	}
	label := t.styles.Title.Render(t.label + " ")
	//nolint:misspell // lipgloss.Center is the library constant
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Value returns the current text.
func (t *TextInput) Value() string {
	return t.textinput.Value()
}

// SetValue replaces the current text.
func (t *TextInput) SetValue(value string) {
	t.textinput.SetValue(value)
}

// Focus gives the input keyboard focus.
func (t *TextInput) Focus() tea.Cmd {
	return t.textinput.Focus()
}

// Blur removes keyboard focus.
func (t *TextInput) Blur() {
	t.textinput.Blur()
}

// Focused reports whether the input has focus.
func (t *TextInput) Focused() bool {
	return t.textinput.Focused()
}

// SetWidth fits the field into width columns, leaving room for the label
// and border.
func (t *TextInput) SetWidth(width int) {
	t.width = width
	t.textinput.Width = max(width-lipgloss.Width(t.label)-6, minInputWidth)
}

// Width returns the outer width.
func (t *TextInput) Width() int {
	return t.width
}

// Reset clears the text.
func (t *TextInput) Reset() {
	t.textinput.Reset()
}
