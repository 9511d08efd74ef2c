// Package status provides the status bar shown at the bottom of each view.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/styles"
)

// State is what the bar reports on its left side.
type State string

// Bar states.
const (
	StateReady     State = "ready"
	StateSearching State = "searching"
	StateAsking    State = "asking"
	StateLoading   State = "loading"
	StateResults   State = "results"
	StateError     State = "error"
)

// Bar displays the current state and keybinding hints.
type Bar struct {
	styles   *styles.Styles
	hints    []key.Binding
	state    State
	message  string
	count    int
	width    int
	spinView string
}

// NewBar creates a status bar showing the given hints.
func NewBar(s *styles.Styles, hints []key.Binding) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if hints == nil {
		km := keymap.DefaultKeyMap()
		hints = []key.Binding{km.Back, km.Quit}
	}
	return &Bar{styles: s, hints: hints, state: StateReady, width: 80}
}

// View renders the bar padded to its width.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()
	padding := max(b.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (b *Bar) renderLeft() string {
	busy := func(label string) string {
		if b.spinView != "" {
			return b.spinView + " " + b.styles.Muted.Render(label)
		}
		return b.styles.Muted.Render(label)
	}

	switch b.state {
	case StateSearching:
		return busy("Searching...")
	case StateAsking:
		return busy("Thinking...")
	case StateLoading:
		return busy("Loading...")
	case StateError:
		if b.message != "" {
			return b.styles.Error.Render("Error: " + b.message)
		}
		return b.styles.Error.Render("Error")
	case StateResults:
		if b.message != "" {
			return b.styles.Normal.Render(b.message)
		}
		return b.styles.Normal.Render(fmt.Sprintf("%d results", b.count))
	case StateReady:
		if b.message != "" {
			return b.styles.Normal.Render(b.message)
		}
	}
	return b.styles.Muted.Render("Ready")
}

func (b *Bar) renderRight() string {
	hints := make([]string, 0, len(b.hints))
	for _, binding := range b.hints {
		h := binding.Help()
		hints = append(hints, h.Key+": "+h.Desc)
	}
	return b.styles.Help.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (b *Bar) SetState(state State) {
	b.state = state
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// SetMessage sets the text shown for ready, results and error states.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// Message returns the current message.
func (b *Bar) Message() string {
	return b.message
}

// SetResultCount sets the count shown in the results state.
func (b *Bar) SetResultCount(count int) {
	b.count = count
}

// ResultCount returns the current count.
func (b *Bar) ResultCount() int {
	return b.count
}

// SetSpinner sets the spinner frame drawn next to busy states.
func (b *Bar) SetSpinner(frame string) {
	b.spinView = frame
}

// SetHints replaces the keybinding hints.
func (b *Bar) SetHints(hints []key.Binding) {
	b.hints = hints
}

// SetWidth sets the bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Clear resets the bar to the ready state.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
	b.count = 0
}
