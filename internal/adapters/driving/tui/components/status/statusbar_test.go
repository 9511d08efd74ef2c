package status

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/keymap"
)

func TestNewBar_Defaults(t *testing.T) {
	b := NewBar(nil, nil)

	assert.Equal(t, StateReady, b.State())
	view := b.View()
	assert.Contains(t, view, "Ready")
	assert.Contains(t, view, "esc: back")
	assert.Contains(t, view, "ctrl+c: quit")
}

func TestBar_States(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateSearching, "Searching..."},
		{StateAsking, "Thinking..."},
		{StateLoading, "Loading..."},
		{StateError, "Error"},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			b := NewBar(nil, nil)
			b.SetState(tt.state)
			assert.Contains(t, b.View(), tt.want)
		})
	}
}

func TestBar_ErrorMessage(t *testing.T) {
	b := NewBar(nil, nil)
	b.SetState(StateError)
	b.SetMessage("embedding service unavailable")

	assert.Contains(t, b.View(), "Error: embedding service unavailable")
}

func TestBar_Results(t *testing.T) {
	b := NewBar(nil, nil)
	b.SetState(StateResults)
	b.SetResultCount(4)
	assert.Contains(t, b.View(), "4 results")

	b.SetMessage("2 documents, 9 sections")
	assert.Contains(t, b.View(), "2 documents, 9 sections")

	b.Clear()
	assert.Equal(t, StateReady, b.State())
	assert.Zero(t, b.ResultCount())
	assert.Empty(t, b.Message())
}

func TestBar_SpinnerAndHints(t *testing.T) {
	km := keymap.DefaultKeyMap()
	b := NewBar(nil, []key.Binding{km.Reset})
	b.SetState(StateAsking)
	b.SetSpinner("*")

	view := b.View()
	assert.Contains(t, view, "* ")
	assert.Contains(t, view, "ctrl+r: reset")

	b.SetHints(nil)
	assert.NotContains(t, b.View(), "ctrl+r")
}

func TestBar_Width(t *testing.T) {
	b := NewBar(nil, nil)
	b.SetWidth(120)

	assert.Equal(t, 120, lipgloss.Width(b.View()))
}
