package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FocusedWithLabel(t *testing.T) {
	in := New(nil, "Ask:", "Ask about the API...")

	require.NotNil(t, in)
	assert.True(t, in.Focused())
	assert.Contains(t, in.View(), "Ask:")
	assert.NotNil(t, in.Init())
}

func TestTextInput_Typing(t *testing.T) {
	in := New(nil, "", "")

	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("orders")})
	assert.Equal(t, "orders", in.Value())

	in.Reset()
	assert.Empty(t, in.Value())
}

func TestTextInput_BlurIgnoresKeys(t *testing.T) {
	in := New(nil, "Search:", "")
	in.Blur()

	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})

	assert.False(t, in.Focused())
	assert.Empty(t, in.Value())
}

func TestTextInput_SetWidth(t *testing.T) {
	in := New(nil, "Search:", "")

	in.SetWidth(100)
	assert.Equal(t, 100, in.Width())
	assert.Equal(t, 100-len("Search:")-6, in.textinput.Width)

	in.SetWidth(5)
	assert.Equal(t, minInputWidth, in.textinput.Width)
}

func TestTextInput_SetValue(t *testing.T) {
	in := New(nil, "", "")
	in.SetValue("pagination")

	assert.Equal(t, "pagination", in.Value())
	assert.Contains(t, in.View(), "pagination")
}
