package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestMessageInput_Defaults(t *testing.T) {
	mi := NewMessageInput(nil)

	assert.Empty(t, mi.Value())
	assert.True(t, mi.Focused())
	assert.Contains(t, mi.View(), ">")
}

func TestMessageInput_TypeAndReset(t *testing.T) {
	mi := NewMessageInput(nil)

	for _, r := range "hello" {
		mi, _ = mi.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	assert.Equal(t, "hello", mi.Value())

	mi.Reset()
	assert.Empty(t, mi.Value())
}

func TestMessageInput_SetValue(t *testing.T) {
	mi := NewMessageInput(nil)

	mi.SetValue("draft question")

	assert.Equal(t, "draft question", mi.Value())
}

func TestMessageInput_SetWidth(t *testing.T) {
	mi := NewMessageInput(nil)

	mi.SetWidth(100)
	assert.Equal(t, 100, mi.Width())

	// Narrow terminals keep a usable minimum
	mi.SetWidth(10)
	assert.Equal(t, 10, mi.Width())
}

func TestMessageInput_FocusBlur(t *testing.T) {
	mi := NewMessageInput(nil)

	mi.Blur()
	assert.False(t, mi.Focused())

	mi.Focus()
	assert.True(t, mi.Focused())
}
