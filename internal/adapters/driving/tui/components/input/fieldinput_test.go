package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
)

func TestNewFieldInput(t *testing.T) {
	in := NewFieldInput(nil)

	require.NotNil(t, in)
	assert.NotNil(t, in.styles)
	assert.False(t, in.Focused())
	assert.Equal(t, domain.FieldText, in.Kind())
	assert.NotNil(t, in.Init())
}

func TestFieldInput_EditFocusesWithValue(t *testing.T) {
	in := NewFieldInput(nil)

	in.Edit(domain.FieldDate, "2024-01-01")

	assert.True(t, in.Focused())
	assert.Equal(t, "2024-01-01", in.Value())
	assert.Equal(t, domain.FieldDate, in.Kind())
}

func TestFieldInput_UpdateAppendsAtCursor(t *testing.T) {
	in := NewFieldInput(nil)
	in.Edit(domain.FieldIdentifier, "e1")

	in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})

	assert.Equal(t, "e12", in.Value())
}

func TestFieldInput_IgnoresKeysWhenBlurred(t *testing.T) {
	in := NewFieldInput(nil)

	in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})

	assert.Empty(t, in.Value())
}

func TestFieldInput_Reset(t *testing.T) {
	in := NewFieldInput(nil)
	in.Edit(domain.FieldText, "abc")

	in.Reset()

	assert.Empty(t, in.Value())
	assert.False(t, in.Focused())
}

func TestFieldInput_SetWidthHasFloor(t *testing.T) {
	in := NewFieldInput(nil)

	in.SetWidth(30)

	assert.Equal(t, 30, in.Width())
	assert.Equal(t, 20, in.textinput.Width)
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "YYYY-MM-DD", Placeholder(domain.FieldDate))
	assert.Equal(t, "YYYY-MM-DDTHH:MM", Placeholder(domain.FieldDateTime))
	assert.Empty(t, Placeholder(domain.FieldText))
}
