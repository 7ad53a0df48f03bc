// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui/styles"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
)

// FieldInput wraps a bubbles textinput for editing one form field.
type FieldInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	kind      domain.FieldKind
	width     int
}

// NewFieldInput creates an unfocused field input.
func NewFieldInput(s *styles.Styles) *FieldInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.Width = 40

	return &FieldInput{
		textinput: ti,
		styles:    s,
		kind:      domain.FieldText,
		width:     40,
	}
}

// Init initialises the input.
func (f *FieldInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (f *FieldInput) Update(msg tea.Msg) (*FieldInput, tea.Cmd) {
	var cmd tea.Cmd
	f.textinput, cmd = f.textinput.Update(msg)
	return f, cmd
}

// View renders the input.
func (f *FieldInput) View() string {
	return f.textinput.View()
}

// Edit points the input at a field and focuses it.
func (f *FieldInput) Edit(kind domain.FieldKind, value string) tea.Cmd {
	f.kind = kind
	f.textinput.Placeholder = Placeholder(kind)
	f.textinput.SetValue(value)
	f.textinput.CursorEnd()
	return f.textinput.Focus()
}

// Placeholder returns the input hint for a field kind.
func Placeholder(kind domain.FieldKind) string {
	switch kind {
	case domain.FieldDate:
		return "YYYY-MM-DD"
	case domain.FieldDateTime:
		return "YYYY-MM-DDTHH:MM"
	case domain.FieldNumber:
		return "0"
	case domain.FieldIdentifier:
		return "e.g. E1234"
	default:
		return ""
	}
}

// Kind returns the kind of the field being edited.
func (f *FieldInput) Kind() domain.FieldKind {
	return f.kind
}

// Value returns the current input value.
func (f *FieldInput) Value() string {
	return f.textinput.Value()
}

// SetValue sets the input value.
func (f *FieldInput) SetValue(value string) {
	f.textinput.SetValue(value)
	f.textinput.CursorEnd()
}

// Focus sets focus on the input.
func (f *FieldInput) Focus() tea.Cmd {
	return f.textinput.Focus()
}

// Blur removes focus from the input.
func (f *FieldInput) Blur() {
	f.textinput.Blur()
}

// Focused returns whether the input is focused.
func (f *FieldInput) Focused() bool {
	return f.textinput.Focused()
}

// SetWidth sets the width of the input.
func (f *FieldInput) SetWidth(width int) {
	f.width = width
	inputWidth := width - 30
	if inputWidth < 20 {
		inputWidth = 20
	}
	f.textinput.Width = inputWidth
}

// Width returns the current width.
func (f *FieldInput) Width() int {
	return f.width
}

// Reset clears and blurs the input.
func (f *FieldInput) Reset() {
	f.textinput.Reset()
	f.textinput.Blur()
}
