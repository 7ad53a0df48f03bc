// Package forms provides the form picker view for the TUI.
package forms

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui/components/list"
	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui/messages"
	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui/styles"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driving"
)

// View lists the registered forms.
type View struct {
	styles *styles.Styles
	forms  driving.FormService
	list   *list.ItemList
	width  int
	height int
}

// NewView creates a new form picker.
func NewView(s *styles.Styles, forms driving.FormService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		forms:  forms,
		list:   list.NewItemList(s, "Forms"),
	}
}

// Init reloads the form list.
func (v *View) Init() tea.Cmd {
	if v.forms == nil {
		return nil
	}
	schemas := v.forms.Forms()
	items := make([]list.Item, 0, len(schemas))
	for _, s := range schemas {
		detail := fmt.Sprintf("%d fields", len(s.Fields))
		if len(s.Lists) > 0 {
			detail += fmt.Sprintf(", %d lists", len(s.Lists))
		}
		if s.Lookup != nil {
			detail += ", employee lookup"
		}
		items = append(items, list.Item{Key: s.Name, Title: s.DisplayTitle(), Detail: detail})
	}
	v.list.SetItems(items)
	return nil
}

// Update handles messages for the picker.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}

	switch keyMsg.String() {
	case "esc", "q":
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	case "enter":
		if item := v.list.SelectedItem(); item != nil {
			name := item.Key
			return v, func() tea.Msg { return messages.FormSelected{Form: name} }
		}
	case "r":
		if item := v.list.SelectedItem(); item != nil {
			name := item.Key
			return v, func() tea.Msg { return messages.RecordsRequested{Form: name} }
		}
	default:
		v.list.Update(keyMsg)
	}
	return v, nil
}

// View renders the picker.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("New record"))
	b.WriteString("\n\n")
	b.WriteString(v.list.View())
	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] New  [r] Records  [Esc] Back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.list.SetDimensions(width, height-6)
}

// Selected returns the name of the highlighted form.
func (v *View) Selected() string {
	if item := v.list.SelectedItem(); item != nil {
		return item.Key
	}
	return ""
}
