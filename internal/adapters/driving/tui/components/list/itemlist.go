// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui/styles"
)

// Item is one row of an ItemList.
type Item struct {
	// Key identifies the item to the owning view.
	Key    string
	Title  string
	Detail string
}

// ItemList displays items in a navigable list.
type ItemList struct {
	title    string
	items    []Item
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewItemList creates a new list component.
func NewItemList(s *styles.Styles, title string) *ItemList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ItemList{
		title:  title,
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (r *ItemList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ItemList) Update(msg tea.Msg) (*ItemList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the list.
func (r *ItemList) View() string {
	if len(r.items) == 0 {
		return r.styles.Muted.Render("Nothing here yet")
	}

	lines := make([]string, 0, len(r.items)*2+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("%s (%d)", r.title, len(r.items))), "")

	// Each item takes two lines.
	visibleCount := (r.height - 4) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(r.items) {
		end = len(r.items)
	}

	for i := start; i < end; i++ {
		lines = append(lines, r.renderItem(i, r.items[i]))
	}

	return strings.Join(lines, "\n")
}

func (r *ItemList) renderItem(index int, item Item) string {
	maxLen := r.width - 6
	if maxLen < 10 {
		maxLen = 10
	}

	title := clip(item.Title, maxLen)
	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render("> " + title)
	} else {
		titleLine = r.styles.Normal.Render("  " + title)
	}
	return titleLine + "\n" + r.styles.Muted.Render("    "+clip(item.Detail, maxLen))
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// SetItems replaces the items and resets the selection.
func (r *ItemList) SetItems(items []Item) {
	r.items = items
	r.selected = 0
}

// Items returns the current items.
func (r *ItemList) Items() []Item {
	return r.items
}

// Selected returns the index of the selected item.
func (r *ItemList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *ItemList) SetSelected(index int) {
	if index >= 0 && index < len(r.items) {
		r.selected = index
	}
}

// SelectedItem returns the selected item, or nil if the list is empty.
func (r *ItemList) SelectedItem() *Item {
	if r.selected < 0 || r.selected >= len(r.items) {
		return nil
	}
	return &r.items[r.selected]
}

// Remove drops the item with the given key.
func (r *ItemList) Remove(key string) {
	for i, item := range r.items {
		if item.Key == key {
			r.items = append(r.items[:i], r.items[i+1:]...)
			break
		}
	}
	if r.selected >= len(r.items) && r.selected > 0 {
		r.selected = len(r.items) - 1
	}
}

// MoveUp moves selection up.
func (r *ItemList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ItemList) MoveDown() {
	if r.selected < len(r.items)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ItemList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of items.
func (r *ItemList) Count() int {
	return len(r.items)
}

// IsEmpty returns whether the list is empty.
func (r *ItemList) IsEmpty() bool {
	return len(r.items) == 0
}
