// Package records provides the stored records view for the TUI.
package records

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui/components/list"
	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui/messages"
	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui/styles"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driving"
)

// PageSize is the number of records fetched per load.
const PageSize = 50

// titleFields are tried in order to caption a record.
var titleFields = []string{"employeeName", "empNo"}

// View lists stored records of one form.
type View struct {
	ctx     context.Context
	styles  *styles.Styles
	records driving.RecordService

	form       string
	byID       map[string]domain.Record
	list       *list.ItemList
	loading    bool
	confirming bool
	err        error

	width  int
	height int
}

// NewView creates a new records view.
func NewView(s *styles.Styles, records driving.RecordService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		ctx:     context.Background(),
		styles:  s,
		records: records,
		byID:    make(map[string]domain.Record),
		list:    list.NewItemList(s, "Records"),
	}
}

// WithContext sets the context used for backend calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetForm selects the form and starts loading its records.
func (v *View) SetForm(form string) tea.Cmd {
	v.form = form
	v.list.SetItems(nil)
	v.byID = make(map[string]domain.Record)
	v.confirming = false
	v.err = nil
	return v.load()
}

func (v *View) load() tea.Cmd {
	v.loading = true
	ctx, records, form := v.ctx, v.records, v.form
	return func() tea.Msg {
		if records == nil {
			return messages.RecordsLoaded{Form: form, Err: fmt.Errorf("records are not available")}
		}
		recs, err := records.List(ctx, form, domain.ListOptions{Limit: PageSize})
		return messages.RecordsLoaded{Form: form, Records: recs, Err: err}
	}
}

func (v *View) remove(id string) tea.Cmd {
	ctx, records, form := v.ctx, v.records, v.form
	return func() tea.Msg {
		return messages.RecordDeleted{ID: id, Err: records.Delete(ctx, form, id)}
	}
}

// Update handles messages for the records view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.RecordsLoaded:
		if msg.Form != v.form {
			return v, nil
		}
		v.loading = false
		v.err = msg.Err
		v.setRecords(msg.Records)
		return v, nil

	case messages.RecordDeleted:
		v.err = msg.Err
		if msg.Err == nil {
			delete(v.byID, msg.ID)
			v.list.Remove(msg.ID)
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKeys(msg)
	}
	return v, nil
}

func (v *View) handleKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.confirming {
		v.confirming = false
		if msg.String() == "y" {
			if item := v.list.SelectedItem(); item != nil {
				return v, v.remove(item.Key)
			}
		}
		return v, nil
	}

	switch msg.String() {
	case "esc", "q":
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewForms} }
	case "enter":
		if item := v.list.SelectedItem(); item != nil {
			rec, form := v.byID[item.Key], v.form
			return v, func() tea.Msg { return messages.RecordSelected{Form: form, Record: rec} }
		}
	case "d":
		if v.list.SelectedItem() != nil && v.records != nil {
			v.confirming = true
		}
	case "ctrl+r":
		return v, v.load()
	default:
		v.list.Update(msg)
	}
	return v, nil
}

func (v *View) setRecords(recs []domain.Record) {
	items := make([]list.Item, 0, len(recs))
	v.byID = make(map[string]domain.Record, len(recs))
	for _, r := range recs {
		v.byID[r.ID] = r
		items = append(items, list.Item{Key: r.ID, Title: Caption(r), Detail: detail(r)})
	}
	v.list.SetItems(items)
}

// Caption returns a human label for a record.
func Caption(r domain.Record) string {
	for _, name := range titleFields {
		if s, ok := r.Data[name].(string); ok && s != "" {
			return s
		}
	}
	return r.ID
}

func detail(r domain.Record) string {
	parts := []string{r.ID}
	if !r.CreatedAt.IsZero() {
		parts = append(parts, "created "+r.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	if !r.UpdatedAt.IsZero() && !r.UpdatedAt.Equal(r.CreatedAt) {
		parts = append(parts, "updated "+r.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return strings.Join(parts, "  ")
}

// View renders the records list.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Records: " + v.form))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
		b.WriteString(v.list.View())
	default:
		b.WriteString(v.list.View())
	}

	b.WriteString("\n\n")
	if v.confirming {
		b.WriteString(v.styles.Warning.Render("Delete this record? [y] yes  [any] no"))
	} else {
		b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Edit  [d] Delete  [ctrl+r] Reload  [Esc] Back"))
	}
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.list.SetDimensions(width, height-6)
}

// Form returns the form whose records are listed.
func (v *View) Form() string {
	return v.form
}

// Count returns the number of listed records.
func (v *View) Count() int {
	return v.list.Count()
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
