// Package form provides the form editor view for the TUI.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui/components/input"
	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui/components/status"
	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui/keymap"
	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui/messages"
	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui/styles"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driving"
)

// maxMenuItems bounds the rendered dropdown.
const maxMenuItems = 8

type entryKind int

const (
	entryHeading entryKind = iota
	entryField
	entryRowField
	entryText
	entryAddRow
	entryAddText
)

// entry is one line of the editor.
type entry struct {
	kind  entryKind
	label string
	def   domain.FieldDef
	path  domain.RowPath // row of a row field, parent of an add-row entry
	list  string
	index int
	depth int
}

func (e entry) focusable() bool {
	switch e.kind {
	case entryHeading:
		return false
	case entryField, entryRowField:
		return !e.def.ReadOnly
	default:
		return true
	}
}

func (e entry) editable() bool {
	switch e.kind {
	case entryField, entryRowField:
		return !e.def.ReadOnly && e.def.Kind != domain.FieldBool
	case entryText:
		return true
	default:
		return false
	}
}

// key identifies the input an entry edits.
func (e entry) key() string {
	switch e.kind {
	case entryRowField:
		return e.path.String() + "." + e.def.Name
	case entryText:
		return fmt.Sprintf("%s[%d]", e.list, e.index)
	default:
		return e.def.Name
	}
}

// View is the form editor.
type View struct {
	ctx         context.Context
	styles      *styles.Styles
	keymap      *keymap.KeyMap
	suggestions driving.SuggestionService
	dropdowns   driving.DropdownService

	handle  driving.FormHandle
	entries []entry
	focus   int

	input *input.FieldInput
	bar   *status.Bar

	// resolvers are keyed by entry key and live until the form is left.
	resolvers map[string]driving.SuggestionResolver
	suggest   map[string]domain.SuggestionState
	options   map[string][]string

	menuIndex  int
	menuHidden bool
	busy       bool

	width  int
	height int
}

// NewView creates a form editor.
func NewView(
	s *styles.Styles, suggestions driving.SuggestionService, dropdowns driving.DropdownService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	km := keymap.DefaultKeyMap()
	return &View{
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		suggestions: suggestions,
		dropdowns:   dropdowns,
		input:       input.NewFieldInput(s),
		bar:         status.NewBar(s, km),
		resolvers:   make(map[string]driving.SuggestionResolver),
		suggest:     make(map[string]domain.SuggestionState),
		options:     make(map[string][]string),
		width:       80,
		height:      24,
	}
}

// WithContext sets the context used for backend calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetHandle starts editing a form session.
func (v *View) SetHandle(h driving.FormHandle) tea.Cmd {
	v.Close()
	v.handle = h
	v.busy = false
	v.bar.Clear()
	v.bar.SetState(status.StateEditing)
	if id := h.RecordID(); id != "" {
		v.bar.SetMessage("Editing " + id)
	}
	v.rebuild()
	return v.focusFrom(0)
}

// Handle returns the session being edited.
func (v *View) Handle() driving.FormHandle {
	return v.handle
}

// Close releases every resolver.
func (v *View) Close() {
	for k, r := range v.resolvers {
		r.Close()
		delete(v.resolvers, k)
	}
	v.suggest = make(map[string]domain.SuggestionState)
	v.input.Reset()
}

// rebuild lays out the entries from the current state.
func (v *View) rebuild() {
	if v.handle == nil {
		v.entries = nil
		return
	}
	schema := v.handle.Schema()
	state := v.handle.State()

	entries := make([]entry, 0, len(schema.Fields)+8)
	for _, f := range schema.Fields {
		if hiddenByGate(schema, state, f.Name) {
			continue
		}
		entries = append(entries, entry{kind: entryField, label: f.DisplayLabel(), def: f})
	}
	for _, l := range schema.Lists {
		if hiddenByGate(schema, state, l.Name) {
			continue
		}
		entries = appendList(entries, state, nil, l, 0)
	}
	v.entries = entries
	if v.focus >= len(v.entries) {
		v.focus = len(v.entries) - 1
	}
}

func hiddenByGate(schema *domain.Schema, state *domain.FormState, name string) bool {
	block, ok := schema.BlockOf(name)
	if !ok || block.Gate == "" || block.Gate == name {
		return false
	}
	return !state.Flags[block.Gate]
}

func appendList(entries []entry, state *domain.FormState, parent domain.RowPath, l domain.ListDef, depth int) []entry {
	entries = append(entries, entry{kind: entryHeading, label: l.DisplayLabel(), list: l.Name, depth: depth})

	if l.Scalar {
		for i := range state.Texts[l.Name] {
			entries = append(entries, entry{
				kind: entryText, label: fmt.Sprintf("%d.", i+1), list: l.Name, index: i, depth: depth + 1,
			})
		}
		return append(entries, entry{kind: entryAddText, label: "+ add entry", list: l.Name, depth: depth + 1})
	}

	for i := range state.Rows(parent, l.Name) {
		path := parent.Child(l.Name, i)
		entries = append(entries, entry{
			kind: entryHeading, label: fmt.Sprintf("#%d", i+1), list: l.Name, path: path, depth: depth + 1,
		})
		for _, f := range l.Fields {
			entries = append(entries, entry{
				kind: entryRowField, label: f.DisplayLabel(), def: f, path: path, list: l.Name, depth: depth + 2,
			})
		}
		for _, c := range l.Children {
			entries = appendList(entries, state, path, c, depth+2)
		}
	}
	return append(entries, entry{
		kind: entryAddRow, label: "+ add " + strings.ToLower(l.DisplayLabel()), list: l.Name, path: parent, depth: depth + 1,
	})
}

// current returns the focused entry.
func (v *View) current() (entry, bool) {
	if v.focus < 0 || v.focus >= len(v.entries) {
		return entry{}, false
	}
	return v.entries[v.focus], true
}

// value reads the live value of an entry.
func (v *View) value(state *domain.FormState, e entry) string {
	switch e.kind {
	case entryField:
		if e.def.Kind == domain.FieldBool {
			return checkbox(state.Flags[e.def.Name])
		}
		return state.Values[e.def.Name]
	case entryRowField:
		if row, ok := state.Row(e.path); ok {
			return row.Values[e.def.Name]
		}
	case entryText:
		if texts := state.Texts[e.list]; e.index < len(texts) {
			return texts[e.index]
		}
	}
	return ""
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

// moveFocus steps to the next focusable entry in direction dir.
func (v *View) moveFocus(dir int) tea.Cmd {
	for i := v.focus + dir; i >= 0 && i < len(v.entries); i += dir {
		if v.entries[i].focusable() {
			leave := v.leave()
			v.focus = i
			return tea.Batch(leave, v.enter())
		}
	}
	return nil
}

// focusFrom focuses the first focusable entry at or after i without
// leaving the previous one.
func (v *View) focusFrom(i int) tea.Cmd {
	v.input.Blur()
	for ; i >= 0 && i < len(v.entries); i++ {
		if v.entries[i].focusable() {
			v.focus = i
			return v.enter()
		}
	}
	v.focus = -1
	return nil
}

// refocus moves the cursor back to the entry with the given key after a rebuild.
func (v *View) refocus(key string, kind entryKind) {
	for i, e := range v.entries {
		if e.kind == kind && e.key() == key {
			v.focus = i
			return
		}
	}
}

// leave blurs the focused entry and triggers the employee lookup when the
// trigger field loses focus.
func (v *View) leave() tea.Cmd {
	e, ok := v.current()
	if !ok {
		return nil
	}
	v.input.Blur()
	v.menuHidden = false
	if r, ok := v.resolvers[e.key()]; ok {
		r.Blur()
	}
	if lookup := v.handle.Schema().Lookup; lookup != nil && e.kind == entryField && e.def.Name == lookup.Trigger {
		return v.lookup()
	}
	return nil
}

// enter focuses the entry under the cursor.
func (v *View) enter() tea.Cmd {
	e, ok := v.current()
	if !ok || !e.editable() {
		return nil
	}
	v.menuIndex = 0
	v.menuHidden = false
	cmds := []tea.Cmd{v.input.Edit(e.def.Kind, v.value(v.handle.State(), e))}

	if e.def.Suggest != "" && v.suggestions != nil {
		key := e.key()
		r, ok := v.resolvers[key]
		if !ok {
			r = v.suggestions.NewResolver(v.ctx, e.def.Suggest)
			v.resolvers[key] = r
			cmds = append(cmds, waitForSuggestions(key, r))
		}
		r.Focus()
	}
	if e.def.Dropdown != "" && v.dropdowns != nil {
		if _, ok := v.options[e.def.Dropdown]; !ok {
			cmds = append(cmds, v.loadOptions(e.def.Dropdown))
		}
	}
	return tea.Batch(cmds...)
}

func waitForSuggestions(key string, r driving.SuggestionResolver) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-r.Changes()
		return messages.SuggestionsChanged{Field: key, State: s, Closed: !ok}
	}
}

func (v *View) loadOptions(category string) tea.Cmd {
	ctx, dropdowns := v.ctx, v.dropdowns
	return func() tea.Msg {
		opts, err := dropdowns.Options(ctx, category)
		return messages.OptionsLoaded{Field: category, Options: opts, Err: err}
	}
}

func (v *View) refreshOptions(category string) tea.Cmd {
	ctx, dropdowns := v.ctx, v.dropdowns
	return func() tea.Msg {
		if err := dropdowns.Refresh(ctx, category); err != nil {
			return messages.OptionsLoaded{Field: category, Err: err}
		}
		opts, err := dropdowns.Options(ctx, category)
		return messages.OptionsLoaded{Field: category, Options: opts, Err: err}
	}
}

func (v *View) lookup() tea.Cmd {
	ctx, h := v.ctx, v.handle
	return func() tea.Msg {
		notice, err := h.LookupEmployee(ctx)
		return messages.LookupCompleted{Notice: notice, Err: err}
	}
}

func (v *View) submit() tea.Cmd {
	if err := v.handle.Validate(); err != nil {
		v.showError(err)
		return nil
	}
	v.busy = true
	v.bar.SetState(status.StateBusy)
	v.bar.SetMessage("Submitting")
	ctx, h := v.ctx, v.handle
	return func() tea.Msg {
		result, err := h.Submit(ctx)
		return messages.SubmitCompleted{Result: result, Err: err}
	}
}

// menu returns the dropdown items for the focused entry.
func (v *View) menu() (items []string, loading bool) {
	e, ok := v.current()
	if !ok || v.menuHidden || !e.editable() {
		return nil, false
	}
	if s, ok := v.suggest[e.key()]; ok && s.ShowMenu() {
		return s.Candidates, s.Loading && len(s.Candidates) == 0
	}
	if e.def.Dropdown != "" {
		typed := strings.ToLower(strings.TrimSpace(v.input.Value()))
		for _, opt := range v.options[e.def.Dropdown] {
			if typed == "" || strings.Contains(strings.ToLower(opt), typed) {
				if strings.EqualFold(opt, typed) {
					continue
				}
				items = append(items, opt)
			}
		}
		if len(items) > maxMenuItems {
			items = items[:maxMenuItems]
		}
	}
	return items, false
}

// apply writes an edited value to the session.
func (v *View) apply(e entry, value string) error {
	switch e.kind {
	case entryField:
		return v.handle.Set(e.def.Name, value)
	case entryRowField:
		return v.handle.SetRowValue(e.path, e.def.Name, value)
	case entryText:
		return v.handle.SetText(e.list, e.index, value)
	}
	return nil
}

func (v *View) choose(candidate string) {
	e, ok := v.current()
	if !ok {
		return
	}
	v.input.SetValue(candidate)
	if err := v.apply(e, candidate); err != nil {
		v.showError(err)
	}
	if r, ok := v.resolvers[e.key()]; ok {
		r.Select(candidate)
	}
	v.menuHidden = true
	v.menuIndex = 0
}

func (v *View) showError(err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) && len(verr.Missing) > 0 {
		v.bar.SetNotice(domain.Notice{
			Level:   domain.NoticeError,
			Message: "Required: " + strings.Join(v.labels(verr.Missing), ", "),
		})
		return
	}
	v.bar.SetState(status.StateError)
	v.bar.SetMessage(err.Error())
}

func (v *View) labels(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n
		if f, ok := v.handle.Schema().Field(n); ok {
			out[i] = f.DisplayLabel()
		}
	}
	return out
}

// Update handles messages for the editor.
//
//nolint:gocyclo // central key dispatch
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	if v.handle == nil {
		return v, nil
	}

	switch msg := msg.(type) {
	case messages.SuggestionsChanged:
		if msg.Closed {
			delete(v.suggest, msg.Field)
			return v, nil
		}
		v.suggest[msg.Field] = msg.State
		r, ok := v.resolvers[msg.Field]
		if !ok {
			return v, nil
		}
		return v, waitForSuggestions(msg.Field, r)

	case messages.OptionsLoaded:
		if msg.Err != nil {
			v.showError(fmt.Errorf("options %s: %w", msg.Field, msg.Err))
			return v, nil
		}
		v.options[msg.Field] = msg.Options
		return v, nil

	case messages.LookupCompleted:
		switch {
		case msg.Err != nil:
			v.showError(msg.Err)
		case msg.Notice != nil:
		v.rebuild()
			v.bar.SetNotice(*msg.Notice)
		}
		return v, nil

	case messages.SubmitCompleted:
		v.busy = false
		v.bar.Clear()
		v.bar.SetState(status.StateEditing)
		if notice, ok := pickNotice(msg.Result); ok {
			v.bar.SetNotice(notice)
		} else if msg.Err != nil {
			v.showError(msg.Err)
		}
		if msg.Err != nil {
			return v, nil
		}
		// A reset session starts over at the first field.
		if v.handle.RecordID() == "" {
			v.rebuild()
			return v, v.focusFrom(0)
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKeys(msg)
	}
	return v, nil
}

//nolint:gocognit,gocyclo // key dispatch mirrors the keymap
func (v *View) handleKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.busy {
		return v, nil
	}
	items, _ := v.menu()
	menuOpen := len(items) > 0
	key := msg.String()

	switch {
	case key == "esc":
		if menuOpen {
			v.menuHidden = true
			return v, nil
		}
		v.Close()
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewForms} }

	case menuOpen && key == "down":
		if v.menuIndex < len(items)-1 {
			v.menuIndex++
		}
		return v, nil

	case menuOpen && key == "up":
		if v.menuIndex > 0 {
			v.menuIndex--
		}
		return v, nil

	case menuOpen && key == "enter":
		if v.menuIndex < len(items) {
			v.choose(items[v.menuIndex])
		}
		return v, nil

	case keymap.Matches(key, v.keymap.Next):
		return v, v.moveFocus(1)

	case keymap.Matches(key, v.keymap.Prev):
		return v, v.moveFocus(-1)

	case keymap.Matches(key, v.keymap.Submit):
		return v, v.submit()

	case keymap.Matches(key, v.keymap.Lookup):
		return v, v.lookup()

	case keymap.Matches(key, v.keymap.Remove):
		return v, v.remove()

	case keymap.Matches(key, v.keymap.Refresh):
		if e, ok := v.current(); ok && e.def.Dropdown != "" && v.dropdowns != nil {
			return v, v.refreshOptions(e.def.Dropdown)
		}
		return v, nil
	}

	e, ok := v.current()
	if !ok {
		return v, nil
	}

	switch e.kind {
	case entryAddRow, entryAddText:
		if key == "enter" {
			return v, v.add(e)
		}
		return v, nil
	case entryField:
		if e.def.Kind == domain.FieldBool {
			if key == "enter" || keymap.Matches(key, v.keymap.Toggle) {
				state := v.handle.State()
				if err := v.handle.SetFlag(e.def.Name, !state.Flags[e.def.Name]); err != nil {
					v.showError(err)
				}
				v.rebuild()
				v.refocus(e.key(), e.kind)
			}
			return v, nil
		}
	}

	if key == "enter" {
		return v, v.moveFocus(1)
	}
	if !e.editable() {
		return v, nil
	}

	before := v.input.Value()
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	after := v.input.Value()
	if after == before {
		return v, cmd
	}
	if err := v.apply(e, after); err != nil {
		v.showError(err)
		return v, cmd
	}
	v.menuHidden = false
	v.menuIndex = 0
	if r, ok := v.resolvers[e.key()]; ok {
		r.SetQuery(after)
	}
	return v, cmd
}

func (v *View) add(e entry) tea.Cmd {
	var (
		target entry
		err    error
	)
	if e.kind == entryAddText {
		target = entry{kind: entryText, list: e.list}
		target.index, err = v.handle.AddText(e.list)
	} else {
		target = entry{kind: entryHeading}
		target.path, err = v.handle.AddRow(e.path, e.list)
	}
	if err != nil {
		v.showError(err)
		return nil
	}
	v.rebuild()
	for i, x := range v.entries {
		if x.kind != target.kind {
			continue
		}
		if (x.kind == entryText && x.key() == target.key()) ||
			(x.kind == entryHeading && len(x.path) > 0 && x.path.String() == target.path.String()) {
			return v.focusFrom(i)
		}
	}
	return nil
}

func (v *View) remove() tea.Cmd {
	e, ok := v.current()
	if !ok {
		return nil
	}
	var err error
	switch e.kind {
	case entryRowField:
		err = v.handle.RemoveRow(e.path)
	case entryText:
		err = v.handle.RemoveText(e.list, e.index)
	default:
		return nil
	}
	if err != nil {
		v.showError(err)
		return nil
	}
	// Row keys shift after a removal.
	for k, r := range v.resolvers {
		if strings.Contains(k, "[") {
			r.Close()
			delete(v.resolvers, k)
		}
	}
	v.rebuild()
	return v.focusFrom(v.focus)
}

// pickNotice returns the most relevant notice of a submission:
// the first warning or error, else the last notice.
func pickNotice(result *domain.SubmissionResult) (domain.Notice, bool) {
	if result == nil || len(result.Notices) == 0 {
		return domain.Notice{}, false
	}
	for _, n := range result.Notices {
		if n.Level != domain.NoticeInfo {
			return n, true
		}
	}
	return result.Notices[len(result.Notices)-1], true
}

// View renders the editor.
func (v *View) View() string {
	if v.handle == nil {
		return v.styles.Muted.Render("No form open")
	}
	schema := v.handle.Schema()
	state := v.handle.State()

	lines := make([]string, 0, len(v.entries)+maxMenuItems)
	focusLine := 0
	for i, e := range v.entries {
		if i == v.focus {
			focusLine = len(lines)
		}
		lines = append(lines, v.renderEntry(state, i, e))
		if i == v.focus {
			lines = append(lines, v.renderMenu()...)
		}
	}

	// Keep the focused line on screen.
	visible := v.height - 6
	if visible < 5 {
		visible = 5
	}
	start := 0
	if focusLine >= visible {
		start = focusLine - visible + 1
	}
	end := start + visible
	if end > len(lines) {
		end = len(lines)
	}

	var b strings.Builder
	title := schema.DisplayTitle()
	if id := v.handle.RecordID(); id != "" {
		title += " · " + id
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")
	b.WriteString(strings.Join(lines[start:end], "\n"))
	b.WriteString("\n\n")
	v.bar.SetWidth(v.width)
	b.WriteString(v.bar.View())
	return b.String()
}

func (v *View) renderEntry(state *domain.FormState, i int, e entry) string {
	indent := strings.Repeat("  ", e.depth)
	focused := i == v.focus

	switch e.kind {
	case entryHeading:
		return indent + v.styles.Subtitle.Render(e.label)
	case entryAddRow, entryAddText:
		if focused {
			return indent + v.styles.Selected.Render(e.label)
		}
		return indent + v.styles.Muted.Render(e.label)
	}

	label := e.label
	if e.def.Required {
		label += v.styles.Required.Render(" *")
	}
	if focused {
		label = v.styles.Focused.Render(label)
	} else {
		label = v.styles.Label.Render(label)
	}

	value := v.value(state, e)
	switch {
	case focused && e.editable():
		value = v.input.View()
	case e.def.ReadOnly:
		value = v.styles.ReadOnly.Render(value)
	default:
		value = v.styles.Normal.Render(value)
	}
	return indent + label + " " + value
}

func (v *View) renderMenu() []string {
	items, loading := v.menu()
	if loading {
		return []string{v.styles.Menu.Render(v.styles.Muted.Render("Searching..."))}
	}
	if len(items) == 0 {
		return nil
	}
	rows := make([]string, len(items))
	for i, item := range items {
		if i == v.menuIndex {
			rows[i] = v.styles.Selected.Render(item)
		} else {
			rows[i] = v.styles.Normal.Render(item)
		}
	}
	return []string{v.styles.Menu.Render(strings.Join(rows, "\n"))}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)
	v.bar.SetWidth(width)
}

// Focused returns the key of the focused entry.
func (v *View) Focused() string {
	if e, ok := v.current(); ok {
		return e.key()
	}
	return ""
}

// Status returns the status bar.
func (v *View) Status() *status.Bar {
	return v.bar
}
