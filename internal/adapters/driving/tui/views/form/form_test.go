package form

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui/components/status"
	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui/messages"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driving"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/services"
)

// --- fakes ---

type fakeRecords struct {
	created []domain.Payload
	err     error
}

func (f *fakeRecords) Create(_ context.Context, _ string, p domain.Payload) (*domain.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, p)
	return &domain.Record{ID: "r1"}, nil
}

func (f *fakeRecords) Update(_ context.Context, _, id string, _ domain.Payload) (*domain.Record, error) {
	return &domain.Record{ID: id}, nil
}

func (f *fakeRecords) Get(context.Context, string, string) (*domain.Record, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeRecords) List(context.Context, string, domain.ListOptions) ([]domain.Record, error) {
	return nil, nil
}

func (f *fakeRecords) Delete(context.Context, string, string) error { return nil }

type fakePatients struct{}

func (fakePatients) FindByEmpNo(_ context.Context, empNo string) (*domain.Patient, error) {
	if empNo != "E1" {
		return nil, domain.ErrNotFound
	}
	return &domain.Patient{ID: "p1", EmpNo: "E1", PatientName: "Ravi Kumar"}, nil
}

func (fakePatients) Create(_ context.Context, p domain.Patient) (*domain.Patient, error) { return &p, nil }

func (fakePatients) Update(_ context.Context, _ string, p domain.Patient) (*domain.Patient, error) {
	return &p, nil
}

type fakeResolver struct {
	state    domain.SuggestionState
	changes  chan domain.SuggestionState
	queries  []string
	selected string
	closed   bool
}

func (r *fakeResolver) push() {
	select {
	case r.changes <- r.state:
	default:
	}
}

func (r *fakeResolver) SetQuery(q string) { r.queries = append(r.queries, q); r.state.Query = q }

func (r *fakeResolver) Focus() { r.state.Open = true; r.push() }

func (r *fakeResolver) Blur() { r.state.Open = false }

func (r *fakeResolver) Select(c string) { r.selected = c; r.state.Open = false }

func (r *fakeResolver) State() domain.SuggestionState {
	return r.state
}

func (r *fakeResolver) Changes() <-chan domain.SuggestionState { return r.changes }

func (r *fakeResolver) Close() {
	if !r.closed {
		r.closed = true
		close(r.changes)
	}
}

type fakeSuggestions struct {
	resolvers map[string]*fakeResolver
}

func (f *fakeSuggestions) Suggest(context.Context, string, string) ([]string, error) { return nil, nil }

func (f *fakeSuggestions) NewResolver(_ context.Context, category string) driving.SuggestionResolver {
	r := &fakeResolver{changes: make(chan domain.SuggestionState, 8)}
	f.resolvers[category] = r
	return r
}

type fakeDropdowns struct {
	options   []string
	refreshed int
}

func (f *fakeDropdowns) Options(context.Context, string) ([]string, error) { return f.options, nil }

func (f *fakeDropdowns) Refresh(context.Context, string) error {
	f.refreshed++
	return nil
}

// --- helpers ---

func testSchema() *domain.Schema {
	return &domain.Schema{
		Name:     "visit",
		Title:    "Visit",
		Resource: "visits",
		Fields: []domain.FieldDef{
			{Name: "empNo", Label: "Employee No", Kind: domain.FieldIdentifier, Required: true},
			{Name: "employeeName", Label: "Employee Name", Kind: domain.FieldText, ReadOnly: true},
			{Name: "location", Label: "Location", Kind: domain.FieldText, Dropdown: "loc"},
			{Name: "sent", Label: "Sent", Kind: domain.FieldBool},
			{Name: "ward", Label: "Ward", Kind: domain.FieldText, Suggest: "ward"},
		},
		Lists: []domain.ListDef{
			{Name: "meds", Label: "Medicines", Scalar: true},
			{Name: "visits", Label: "Visits", KeepOne: true, Fields: []domain.FieldDef{
				{Name: "date", Label: "Date", Kind: domain.FieldDate},
				{Name: "notes", Label: "Notes", Kind: domain.FieldText},
			}},
		},
		Blocks: []domain.BlockDef{{Name: "sentBlock", Gate: "sent", Fields: []string{"ward"}}},
		Lookup: &domain.LookupDef{Trigger: "empNo", Fields: map[string]string{"PatientName": "employeeName"}},
	}
}

type fixture struct {
	view        *View
	handle      *services.FormController
	records     *fakeRecords
	suggestions *fakeSuggestions
	dropdowns   *fakeDropdowns
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		records:     &fakeRecords{},
		suggestions: &fakeSuggestions{resolvers: make(map[string]*fakeResolver)},
		dropdowns:   &fakeDropdowns{options: []string{"Camp A", "Camp B", "Clinic"}},
	}
	f.handle = services.NewFormController(testSchema(), services.FormDeps{
		Records: f.records, Patients: fakePatients{},
	}, services.FormOptions{ResetOnSuccess: true})
	f.view = NewView(nil, f.suggestions, f.dropdowns)
	f.view.SetDimensions(100, 60)
	f.view.SetHandle(f.handle)
	return f
}

// drain runs a command tree and collects the messages that arrive promptly.
// Blink and channel-wait commands are dropped.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, drain(c)...)
			}
			return out
		}
		return []tea.Msg{msg}
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

func find[T any](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func typeText(v *View, s string) {
	for _, r := range s {
		v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func press(v *View, k tea.KeyType) tea.Cmd {
	_, cmd := v.Update(tea.KeyMsg{Type: k})
	return cmd
}

// --- tests ---

func TestSetHandle_FocusesFirstEditableField(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "empNo", f.view.Focused())
	assert.Equal(t, status.StateEditing, f.view.Status().State())
	assert.Contains(t, f.view.View(), "Visit")
}

func TestTyping_UpdatesState(t *testing.T) {
	f := newFixture(t)

	typeText(f.view, "E1")

	assert.Equal(t, "E1", f.handle.State().Values["empNo"])
}

func TestLeavingTrigger_LooksUpEmployee(t *testing.T) {
	f := newFixture(t)
	typeText(f.view, "E1")

	msgs := drain(press(f.view, tea.KeyTab))

	assert.Equal(t, "location", f.view.Focused(), "read-only fields are skipped")
	done, ok := find[messages.LookupCompleted](msgs)
	require.True(t, ok)
	f.view.Update(done)
	assert.Equal(t, "Ravi Kumar", f.handle.State().Values["employeeName"])
	assert.Contains(t, f.view.Status().Message(), "Loaded employee Ravi Kumar")
	assert.Contains(t, f.view.View(), "Ravi Kumar")
}

func TestLookup_NotFoundNotice(t *testing.T) {
	f := newFixture(t)
	typeText(f.view, "E9")

	msgs := drain(f.view.lookup())

	done, ok := find[messages.LookupCompleted](msgs)
	require.True(t, ok)
	f.view.Update(done)
	assert.Equal(t, "No employee found for E9", f.view.Status().Message())
}

func TestGateShowsBlockFields(t *testing.T) {
	f := newFixture(t)
	assert.NotContains(t, f.view.View(), "Ward")

	press(f.view, tea.KeyTab) // location
	press(f.view, tea.KeyTab) // sent
	require.Equal(t, "sent", f.view.Focused())
	f.view.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})

	assert.True(t, f.handle.State().Flags["sent"])
	assert.Equal(t, "sent", f.view.Focused())
	assert.Contains(t, f.view.View(), "Ward")
}

func TestSuggestions_SelectCandidate(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.handle.SetFlag("sent", true))
	f.view.rebuild()
	f.view.focusFrom(4)
	require.Equal(t, "ward", f.view.Focused())

	r := f.suggestions.resolvers["ward"]
	require.NotNil(t, r)
	assert.True(t, r.state.Open)

	typeText(f.view, "ca")
	assert.Equal(t, []string{"c", "ca"}, r.queries)

	f.view.Update(messages.SuggestionsChanged{Field: "ward", State: domain.SuggestionState{
		Query: "ca", Open: true, Candidates: []string{"Cardiology", "Casualty"},
	}})
	assert.Contains(t, f.view.View(), "Casualty")

	press(f.view, tea.KeyDown)
	press(f.view, tea.KeyEnter)

	assert.Equal(t, "Casualty", f.handle.State().Values["ward"])
	assert.Equal(t, "Casualty", r.selected)
	assert.Equal(t, "ward", f.view.Focused(), "choosing keeps focus")
	items, _ := f.view.menu()
	assert.Empty(t, items)
}

func TestSuggestions_LoadingShown(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.handle.SetFlag("sent", true))
	f.view.rebuild()
	f.view.focusFrom(4)

	f.view.Update(messages.SuggestionsChanged{Field: "ward", State: domain.SuggestionState{Open: true, Loading: true}})

	assert.Contains(t, f.view.View(), "Searching...")
}

func TestSuggestions_EscHidesMenuFirst(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.handle.SetFlag("sent", true))
	f.view.rebuild()
	f.view.focusFrom(4)
	f.view.Update(messages.SuggestionsChanged{Field: "ward", State: domain.SuggestionState{
		Open: true, Candidates: []string{"Cardiology"},
	}})

	cmd := press(f.view, tea.KeyEsc)
	assert.Nil(t, cmd)

	cmd = press(f.view, tea.KeyEsc)
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewForms}, cmd())
	assert.True(t, f.suggestions.resolvers["ward"].closed)
}

func TestDropdown_LoadsAndFiltersOptions(t *testing.T) {
	f := newFixture(t)

	msgs := drain(press(f.view, tea.KeyTab))
	require.Equal(t, "location", f.view.Focused())
	loaded, ok := find[messages.OptionsLoaded](msgs)
	require.True(t, ok)
	assert.Equal(t, "loc", loaded.Field)
	f.view.Update(loaded)

	items, _ := f.view.menu()
	assert.Len(t, items, 3)

	typeText(f.view, "camp")
	items, _ = f.view.menu()
	assert.Equal(t, []string{"Camp A", "Camp B"}, items)

	press(f.view, tea.KeyEnter)
	assert.Equal(t, "Camp A", f.handle.State().Values["location"])
}

func TestDropdown_Refresh(t *testing.T) {
	f := newFixture(t)
	press(f.view, tea.KeyTab)

	msgs := drain(press(f.view, tea.KeyCtrlR))

	assert.Equal(t, 1, f.dropdowns.refreshed)
	_, ok := find[messages.OptionsLoaded](msgs)
	assert.True(t, ok)
}

func TestRows_AddAndRemove(t *testing.T) {
	f := newFixture(t)

	// Walk to the "+ add visits" entry.
	for i := 0; i < 10; i++ {
		press(f.view, tea.KeyTab)
	}
	e, ok := f.view.current()
	require.True(t, ok)
	require.Equal(t, entryAddRow, e.kind)

	press(f.view, tea.KeyEnter)
	assert.Len(t, f.handle.State().Lists["visits"], 2)
	assert.Equal(t, "visits[1].date", f.view.Focused())

	typeText(f.view, "2024-05-01")
	assert.Equal(t, "2024-05-01", f.handle.State().Lists["visits"][1].Values["date"])

	press(f.view, tea.KeyCtrlD)
	assert.Len(t, f.handle.State().Lists["visits"], 1)

	// Removing the last row keeps a placeholder.
	f.view.focusFrom(0)
	for f.view.Focused() != "visits[0].date" {
		press(f.view, tea.KeyTab)
	}
	press(f.view, tea.KeyCtrlD)
	assert.Len(t, f.handle.State().Lists["visits"], 1)
}

func TestScalarList_AddText(t *testing.T) {
	f := newFixture(t)
	for {
		e, ok := f.view.current()
		require.True(t, ok)
		if e.kind == entryAddText {
			break
		}
		press(f.view, tea.KeyTab)
	}

	press(f.view, tea.KeyEnter)
	require.Equal(t, "meds[0]", f.view.Focused())
	typeText(f.view, "Paracetamol")

	assert.Equal(t, []string{"Paracetamol"}, f.handle.State().Texts["meds"])

	press(f.view, tea.KeyCtrlD)
	assert.Empty(t, f.handle.State().Texts["meds"])
}

func TestSubmit_MissingRequiredFields(t *testing.T) {
	f := newFixture(t)

	cmd := press(f.view, tea.KeyCtrlS)

	assert.Nil(t, cmd)
	assert.Equal(t, status.StateNotice, f.view.Status().State())
	assert.Contains(t, f.view.Status().Message(), "Required: Employee No")
	assert.Empty(t, f.records.created)
}

func TestSubmit_CreatesRecordAndResets(t *testing.T) {
	f := newFixture(t)
	typeText(f.view, "E2")

	msgs := drain(press(f.view, tea.KeyCtrlS))

	assert.Equal(t, status.StateBusy, f.view.Status().State())
	done, ok := find[messages.SubmitCompleted](msgs)
	require.True(t, ok)
	require.NoError(t, done.Err)
	f.view.Update(done)

	require.Len(t, f.records.created, 1)
	assert.Equal(t, "E2", f.records.created[0]["empNo"])
	assert.Equal(t, "Created Visit", f.view.Status().Message())
	assert.Empty(t, f.handle.State().Values["empNo"], "session resets after success")
	assert.Equal(t, "empNo", f.view.Focused())
}

func TestSubmit_FailureShowsNotice(t *testing.T) {
	f := newFixture(t)
	f.records.err = errors.New("boom")
	typeText(f.view, "E2")

	msgs := drain(press(f.view, tea.KeyCtrlS))
	done, ok := find[messages.SubmitCompleted](msgs)
	require.True(t, ok)
	f.view.Update(done)

	assert.Equal(t, domain.NoticeError, f.view.Status().Level())
	assert.Equal(t, "Failed to save Visit", f.view.Status().Message())
	assert.Equal(t, "E2", f.handle.State().Values["empNo"])
}

func TestKeysIgnoredWhileSubmitting(t *testing.T) {
	f := newFixture(t)
	typeText(f.view, "E2")
	f.view.busy = true

	typeText(f.view, "X")

	assert.Equal(t, "E2", f.handle.State().Values["empNo"])
}

func TestPickNotice(t *testing.T) {
	_, ok := pickNotice(nil)
	assert.False(t, ok)

	n, ok := pickNotice(&domain.SubmissionResult{Notices: []domain.Notice{
		{Level: domain.NoticeWarn, Message: "patient not saved"},
		{Level: domain.NoticeInfo, Message: "Created Visit"},
	}})
	require.True(t, ok)
	assert.Equal(t, "patient not saved", n.Message)
}

func TestView_NoHandle(t *testing.T) {
	v := NewView(nil, nil, nil)

	assert.Contains(t, v.View(), "No form open")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}
