package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driving"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/services"
)

type staticSchemas []domain.Schema

func (s staticSchemas) Load() ([]domain.Schema, error) { return s, nil }

func testSchemas() staticSchemas {
	return staticSchemas{
		{
			Name: "grievance", Title: "Grievance", Resource: "grievances",
			Fields: []domain.FieldDef{
				{Name: "empNo", Label: "Employee No", Kind: domain.FieldIdentifier, Required: true},
				{Name: "employeeName", Label: "Employee Name", Kind: domain.FieldText, ReadOnly: true},
				{Name: "remarks", Label: "Remarks", Kind: domain.FieldText, Suggest: "remark"},
			},
			Lists:  []domain.ListDef{{Name: "meds", Label: "Medicines", Scalar: true}},
			Lookup: &domain.LookupDef{Trigger: "empNo", Fields: map[string]string{"PatientName": "employeeName"}},
		},
	}
}

// mockStore records submitted payloads.
type mockStore struct {
	created []domain.Payload
	updated map[string]domain.Payload
	records []domain.Record
	deleted []string
	opts    domain.ListOptions
	err     error
}

func (m *mockStore) Create(_ context.Context, _ string, p domain.Payload) (*domain.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = append(m.created, p)
	return &domain.Record{ID: "new-1", Data: p}, nil
}

func (m *mockStore) Update(_ context.Context, _, id string, p domain.Payload) (*domain.Record, error) {
	if m.updated == nil {
		m.updated = make(map[string]domain.Payload)
	}
	m.updated[id] = p
	return &domain.Record{ID: id, Data: p}, nil
}

func (m *mockStore) Get(_ context.Context, _, id string) (*domain.Record, error) {
	for i := range m.records {
		if m.records[i].ID == id {
			return &m.records[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) List(_ context.Context, _ string, opts domain.ListOptions) ([]domain.Record, error) {
	m.opts = opts
	return m.records, nil
}

func (m *mockStore) Delete(_ context.Context, _, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

// mockDirectory knows a single employee.
type mockDirectory struct{}

func (mockDirectory) FindByEmpNo(_ context.Context, empNo string) (*domain.Patient, error) {
	if empNo != "E1" {
		return nil, domain.ErrNotFound
	}
	return &domain.Patient{ID: "p1", EmpNo: "E1", PatientName: "Ravi Kumar", TrLocation: "Camp A"}, nil
}

func (mockDirectory) Create(_ context.Context, p domain.Patient) (*domain.Patient, error) {
	return &p, nil
}

func (mockDirectory) Update(_ context.Context, _ string, p domain.Patient) (*domain.Patient, error) {
	return &p, nil
}

func (d mockDirectory) Lookup(ctx context.Context, empNo string) (*domain.Patient, error) {
	return d.FindByEmpNo(ctx, empNo)
}

func newFormService(t *testing.T, store *mockStore) *services.FormService {
	t.Helper()
	svc, err := services.NewFormService(testSchemas(), services.FormDeps{
		Records: store, Patients: mockDirectory{},
	}, services.FormOptions{})
	require.NoError(t, err)
	return svc
}

func newMockForms() driving.FormService {
	svc, err := services.NewFormService(testSchemas(), services.FormDeps{}, services.FormOptions{})
	if err != nil {
		panic(err)
	}
	return svc
}

type mockRecords struct{ store *mockStore }

func (m *mockRecords) List(ctx context.Context, form string, opts domain.ListOptions) ([]domain.Record, error) {
	return m.store.List(ctx, form, opts)
}

func (m *mockRecords) Get(ctx context.Context, form, id string) (*domain.Record, error) {
	return m.store.Get(ctx, form, id)
}

func (m *mockRecords) Delete(ctx context.Context, form, id string) error {
	return m.store.Delete(ctx, form, id)
}

type mockSettings struct {
	settings domain.AppSettings
	set      map[string]string
	err      error
}

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettings) Set(key, value string) error {
	if m.err != nil {
		return m.err
	}
	if m.set == nil {
		m.set = make(map[string]string)
	}
	m.set[key] = value
	return nil
}

func (m *mockSettings) Validate(s *domain.AppSettings) error {
	if s.BaseURL == "" {
		return domain.ErrBaseURLUnset
	}
	return nil
}

func (m *mockSettings) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

type mockSession struct {
	session *domain.Session
	err     error
	logins  []string
}

func (m *mockSession) Login(token string) (*domain.Session, error) {
	m.logins = append(m.logins, token)
	m.session = &domain.Session{Token: token, Name: "Dr. Asha", Subject: "u1"}
	return m.session, nil
}

func (m *mockSession) Logout() error {
	m.session = nil
	return nil
}

func (m *mockSession) Current() (*domain.Session, error) {
	if m.err != nil {
		return m.session, m.err
	}
	if m.session == nil {
		return nil, domain.ErrAuthRequired
	}
	return m.session, nil
}

type mockSuggestions struct {
	names    []string
	category string
	query    string
}

func (m *mockSuggestions) Suggest(_ context.Context, category, query string) ([]string, error) {
	m.category, m.query = category, query
	return m.names, nil
}

func (m *mockSuggestions) NewResolver(context.Context, string) driving.SuggestionResolver {
	return nil
}

type mockDropdowns struct {
	options   []string
	refreshed []string
}

func (m *mockDropdowns) Options(context.Context, string) ([]string, error) { return m.options, nil }

func (m *mockDropdowns) Refresh(_ context.Context, category string) error {
	m.refreshed = append(m.refreshed, category)
	return nil
}

// withServices installs services for one test and resets command state after it.
func withServices(t *testing.T, s *Services) {
	t.Helper()
	SetServices(s)
	t.Cleanup(func() {
		SetServices(nil)
		formsJSON = false
		recordFile, recordID, recordSearch = "", "", ""
		recordSetPairs = nil
		recordLookup, recordJSON, recordYes = true, false, false
		recordLimit, recordPage = 20, 0
		suggestJSON, lookupJSON = false, false
		dropdownRefresh, dropdownJSON = false, false
	})
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, stdinText string, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetIn(bytes.NewBufferString(stdinText))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}
