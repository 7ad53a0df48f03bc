package mcp

import (
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
			Name: "isolation", Title: "Isolation", Resource: "isolations",
			Fields: []domain.FieldDef{
				{Name: "empNo", Label: "Employee No", Kind: domain.FieldIdentifier, Required: true},
				{Name: "employeeName", Label: "Employee Name", Kind: domain.FieldText, ReadOnly: true},
				{Name: "temperature", Label: "Temperature", Kind: domain.FieldNumber},
			},
			Lookup: &domain.LookupDef{Trigger: "empNo", Fields: map[string]string{"PatientName": "employeeName"}},
		},
	}
}

type mockStore struct {
	created []domain.Payload
	records []domain.Record
	opts    domain.ListOptions
	err     error
}

func (m *mockStore) Create(_ context.Context, _ string, p domain.Payload) (*domain.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = append(m.created, p)
	return &domain.Record{ID: "rec-1", Data: p}, nil
}

func (m *mockStore) Update(_ context.Context, _, id string, p domain.Payload) (*domain.Record, error) {
	return &domain.Record{ID: id, Data: p}, nil
}

func (m *mockStore) Get(context.Context, string, string) (*domain.Record, error) {
	return nil, domain.ErrNotFound
}

func (m *mockStore) List(_ context.Context, _ string, opts domain.ListOptions) ([]domain.Record, error) {
	m.opts = opts
	return m.records, m.err
}

func (m *mockStore) Delete(context.Context, string, string) error { return nil }

type mockPatients struct{}

func (mockPatients) FindByEmpNo(_ context.Context, empNo string) (*domain.Patient, error) {
	if empNo != "E1" {
		return nil, domain.ErrNotFound
	}
	return &domain.Patient{ID: "p1", EmpNo: "E1", PatientName: "Ravi Kumar"}, nil
}

func (mockPatients) Create(_ context.Context, p domain.Patient) (*domain.Patient, error) { return &p, nil }

func (mockPatients) Update(_ context.Context, _ string, p domain.Patient) (*domain.Patient, error) {
	return &p, nil
}

func (m mockPatients) Lookup(ctx context.Context, empNo string) (*domain.Patient, error) {
	return m.FindByEmpNo(ctx, empNo)
}

type mockSuggestions struct {
	names []string
	err   error
}

func (m *mockSuggestions) Suggest(context.Context, string, string) ([]string, error) {
	return m.names, m.err
}

func (m *mockSuggestions) NewResolver(context.Context, string) driving.SuggestionResolver { return nil }

type mockRecords struct{ store *mockStore }

func (m mockRecords) List(ctx context.Context, form string, opts domain.ListOptions) ([]domain.Record, error) {
	return m.store.List(ctx, form, opts)
}

func (m mockRecords) Get(ctx context.Context, form, id string) (*domain.Record, error) {
	return m.store.Get(ctx, form, id)
}

func (m mockRecords) Delete(ctx context.Context, form, id string) error {
	return m.store.Delete(ctx, form, id)
}

func newTestServer(t *testing.T, store *mockStore) *Server {
	t.Helper()
	forms, err := services.NewFormService(testSchemas(), services.FormDeps{
		Records: store, Patients: mockPatients{},
	}, services.FormOptions{})
	require.NoError(t, err)

	server, err := NewServer(&Ports{
		Forms:       forms,
		Suggestions: &mockSuggestions{names: []string{"Fever"}},
		Patients:    mockPatients{},
		Records:     mockRecords{store: store},
	})
	require.NoError(t, err)
	return server
}
