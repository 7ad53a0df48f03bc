package tui

import (
	"context"
	"time"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driving"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/services"
)

func testSchemas() []domain.Schema {
	return []domain.Schema{
		{
			Name: "grievance", Title: "Grievance", Resource: "grievances",
			Fields: []domain.FieldDef{
				{Name: "empNo", Label: "Employee No", Kind: domain.FieldIdentifier, Required: true},
				{Name: "remarks", Label: "Remarks", Kind: domain.FieldText},
			},
		},
		{
			Name: "isolation", Title: "Isolation", Resource: "isolations",
			Fields: []domain.FieldDef{
				{Name: "empNo", Label: "Employee No", Kind: domain.FieldIdentifier, Required: true},
			},
		},
	}
}

// MockFormService opens real controllers over in-memory schemas.
type MockFormService struct {
	schemas []domain.Schema
	opened  []string
}

func (m *MockFormService) Forms() []domain.Schema { return m.schemas }

func (m *MockFormService) Schema(name string) (*domain.Schema, error) {
	for i := range m.schemas {
		if m.schemas[i].Name == name {
			return &m.schemas[i], nil
		}
	}
	return nil, domain.ErrUnknownForm
}

func (m *MockFormService) Open(name string, initial map[string]any, recordID string) (driving.FormHandle, error) {
	schema, err := m.Schema(name)
	if err != nil {
		return nil, err
	}
	m.opened = append(m.opened, name)
	c := services.NewFormController(schema, services.FormDeps{}, services.FormOptions{})
	c.Seed(initial, recordID)
	return c, nil
}

func (m *MockFormService) Normalize(string, *domain.FormState) (domain.Payload, error) {
	return domain.Payload{}, nil
}

// MockRecordService serves a fixed page of records.
type MockRecordService struct {
	records []domain.Record
	deleted []string
}

func (m *MockRecordService) List(context.Context, string, domain.ListOptions) ([]domain.Record, error) {
	return m.records, nil
}

func (m *MockRecordService) Get(_ context.Context, _, id string) (*domain.Record, error) {
	for i := range m.records {
		if m.records[i].ID == id {
			return &m.records[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockRecordService) Delete(_ context.Context, _, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

// MockSessionService reports a fixed session.
type MockSessionService struct {
	session *domain.Session
}

func (m *MockSessionService) Login(string) (*domain.Session, error) { return m.session, nil }

func (m *MockSessionService) Logout() error { return nil }

func (m *MockSessionService) Current() (*domain.Session, error) {
	if m.session == nil {
		return nil, domain.ErrAuthRequired
	}
	return m.session, nil
}

// MockSettingsService returns default settings.
type MockSettingsService struct{}

func (MockSettingsService) Get() (*domain.AppSettings, error) {
	s := domain.DefaultAppSettings()
	return &s, nil
}

func (MockSettingsService) Set(string, string) error { return nil }

func (MockSettingsService) Validate(*domain.AppSettings) error { return nil }

func (MockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func sampleRecords() []domain.Record {
	return []domain.Record{
		{
			ID: "r1", Form: "grievance", CreatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
			Data: map[string]any{"empNo": "E1", "employeeName": "Ravi Kumar", "remarks": "late pay"},
		},
		{ID: "r2", Form: "grievance", Data: map[string]any{"empNo": "E2"}},
	}
}
