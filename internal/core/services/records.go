package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driven"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driving"
)

// Ensure the services implement their interfaces.
var (
	_ driving.RecordService  = (*RecordService)(nil)
	_ driving.PatientService = (*PatientService)(nil)
)

// RecordService manages stored records of the registered forms.
type RecordService struct {
	forms driving.FormService
	store driven.RecordStore
}

// NewRecordService creates a new record service. A nil store disables
// every operation with domain.ErrBaseURLUnset.
func NewRecordService(forms driving.FormService, store driven.RecordStore) *RecordService {
	return &RecordService{forms: forms, store: store}
}

func (s *RecordService) resource(form string) (string, error) {
	if s.store == nil {
		return "", domain.ErrBaseURLUnset
	}
	schema, err := s.forms.Schema(form)
	if err != nil {
		return "", err
	}
	return schema.Resource, nil
}

// List returns records of a form.
func (s *RecordService) List(ctx context.Context, form string, opts domain.ListOptions) ([]domain.Record, error) {
	resource, err := s.resource(form)
	if err != nil {
		return nil, err
	}
	records, err := s.store.List(ctx, resource, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", form, err)
	}
	for i := range records {
		records[i].Form = form
	}
	return records, nil
}

// Get returns a single record.
func (s *RecordService) Get(ctx context.Context, form, id string) (*domain.Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: record id is required", domain.ErrInvalidInput)
	}
	resource, err := s.resource(form)
	if err != nil {
		return nil, err
	}
	record, err := s.store.Get(ctx, resource, id)
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", form, id, err)
	}
	record.Form = form
	return record, nil
}

// Delete removes a record.
func (s *RecordService) Delete(ctx context.Context, form, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: record id is required", domain.ErrInvalidInput)
	}
	resource, err := s.resource(form)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, resource, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", form, id, err)
	}
	return nil
}

// PatientService looks up employee master data.
type PatientService struct {
	directory driven.PatientDirectory
}

// NewPatientService creates a new patient service.
func NewPatientService(directory driven.PatientDirectory) *PatientService {
	return &PatientService{directory: directory}
}

// Lookup returns the patient for an employee number.
func (s *PatientService) Lookup(ctx context.Context, empNo string) (*domain.Patient, error) {
	empNo = strings.TrimSpace(empNo)
	if empNo == "" {
		return nil, fmt.Errorf("%w: employee number is required", domain.ErrInvalidInput)
	}
	if s.directory == nil {
		return nil, domain.ErrBaseURLUnset
	}
	return s.directory.FindByEmpNo(ctx, empNo)
}
