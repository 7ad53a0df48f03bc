package driven

import (
	"context"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
)

// PatientDirectory reads and writes employee master data.
type PatientDirectory interface {
	// FindByEmpNo returns the patient for an employee number.
	// Returns domain.ErrNotFound when no patient matches.
	FindByEmpNo(ctx context.Context, empNo string) (*domain.Patient, error)

	// Create stores a new patient and returns it with its ID.
	Create(ctx context.Context, patient domain.Patient) (*domain.Patient, error)

	// Update replaces the patient with the given ID.
	Update(ctx context.Context, id string, patient domain.Patient) (*domain.Patient, error)
}
