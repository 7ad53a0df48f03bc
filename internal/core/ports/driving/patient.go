package driving

import (
	"context"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
)

// PatientService looks up employee master data.
type PatientService interface {
	// Lookup returns the patient for an employee number.
	Lookup(ctx context.Context, empNo string) (*domain.Patient, error)
}
