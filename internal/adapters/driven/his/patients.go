package his

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driven"
)

// Ensure Patients implements the patient port.
var _ driven.PatientDirectory = (*Patients)(nil)

const patientsPath = "/patients"

// Patients is the employee master data endpoint of a Client.
type Patients struct {
	c *Client
}

// Patients returns the patient directory backed by this client.
func (c *Client) Patients() *Patients {
	return &Patients{c: c}
}

// FindByEmpNo fetches the patient record of an employee.
// An empty body or a {success: false} envelope is treated as not found.
func (p *Patients) FindByEmpNo(ctx context.Context, empNo string) (*domain.Patient, error) {
	empNo = strings.TrimSpace(empNo)
	if empNo == "" {
		return nil, fmt.Errorf("%w: employee number is required", domain.ErrInvalidInput)
	}

	var patient domain.Patient
	err := p.c.do(ctx, "lookup employee "+empNo, http.MethodGet, resourcePath(patientsPath, "emp", empNo), nil, nil, &patient)
	if err != nil {
		return nil, err
	}
	if patient.ID == "" && patient.IsZero() {
		return nil, fmt.Errorf("lookup employee %s: %w", empNo, domain.ErrNotFound)
	}
	return &patient, nil
}

// Create stores a new patient.
func (p *Patients) Create(ctx context.Context, patient domain.Patient) (*domain.Patient, error) {
	patient.ID = ""
	var created domain.Patient
	if err := p.c.do(ctx, "create patient", http.MethodPost, patientsPath, nil, patient, &created); err != nil {
		return nil, err
	}
	return mergePatient(patient, created), nil
}

// Update replaces the patient with the given ID.
func (p *Patients) Update(ctx context.Context, id string, patient domain.Patient) (*domain.Patient, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: patient id is required", domain.ErrInvalidInput)
	}
	patient.ID = ""
	var updated domain.Patient
	if err := p.c.do(ctx, "update patient "+id, http.MethodPut, resourcePath(patientsPath, id), nil, patient, &updated); err != nil {
		return nil, err
	}
	if updated.ID == "" {
		updated.ID = id
	}
	return mergePatient(patient, updated), nil
}

// mergePatient fills fields the backend left out of its response from the
// values that were sent.
func mergePatient(sent, got domain.Patient) *domain.Patient {
	for _, attr := range []string{
		domain.PatientAttrEmpNo, domain.PatientAttrName, domain.PatientAttrEmiratesID,
		domain.PatientAttrInsuranceID, domain.PatientAttrTrLocation, domain.PatientAttrMobileNumber,
	} {
		if got.Attr(attr) == "" {
			got.SetAttr(attr, sent.Attr(attr))
		}
	}
	return &got
}
