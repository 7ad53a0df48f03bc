package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driven"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driving"
	"github.com/Tabrezhira/sobha-his-forms/internal/logger"
)

// Ensure FormController implements the interface.
var _ driving.FormHandle = (*FormController)(nil)

// FormDeps are the collaborators of a form session. Records and Patients
// may be nil when no backend is configured.
type FormDeps struct {
	Records    driven.RecordStore
	Patients   driven.PatientDirectory
	Normalizer *Normalizer
}

// FormOptions tunes a form session.
type FormOptions struct {
	// ResetOnSuccess clears the form after a successful submit.
	// Otherwise the values are kept and later submits update the record.
	ResetOnSuccess bool
}

// FormController owns the state of one form session.
type FormController struct {
	mu     sync.Mutex
	schema *domain.Schema
	deps   FormDeps
	opts   FormOptions

	state    *domain.FormState
	recordID string
	status   domain.SubmissionStatus

	lastLookup    string
	patientID     string
	patientSynced domain.Patient

	listeners []func()
}

// NewFormController creates a controller with an empty state.
func NewFormController(schema *domain.Schema, deps FormDeps, opts FormOptions) *FormController {
	if deps.Normalizer == nil {
		deps.Normalizer = NewNormalizer(NormalizerOptions{})
	}
	return &FormController{
		schema: schema,
		deps:   deps,
		opts:   opts,
		state:  domain.NewFormState(schema),
		status: domain.SubmissionIdle,
	}
}

// Seed replaces the state with initial data. A non-empty recordID makes
// Submit update that record.
func (c *FormController) Seed(initial map[string]any, recordID string) {
	c.mu.Lock()
	c.state = domain.FormStateFromMap(c.schema, initial)
	ApplyDerivations(c.schema, c.state)
	c.recordID = recordID
	c.status = domain.SubmissionIdle
	c.lastLookup = ""
	if c.schema.Lookup != nil {
		// A stored record already carries its employee fields.
		if recordID != "" {
			c.lastLookup = strings.TrimSpace(c.state.Values[c.schema.Lookup.Trigger])
		}
		c.patientSynced = c.patientFromState()
		if id, ok := initial["patientId"].(string); ok {
			c.patientID = id
		}
	}
	c.mu.Unlock()
	c.emit()
}

// Schema returns the form definition.
func (c *FormController) Schema() *domain.Schema {
	return c.schema
}

// State returns a copy of the current state.
func (c *FormController) State() *domain.FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// RecordID returns the record being edited.
func (c *FormController) RecordID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recordID
}

// Status returns the submission state.
func (c *FormController) Status() domain.SubmissionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// OnChange registers a callback run after every state change.
func (c *FormController) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *FormController) emit() {
	c.mu.Lock()
	listeners := append([]func(){}, c.listeners...)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// mutate runs fn under the lock, settles a finished submission back to
// idle and re-runs derivations.
func (c *FormController) mutate(fn func() error) error {
	c.mu.Lock()
	if err := fn(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.status != domain.SubmissionSubmitting {
		c.status = domain.SubmissionIdle
	}
	ApplyDerivations(c.schema, c.state)
	c.mu.Unlock()
	c.emit()
	return nil
}

// Set updates a text, number, date or identifier field.
func (c *FormController) Set(field, value string) error {
	def, ok := c.schema.Field(field)
	if !ok {
		return fmt.Errorf("%w: unknown field %s", domain.ErrInvalidInput, field)
	}
	if def.Kind == domain.FieldBool {
		return fmt.Errorf("%w: %s is a checkbox", domain.ErrInvalidInput, field)
	}
	if def.ReadOnly {
		return fmt.Errorf("%w: %s is read-only", domain.ErrInvalidInput, field)
	}
	return c.mutate(func() error {
		c.state.Values[field] = value
		return nil
	})
}

// SetFlag updates a checkbox field.
func (c *FormController) SetFlag(field string, value bool) error {
	def, ok := c.schema.Field(field)
	if !ok || def.Kind != domain.FieldBool {
		return fmt.Errorf("%w: %s is not a checkbox", domain.ErrInvalidInput, field)
	}
	return c.mutate(func() error {
		c.state.Flags[field] = value
		return nil
	})
}

// SetRowValue updates a column of the addressed row.
func (c *FormController) SetRowValue(path domain.RowPath, field, value string) error {
	def, err := listDefAt(c.schema, path)
	if err != nil {
		return err
	}
	if def.Scalar {
		return fmt.Errorf("%w: %s holds text entries", domain.ErrInvalidInput, def.Name)
	}
	if _, ok := def.Field(field); !ok {
		return fmt.Errorf("%w: list %s has no field %s", domain.ErrInvalidInput, def.Name, field)
	}
	return c.mutate(func() error {
		row, ok := c.state.Row(path)
		if !ok {
			return fmt.Errorf("%w: no row at %s", domain.ErrInvalidInput, path)
		}
		row.Values[field] = value
		return nil
	})
}

// AddRow appends an empty row to a list under parent.
func (c *FormController) AddRow(parent domain.RowPath, list string) (domain.RowPath, error) {
	def, err := listDefAt(c.schema, parent.Child(list, 0))
	if err != nil {
		return nil, err
	}
	if def.Scalar {
		return nil, fmt.Errorf("%w: %s holds text entries", domain.ErrInvalidInput, list)
	}
	var path domain.RowPath
	err = c.mutate(func() error {
		if len(parent) > 0 {
			if _, ok := c.state.Row(parent); !ok {
				return fmt.Errorf("%w: no row at %s", domain.ErrInvalidInput, parent)
			}
		}
		rows := append(c.state.Rows(parent, list), domain.NewRow(def))
		c.state.SetRows(parent, list, rows)
		path = parent.Child(list, len(rows)-1)
		return nil
	})
	return path, err
}

// RemoveRow removes the addressed row. A list that keeps a placeholder
// gets a fresh empty row when its last row is removed.
func (c *FormController) RemoveRow(path domain.RowPath) error {
	if len(path) == 0 {
		return fmt.Errorf("%w: empty row path", domain.ErrInvalidInput)
	}
	def, err := listDefAt(c.schema, path)
	if err != nil {
		return err
	}
	last := path[len(path)-1]
	parent := path.Parent()
	return c.mutate(func() error {
		rows := c.state.Rows(parent, last.List)
		if last.Index < 0 || last.Index >= len(rows) {
			return fmt.Errorf("%w: no row at %s", domain.ErrInvalidInput, path)
		}
		kept := make([]domain.Row, 0, len(rows))
		kept = append(kept, rows[:last.Index]...)
		kept = append(kept, rows[last.Index+1:]...)
		if len(kept) == 0 && def.KeepOne {
			kept = append(kept, domain.NewRow(def))
		}
		c.state.SetRows(parent, last.List, kept)
		return nil
	})
}

// SetText updates an entry of a scalar list.
func (c *FormController) SetText(list string, index int, value string) error {
	if _, err := c.scalarList(list); err != nil {
		return err
	}
	return c.mutate(func() error {
		texts := c.state.Texts[list]
		if index < 0 || index >= len(texts) {
			return fmt.Errorf("%w: %s has no entry %d", domain.ErrInvalidInput, list, index)
		}
		texts[index] = value
		return nil
	})
}

// AddText appends an empty entry to a scalar list.
func (c *FormController) AddText(list string) (int, error) {
	if _, err := c.scalarList(list); err != nil {
		return 0, err
	}
	var index int
	err := c.mutate(func() error {
		c.state.Texts[list] = append(c.state.Texts[list], "")
		index = len(c.state.Texts[list]) - 1
		return nil
	})
	return index, err
}

// RemoveText removes an entry of a scalar list.
func (c *FormController) RemoveText(list string, index int) error {
	def, err := c.scalarList(list)
	if err != nil {
		return err
	}
	return c.mutate(func() error {
		texts := c.state.Texts[list]
		if index < 0 || index >= len(texts) {
			return fmt.Errorf("%w: %s has no entry %d", domain.ErrInvalidInput, list, index)
		}
		kept := make([]string, 0, len(texts))
		kept = append(kept, texts[:index]...)
		kept = append(kept, texts[index+1:]...)
		if len(kept) == 0 && def.KeepOne {
			kept = append(kept, "")
		}
		c.state.Texts[list] = kept
		return nil
	})
}

func (c *FormController) scalarList(list string) (domain.ListDef, error) {
	def, ok := c.schema.List(list)
	if !ok || !def.Scalar {
		return domain.ListDef{}, fmt.Errorf("%w: %s is not a text list", domain.ErrInvalidInput, list)
	}
	return def, nil
}

// Snapshot returns the normalised payload of the current state.
func (c *FormController) Snapshot() domain.Payload {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deps.Normalizer.Normalize(c.schema, c.state)
}

// Validate returns a *domain.ValidationError when the state cannot be submitted.
func (c *FormController) Validate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deps.Normalizer.Validate(c.schema, c.state)
}

// CanSubmit reports whether every required field holds a value.
func (c *FormController) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CanSubmit(c.schema, c.state)
}

// LookupEmployee fills the mapped fields from the employee directory.
// Each distinct trimmed employee number is looked up once.
func (c *FormController) LookupEmployee(ctx context.Context) (*domain.Notice, error) {
	lookup := c.schema.Lookup
	if lookup == nil {
		return nil, nil
	}

	c.mu.Lock()
	empNo := strings.TrimSpace(c.state.Values[lookup.Trigger])
	if empNo == "" || empNo == c.lastLookup {
		c.mu.Unlock()
		return nil, nil
	}
	if c.deps.Patients == nil {
		c.mu.Unlock()
		return nil, domain.ErrBaseURLUnset
	}
	c.lastLookup = empNo
	c.mu.Unlock()

	logger.Debug("lookup employee %q", empNo)
	patient, err := c.deps.Patients.FindByEmpNo(ctx, empNo)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.Notice{Level: domain.NoticeInfo, Message: "No employee found for " + empNo}, nil
	}
	if err != nil {
		c.mu.Lock()
		if c.lastLookup == empNo {
			c.lastLookup = ""
		}
		c.mu.Unlock()
		return nil, fmt.Errorf("lookup employee %s: %w", empNo, err)
	}

	c.mu.Lock()
	if strings.TrimSpace(c.state.Values[lookup.Trigger]) != empNo {
		// The number changed while the request was in flight.
		c.mu.Unlock()
		return nil, nil
	}
	for attr, field := range lookup.Fields {
		c.state.Values[field] = patient.Attr(attr)
	}
	ApplyDerivations(c.schema, c.state)
	c.patientID = patient.ID
	c.patientSynced = c.patientFromState()
	c.mu.Unlock()
	c.emit()

	name := patient.PatientName
	if name == "" {
		name = empNo
	}
	return &domain.Notice{Level: domain.NoticeInfo, Message: "Loaded employee " + name}, nil
}

// patientFromState collects patient attributes from the form. Caller holds mu.
func (c *FormController) patientFromState() domain.Patient {
	var p domain.Patient
	lookup := c.schema.Lookup
	if lookup == nil {
		return p
	}
	p.EmpNo = c.writeValue(lookup.Trigger)
	for attr, field := range lookup.Fields {
		p.SetAttr(attr, c.writeValue(field))
	}
	return p
}

// writeValue returns a trimmed field value, upper-cased for identifiers.
// Caller holds mu.
func (c *FormController) writeValue(field string) string {
	v := strings.TrimSpace(c.state.Values[field])
	if def, ok := c.schema.Field(field); ok && def.Kind == domain.FieldIdentifier {
		v = upperIdentifier(v)
	}
	return v
}

// Submit creates or updates the record. Only one submission runs at a
// time; validation failures return before any request.
func (c *FormController) Submit(ctx context.Context) (*domain.SubmissionResult, error) {
	c.mu.Lock()
	if c.status == domain.SubmissionSubmitting {
		c.mu.Unlock()
		return nil, domain.ErrSubmissionInProgress
	}
	if err := c.deps.Normalizer.Validate(c.schema, c.state); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if c.deps.Records == nil {
		c.mu.Unlock()
		return nil, domain.ErrBaseURLUnset
	}

	c.status = domain.SubmissionSubmitting
	payload := c.deps.Normalizer.Normalize(c.schema, c.state)
	recordID := c.recordID
	patient := c.patientFromState()
	patientID := c.patientID
	patientSynced := c.patientSynced
	c.mu.Unlock()
	c.emit()

	logger.Section("Submit " + c.schema.Name)
	result := &domain.SubmissionResult{Created: recordID == ""}

	if c.schema.SyncPatient && c.deps.Patients != nil {
		notice, synced := c.syncPatient(ctx, patient, patientID, patientSynced)
		if notice != nil {
			result.Notices = append(result.Notices, *notice)
		}
		if synced != nil {
			c.mu.Lock()
			c.patientID = synced.ID
			c.patientSynced = patient
			c.mu.Unlock()
		}
	}

	var (
		record *domain.Record
		err    error
	)
	if recordID == "" {
		logger.Debug("create %s", c.schema.Resource)
		record, err = c.deps.Records.Create(ctx, c.schema.Resource, payload)
	} else {
		logger.Debug("update %s/%s", c.schema.Resource, recordID)
		record, err = c.deps.Records.Update(ctx, c.schema.Resource, recordID, payload)
	}

	c.mu.Lock()
	if err != nil {
		c.status = domain.SubmissionFailure
		c.mu.Unlock()
		c.emit()
		c.settle()
		result.Notices = append(result.Notices, domain.Notice{
			Level:   domain.NoticeError,
			Message: fmt.Sprintf("Failed to save %s", c.schema.DisplayTitle()),
		})
		return result, fmt.Errorf("submit %s: %w", c.schema.Name, err)
	}

	c.status = domain.SubmissionSuccess
	if record != nil {
		record.Form = c.schema.Name
	}
	result.Record = record
	if c.opts.ResetOnSuccess {
		c.state = domain.NewFormState(c.schema)
		c.recordID = ""
		c.lastLookup = ""
		c.patientID = ""
		c.patientSynced = domain.Patient{}
	} else if record != nil && record.ID != "" {
		c.recordID = record.ID
	}
	c.mu.Unlock()
	c.emit()
	c.settle()

	verb := "Updated"
	if result.Created {
		verb = "Created"
	}
	result.Notices = append(result.Notices, domain.Notice{
		Level:   domain.NoticeInfo,
		Message: fmt.Sprintf("%s %s", verb, c.schema.DisplayTitle()),
	})
	return result, nil
}

// settle returns to idle once listeners have seen the submit outcome.
func (c *FormController) settle() {
	c.mu.Lock()
	c.status = domain.SubmissionIdle
	c.mu.Unlock()
	c.emit()
}

// syncPatient writes patient master data when it changed since the last
// sync. Failures are reported as a warning and never fail the submit.
func (c *FormController) syncPatient(
	ctx context.Context, patient domain.Patient, id string, synced domain.Patient,
) (*domain.Notice, *domain.Patient) {
	if patient.EmpNo == "" {
		return nil, nil
	}
	if id != "" && !patient.Differs(synced) {
		logger.Debug("patient %s unchanged, skipping sync", patient.EmpNo)
		return nil, nil
	}

	var (
		saved *domain.Patient
		err   error
	)
	if id == "" {
		saved, err = c.deps.Patients.Create(ctx, patient)
	} else {
		saved, err = c.deps.Patients.Update(ctx, id, patient)
	}
	if err != nil {
		logger.Warn("patient sync failed: %v", err)
		return &domain.Notice{
			Level:   domain.NoticeWarn,
			Message: fmt.Sprintf("Patient details for %s were not saved: %v", patient.EmpNo, err),
		}, nil
	}
	if saved == nil {
		saved = &patient
	}
	if saved.ID == "" {
		saved.ID = id
	}
	return nil, saved
}

// listDefAt resolves the list definition of the last element of path.
func listDefAt(schema *domain.Schema, path domain.RowPath) (domain.ListDef, error) {
	if len(path) == 0 {
		return domain.ListDef{}, fmt.Errorf("%w: empty row path", domain.ErrInvalidInput)
	}
	def, ok := schema.List(path[0].List)
	if !ok {
		return domain.ListDef{}, fmt.Errorf("%w: unknown list %s", domain.ErrInvalidInput, path[0].List)
	}
	for _, ref := range path[1:] {
		def, ok = def.Child(ref.List)
		if !ok {
			return domain.ListDef{}, fmt.Errorf("%w: unknown list %s", domain.ErrInvalidInput, ref.List)
		}
	}
	return def, nil
}
