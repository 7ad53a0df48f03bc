package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Is(t *testing.T) {
	err := fmt.Errorf("submit: %w", &ValidationError{Missing: []string{"empNo"}})

	assert.True(t, errors.Is(err, ErrValidation))

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"empNo"}, verr.Missing)
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{
		Missing: []string{"empNo", "visitDate"},
		Invalid: map[string]string{"dateTo": "is before dateFrom", "age": "is not a number"},
	}

	assert.Equal(t,
		"validation failed: missing required fields: empNo, visitDate; invalid fields: age is not a number; dateTo is before dateFrom",
		err.Error())
	assert.False(t, err.Empty())
	assert.True(t, (&ValidationError{}).Empty())
}

func TestStatusError(t *testing.T) {
	err := &StatusError{Op: "create grievance", StatusCode: 500}
	assert.Equal(t, "create grievance: unexpected status 500", err.Error())

	err.Body = "boom"
	assert.Equal(t, "create grievance: unexpected status 500: boom", err.Error())
}

func TestPatient_Differs(t *testing.T) {
	a := Patient{ID: "1", EmpNo: "E1", PatientName: "Ali"}
	b := Patient{ID: "2", EmpNo: "E1 ", PatientName: "Ali"}

	assert.False(t, a.Differs(b), "id and surrounding whitespace are not tracked")

	b.MobileNumber = "0500000000"
	assert.True(t, a.Differs(b))
	assert.True(t, Patient{}.IsZero())
}

func TestSuggestionState_ShowMenu(t *testing.T) {
	assert.False(t, SuggestionState{Candidates: []string{"a"}}.ShowMenu())
	assert.True(t, SuggestionState{Open: true, Loading: true}.ShowMenu())
	assert.True(t, SuggestionState{Open: true, Candidates: []string{"a"}}.ShowMenu())
	assert.False(t, SuggestionState{Open: true}.ShowMenu())
}

func TestSuggestionEnvelope_Names(t *testing.T) {
	env := SuggestionEnvelope{Data: []SuggestionItem{{Name: "Nurse"}, {Name: ""}, {Name: "Doctor"}}}
	assert.Equal(t, []string{"Nurse", "Doctor"}, env.Names())
}
