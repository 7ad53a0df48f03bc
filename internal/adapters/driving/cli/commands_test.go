package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
)

func TestFormsList(t *testing.T) {
	withServices(t, &Services{Forms: newMockForms()})

	out, _, err := execute(t, "", "forms", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "grievance")
	assert.Contains(t, out, "/grievances")
}

func TestFormsShow(t *testing.T) {
	withServices(t, &Services{Forms: newMockForms()})

	out, _, err := execute(t, "", "forms", "show", "grievance")

	require.NoError(t, err)
	assert.Contains(t, out, "Grievance (grievance)")
	assert.Contains(t, out, "required")
	assert.Contains(t, out, "suggest:remark")
	assert.Contains(t, out, "List meds (entries)")
}

func TestFormsShow_Unknown(t *testing.T) {
	withServices(t, &Services{Forms: newMockForms()})

	_, _, err := execute(t, "", "forms", "show", "nope")

	assert.ErrorIs(t, err, domain.ErrUnknownForm)
}

func TestCommands_NotConfigured(t *testing.T) {
	withServices(t, &Services{})

	for _, args := range [][]string{
		{"forms", "list"},
		{"record", "list", "grievance"},
		{"suggest", "diagnosis", "fev"},
		{"lookup", "E1"},
		{"dropdown", "trLocation"},
		{"settings", "show"},
		{"auth", "status"},
	} {
		_, _, err := execute(t, "", args...)
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "not configured", args)
	}
}

func TestRecordNormalize(t *testing.T) {
	withServices(t, &Services{Forms: newMockForms()})

	out, _, err := execute(t, `{"empNo":"E1","meds":["Paracetamol",""]}`,
		"record", "normalize", "grievance", "--file", "-")

	require.NoError(t, err)
	assert.Contains(t, out, `"empNo": "E1"`)
	assert.Contains(t, out, "Paracetamol")
}

func TestRecordNormalize_ReportsMissing(t *testing.T) {
	withServices(t, &Services{Forms: newMockForms()})

	_, errOut, err := execute(t, "", "record", "normalize", "grievance", "--set", "remarks=late")

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, errOut, "missing: empNo")
}

func TestRecordNormalize_BadSet(t *testing.T) {
	withServices(t, &Services{Forms: newMockForms()})

	_, _, err := execute(t, "", "record", "normalize", "grievance", "--set", "novalue")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordNormalize_FromFile(t *testing.T) {
	withServices(t, &Services{Forms: newMockForms()})
	path := filepath.Join(t.TempDir(), "values.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"empNo":"E9"}`), 0o600))

	out, _, err := execute(t, "", "record", "normalize", "grievance", "-f", path)

	require.NoError(t, err)
	assert.Contains(t, out, "E9")
}

func TestRecordSubmit_CreatesWithLookup(t *testing.T) {
	store := &mockStore{}
	withServices(t, &Services{Forms: newFormService(t, store)})

	out, _, err := execute(t, "", "record", "submit", "grievance", "--set", "empNo=E1", "--set", "remarks=late pay")

	require.NoError(t, err)
	assert.Contains(t, out, "[INFO] Loaded employee Ravi Kumar")
	assert.Contains(t, out, "Created Grievance")
	assert.Contains(t, out, "Record id: new-1")
	require.Len(t, store.created, 1)
	assert.Equal(t, "Ravi Kumar", store.created[0]["employeeName"])
}

func TestRecordSubmit_UpdatesWithID(t *testing.T) {
	store := &mockStore{}
	withServices(t, &Services{Forms: newFormService(t, store)})

	out, _, err := execute(t, "", "record", "submit", "grievance", "--id", "r7", "--set", "empNo=E1")

	require.NoError(t, err)
	assert.Contains(t, out, "Updated Grievance")
	assert.Contains(t, store.updated, "r7")
	assert.Empty(t, store.created)
}

func TestRecordSubmit_BackendFailure(t *testing.T) {
	store := &mockStore{err: errors.New("503")}
	withServices(t, &Services{Forms: newFormService(t, store)})

	out, _, err := execute(t, "", "record", "submit", "grievance", "--set", "empNo=E2", "--lookup=false")

	require.Error(t, err)
	assert.Contains(t, out, "[ERROR] Failed to save Grievance")
}

func TestRecordList(t *testing.T) {
	store := &mockStore{records: []domain.Record{
		{ID: "r1", Data: map[string]any{"empNo": "E1", "employeeName": "Ravi Kumar"}},
	}}
	withServices(t, &Services{Records: &mockRecords{store: store}})

	out, _, err := execute(t, "", "record", "list", "grievance", "-n", "5", "--search", "ravi")

	require.NoError(t, err)
	assert.Contains(t, out, "r1")
	assert.Contains(t, out, "Ravi Kumar")
	assert.Equal(t, domain.ListOptions{Limit: 5, Search: "ravi"}, store.opts)
}

func TestRecordList_Empty(t *testing.T) {
	withServices(t, &Services{Records: &mockRecords{store: &mockStore{}}})

	out, _, err := execute(t, "", "record", "list", "grievance")

	require.NoError(t, err)
	assert.Contains(t, out, "No records found.")
}

func TestRecordGet(t *testing.T) {
	store := &mockStore{records: []domain.Record{{ID: "r1", Data: map[string]any{"remarks": "late"}}}}
	withServices(t, &Services{Records: &mockRecords{store: store}})

	out, _, err := execute(t, "", "record", "get", "grievance", "r1", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"remarks": "late"`)
}

func TestRecordDelete_Confirm(t *testing.T) {
	store := &mockStore{}
	withServices(t, &Services{Records: &mockRecords{store: store}})

	out, _, err := execute(t, "n\n", "record", "delete", "grievance", "r1")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")
	assert.Empty(t, store.deleted)

	out, _, err = execute(t, "y\n", "record", "delete", "grievance", "r1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted grievance record r1")
	assert.Equal(t, []string{"r1"}, store.deleted)
}

func TestSuggest(t *testing.T) {
	s := &mockSuggestions{names: []string{"Fever", "Fever, viral"}}
	withServices(t, &Services{Suggestions: s})

	out, _, err := execute(t, "", "suggest", "diagnosis", "fev", "vir")

	require.NoError(t, err)
	assert.Equal(t, "diagnosis", s.category)
	assert.Equal(t, "fev vir", s.query)
	assert.Contains(t, out, "Fever, viral")
}

func TestLookup(t *testing.T) {
	withServices(t, &Services{Patients: mockDirectory{}})

	out, _, err := execute(t, "", "lookup", "E1")
	require.NoError(t, err)
	assert.Contains(t, out, "Ravi Kumar")
	assert.Contains(t, out, "Camp A")

	out, _, err = execute(t, "", "lookup", "E404")
	require.NoError(t, err)
	assert.Contains(t, out, "No employee found for E404")
}

func TestDropdown_Refresh(t *testing.T) {
	d := &mockDropdowns{options: []string{"Camp A", "Camp B"}}
	withServices(t, &Services{Dropdowns: d})

	out, _, err := execute(t, "", "dropdown", "trLocation", "--refresh")

	require.NoError(t, err)
	assert.Equal(t, []string{"trLocation"}, d.refreshed)
	assert.Contains(t, out, "Camp B")
}

func TestAuthLogin_FromStdin(t *testing.T) {
	s := &mockSession{}
	withServices(t, &Services{Session: s})

	out, _, err := execute(t, "tok-abcdefghijklmnop\n", "auth", "login")

	require.NoError(t, err)
	assert.Equal(t, []string{"tok-abcdefghijklmnop"}, s.logins)
	assert.Contains(t, out, "Token stored.")
	assert.Contains(t, out, "tok-ab...mnop")
	assert.Contains(t, out, "Dr. Asha")
}

func TestAuthLogin_EmptyToken(t *testing.T) {
	withServices(t, &Services{Session: &mockSession{}})

	_, _, err := execute(t, "\n", "auth", "login")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAuthStatus(t *testing.T) {
	s := &mockSession{}
	withServices(t, &Services{Session: s})

	out, _, err := execute(t, "", "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")

	s.session = &domain.Session{Token: "expired-token-value"}
	s.err = domain.ErrAuthExpired
	out, _, err = execute(t, "", "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Session expired")
}

func TestAuthLogout(t *testing.T) {
	s := &mockSession{session: &domain.Session{Token: "x"}}
	withServices(t, &Services{Session: s})

	out, _, err := execute(t, "", "auth", "logout")

	require.NoError(t, err)
	assert.Contains(t, out, "Token removed.")
	assert.Nil(t, s.session)
}

func TestBootstrap_InstallsServices(t *testing.T) {
	withServices(t, &Services{})
	cleaned := false
	SetBootstrap(func(opts BootstrapOptions) (*Services, func(), error) {
		assert.Equal(t, "/tmp/hisforms-test", opts.ConfigDir)
		return &Services{Forms: newMockForms()}, func() { cleaned = true }, nil
	})
	defer SetBootstrap(nil)
	defer func() { configDir = "" }()

	out, _, err := execute(t, "", "--config-dir", "/tmp/hisforms-test", "forms")

	require.NoError(t, err)
	assert.Contains(t, out, "grievance")
	assert.True(t, cleaned)
}

func TestBootstrap_Error(t *testing.T) {
	withServices(t, &Services{})
	SetBootstrap(func(BootstrapOptions) (*Services, func(), error) {
		return nil, nil, errors.New("config broken")
	})
	defer SetBootstrap(nil)

	_, _, err := execute(t, "", "forms")

	assert.EqualError(t, err, "config broken")
}
