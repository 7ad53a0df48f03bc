package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui/messages"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
)

func newTestPorts() *Ports {
	return &Ports{
		Forms:    &MockFormService{schemas: testSchemas()},
		Records:  &MockRecordService{records: sampleRecords()},
		Settings: MockSettingsService{},
		Session:  &MockSessionService{},
	}
}

func newTestApp(t *testing.T, ports *Ports) *App {
	t.Helper()
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(100, 40)
	return app
}

// run executes cmd and feeds its message back into the app.
func run(app *App, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	_, next := app.Update(cmd())
	return next
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(newTestPorts())

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.False(t, app.Ready())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	tests := []struct {
		name  string
		ports *Ports
		want  error
	}{
		{"nil ports", nil, ErrInvalidPorts},
		{"missing forms", &Ports{Records: &MockRecordService{}}, ErrMissingFormService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := NewApp(tt.ports)

			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, app)
		})
	}
}

func TestNewApp_ShowsSession(t *testing.T) {
	ports := newTestPorts()
	ports.Session = &MockSessionService{session: &domain.Session{Subject: "u1", Name: "Dr. Asha"}}

	app := newTestApp(t, ports)

	assert.Contains(t, app.View(), "Dr. Asha")
}

func TestApp_WithContext(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Same(t, app, app.WithContext(ctx))
}

func TestApp_Init(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	assert.NotNil(t, app.Init())
}

func TestApp_WindowSize(t *testing.T) {
	app, _ := NewApp(newTestPorts())
	assert.Equal(t, "Initialising...", app.View())

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.Nil(t, cmd)
	assert.True(t, model.(*App).Ready())
	assert.Contains(t, app.View(), "HIS Forms")
}

func TestApp_MenuNavigatesToForms(t *testing.T) {
	app := newTestApp(t, newTestPorts())

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	run(app, cmd)

	assert.Equal(t, messages.ViewForms, app.CurrentView())
	assert.Contains(t, app.View(), "Grievance")
	assert.Contains(t, app.View(), "Isolation")
}

func TestApp_FormSelectedOpensEditor(t *testing.T) {
	ports := newTestPorts()
	app := newTestApp(t, ports)

	_, cmd := app.Update(messages.FormSelected{Form: "grievance"})
	require.NotNil(t, cmd)
	opened, ok := cmd().(messages.FormOpened)
	require.True(t, ok)
	require.NoError(t, opened.Err)

	app.Update(opened)

	assert.Equal(t, messages.ViewForm, app.CurrentView())
	assert.Equal(t, []string{"grievance"}, ports.Forms.(*MockFormService).opened)
	assert.Contains(t, app.View(), "Employee No")
}

func TestApp_FormOpenFailureStays(t *testing.T) {
	app := newTestApp(t, newTestPorts())
	app.Update(messages.ViewChanged{View: messages.ViewForms})

	_, cmd := app.Update(messages.FormSelected{Form: "nope"})
	run(app, cmd)

	assert.Equal(t, messages.ViewForms, app.CurrentView())
	assert.ErrorIs(t, app.Err(), domain.ErrUnknownForm)
	assert.Contains(t, app.View(), "Error:")
}

func TestApp_RecordsRequestedLoadsList(t *testing.T) {
	app := newTestApp(t, newTestPorts())

	_, cmd := app.Update(messages.RecordsRequested{Form: "grievance"})
	require.NotNil(t, cmd)
	run(app, cmd)

	assert.Equal(t, messages.ViewRecords, app.CurrentView())
	assert.Equal(t, 2, app.recordsView.Count())
	assert.Contains(t, app.View(), "Ravi Kumar")
}

func TestApp_RecordSelectedOpensWithID(t *testing.T) {
	app := newTestApp(t, newTestPorts())
	rec := sampleRecords()[0]

	_, cmd := app.Update(messages.RecordSelected{Form: "grievance", Record: rec})
	opened, ok := cmd().(messages.FormOpened)
	require.True(t, ok)
	require.NoError(t, opened.Err)

	assert.Equal(t, "r1", opened.Handle.RecordID())
	assert.Equal(t, "late pay", opened.Handle.State().Values["remarks"])

	app.Update(opened)
	assert.Equal(t, messages.ViewForm, app.CurrentView())
}

func TestApp_HelpView(t *testing.T) {
	app := newTestApp(t, newTestPorts())

	app.Update(messages.ViewChanged{View: messages.ViewHelp})
	assert.Contains(t, app.View(), "Form editor")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_SettingsView(t *testing.T) {
	app := newTestApp(t, newTestPorts())

	_, cmd := app.Update(messages.ViewChanged{View: messages.ViewSettings})
	run(app, cmd)

	assert.Equal(t, messages.ViewSettings, app.CurrentView())
	assert.Contains(t, app.View(), "Backend URL")
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newTestApp(t, newTestPorts())

	app.Update(messages.ErrorOccurred{Err: errors.New("backend down")})

	assert.EqualError(t, app.Err(), "backend down")
	assert.Contains(t, app.View(), "backend down")
}

func TestApp_Quit(t *testing.T) {
	app := newTestApp(t, newTestPorts())

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = app.Update(messages.Quit{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
