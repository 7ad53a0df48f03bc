package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui/messages"
	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui/styles"
	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui/views/form"
	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui/views/forms"
	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui/views/menu"
	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui/views/records"
	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui/views/settings"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	menuView     *menu.View
	formsView    *forms.View
	formView     *form.View
	recordsView  *records.View
	settingsView *settings.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	app := &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		menuView:     menu.NewView(s),
		formsView:    forms.NewView(s, ports.Forms),
		formView:     form.NewView(s, ports.Suggestions, ports.Dropdowns),
		recordsView:  records.NewView(s, ports.Records),
		settingsView: settings.NewView(s, ports.Settings),
		currentView:  messages.ViewMenu,
	}

	if ports.Session != nil {
		if session, err := ports.Session.Current(); err == nil && session != nil {
			label := session.Name
			if label == "" {
				label = session.Subject
			}
			app.menuView.SetSession(label)
		}
	}

	return app, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.formView.WithContext(ctx)
	a.recordsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("HIS Forms"),
	)
}

// Update implements tea.Model.
//
//nolint:gocognit,gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.formView.Close()
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewMenu:
			a.menuView, cmd = a.menuView.Update(msg)
		case messages.ViewForms:
			a.formsView, cmd = a.formsView.Update(msg)
		case messages.ViewForm:
			a.formView, cmd = a.formView.Update(msg)
		case messages.ViewRecords:
			a.recordsView, cmd = a.recordsView.Update(msg)
		case messages.ViewSettings:
			a.settingsView, cmd = a.settingsView.Update(msg)
		case messages.ViewHelp:
			if msg.Type == tea.KeyEsc || msg.String() == "q" {
				a.currentView = messages.ViewMenu
			}
		}
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewForms:
			return a, a.formsView.Init()
		case messages.ViewSettings:
			a.settingsView.Reset()
			return a, a.settingsView.Init()
		case messages.ViewMenu, messages.ViewForm, messages.ViewRecords, messages.ViewHelp:
		}
		return a, nil

	case messages.FormSelected:
		forms := a.ports.Forms
		return a, func() tea.Msg {
			h, err := forms.Open(msg.Form, nil, "")
			return messages.FormOpened{Handle: h, Err: err}
		}

	case messages.RecordSelected:
		forms := a.ports.Forms
		return a, func() tea.Msg {
			h, err := forms.Open(msg.Form, msg.Record.Data, msg.Record.ID)
			return messages.FormOpened{Handle: h, Err: err}
		}

	case messages.FormOpened:
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		a.err = nil
		a.currentView = messages.ViewForm
		return a, a.formView.SetHandle(msg.Handle)

	case messages.RecordsRequested:
		a.currentView = messages.ViewRecords
		return a, a.recordsView.SetForm(msg.Form)

	case messages.RecordsLoaded, messages.RecordDeleted:
		a.recordsView, cmd = a.recordsView.Update(msg)
		return a, cmd

	case messages.SuggestionsChanged, messages.OptionsLoaded,
		messages.LookupCompleted, messages.SubmitCompleted:
		a.formView, cmd = a.formView.Update(msg)
		return a, cmd

	case messages.SettingsLoaded, messages.SettingsSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, nil

	case messages.Quit:
		a.formView.Close()
		return a, tea.Quit
	}

	return a, nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewForms:
		body = a.formsView.View()
	case messages.ViewForm:
		body = a.formView.View()
	case messages.ViewRecords:
		body = a.recordsView.View()
	case messages.ViewSettings:
		body = a.settingsView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.menuView.View()
	}

	if a.err != nil && a.currentView != messages.ViewForm {
		body += "\n\n" + a.styles.Error.Render("Error: "+a.err.Error())
	}
	return body
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Navigation:
  esc          Back
  ctrl+c       Quit

Forms:
  j/k, ↑/↓     Choose a form
  enter        New record
  r            Stored records

Form editor:
  tab, ↓       Next field
  shift+tab, ↑ Previous field
  space        Toggle checkbox
  enter        Pick suggestion / add row
  ctrl+d       Remove row or entry
  ctrl+l       Look up employee
  ctrl+r       Reload dropdown options
  ctrl+s       Submit

Records:
  enter        Edit record
  d            Delete record
  ctrl+r       Reload

[esc] back to menu`
}

// Run starts the TUI application.
func (a *App) Run() error {
	defer a.formView.Close()
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.formsView.SetDimensions(width, height)
	a.formView.SetDimensions(width, height)
	a.recordsView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
