// Package settings provides the settings editor view for the TUI.
package settings

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui/messages"
	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui/styles"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driving"
)

// Entry is one editable setting.
type Entry struct {
	Key   string
	Label string
	value func(*domain.AppSettings) string
}

// Value renders the current value of the entry.
func (e Entry) Value(s *domain.AppSettings) string {
	if s == nil {
		return ""
	}
	return e.value(s)
}

func millis(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10)
}

// Entries lists the settings shown by the view, in display order.
func Entries() []Entry {
	return []Entry{
		{domain.KeyBaseURL, "Backend URL", func(s *domain.AppSettings) string { return s.BaseURL }},
		{domain.KeyRequestTimeout, "Request timeout (s)", func(s *domain.AppSettings) string {
			return strconv.Itoa(int(s.RequestTimeout.Seconds()))
		}},
		{domain.KeyRateLimit, "Requests per second", func(s *domain.AppSettings) string {
			return strconv.FormatFloat(s.RateLimit, 'f', -1, 64)
		}},
		{domain.KeySuggestDebounce, "Suggestion debounce (ms)", func(s *domain.AppSettings) string {
			return millis(s.SuggestDebounce)
		}},
		{domain.KeyBlurGrace, "Blur grace (ms)", func(s *domain.AppSettings) string { return millis(s.BlurGrace) }},
		{domain.KeySuggestLimit, "Suggestions shown", func(s *domain.AppSettings) string {
			return strconv.Itoa(s.SuggestLimit)
		}},
		{domain.KeyPreserveZero, "Send zero values", func(s *domain.AppSettings) string {
			return strconv.FormatBool(s.PreserveZero)
		}},
		{domain.KeySchemaDir, "Form directory", func(s *domain.AppSettings) string { return s.SchemaDir }},
		{domain.KeyCacheBackend, "Cache backend", func(s *domain.AppSettings) string { return string(s.CacheBackend) }},
		{domain.KeyCacheTTL, "Cache lifetime (min)", func(s *domain.AppSettings) string {
			return strconv.Itoa(int(s.CacheTTL.Minutes()))
		}},
		{domain.KeyRedisAddr, "Redis address", func(s *domain.AppSettings) string { return s.RedisAddr }},
	}
}

// View is the settings editor view.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	entries  []Entry
	settings *domain.AppSettings
	err      error
	saved    string

	selected int
	editing  bool
	input    textinput.Model

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = 256

	return &View{
		styles:          s,
		settingsService: settingsService,
		entries:         Entries(),
		input:           input,
	}
}

// Init loads the current settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

func (v *View) loadSettings() tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsLoaded{Err: fmt.Errorf("settings service not available")}
		}
		settings, err := v.settingsService.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

func (v *View) save(key, value string) tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsSaved{Key: key, Err: fmt.Errorf("settings service not available")}
		}
		return messages.SettingsSaved{Key: key, Err: v.settingsService.Set(key, value)}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		v.err = msg.Err
		if msg.Err == nil {
			v.settings = msg.Settings
		}
		return v, nil

	case messages.SettingsSaved:
		v.err = msg.Err
		if msg.Err != nil {
			return v, nil
		}
		v.saved = msg.Key
		return v, v.loadSettings()

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKeys(msg)
		}
		return v.handleKeys(msg)
	}

	return v, nil
}

func (v *View) handleKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.entries)-1 {
			v.selected++
		}
	case "enter":
		v.editing = true
		v.saved = ""
		v.input.SetValue(v.entries[v.selected].Value(v.settings))
		v.input.CursorEnd()
		return v, v.input.Focus()
	}
	return v, nil
}

func (v *View) handleEditKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.editing = false
		v.input.Blur()
		return v, nil
	case "enter":
		v.editing = false
		v.input.Blur()
		return v, v.save(v.entries[v.selected].Key, v.input.Value())
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// View renders the settings editor.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	for i, e := range v.entries {
		label := v.styles.Label.Render(e.Label)
		value := v.styles.Normal.Render(e.Value(v.settings))
		if i == v.selected {
			label = v.styles.Focused.Render(e.Label)
			if v.editing {
				value = v.input.View()
			}
		}
		b.WriteString(label + " " + value + "\n")
	}

	b.WriteString("\n")
	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.saved != "":
		b.WriteString(v.styles.Success.Render("Saved " + v.saved))
	}
	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Edit/Save  [Esc] Back"))

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.Width = width - 30
}

// Reset clears transient state before the view is shown again.
func (v *View) Reset() {
	v.selected = 0
	v.editing = false
	v.saved = ""
	v.err = nil
	v.input.Blur()
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Editing reports whether a value is being edited.
func (v *View) Editing() bool {
	return v.editing
}
