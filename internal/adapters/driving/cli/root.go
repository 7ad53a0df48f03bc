package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driving"
	"github.com/Tabrezhira/sobha-his-forms/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	verbose   bool
	jsonLogs  bool
	configDir string
	envFile   string
)

// SchemaExporter writes the built-in form definitions to a directory.
type SchemaExporter interface {
	Export(dir string) ([]string, error)
	Dir() string
}

// Services holds the ports every command talks to. Nil members disable the
// commands that need them.
type Services struct {
	Forms       driving.FormService
	Suggestions driving.SuggestionService
	Records     driving.RecordService
	Patients    driving.PatientService
	Dropdowns   driving.DropdownService
	Session     driving.SessionService
	Settings    driving.SettingsService
	Schemas     SchemaExporter

	// Watch blocks until the context ends, reloading config on change.
	// The TUI runs it in the background.
	Watch func(ctx context.Context) error
}

// BootstrapFunc builds the services once flags are parsed.
// The returned cleanup runs after the command finishes.
type BootstrapFunc func(opts BootstrapOptions) (*Services, func(), error)

// BootstrapOptions carries the global flags a bootstrap needs.
type BootstrapOptions struct {
	ConfigDir string
}

var (
	formService       driving.FormService
	suggestionService driving.SuggestionService
	recordService     driving.RecordService
	patientService    driving.PatientService
	dropdownService   driving.DropdownService
	sessionService    driving.SessionService
	settingsService   driving.SettingsService
	schemaExporter    SchemaExporter
	configWatch       func(ctx context.Context) error

	bootstrap BootstrapFunc
	cleanup   func()
)

var rootCmd = &cobra.Command{
	Use:   "hisforms",
	Short: "Terminal client for the HIS portal forms",
	Long: `hisforms fills and submits HIS portal forms from the terminal.

It covers clinic visits, isolation, hospital admission, case resolution
tracking and grievances. Forms are defined in TOML and can be extended
with files in ~/.hisforms/forms.

Run 'hisforms tui' for the interactive interface.`,
	SilenceUsage:       true,
	PersistentPreRunE:  preRun,
	PersistentPostRunE: postRun,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "log-json", false, "write logs as JSON")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.hisforms)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load when present")
}

// SetServices installs the services used by the commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	formService = s.Forms
	suggestionService = s.Suggestions
	recordService = s.Records
	patientService = s.Patients
	dropdownService = s.Dropdowns
	sessionService = s.Session
	settingsService = s.Settings
	schemaExporter = s.Schemas
	configWatch = s.Watch
}

// SetBootstrap installs the function that builds services after flag parsing.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func preRun(cmd *cobra.Command, _ []string) error {
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetJSON(jsonLogs)
	logger.SetVerbose(verbose)

	if err := loadEnvFile(envFile); err != nil {
		return err
	}

	if bootstrap == nil || skipBootstrap(cmd) {
		return nil
	}
	services, done, err := bootstrap(BootstrapOptions{ConfigDir: configDir})
	if err != nil {
		return err
	}
	SetServices(services)
	cleanup = done
	return nil
}

func postRun(_ *cobra.Command, _ []string) error {
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
	return nil
}

// skipBootstrap is true for commands that need no services.
func skipBootstrap(cmd *cobra.Command) bool {
	return cmd == versionCmd || cmd.Name() == "help" || cmd.Name() == "completion"
}

// loadEnvFile loads a dotenv file without overriding variables already set.
// A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	logger.Debug("loaded environment from %s", path)
	return nil
}

// errNotConfigured names the missing service.
func errNotConfigured(name string) error {
	return fmt.Errorf("%s service not configured", name)
}

func stdin(cmd *cobra.Command) io.Reader {
	if r := cmd.InOrStdin(); r != nil {
		return r
	}
	return os.Stdin
}
