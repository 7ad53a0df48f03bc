package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/tui"
	"github.com/Tabrezhira/sobha-his-forms/internal/logger"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive form editor.

Pick a form, fill it in field by field and submit it to the HIS backend.
Stored records can be listed, edited and deleted from the same screen.

Controls:
  tab, shift+tab  Next / previous field
  enter           Pick suggestion / add row
  ctrl+l          Look up employee
  ctrl+s          Submit
  esc             Back
  ctrl+c          Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// tuiPorts builds the TUI ports from the installed services.
func tuiPorts() *tui.Ports {
	return &tui.Ports{
		Forms:       formService,
		Suggestions: suggestionService,
		Records:     recordService,
		Dropdowns:   dropdownService,
		Settings:    settingsService,
		Session:     sessionService,
	}
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	app, err := tui.NewApp(tuiPorts())
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Config reloads run for the life of the TUI.
	if configWatch != nil {
		go func() {
			if werr := configWatch(ctx); werr != nil && !errors.Is(werr, context.Canceled) {
				logger.Warn("config watch stopped: %v", werr)
			}
		}()
	}

	if err := app.WithContext(ctx).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
