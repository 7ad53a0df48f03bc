package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	dropdownRefresh bool
	dropdownJSON    bool
)

var dropdownCmd = &cobra.Command{
	Use:   "dropdown [category]",
	Short: "Show the cached options of a dropdown category",
	Long: `Shows the options of a dropdown category such as trLocation.

Options are cached according to the cache.backend setting. Use --refresh
to drop the cached copy and fetch again.`,
	Args: cobra.ExactArgs(1),
	RunE: runDropdown,
}

func init() {
	dropdownCmd.Flags().BoolVar(&dropdownRefresh, "refresh", false, "refetch instead of using the cache")
	dropdownCmd.Flags().BoolVar(&dropdownJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(dropdownCmd)
}

func runDropdown(cmd *cobra.Command, args []string) error {
	if dropdownService == nil {
		return errNotConfigured("dropdown")
	}
	ctx := cmd.Context()

	if dropdownRefresh {
		if err := dropdownService.Refresh(ctx, args[0]); err != nil {
			return fmt.Errorf("refresh failed: %w", err)
		}
	}

	options, err := dropdownService.Options(ctx, args[0])
	if err != nil {
		return fmt.Errorf("dropdown failed: %w", err)
	}

	if dropdownJSON {
		return printJSON(cmd, options)
	}
	if len(options) == 0 {
		cmd.Println("No options.")
		return nil
	}
	for _, option := range options {
		cmd.Printf("  %s\n", option)
	}
	return nil
}
