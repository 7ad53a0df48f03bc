package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var suggestJSON bool

var suggestCmd = &cobra.Command{
	Use:   "suggest [category] [query]",
	Short: "Query remote suggestions for a category",
	Long: `Runs one search against the suggestion endpoint, the same lookup the
form inputs use while typing (diagnosis, hospital, medicine, ...).`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	if suggestionService == nil {
		return errNotConfigured("suggestion")
	}

	category := args[0]
	query := strings.Join(args[1:], " ")

	names, err := suggestionService.Suggest(cmd.Context(), category, query)
	if err != nil {
		return fmt.Errorf("suggest failed: %w", err)
	}

	if suggestJSON {
		return printJSON(cmd, names)
	}
	if len(names) == 0 {
		cmd.Println("No suggestions.")
		return nil
	}
	for _, name := range names {
		cmd.Printf("  %s\n", name)
	}
	return nil
}
