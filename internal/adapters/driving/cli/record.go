package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driving"
)

var (
	recordFile     string
	recordID       string
	recordLookup   bool
	recordJSON     bool
	recordLimit    int
	recordPage     int
	recordSearch   string
	recordYes      bool
	recordSetPairs []string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Normalize, submit and manage form records",
}

var recordNormalizeCmd = &cobra.Command{
	Use:   "normalize [form]",
	Short: "Print the payload a form state would submit",
	Long: `Reads form values as a JSON object (--file, or stdin with "-") and prints
the normalised payload without sending it. Validation problems are listed.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecordNormalize,
}

var recordSubmitCmd = &cobra.Command{
	Use:   "submit [form]",
	Short: "Create or update a record",
	Long: `Reads form values as a JSON object and submits them.

With --id the record is updated, otherwise a new record is created. When the
form looks up employees, read-only employee fields are filled first.

Examples:
  hisforms record submit isolation --file visit.json
  hisforms record submit isolation --set empNo=E100 --set dateFrom=2024-01-01`,
	Args: cobra.ExactArgs(1),
	RunE: runRecordSubmit,
}

var recordListCmd = &cobra.Command{
	Use:   "list [form]",
	Short: "List records of a form",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordList,
}

var recordGetCmd = &cobra.Command{
	Use:   "get [form] [id]",
	Short: "Show a record",
	Args:  cobra.ExactArgs(2),
	RunE:  runRecordGet,
}

var recordDeleteCmd = &cobra.Command{
	Use:   "delete [form] [id]",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(2),
	RunE:  runRecordDelete,
}

func init() {
	for _, c := range []*cobra.Command{recordNormalizeCmd, recordSubmitCmd} {
		c.Flags().StringVarP(&recordFile, "file", "f", "", `JSON file with form values ("-" for stdin)`)
		c.Flags().StringArrayVar(&recordSetPairs, "set", nil, "set a field (name=value), repeatable")
		c.Flags().StringVar(&recordID, "id", "", "existing record id (edit mode)")
	}
	recordSubmitCmd.Flags().BoolVar(&recordLookup, "lookup", true, "fill employee fields before submitting")

	recordListCmd.Flags().IntVarP(&recordLimit, "limit", "n", 20, "maximum number of records")
	recordListCmd.Flags().IntVar(&recordPage, "page", 0, "page number")
	recordListCmd.Flags().StringVar(&recordSearch, "search", "", "filter by text")
	recordDeleteCmd.Flags().BoolVarP(&recordYes, "yes", "y", false, "skip confirmation")

	for _, c := range []*cobra.Command{recordNormalizeCmd, recordListCmd, recordGetCmd} {
		c.Flags().BoolVar(&recordJSON, "json", false, "output as JSON")
	}

	recordCmd.AddCommand(recordNormalizeCmd)
	recordCmd.AddCommand(recordSubmitCmd)
	recordCmd.AddCommand(recordListCmd)
	recordCmd.AddCommand(recordGetCmd)
	recordCmd.AddCommand(recordDeleteCmd)
	rootCmd.AddCommand(recordCmd)
}

// readInitial merges --file and --set values into one seed map.
func readInitial(cmd *cobra.Command) (map[string]any, error) {
	initial := map[string]any{}

	if recordFile != "" {
		var (
			data []byte
			err  error
		)
		if recordFile == "-" {
			data, err = io.ReadAll(stdin(cmd))
		} else {
			data, err = os.ReadFile(recordFile)
		}
		if err != nil {
			return nil, fmt.Errorf("reading form values: %w", err)
		}
		if err := json.Unmarshal(data, &initial); err != nil {
			return nil, fmt.Errorf("%w: form values must be a JSON object: %v", domain.ErrInvalidInput, err)
		}
	}

	for _, pair := range recordSetPairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: --set expects name=value, got %q", domain.ErrInvalidInput, pair)
		}
		initial[strings.TrimSpace(name)] = value
	}
	return initial, nil
}

func openForm(cmd *cobra.Command, form string) (driving.FormHandle, error) {
	if formService == nil {
		return nil, errNotConfigured("form")
	}
	initial, err := readInitial(cmd)
	if err != nil {
		return nil, err
	}
	return formService.Open(form, initial, recordID)
}

func runRecordNormalize(cmd *cobra.Command, args []string) error {
	handle, err := openForm(cmd, args[0])
	if err != nil {
		return err
	}

	payload := handle.Snapshot()
	if err := printJSON(cmd, payload); err != nil {
		return err
	}

	if err := handle.Validate(); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			printValidation(cmd, ve)
		}
		return err
	}
	return nil
}

func printValidation(cmd *cobra.Command, ve *domain.ValidationError) {
	w := cmd.ErrOrStderr()
	for _, name := range ve.Missing {
		fmt.Fprintf(w, "  missing: %s\n", name)
	}
	keys := make([]string, 0, len(ve.Invalid))
	for k := range ve.Invalid {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  invalid: %s %s\n", k, ve.Invalid[k])
	}
}

func runRecordSubmit(cmd *cobra.Command, args []string) error {
	handle, err := openForm(cmd, args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if recordLookup && handle.Schema().Lookup != nil {
		notice, err := handle.LookupEmployee(ctx)
		if err != nil {
			return fmt.Errorf("employee lookup failed: %w", err)
		}
		if notice != nil {
			printNotices(cmd, []domain.Notice{*notice})
		}
	}

	result, err := handle.Submit(ctx)
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		printValidation(cmd, ve)
		return err
	}
	if result != nil {
		printNotices(cmd, result.Notices)
	}
	if err != nil {
		return err
	}

	if result.Record != nil && result.Record.ID != "" {
		cmd.Printf("Record id: %s\n", result.Record.ID)
	}
	return nil
}

func runRecordList(cmd *cobra.Command, args []string) error {
	if recordService == nil {
		return errNotConfigured("record")
	}

	records, err := recordService.List(cmd.Context(), args[0], domain.ListOptions{
		Limit:  recordLimit,
		Page:   recordPage,
		Search: recordSearch,
	})
	if err != nil {
		return err
	}

	if recordJSON {
		rows := make([]map[string]any, 0, len(records))
		for i := range records {
			rows = append(rows, records[i].Data)
		}
		return printJSON(cmd, rows)
	}

	if len(records) == 0 {
		cmd.Println("No records found.")
		return nil
	}
	for i := range records {
		cmd.Printf("  %-26s %s\n", records[i].ID, recordSummary(records[i]))
	}
	return nil
}

// recordSummary picks the fields that identify a record at a glance.
func recordSummary(r domain.Record) string {
	var parts []string
	for _, key := range []string{"empNo", "employeeName", "date", "dateFrom", "dateOfAdmission", "grievanceDate", "reportedDate", "status"} {
		if v, ok := r.Data[key]; ok && v != nil && fmt.Sprint(v) != "" {
			parts = append(parts, truncate(fmt.Sprint(v), 24))
		}
	}
	if !r.CreatedAt.IsZero() {
		parts = append(parts, r.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return strings.Join(parts, "  ")
}

func runRecordGet(cmd *cobra.Command, args []string) error {
	if recordService == nil {
		return errNotConfigured("record")
	}

	record, err := recordService.Get(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	if recordJSON {
		return printJSON(cmd, record.Data)
	}

	keys := make([]string, 0, len(record.Data))
	for k := range record.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Printf("  %-26s %v\n", k, record.Data[k])
	}
	return nil
}

func runRecordDelete(cmd *cobra.Command, args []string) error {
	if recordService == nil {
		return errNotConfigured("record")
	}

	if !recordYes {
		cmd.Printf("Delete %s record %s? [y/N]: ", args[0], args[1])
		answer, _ := bufio.NewReader(stdin(cmd)).ReadString('\n')
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			cmd.Println("Cancelled.")
			return nil
		}
	}

	if err := recordService.Delete(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Deleted %s record %s\n", args[0], args[1])
	return nil
}
