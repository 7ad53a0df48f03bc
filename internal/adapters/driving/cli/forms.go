package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
)

var formsJSON bool

var formsCmd = &cobra.Command{
	Use:   "forms",
	Short: "List and inspect form definitions",
	RunE:  runFormsList,
}

var formsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available forms",
	RunE:  runFormsList,
}

var formsShowCmd = &cobra.Command{
	Use:   "show [form]",
	Short: "Show the fields of a form",
	Args:  cobra.ExactArgs(1),
	RunE:  runFormsShow,
}

var formsExportCmd = &cobra.Command{
	Use:   "export [dir]",
	Short: "Write the built-in forms to a directory for editing",
	Long: `Writes the built-in form definitions as TOML files.

Files that already exist are left untouched. Without a directory argument the
forms are written to the override directory, where edits take effect on the
next run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFormsExport,
}

func init() {
	formsCmd.PersistentFlags().BoolVar(&formsJSON, "json", false, "output as JSON")
	formsCmd.AddCommand(formsListCmd)
	formsCmd.AddCommand(formsShowCmd)
	formsCmd.AddCommand(formsExportCmd)
	rootCmd.AddCommand(formsCmd)
}

func runFormsList(cmd *cobra.Command, _ []string) error {
	if formService == nil {
		return errNotConfigured("form")
	}

	forms := formService.Forms()
	if formsJSON {
		return printJSON(cmd, forms)
	}

	if len(forms) == 0 {
		cmd.Println("No forms defined.")
		return nil
	}

	cmd.Println("Forms:")
	for i := range forms {
		cmd.Printf("  %-20s %-32s %s\n", forms[i].Name, forms[i].DisplayTitle(), "/"+forms[i].Resource)
	}
	return nil
}

func runFormsShow(cmd *cobra.Command, args []string) error {
	if formService == nil {
		return errNotConfigured("form")
	}

	schema, err := formService.Schema(args[0])
	if err != nil {
		return err
	}
	if formsJSON {
		return printJSON(cmd, schema)
	}

	cmd.Printf("%s (%s)\n", schema.DisplayTitle(), schema.Name)
	cmd.Printf("Endpoint: /%s\n\n", schema.Resource)

	cmd.Println("Fields:")
	for _, f := range schema.Fields {
		cmd.Printf("  %-24s %-10s %s\n", f.Name, f.Kind, fieldTags(schema, f))
	}

	for _, l := range schema.Lists {
		printList(cmd, l, "  ")
	}

	if len(schema.Derivations) > 0 {
		cmd.Println()
		cmd.Println("Derived:")
		for _, d := range schema.Derivations {
			cmd.Printf("  %s = days(%s .. %s) [%s]\n", d.Target, d.Start, d.End, d.Rule)
		}
	}
	return nil
}

func printList(cmd *cobra.Command, l domain.ListDef, indent string) {
	cmd.Println()
	kind := "rows"
	if l.Scalar {
		kind = "entries"
	}
	cmd.Printf("%sList %s (%s):\n", indent, l.Name, kind)
	for _, f := range l.Fields {
		cmd.Printf("%s  %-22s %s\n", indent, f.Name, f.Kind)
	}
	for _, c := range l.Children {
		printList(cmd, c, indent+"  ")
	}
}

func fieldTags(schema *domain.Schema, f domain.FieldDef) string {
	var tags []string
	if f.Required {
		tags = append(tags, "required")
	}
	if f.ReadOnly {
		tags = append(tags, "read-only")
	}
	if f.Suggest != "" {
		tags = append(tags, "suggest:"+f.Suggest)
	}
	if f.Dropdown != "" {
		tags = append(tags, "options:"+f.Dropdown)
	}
	if b, ok := schema.BlockOf(f.Name); ok {
		if b.Gate != "" {
			tags = append(tags, "when:"+b.Gate)
		} else {
			tags = append(tags, "block:"+b.Name)
		}
	}
	return strings.Join(tags, " ")
}

func runFormsExport(cmd *cobra.Command, args []string) error {
	if schemaExporter == nil {
		return errNotConfigured("schema")
	}

	dir := ""
	if len(args) == 1 {
		dir = args[0]
	}
	written, err := schemaExporter.Export(dir)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if dir == "" {
		dir = schemaExporter.Dir()
	}
	if len(written) == 0 {
		cmd.Printf("Nothing to write; %s is up to date.\n", dir)
		return nil
	}
	for _, path := range written {
		cmd.Printf("  wrote %s\n", path)
	}
	return nil
}
