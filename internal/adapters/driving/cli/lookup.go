package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
)

var lookupJSON bool

var lookupCmd = &cobra.Command{
	Use:   "lookup [empNo]",
	Short: "Look up an employee by number",
	Args:  cobra.ExactArgs(1),
	RunE:  runLookup,
}

func init() {
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	if patientService == nil {
		return errNotConfigured("patient")
	}

	patient, err := patientService.Lookup(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		cmd.Printf("No employee found for %s\n", args[0])
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	if lookupJSON {
		return printJSON(cmd, patient)
	}

	cmd.Printf("Employee No:  %s\n", patient.EmpNo)
	cmd.Printf("Name:         %s\n", patient.PatientName)
	cmd.Printf("Emirates ID:  %s\n", patient.EmiratesID)
	cmd.Printf("Insurance ID: %s\n", patient.InsuranceID)
	cmd.Printf("TR Location:  %s\n", patient.TrLocation)
	cmd.Printf("Mobile:       %s\n", patient.MobileNumber)
	return nil
}
