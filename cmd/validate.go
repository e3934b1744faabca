// =============================================================================
// Invoice Generator - Validate Command
// =============================================================================
//
// COMMAND USAGE:
//   invoicegen validate --in FILE
//
// Loads the configuration, reads the job sheet and validates every job line.
// All failures are listed, numbered, with their sheet row. The command exits
// non-zero if any line is invalid.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/delga-0098/invoicegen/internal/models"
	"github.com/delga-0098/invoicegen/internal/validation"
)

// errValidationFailed is returned after the validation report is printed.
var errValidationFailed = errors.New("validation failed")

var validateInput string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and a job sheet without building invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateInput, "in", "i", "", "Path to the job sheet (.xlsx or .csv)")
	validateCmd.MarkFlagRequired("in")
}

func runValidate(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := readSheet(validateInput, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	lines, err := models.ParseJobLines(s.Records)
	if err != nil {
		fmt.Fprint(out, validation.FormatErrors(err))
		return errValidationFailed
	}

	projects := make(map[string]struct{})
	for _, line := range lines {
		projects[line.Address] = struct{}{}
	}
	fmt.Fprintf(out, "%d job line(s) valid across %d project(s).\n", len(lines), len(projects))
	return nil
}
