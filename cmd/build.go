// =============================================================================
// Invoice Generator - Build Command
// =============================================================================
//
// This file defines the 'build' command, which runs the whole pipeline.
//
// COMMAND USAGE:
//   invoicegen build --in FILE --client FILE [flags]
//
// BUILD PIPELINE:
//   1. Load configuration and business info
//   2. Read the job sheet
//   3. Build the invoice header from --client and the date/terms flags
//   4. Validate every job line (all failures are reported)
//   5. Group, number and price the invoices
//   6. Print the invoices as text, YAML or XML
//   7. With --commit, save the advanced sequence to invoicegen.yaml
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/delga-0098/invoicegen/internal/builder"
	"github.com/delga-0098/invoicegen/internal/config"
	"github.com/delga-0098/invoicegen/internal/models"
	"github.com/delga-0098/invoicegen/internal/validation"
)

// pendingNumber stands in for the invoice number until the builder assigns one.
const pendingNumber = "PENDING"

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var buildFlags struct {
	input     string
	client    string
	payments  string
	terms     string
	startDate string
	dueDate   string
	format    string
	output    string
	commit    bool
}

// =============================================================================
// BUILD COMMAND DEFINITION
// =============================================================================

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build numbered invoices from a job sheet",
	Long: `The build command validates every job line in the sheet, groups the lines by
project address, numbers one invoice per project and computes its totals.

Nothing is built if any job line is invalid; every failure is listed.

The sequence counter in invoicegen.yaml is only advanced with --commit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd)
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)

	f := buildCmd.Flags()
	f.StringVarP(&buildFlags.input, "in", "i", "", "Path to the job sheet (.xlsx or .csv)")
	f.StringVar(&buildFlags.client, "client", "", "YAML file describing the billed client")
	f.StringVar(&buildFlags.payments, "payments", "", "YAML file of payments keyed by project address")
	f.StringVar(&buildFlags.terms, "terms", "", `Payment terms, e.g. "Net 30"`)
	f.StringVar(&buildFlags.startDate, "start-date", "", "Invoice start date (MM/DD/YYYY, default today)")
	f.StringVar(&buildFlags.dueDate, "due-date", "", "Invoice due date (MM/DD/YYYY, default from terms)")
	f.StringVarP(&buildFlags.format, "format", "f", "text", "Output format: text, yaml or xml")
	f.StringVarP(&buildFlags.output, "out", "o", "", "Write output to this file instead of stdout")
	f.BoolVar(&buildFlags.commit, "commit", false, "Save the advanced sequence counter to invoicegen.yaml")

	buildCmd.MarkFlagRequired("in")
	buildCmd.MarkFlagRequired("client")
}

// =============================================================================
// BUILD PIPELINE
// =============================================================================

func runBuild(cmd *cobra.Command) error {
	render, err := rendererFor(buildFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := readSheet(buildFlags.input, cfg)
	if err != nil {
		return err
	}

	header, err := buildHeader(cfg)
	if err != nil {
		return err
	}

	opts := []builder.Option{builder.WithLogger(logger)}
	if buildFlags.payments != "" {
		payments, err := config.LoadPayments(buildFlags.payments)
		if err != nil {
			return fmt.Errorf("failed to load payments: %w", err)
		}
		opts = append(opts, builder.WithPayments(payments))
	}

	b, err := builder.New(cfg.Settings(), opts...)
	if err != nil {
		return err
	}

	batch, err := b.BuildFromRecords(s.Records, header)
	if err != nil {
		var errs validation.Errors
		if errors.As(err, &errs) {
			fmt.Fprint(cmd.ErrOrStderr(), validation.FormatErrors(err))
			return errValidationFailed
		}
		return err
	}

	if err := writeOutput(cmd.OutOrStdout(), buildFlags.output, func(w io.Writer) error {
		return render(w, batch)
	}); err != nil {
		return err
	}

	if !buildFlags.commit {
		return nil
	}

	if err := cfg.Advance(batch); err != nil {
		return err
	}
	if err := config.SaveSequence(configDir, cfg.SequenceStart); err != nil {
		return fmt.Errorf("failed to commit sequence: %w", err)
	}
	logger.Info().Int64("sequence_start", cfg.SequenceStart).Msg("sequence committed")
	return nil
}

// buildHeader assembles the template header shared by every invoice.
func buildHeader(cfg *config.InvoiceConfig) (models.InvoiceHeader, error) {
	client, err := config.LoadRecord(buildFlags.client)
	if err != nil {
		return models.InvoiceHeader{}, fmt.Errorf("failed to load client: %w", err)
	}

	meta := models.Record{"number": pendingNumber}
	if buildFlags.startDate != "" {
		meta["start_date"] = buildFlags.startDate
	}
	if buildFlags.dueDate != "" {
		meta["due_date"] = buildFlags.dueDate
	}
	if buildFlags.terms != "" {
		meta["terms"] = buildFlags.terms
	}

	header, err := models.NewInvoiceHeader(models.Record{
		"business": cfg.BusinessInfo,
		"client":   client,
		"meta":     meta,
	})
	if err != nil {
		return models.InvoiceHeader{}, fmt.Errorf("invalid invoice header: %w", err)
	}
	return header, nil
}

// writeOutput runs write against stdout or, when path is set, a new file.
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	logger.Info().Str("file", path).Msg("invoices written")
	return nil
}
