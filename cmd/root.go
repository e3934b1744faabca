// =============================================================================
// Invoice Generator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (invoicegen)
//   ├── validateCmd (invoicegen validate)
//   ├── buildCmd    (invoicegen build)
//   └── versionCmd  (invoicegen version)
//
// The root command owns the flags shared by all subcommands and sets up the
// logger before any subcommand runs.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/delga-0098/invoicegen/internal/config"
	"github.com/delga-0098/invoicegen/internal/sheet"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// configDir holds the directory containing invoicegen.yaml and business.yaml.
var configDir string

// verbose enables debug logging when set to true.
var verbose bool

// logger is configured in PersistentPreRun and used by every subcommand.
var logger = zerolog.Nop()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "invoicegen",
	Short: "Invoice Generator - Turn job sheets into numbered invoices",
	Long: `Invoice Generator reads a job sheet (.xlsx or .csv), validates every job
line, groups the lines by project address and produces one numbered,
tax-computed invoice per project.

Configuration is read from a config directory holding:
  invoicegen.yaml   tax rate, numbering pattern, prefix, sequence, currency
  business.yaml     the issuing business

Example Usage:
  invoicegen validate --in jobs.xlsx
  invoicegen build --in jobs.xlsx --client client.yaml --terms "Net 30"
  invoicegen build --in jobs.csv --client client.yaml --format yaml --commit`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = newLogger(cmd, verbose)
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configDir,
		"config-dir",
		"c",
		"config",
		"Directory containing invoicegen.yaml and business.yaml",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// newLogger writes human-readable log lines to the command's stderr.
func newLogger(cmd *cobra.Command, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// loadConfig loads the configuration from --config-dir.
func loadConfig() (*config.InvoiceConfig, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from %s: %w", configDir, err)
	}
	logger.Debug().
		Str("config_dir", configDir).
		Str("pattern", string(cfg.InvoicePattern)).
		Int64("sequence_start", cfg.SequenceStart).
		Msg("configuration loaded")
	return cfg, nil
}

// readSheet reads the job sheet at path using the sheet settings in cfg.
func readSheet(path string, cfg *config.InvoiceConfig) (*sheet.Sheet, error) {
	opts := sheet.Options{
		SheetName: cfg.Sheet.SheetName,
		Columns:   cfg.Sheet.Columns,
	}
	for _, r := range cfg.Sheet.Delimiter {
		opts.Delimiter = r
		break
	}

	s, err := sheet.Read(path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read job sheet: %w", err)
	}

	for _, header := range s.Ignored {
		logger.Debug().Str("column", header).Msg("ignoring unmapped column")
	}
	logger.Info().Str("file", path).Int("rows", len(s.Records)).Msg("job sheet read")
	return s, nil
}
