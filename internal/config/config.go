// =============================================================================
// Invoice Generator - Configuration Module
// =============================================================================
//
// This module loads the invoice configuration from a config directory.
//
// CONFIGURATION FILES:
//   1. invoicegen.yaml : tax rate, numbering, currency and job sheet settings
//   2. business.yaml   : the issuing business (name, address, contact, ...)
//
// Both files are required. Every setting in invoicegen.yaml is optional and
// has a default; business.yaml is validated as a BusinessInfo entity.
//
// MONEY VALUES:
//   tax_rate is read from the raw YAML scalar text, never through a float,
//   so "8.25" in the file is exactly 8.25 percent.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/delga-0098/invoicegen/internal/builder"
	"github.com/delga-0098/invoicegen/internal/models"
	"github.com/delga-0098/invoicegen/internal/numbering"
	"github.com/delga-0098/invoicegen/internal/validation"
)

const (
	// MainFile is the name of the settings file inside the config directory.
	MainFile = "invoicegen.yaml"

	// BusinessFile is the name of the business file inside the config directory.
	BusinessFile = "business.yaml"

	// DefaultSequenceStart is the first sequence value when none is configured.
	DefaultSequenceStart = 1

	// MaxCurrencyLength bounds the currency label, in characters.
	MaxCurrencyLength = 16
)

// =============================================================================
// CONFIGURATION STRUCTURES
// =============================================================================

// InvoiceConfig holds everything needed to build invoices for one business.
type InvoiceConfig struct {
	// BusinessInfo is the issuing business, loaded from business.yaml.
	BusinessInfo models.BusinessInfo

	// TaxRate is the sales tax as a percentage in [0, 100].
	// Default: 0
	TaxRate decimal.Decimal

	// InvoicePattern selects the numbering strategy.
	// Default: "ym_seq"
	InvoicePattern numbering.Pattern

	// InvoicePrefix is prepended to every invoice number.
	// Default: ""
	InvoicePrefix string

	// SequenceStart is the next sequence value to hand out. It is advanced
	// once per invoice by Advance.
	// Default: 1
	SequenceStart int64

	// Currency is the label printed with amounts, 1-16 characters.
	// Default: "USD$"
	Currency string

	// Sheet controls how job sheets are read.
	Sheet SheetSettings
}

// SheetSettings controls job sheet parsing.
type SheetSettings struct {
	// SheetName is the worksheet to read from .xlsx files.
	// Default: the first worksheet
	SheetName string `yaml:"sheet_name"`

	// Delimiter separates fields in .csv files.
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// Columns maps additional header labels to job line fields, for sheets
	// whose headers do not use the standard names.
	// Example:
	//   columns:
	//     "Job Site": address
	//     "Hours": qty
	Columns map[string]string `yaml:"columns,omitempty"`
}

// fileConfig mirrors invoicegen.yaml. Numeric settings are kept as nodes so
// their scalar text can be validated without a float round trip.
type fileConfig struct {
	TaxRate        yaml.Node     `yaml:"tax_rate"`
	InvoicePattern string        `yaml:"invoice_pattern"`
	InvoicePrefix  string        `yaml:"invoice_prefix"`
	SequenceStart  yaml.Node     `yaml:"sequence_start"`
	Currency       string        `yaml:"currency"`
	Sheet          SheetSettings `yaml:"sheet"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load reads invoicegen.yaml and business.yaml from dir.
//
// PARAMETERS:
//   - dir: The config directory.
//
// RETURNS:
//   - A validated InvoiceConfig with defaults applied.
//   - An error if either file cannot be read, parsed or validated.
func Load(dir string) (*InvoiceConfig, error) {
	mainData, err := os.ReadFile(filepath.Join(dir, MainFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	businessData, err := os.ReadFile(filepath.Join(dir, BusinessFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read business file: %w", err)
	}

	return Parse(mainData, businessData)
}

// Parse builds an InvoiceConfig from the contents of the two config files.
func Parse(mainData, businessData []byte) (*InvoiceConfig, error) {
	var raw fileConfig
	if err := yaml.Unmarshal(mainData, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	business, err := ParseRecord(businessData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse business file: %w", err)
	}

	cfg, err := fromFile(&raw)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.BusinessInfo, err = models.NewBusinessInfo(business)
	if err != nil {
		return nil, fmt.Errorf("invalid business info: %w", err)
	}

	return cfg, nil
}

// fromFile converts the decoded file, applies defaults and validates.
func fromFile(raw *fileConfig) (*InvoiceConfig, error) {
	cfg := &InvoiceConfig{
		InvoicePrefix: raw.InvoicePrefix,
		Currency:      strings.TrimSpace(raw.Currency),
		Sheet:         raw.Sheet,
	}

	taxRate, err := decodeTaxRate(&raw.TaxRate)
	if err != nil {
		return nil, err
	}
	cfg.TaxRate = taxRate

	seq, err := decodeSequence(&raw.SequenceStart)
	if err != nil {
		return nil, err
	}
	cfg.SequenceStart = seq

	pattern, err := numbering.Parse(raw.InvoicePattern)
	if err != nil {
		return nil, err
	}
	cfg.InvoicePattern = pattern

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeTaxRate reads an optional percentage from its scalar text.
func decodeTaxRate(node *yaml.Node) (decimal.Decimal, error) {
	if node.Kind == 0 || node.Tag == "!!null" {
		return decimal.Zero, nil
	}
	if node.Kind != yaml.ScalarNode {
		return decimal.Zero, fmt.Errorf("tax_rate must be a number (line %d)", node.Line)
	}

	rate, err := validation.Decimal(node.Value, "tax_rate")
	if err != nil {
		return decimal.Zero, validation.InEntity("InvoiceConfig", err)
	}
	return rate, nil
}

// decodeSequence reads an optional non-negative integer. Quoted values with
// leading zeros such as "0001" are accepted.
func decodeSequence(node *yaml.Node) (int64, error) {
	if node.Kind == 0 || node.Tag == "!!null" {
		return DefaultSequenceStart, nil
	}
	if node.Kind != yaml.ScalarNode {
		return 0, fmt.Errorf("sequence_start must be an integer (line %d)", node.Line)
	}

	n, err := strconv.ParseInt(strings.TrimSpace(node.Value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("sequence_start must be an integer, got %q", node.Value)
	}
	return n, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *InvoiceConfig) {
	if cfg.InvoicePattern == "" {
		cfg.InvoicePattern = numbering.DefaultPattern
	}
	if cfg.Currency == "" {
		cfg.Currency = models.DefaultCurrency
	}
	if cfg.Sheet.Delimiter == "" {
		cfg.Sheet.Delimiter = ","
	}
}

// Validate checks the settings that do not depend on the business file.
func (cfg *InvoiceConfig) Validate() error {
	hundred := decimal.NewFromInt(100)
	if cfg.TaxRate.IsNegative() || cfg.TaxRate.GreaterThan(hundred) {
		return validation.Errorf("InvoiceConfig", "tax_rate", validation.KindRange,
			"tax rate should be between 0 and 100, got %s", cfg.TaxRate.String())
	}

	if _, err := numbering.For(cfg.InvoicePattern); err != nil {
		return err
	}

	if cfg.SequenceStart < 0 {
		return validation.Errorf("InvoiceConfig", "sequence_start", validation.KindRange,
			"sequence start must be at least 0, got %d", cfg.SequenceStart)
	}

	if n := utf8.RuneCountInString(cfg.Currency); n < 1 || n > MaxCurrencyLength {
		return validation.Errorf("InvoiceConfig", "currency", validation.KindLength,
			"currency must be 1 to %d characters, got %d", MaxCurrencyLength, n)
	}

	if utf8.RuneCountInString(cfg.Sheet.Delimiter) != 1 {
		return fmt.Errorf("sheet delimiter must be a single character, got %q", cfg.Sheet.Delimiter)
	}

	return nil
}

// =============================================================================
// BUILDER WIRING
// =============================================================================

// ErrStaleSequence is returned by Advance when the batch was not built from
// the configuration's current sequence value.
var ErrStaleSequence = errors.New("batch was built from a stale sequence value")

// Settings returns a snapshot of the values the builder needs.
func (cfg *InvoiceConfig) Settings() builder.Settings {
	return builder.Settings{
		Pattern:        cfg.InvoicePattern,
		Prefix:         cfg.InvoicePrefix,
		SequenceStart:  cfg.SequenceStart,
		TaxRatePercent: cfg.TaxRate,
		Currency:       cfg.Currency,
	}
}

// Advance commits the sequence values consumed by batch.
func (cfg *InvoiceConfig) Advance(batch *builder.Batch) error {
	if batch.StartSequence != cfg.SequenceStart {
		return fmt.Errorf("%w: batch started at %d, config is at %d",
			ErrStaleSequence, batch.StartSequence, cfg.SequenceStart)
	}
	cfg.SequenceStart = batch.NextSequence
	return nil
}

// SaveSequence rewrites sequence_start in dir's invoicegen.yaml, keeping
// every other key and comment in place.
func SaveSequence(dir string, next int64) error {
	path := filepath.Join(dir, MainFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	out, err := setSequence(data, next)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// setSequence sets sequence_start in a YAML document.
func setSequence(data []byte, next int64) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("config file must be a YAML mapping")
	}

	root := doc.Content[0]
	value := strconv.FormatInt(next, 10)
	found := false
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "sequence_start" {
			root.Content[i+1].Kind = yaml.ScalarNode
			root.Content[i+1].Tag = "!!int"
			root.Content[i+1].Style = 0
			root.Content[i+1].Value = value
			root.Content[i+1].Content = nil
			found = true
			break
		}
	}
	if !found {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "sequence_start"},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: value},
		)
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config file: %w", err)
	}
	return out, nil
}
