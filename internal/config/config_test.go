package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/delga-0098/invoicegen/internal/builder"
	"github.com/delga-0098/invoicegen/internal/numbering"
	"github.com/delga-0098/invoicegen/internal/validation"
)

const businessYAML = `
name: Acme Repairs
logo: logo.png
tax_id: "23-2098492"
address:
  line1: 1 Main St
  city: Springfield
  state: IL
  postal_code: "62701"
contact:
  phone: "555-0100"
  email: office@acme.test
`

func writeConfigDir(t *testing.T, mainYAML, business string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, MainFile), []byte(mainYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, BusinessFile), []byte(business), 0o644))
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeConfigDir(t, `
tax_rate: 8.25
invoice_pattern: ym_unit_seq
invoice_prefix: INV-
sequence_start: "0007"
currency: $
sheet:
  sheet_name: Jobs
  columns:
    Job Site: address
`, businessYAML)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("8.25").Equal(cfg.TaxRate))
	assert.Equal(t, "8.25", cfg.TaxRate.String())
	assert.Equal(t, numbering.YearMonthUnitSeq, cfg.InvoicePattern)
	assert.Equal(t, "INV-", cfg.InvoicePrefix)
	assert.Equal(t, int64(7), cfg.SequenceStart)
	assert.Equal(t, "$", cfg.Currency)
	assert.Equal(t, "Jobs", cfg.Sheet.SheetName)
	assert.Equal(t, ",", cfg.Sheet.Delimiter)
	assert.Equal(t, map[string]string{"Job Site": "address"}, cfg.Sheet.Columns)

	assert.Equal(t, "Acme Repairs", cfg.BusinessInfo.Name)
	assert.Equal(t, "US", cfg.BusinessInfo.Address.Country)
	require.NotNil(t, cfg.BusinessInfo.Contact)
	assert.Equal(t, "office@acme.test", cfg.BusinessInfo.Contact.Email)
}

func TestLoad_Defaults(t *testing.T) {
	dir := writeConfigDir(t, "", businessYAML)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.True(t, cfg.TaxRate.IsZero())
	assert.Equal(t, numbering.YearMonthSeq, cfg.InvoicePattern)
	assert.Equal(t, "", cfg.InvoicePrefix)
	assert.Equal(t, int64(DefaultSequenceStart), cfg.SequenceStart)
	assert.Equal(t, "USD$", cfg.Currency)
	assert.Equal(t, ",", cfg.Sheet.Delimiter)
}

func TestLoad_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir)
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(filepath.Join(dir, MainFile), nil, 0o644))
	_, err = Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "business file")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		main     string
		business string
		contains string
		kind     error
	}{
		{"unknown pattern", "invoice_pattern: weekly", businessYAML, "unknown invoice pattern", nil},
		{"tax too high", "tax_rate: 101", businessYAML, "tax_rate", validation.KindRange},
		{"negative tax", "tax_rate: -1", businessYAML, "tax_rate", validation.KindFormat},
		{"tax with percent sign", `tax_rate: "8%"`, businessYAML, "tax_rate", validation.KindFormat},
		{"tax as list", "tax_rate: [1]", businessYAML, "tax_rate must be a number", nil},
		{"negative sequence", "sequence_start: -3", businessYAML, "sequence_start", validation.KindRange},
		{"fractional sequence", "sequence_start: 1.5", businessYAML, "sequence_start must be an integer", nil},
		{"long currency", "currency: ABCDEFGHIJKLMNOPQ", businessYAML, "currency", validation.KindLength},
		{"bad delimiter", "sheet:\n  delimiter: ';;'", businessYAML, "delimiter", nil},
		{"not yaml", "tax_rate: [", businessYAML, "failed to parse config file", nil},
		{"business without name", "", "address: {}", "invalid business info", validation.KindType},
		{"business blank city", "", `
name: Acme
address:
  line1: 1 Main St
  city: " "
  state: IL
  postal_code: "1"
`, "address.city", validation.KindEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.main), []byte(tt.business))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
			if tt.kind != nil {
				assert.ErrorIs(t, err, tt.kind)
			}
		})
	}
}

func TestSettingsAndAdvance(t *testing.T) {
	cfg, err := Parse([]byte("tax_rate: 7.5\ninvoice_prefix: A-\nsequence_start: 5\ncurrency: CAD"), []byte(businessYAML))
	require.NoError(t, err)

	s := cfg.Settings()
	assert.Equal(t, numbering.YearMonthSeq, s.Pattern)
	assert.Equal(t, "A-", s.Prefix)
	assert.Equal(t, int64(5), s.SequenceStart)
	assert.Equal(t, "CAD", s.Currency)
	assert.True(t, decimal.RequireFromString("7.5").Equal(s.TaxRatePercent))

	require.NoError(t, cfg.Advance(&builder.Batch{StartSequence: 5, NextSequence: 8}))
	assert.Equal(t, int64(8), cfg.SequenceStart)

	err = cfg.Advance(&builder.Batch{StartSequence: 5, NextSequence: 9})
	assert.ErrorIs(t, err, ErrStaleSequence)
	assert.Equal(t, int64(8), cfg.SequenceStart)
}

func TestSaveSequence(t *testing.T) {
	dir := writeConfigDir(t, "# numbering\ninvoice_prefix: INV- # shown on every invoice\nsequence_start: \"0001\"\n", businessYAML)

	require.NoError(t, SaveSequence(dir, 42))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.SequenceStart)
	assert.Equal(t, "INV-", cfg.InvoicePrefix)

	data, err := os.ReadFile(filepath.Join(dir, MainFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# shown on every invoice")
}

func TestSaveSequence_AddsMissingKey(t *testing.T) {
	dir := writeConfigDir(t, "currency: MXN\n", businessYAML)
	require.NoError(t, SaveSequence(dir, 3))

	data, err := os.ReadFile(filepath.Join(dir, MainFile))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, yaml.Unmarshal(data, &raw))
	assert.Equal(t, map[string]any{"currency": "MXN", "sequence_start": 3}, raw)
}

func TestSaveSequence_EmptyFile(t *testing.T) {
	dir := writeConfigDir(t, "", businessYAML)
	require.NoError(t, SaveSequence(dir, 9))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(9), cfg.SequenceStart)
}
