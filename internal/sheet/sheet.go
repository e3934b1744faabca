// =============================================================================
// Invoice Generator - Job Sheet Reader
// =============================================================================
//
// This module reads job sheets exported from the office spreadsheet and turns
// each data row into a raw job line record for validation.
//
// SHEET LAYOUT:
//   Row 1  : column headers
//   Row 2  : reserved (totals or notes in the source spreadsheet), skipped
//   Row 3+ : one job line per row
//
// Every record carries "source_row", the 1-based sheet row it came from, so
// validation errors point back at the spreadsheet. Empty rows are skipped and
// empty cells are left out of the record.
//
// SUPPORTED FORMATS:
//   - .xlsx, .xlsm : read with excelize
//   - .csv         : read with encoding/csv
//
// =============================================================================

package sheet

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/delga-0098/invoicegen/internal/models"
	"github.com/delga-0098/invoicegen/internal/validation"
)

// Options controls how a sheet is read.
type Options struct {
	// SheetName is the worksheet to read from a workbook. Empty means the
	// first worksheet.
	SheetName string

	// Delimiter separates CSV fields. Zero means ','.
	Delimiter rune

	// Columns maps extra header labels to job line fields.
	Columns map[string]string
}

// Sheet is a parsed job sheet.
type Sheet struct {
	// SourceFile is the path the sheet was read from.
	SourceFile string

	// Headers contains the cleaned header labels from row 1.
	Headers []string

	// Ignored lists header labels that map to no job line field.
	Ignored []string

	// Records holds one raw record per non-empty data row.
	Records []models.Record
}

// Fields lists the job line fields a sheet may provide.
var Fields = []string{"address", "unit", "dates", "description", "qty", "rate", "paid"}

// RequiredFields lists the fields a sheet must have a column for.
var RequiredFields = []string{"address", "unit", "dates", "description", "qty", "rate"}

// aliases maps normalized header labels to fields.
var aliases = map[string]string{
	"address":     "address",
	"job_address": "address",
	"project":     "address",
	"site":        "address",
	"unit":        "unit",
	"dates":       "dates",
	"date":        "dates",
	"job_date":    "dates",
	"description": "description",
	"desc":        "description",
	"work":        "description",
	"qty":         "qty",
	"quantity":    "qty",
	"hours":       "qty",
	"rate":        "rate",
	"price":       "rate",
	"unit_price":  "rate",
	"paid":        "paid",
}

// Read reads a job sheet, choosing the reader from the file extension.
//
// PARAMETERS:
//   - path: The .xlsx, .xlsm or .csv file to read.
//   - opts: Reading options.
//
// RETURNS:
//   - The parsed sheet.
//   - An error if the format is unsupported or the file cannot be read.
func Read(path string, opts Options) (*Sheet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(path, opts)
	case ".csv":
		return ReadCSV(path, opts)
	}
	return nil, fmt.Errorf("unsupported job sheet format %q (expected .xlsx, .xlsm or .csv)", filepath.Ext(path))
}

// fromRows builds a Sheet from raw rows, where rows[0] is sheet row 1.
func fromRows(source string, rows [][]string, opts Options) (*Sheet, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("job sheet is empty")
	}

	headers := cleanHeaders(rows[0])
	fields, ignored, err := mapColumns(headers, opts.Columns)
	if err != nil {
		return nil, err
	}

	s := &Sheet{
		SourceFile: source,
		Headers:    headers,
		Ignored:    ignored,
		Records:    []models.Record{},
	}

	for i := validation.ReservedHeaderRows; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}

		rec := models.Record{"source_row": i + 1}
		for col, field := range fields {
			if field == "" || col >= len(row) {
				continue
			}
			if value := strings.TrimSpace(row[col]); value != "" {
				rec[field] = value
			}
		}
		s.Records = append(s.Records, rec)
	}

	return s, nil
}

// cleanHeaders trims header labels and removes a leading byte order mark.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		if i == 0 {
			header = strings.TrimPrefix(header, "\ufeff")
		}
		cleaned[i] = strings.TrimSpace(header)
	}
	return cleaned
}

// mapColumns resolves each header to a job line field. Configured columns
// take precedence over the built-in aliases.
func mapColumns(headers []string, columns map[string]string) ([]string, []string, error) {
	custom := make(map[string]string, len(columns))
	for label, field := range columns {
		field = strings.TrimSpace(field)
		if !isField(field) {
			return nil, nil, fmt.Errorf("column %q maps to unknown field %q (expected one of %s)",
				label, field, strings.Join(Fields, ", "))
		}
		custom[normalizeHeader(label)] = field
	}

	fields := make([]string, len(headers))
	seen := make(map[string]string)
	var ignored []string

	for i, header := range headers {
		key := normalizeHeader(header)
		field, ok := custom[key]
		if !ok {
			field, ok = aliases[key]
		}
		if !ok {
			if header != "" {
				ignored = append(ignored, header)
			}
			continue
		}
		if prev, dup := seen[field]; dup {
			return nil, nil, fmt.Errorf("columns %q and %q both map to %s", prev, header, field)
		}
		seen[field] = header
		fields[i] = field
	}

	var missing []string
	for _, field := range RequiredFields {
		if _, ok := seen[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, nil, fmt.Errorf("job sheet is missing required columns: %s", strings.Join(missing, ", "))
	}

	return fields, ignored, nil
}

// normalizeHeader lowercases a label and joins its words with underscores.
func normalizeHeader(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	label = strings.NewReplacer("-", " ", "_", " ", ".", " ").Replace(label)
	return strings.Join(strings.Fields(label), "_")
}

func isField(name string) bool {
	for _, f := range Fields {
		if f == name {
			return true
		}
	}
	return false
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
