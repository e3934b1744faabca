// =============================================================================
// Invoice Generator - Job Lines
// =============================================================================
//
// A JobLine is one billable unit of work read from a job sheet. Its address
// is the project key used by the builder to group lines into invoices.
//
// FIELDS (raw record keys):
//   - address     : required text, project key
//   - unit        : required text
//   - dates       : MM/DD/YYYY
//   - description : required text, at most 2000 characters
//   - qty, rate   : non-negative exact decimals
//   - paid        : bool or "true"/"false", defaults to false
//   - source_row  : sheet row number, must be greater than 2
//
// DERIVED:
//   - line_total = round_half_up(qty * rate, 2)
//
// =============================================================================

package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/delga-0098/invoicegen/internal/validation"
)

// JobLine is a validated line item.
type JobLine struct {
	Address     string
	Unit        string
	Description string
	Dates       time.Time
	Qty         decimal.Decimal
	Rate        decimal.Decimal
	Paid        bool
	SourceRow   int

	// LineTotal is derived from Qty and Rate at construction.
	LineTotal decimal.Decimal
}

// NewJobLine validates a job line record and computes its line total.
func NewJobLine(r Record) (JobLine, error) {
	p := newFieldParser("JobLine", r)
	j := JobLine{
		Address:     p.required("address"),
		Unit:        p.required("unit"),
		Dates:       p.date("dates"),
		Description: p.description("description"),
		Qty:         p.decimal("qty"),
		Rate:        p.decimal("rate"),
		Paid:        p.boolean("paid", false),
		SourceRow:   p.sourceRow("source_row"),
	}
	if err := p.Err(); err != nil {
		return JobLine{}, err
	}

	j.LineTotal = Round2(j.Qty.Mul(j.Rate))
	return j, nil
}

// Raw returns the canonical field values as a Record. Feeding it back into
// NewJobLine yields an identical JobLine.
func (j JobLine) Raw() Record {
	return Record{
		"address":     j.Address,
		"unit":        j.Unit,
		"dates":       validation.FormatDate(j.Dates),
		"description": j.Description,
		"qty":         j.Qty,
		"rate":        j.Rate,
		"paid":        j.Paid,
		"source_row":  j.SourceRow,
	}
}

// ParseJobLines validates every record in a batch. All failures are
// collected, each wrapped in a RecordError, and returned together as
// validation.Errors. Lines are returned only when every record is valid.
func ParseJobLines(records []Record) ([]JobLine, error) {
	lines := make([]JobLine, 0, len(records))
	var errs validation.Errors

	for i, rec := range records {
		line, err := NewJobLine(rec)
		if err != nil {
			errs = append(errs, &validation.RecordError{
				Index: i,
				Row:   rowHint(rec),
				Err:   err,
			})
			continue
		}
		lines = append(lines, line)
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return lines, nil
}

// rowHint reports the record's source row for error messages when it is a
// plain int, even if that row number itself failed validation.
func rowHint(rec Record) int {
	if n, ok := rec.Get("source_row").(int); ok && n > 0 {
		return n
	}
	return 0
}
