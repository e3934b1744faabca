// =============================================================================
// Invoice Generator - Invoice Numbering
// =============================================================================
//
// A numbering Pattern selects the strategy that turns a prefix, a running
// sequence value, and a project's sorted job lines into an invoice number.
// Sequence values are concatenated as-is, never zero-padded.
//
// SUPPORTED PATTERNS:
//   - ym_seq      : {prefix}{YYYY}{MM}{seq}         e.g. INV-2024111
//   - ym_unit_seq : {prefix}{YYYY}-{MM}-{UNIT}-{seq} e.g. INV-2024-11-A-1
//   - simple_seq  : {prefix}{seq}                   e.g. INV-1
//
// Year, month and unit always come from the chronologically last line, which
// is the last element of the slice handed over by the builder.
//
// =============================================================================

package numbering

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/delga-0098/invoicegen/internal/models"
)

// Pattern names a numbering strategy as it appears in configuration.
type Pattern string

const (
	YearMonthSeq     Pattern = "ym_seq"
	YearMonthUnitSeq Pattern = "ym_unit_seq"
	SimpleSeq        Pattern = "simple_seq"
)

// DefaultPattern is used when configuration names no pattern.
const DefaultPattern = YearMonthSeq

// Patterns lists every supported pattern in documentation order.
var Patterns = []Pattern{YearMonthSeq, YearMonthUnitSeq, SimpleSeq}

// Parse validates a configured pattern name. Surrounding whitespace is
// ignored; an empty name yields DefaultPattern.
func Parse(name string) (Pattern, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultPattern, nil
	}
	for _, p := range Patterns {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown invoice pattern %q (expected one of %s)", name, joinPatterns())
}

// Numberer produces the invoice number for one project.
type Numberer interface {
	// Number formats the invoice number. lines is the project's job lines
	// sorted by date and is never empty.
	Number(prefix string, seq int64, lines []models.JobLine) string
}

// NumberFunc adapts a plain function to the Numberer interface.
type NumberFunc func(prefix string, seq int64, lines []models.JobLine) string

// Number calls f.
func (f NumberFunc) Number(prefix string, seq int64, lines []models.JobLine) string {
	return f(prefix, seq, lines)
}

// For returns the strategy for p. It fails for a pattern Parse would reject.
func For(p Pattern) (Numberer, error) {
	switch p {
	case YearMonthSeq:
		return NumberFunc(yearMonthSeq), nil
	case YearMonthUnitSeq:
		return NumberFunc(yearMonthUnitSeq), nil
	case SimpleSeq:
		return NumberFunc(simpleSeq), nil
	}
	return nil, fmt.Errorf("unknown invoice pattern %q (expected one of %s)", string(p), joinPatterns())
}

func yearMonthSeq(prefix string, seq int64, lines []models.JobLine) string {
	last := lines[len(lines)-1]
	return prefix + last.Dates.Format("200601") + strconv.FormatInt(seq, 10)
}

func yearMonthUnitSeq(prefix string, seq int64, lines []models.JobLine) string {
	last := lines[len(lines)-1]
	return fmt.Sprintf("%s%s-%s-%d", prefix, last.Dates.Format("2006-01"), last.Unit, seq)
}

func simpleSeq(prefix string, seq int64, _ []models.JobLine) string {
	return prefix + strconv.FormatInt(seq, 10)
}

func joinPatterns() string {
	names := make([]string, len(Patterns))
	for i, p := range Patterns {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}
