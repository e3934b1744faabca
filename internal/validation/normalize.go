// =============================================================================
// Invoice Generator - Field Normalizers
// =============================================================================
//
// Pure functions turning a raw scalar (as decoded from a sheet, a YAML file,
// or built by a caller) into a canonical typed value. Each normalizer takes
// the raw value and the field name used in error messages.
//
// SUPPORTED FIELD TYPES:
//   - NonEmptyString   : required text, trimmed
//   - OptionalString   : text or nil, trimmed, blank becomes absent ("")
//   - Description      : required text, at most MaxDescriptionLength runes
//   - Date             : MM/DD/YYYY text, 1-2 digit month/day
//   - Decimal          : non-negative exact decimal from text/int/decimal
//   - Bool             : native bool or "true"/"false" text
//   - SourceRow        : native integer greater than the reserved header rows
//
// =============================================================================

package validation

import (
	"math/big"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// MaxDescriptionLength is the longest description accepted, in characters.
const MaxDescriptionLength = 2000

// ReservedHeaderRows is the number of sheet rows reserved for headers.
// Data rows are numbered from ReservedHeaderRows+1.
const ReservedHeaderRows = 2

// DateLayout is the layout used to parse and render calendar dates.
const DateLayout = "1/2/2006"

var (
	datePattern    = regexp.MustCompile(`^[0-9]{1,2}/[0-9]{1,2}/[0-9]{4}$`)
	decimalPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)
	decimalStrip   = strings.NewReplacer("$", "", ",", "")
)

// =============================================================================
// STRING NORMALIZERS
// =============================================================================

// NonEmptyString requires textual input and returns it trimmed. Blank input
// fails with KindEmpty.
func NonEmptyString(value any, field string) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", newError(KindType, field, value, "%s must be a string, got %s", field, typeName(value))
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return "", newError(KindEmpty, field, value, "%s is empty, expected a value", field)
	}

	return s, nil
}

// OptionalString passes nil through as absent and turns blank text into
// absent. Absent is represented by the empty string.
func OptionalString(value any, field string) (string, error) {
	if value == nil {
		return "", nil
	}

	s, ok := value.(string)
	if !ok {
		return "", newError(KindType, field, value, "%s must be a string, got %s", field, typeName(value))
	}

	return strings.TrimSpace(s), nil
}

// Description is NonEmptyString with an upper bound of MaxDescriptionLength
// characters after trimming.
func Description(value any, field string) (string, error) {
	s, err := NonEmptyString(value, field)
	if err != nil {
		return "", err
	}

	if n := utf8.RuneCountInString(s); n > MaxDescriptionLength {
		return "", newError(KindLength, field, value,
			"%s is too long (max %d chars, got %d)", field, MaxDescriptionLength, n)
	}

	return s, nil
}

// =============================================================================
// DATE NORMALIZER
// =============================================================================

// Date parses a MM/DD/YYYY calendar date. A value with the wrong shape fails
// with KindFormat; a well-shaped but impossible date (month 18, day 56)
// fails with KindInvalid. The result is midnight UTC.
func Date(value any, field string) (time.Time, error) {
	s, ok := value.(string)
	if !ok {
		return time.Time{}, newError(KindType, field, value,
			"%s must be a string in MM/DD/YYYY format, got %s", field, typeName(value))
	}

	s = strings.TrimSpace(s)
	if !datePattern.MatchString(s) {
		return time.Time{}, newError(KindFormat, field, value,
			"invalid date format '%s' (expected MM/DD/YYYY)", s)
	}

	parsed, err := time.Parse(DateLayout, s)
	if err != nil || parsed.Year() < 1 {
		return time.Time{}, newError(KindInvalid, field, value,
			"invalid calendar date '%s' (MM/DD/YYYY)", s)
	}

	return parsed, nil
}

// FormatDate renders a date in the same MM/DD/YYYY form Date accepts.
func FormatDate(t time.Time) string {
	return t.Format("01/02/2006")
}

// =============================================================================
// DECIMAL NORMALIZER
// =============================================================================

// Decimal converts text, integer, or exact-decimal input into a non-negative
// decimal.Decimal. Binary floating point is rejected outright. Text may carry
// surrounding whitespace, "$" and "," characters, which are stripped first.
func Decimal(value any, field string) (decimal.Decimal, error) {
	var d decimal.Decimal

	switch v := value.(type) {
	case float32, float64:
		fe := newError(KindType, field, value,
			"%s must not be a float, please use string, decimal, or int", field)
		fe.Cause = ErrFloatInput
		return decimal.Zero, fe

	case string:
		s := decimalStrip.Replace(strings.TrimSpace(v))
		if s == "" {
			return decimal.Zero, newError(KindEmpty, field, value,
				"%s is empty after removing symbols; provide a number", field)
		}
		if !decimalPattern.MatchString(s) {
			return decimal.Zero, newError(KindFormat, field, value,
				"%s must be digits.decimals (e.g. 1.5, 65)", field)
		}
		parsed, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, newError(KindInvalid, field, value,
				"%s must be a finite number", field)
		}
		d = parsed

	case decimal.Decimal:
		d = v
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, newError(KindType, field, value,
				"%s must be a string, int, or decimal, got nil", field)
		}
		d = *v

	case int:
		d = decimal.NewFromInt(int64(v))
	case int8:
		d = decimal.NewFromInt(int64(v))
	case int16:
		d = decimal.NewFromInt(int64(v))
	case int32:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	case uint:
		d = decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(v)), 0)
	case uint8:
		d = decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(v)), 0)
	case uint16:
		d = decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(v)), 0)
	case uint32:
		d = decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(v)), 0)
	case uint64:
		d = decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)

	default:
		return decimal.Zero, newError(KindType, field, value,
			"%s must be a string, int, or decimal, got %s", field, typeName(value))
	}

	if d.IsNegative() {
		return decimal.Zero, newError(KindInvalid, field, value,
			"%s must be at least 0: got %s", field, d.String())
	}

	return d, nil
}

// =============================================================================
// BOOLEAN AND INTEGER NORMALIZERS
// =============================================================================

// Bool accepts a native bool or the case-insensitive text "true"/"false".
func Bool(value any, field string) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return false, newError(KindFormat, field, value,
			"%s must be true or false, got '%s'", field, v)
	}

	return false, newError(KindType, field, value,
		"%s must be a string or boolean true or false, got %s", field, typeName(value))
}

// SourceRow accepts a native integer strictly greater than
// ReservedHeaderRows. Booleans and text are type mismatches.
func SourceRow(value any, field string) (int, error) {
	var n int64

	switch v := value.(type) {
	case int:
		n = int64(v)
	case int8:
		n = int64(v)
	case int16:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case uint8:
		n = int64(v)
	case uint16:
		n = int64(v)
	case uint32:
		n = int64(v)
	default:
		return 0, newError(KindType, field, value,
			"%s must be an integer, got %s", field, typeName(value))
	}

	if n <= ReservedHeaderRows {
		return 0, newError(KindRange, field, value,
			"%s must be greater than %d (rows 1-%d are headers), got %d",
			field, ReservedHeaderRows, ReservedHeaderRows, n)
	}

	return int(n), nil
}
