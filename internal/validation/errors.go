// =============================================================================
// Invoice Generator - Validation Errors
// =============================================================================
//
// Every failure raised while turning raw record values into entities is a
// FieldError. A FieldError always names the entity and field it belongs to
// and carries a Kind from the taxonomy below, so callers can branch with
// errors.Is without parsing messages.
//
// ERROR TAXONOMY:
//   - KindType      : wrong scalar kind for a field
//   - KindEmpty     : required string blank after trim
//   - KindLength    : length bound exceeded
//   - KindFormat    : value does not have the expected shape
//   - KindInvalid   : shape is right but the value is semantically impossible
//   - KindRange     : numeric value outside its allowed range
//   - KindStructure : structural violation (e.g. an invoice without lines)
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// ERROR KINDS
// =============================================================================

// Kind classifies a validation failure. Kind implements error so that it can
// be used as an errors.Is target.
type Kind int

const (
	KindType Kind = iota + 1
	KindEmpty
	KindLength
	KindFormat
	KindInvalid
	KindRange
	KindStructure
)

var kindNames = map[Kind]string{
	KindType:      "type mismatch",
	KindEmpty:     "empty value",
	KindLength:    "length exceeded",
	KindFormat:    "format mismatch",
	KindInvalid:   "invalid value",
	KindRange:     "out of range",
	KindStructure: "structural violation",
}

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error implements the error interface.
func (k Kind) Error() string {
	return k.String()
}

// ErrFloatInput marks a money or quantity value that arrived as binary
// floating point. It is always reported together with KindType.
var ErrFloatInput = errors.New("floating point input rejected")

// =============================================================================
// FIELD ERROR
// =============================================================================

// FieldError describes a single field that failed validation.
type FieldError struct {
	// Entity is the name of the entity being constructed (e.g. "JobLine").
	Entity string

	// Field is the name of the field that failed validation.
	Field string

	// Kind classifies the failure.
	Kind Kind

	// Value is the offending raw value, formatted for display.
	Value string

	// Message is a human-readable error message.
	Message string

	// Cause is an optional more specific sentinel (e.g. ErrFloatInput).
	Cause error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	var b strings.Builder
	if e.Entity != "" {
		b.WriteString(e.Entity)
		b.WriteString(".")
	}
	b.WriteString(e.Field)
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// Unwrap exposes the kind (and the cause, if any) to errors.Is.
func (e *FieldError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// newError builds a FieldError for a field with a formatted message.
func newError(kind Kind, field string, value any, format string, args ...any) *FieldError {
	return &FieldError{
		Field:   field,
		Kind:    kind,
		Value:   displayValue(value),
		Message: fmt.Sprintf(format, args...),
	}
}

// Errorf creates a FieldError for entity-level invariants that are checked
// outside the normalizers (due date ordering, empty line lists, ...).
func Errorf(entity, field string, kind Kind, format string, args ...any) *FieldError {
	return &FieldError{
		Entity:  entity,
		Field:   field,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// InEntity stamps the entity name onto err if it is a FieldError without one.
// Errors of any other type are returned unchanged.
func InEntity(entity string, err error) error {
	var fe *FieldError
	if errors.As(err, &fe) && fe.Entity == "" {
		fe.Entity = entity
	}
	return err
}

// =============================================================================
// RECORD ERRORS
// =============================================================================

// RecordError ties a validation failure to the raw record that produced it.
type RecordError struct {
	// Index is the zero-based position of the record in its batch.
	Index int

	// Row is the originating sheet row, or 0 when unknown.
	Row int

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *RecordError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("record %d: %v", e.Index+1, e.Err)
}

// Unwrap returns the underlying failure.
func (e *RecordError) Unwrap() error {
	return e.Err
}

// Errors is a collection of failures gathered across a batch.
type Errors []error

// Error implements the error interface.
func (es Errors) Error() string {
	switch len(es) {
	case 0:
		return "no validation errors"
	case 1:
		return es[0].Error()
	}
	return fmt.Sprintf("%d validation errors; first: %v", len(es), es[0])
}

// Unwrap allows errors.Is and errors.As to inspect every collected failure.
func (es Errors) Unwrap() []error {
	return es
}

// ErrOrNil returns nil for an empty collection so that callers can return it
// directly as an error.
func (es Errors) ErrOrNil() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
//
// PARAMETERS:
//   - err: A single error or an Errors collection.
//
// RETURNS:
//   - A numbered, newline-separated listing of every failure.
func FormatErrors(err error) string {
	if err == nil {
		return "No validation errors."
	}

	var list []error
	var es Errors
	if errors.As(err, &es) {
		list = es
	} else {
		list = []error{err}
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation completed with %d error(s):\n\n", len(list)))
	for i, e := range list {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, e.Error()))
	}
	return builder.String()
}

// displayValue renders a raw value for inclusion in an error.
func displayValue(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

// typeName returns the name used in type-mismatch messages.
func typeName(value any) string {
	if value == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", value)
}
