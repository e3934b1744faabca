// =============================================================================
// Invoice Generator - Raw Records
// =============================================================================
//
// A Record is one raw field-to-value mapping as supplied by a caller: a row
// read from a job sheet, a document decoded from YAML, or a map built in code.
// Values are untyped scalars (string, integer, bool, decimal.Decimal), nested
// Records for owned entities, or already-validated entities.
//
// Entity constructors in this package validate a Record field by field and
// either return a fully built entity or fail; there is no partial entity.
//
// =============================================================================

package models

import (
	"github.com/delga-0098/invoicegen/internal/validation"
)

// Record is a raw field-to-value mapping.
type Record map[string]any

// Get returns the raw value for key, or nil when the key is absent.
func (r Record) Get(key string) any {
	if r == nil {
		return nil
	}
	return r[key]
}

// Has reports whether key is present with a non-nil value.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// asRecord converts a nested raw value into a Record. YAML decoding yields
// map[string]any, so both spellings are accepted.
func asRecord(value any, field string) (Record, bool, error) {
	switch v := value.(type) {
	case nil:
		return nil, false, nil
	case Record:
		return v, true, nil
	case map[string]any:
		return Record(v), true, nil
	}
	return nil, false, validation.Errorf("", field, validation.KindType,
		"%s must be a mapping, got %T", field, value)
}

// requireNested fails with KindType when a required owned entity is missing.
func requireNested(field string) error {
	return validation.Errorf("", field, validation.KindType, "%s is required", field)
}
