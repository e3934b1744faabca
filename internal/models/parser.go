package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/delga-0098/invoicegen/internal/validation"
)

// fieldParser applies the normalizers to one Record in a fixed order. The
// first failure is kept and every later call becomes a no-op, so an entity
// constructor reads as a plain list of fields followed by a single Err check.
type fieldParser struct {
	entity string
	rec    Record
	err    error
}

func newFieldParser(entity string, rec Record) *fieldParser {
	return &fieldParser{entity: entity, rec: rec}
}

// Err returns the first failure, stamped with the entity name.
func (p *fieldParser) Err() error {
	if p.err == nil {
		return nil
	}
	return validation.InEntity(p.entity, p.err)
}

func (p *fieldParser) fail(err error) bool {
	if err != nil && p.err == nil {
		p.err = err
	}
	return p.err != nil
}

func (p *fieldParser) required(key string) string {
	if p.err != nil {
		return ""
	}
	s, err := validation.NonEmptyString(p.rec.Get(key), key)
	p.fail(err)
	return s
}

func (p *fieldParser) optional(key string) string {
	if p.err != nil {
		return ""
	}
	s, err := validation.OptionalString(p.rec.Get(key), key)
	p.fail(err)
	return s
}

// optionalDefault returns def when key is absent and validates it as a
// required string otherwise.
func (p *fieldParser) optionalDefault(key, def string) string {
	if !p.rec.Has(key) {
		return def
	}
	return p.required(key)
}

func (p *fieldParser) description(key string) string {
	if p.err != nil {
		return ""
	}
	s, err := validation.Description(p.rec.Get(key), key)
	p.fail(err)
	return s
}

func (p *fieldParser) date(key string) time.Time {
	if p.err != nil {
		return time.Time{}
	}
	d, err := validation.Date(p.rec.Get(key), key)
	p.fail(err)
	return d
}

func (p *fieldParser) optionalDate(key string) (time.Time, bool) {
	if !p.rec.Has(key) {
		return time.Time{}, false
	}
	d := p.date(key)
	return d, p.err == nil
}

func (p *fieldParser) decimal(key string) decimal.Decimal {
	if p.err != nil {
		return decimal.Zero
	}
	d, err := validation.Decimal(p.rec.Get(key), key)
	p.fail(err)
	return d
}

func (p *fieldParser) boolean(key string, def bool) bool {
	if p.err != nil || !p.rec.Has(key) {
		return def
	}
	b, err := validation.Bool(p.rec.Get(key), key)
	p.fail(err)
	return b
}

func (p *fieldParser) sourceRow(key string) int {
	if p.err != nil {
		return 0
	}
	n, err := validation.SourceRow(p.rec.Get(key), key)
	p.fail(err)
	return n
}

// nested records a failure from an owned entity under this entity, with the
// field path prefixed by key (e.g. "address.line1").
func (p *fieldParser) nested(key string, err error) {
	if err == nil {
		return
	}
	var fe *validation.FieldError
	if errors.As(err, &fe) {
		fe.Entity = p.entity
		fe.Field = key + "." + fe.Field
	}
	p.fail(err)
}

func (p *fieldParser) address(key string) Address {
	if p.err != nil {
		return Address{}
	}
	switch v := p.rec.Get(key).(type) {
	case Address:
		return v
	case *Address:
		if v != nil {
			return *v
		}
	}
	rec, ok, err := asRecord(p.rec.Get(key), key)
	if err != nil {
		p.fail(err)
		return Address{}
	}
	if !ok {
		p.fail(requireNested(key))
		return Address{}
	}
	a, err := NewAddress(rec)
	p.nested(key, err)
	return a
}

func (p *fieldParser) contact(key string) *ContactInfo {
	if p.err != nil {
		return nil
	}
	switch v := p.rec.Get(key).(type) {
	case ContactInfo:
		return &v
	case *ContactInfo:
		if v != nil {
			c := *v
			return &c
		}
	}
	rec, ok, err := asRecord(p.rec.Get(key), key)
	if err != nil {
		p.fail(err)
		return nil
	}
	if !ok {
		return nil
	}
	c, err := NewContactInfo(rec)
	p.nested(key, err)
	return &c
}
