// =============================================================================
// Invoice Generator - Header Entities
// =============================================================================
//
// Address, ContactInfo, BusinessInfo, ClientInfo, InvoiceMeta, and their
// composition InvoiceHeader. Optional string fields use "" for absent; a
// blank input never survives validation.
//
// =============================================================================

package models

import (
	"time"

	"github.com/delga-0098/invoicegen/internal/validation"
)

// DefaultCountry is used when an address omits its country.
const DefaultCountry = "US"

// =============================================================================
// ADDRESS
// =============================================================================

// Address is a postal address. Line2 is optional.
type Address struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// NewAddress validates an address record.
func NewAddress(r Record) (Address, error) {
	p := newFieldParser("Address", r)
	a := Address{
		Line1:      p.required("line1"),
		Line2:      p.optional("line2"),
		City:       p.required("city"),
		State:      p.required("state"),
		PostalCode: p.required("postal_code"),
		Country:    p.optionalDefault("country", DefaultCountry),
	}
	if err := p.Err(); err != nil {
		return Address{}, err
	}
	return a, nil
}

// Raw returns the canonical field values as a Record.
func (a Address) Raw() Record {
	r := Record{
		"line1":       a.Line1,
		"city":        a.City,
		"state":       a.State,
		"postal_code": a.PostalCode,
		"country":     a.Country,
	}
	if a.Line2 != "" {
		r["line2"] = a.Line2
	}
	return r
}

// =============================================================================
// CONTACT INFO
// =============================================================================

// ContactInfo holds optional contact details.
type ContactInfo struct {
	Phone   string
	Email   string
	Website string
}

// NewContactInfo validates a contact record. Every field is optional.
func NewContactInfo(r Record) (ContactInfo, error) {
	p := newFieldParser("ContactInfo", r)
	c := ContactInfo{
		Phone:   p.optional("phone"),
		Email:   p.optional("email"),
		Website: p.optional("website"),
	}
	if err := p.Err(); err != nil {
		return ContactInfo{}, err
	}
	return c, nil
}

// Raw returns the canonical field values as a Record.
func (c ContactInfo) Raw() Record {
	r := Record{}
	putOptional(r, "phone", c.Phone)
	putOptional(r, "email", c.Email)
	putOptional(r, "website", c.Website)
	return r
}

// =============================================================================
// BUSINESS INFO
// =============================================================================

// BusinessInfo describes the business issuing invoices.
type BusinessInfo struct {
	Name          string
	Address       Address
	Logo          string
	Contact       *ContactInfo
	LicenseNumber string
	TaxID         string
}

// NewBusinessInfo validates a business record. The "address" field may be a
// nested record or an already validated Address.
func NewBusinessInfo(r Record) (BusinessInfo, error) {
	p := newFieldParser("BusinessInfo", r)
	b := BusinessInfo{
		Name:          p.required("name"),
		Address:       p.address("address"),
		Logo:          p.optional("logo"),
		Contact:       p.contact("contact"),
		LicenseNumber: p.optional("license_number"),
		TaxID:         p.optional("tax_id"),
	}
	if err := p.Err(); err != nil {
		return BusinessInfo{}, err
	}
	return b, nil
}

// Raw returns the canonical field values as a Record.
func (b BusinessInfo) Raw() Record {
	r := Record{
		"name":    b.Name,
		"address": b.Address.Raw(),
	}
	putOptional(r, "logo", b.Logo)
	putOptional(r, "license_number", b.LicenseNumber)
	putOptional(r, "tax_id", b.TaxID)
	if b.Contact != nil {
		r["contact"] = b.Contact.Raw()
	}
	return r
}

func (b BusinessInfo) clone() BusinessInfo {
	b.Contact = cloneContact(b.Contact)
	return b
}

// =============================================================================
// CLIENT INFO
// =============================================================================

// ClientInfo describes the billed client. ProjectName is set per invoice by
// the builder.
type ClientInfo struct {
	Name        string
	Address     Address
	Contact     *ContactInfo
	ProjectName string
}

// NewClientInfo validates a client record.
func NewClientInfo(r Record) (ClientInfo, error) {
	p := newFieldParser("ClientInfo", r)
	c := ClientInfo{
		Name:        p.required("name"),
		Address:     p.address("address"),
		Contact:     p.contact("contact"),
		ProjectName: p.optional("project_name"),
	}
	if err := p.Err(); err != nil {
		return ClientInfo{}, err
	}
	return c, nil
}

// Raw returns the canonical field values as a Record.
func (c ClientInfo) Raw() Record {
	r := Record{
		"name":    c.Name,
		"address": c.Address.Raw(),
	}
	putOptional(r, "project_name", c.ProjectName)
	if c.Contact != nil {
		r["contact"] = c.Contact.Raw()
	}
	return r
}

func (c ClientInfo) clone() ClientInfo {
	c.Contact = cloneContact(c.Contact)
	return c
}

// =============================================================================
// INVOICE META
// =============================================================================

// today returns the current calendar date at midnight UTC. Tests replace it.
var today = func() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// InvoiceMeta carries the invoice number and its dates.
type InvoiceMeta struct {
	Number    string
	StartDate time.Time
	DueDate   time.Time
	Terms     string
}

// NewInvoiceMeta validates a meta record.
//
// POST-VALIDATION:
//   - An absent start_date becomes today.
//   - An explicit due_date earlier than start_date fails with KindInvalid.
//   - An absent due_date is derived from terms (see TermDays); absent or
//     unrecognized terms make the invoice due on its start date.
func NewInvoiceMeta(r Record) (InvoiceMeta, error) {
	p := newFieldParser("InvoiceMeta", r)
	m := InvoiceMeta{
		Number: p.required("number"),
	}
	start, hasStart := p.optionalDate("start_date")
	due, hasDue := p.optionalDate("due_date")
	m.Terms = p.optional("terms")
	if err := p.Err(); err != nil {
		return InvoiceMeta{}, err
	}

	if !hasStart {
		start = today()
	}
	m.StartDate = start

	if hasDue {
		if due.Before(start) {
			return InvoiceMeta{}, validation.Errorf("InvoiceMeta", "due_date", validation.KindInvalid,
				"due date %s must not be before start date %s",
				validation.FormatDate(due), validation.FormatDate(start))
		}
		m.DueDate = due
		return m, nil
	}

	m.DueDate = dueFromTerms(start, m.Terms)
	return m, nil
}

// Raw returns the canonical field values as a Record.
func (m InvoiceMeta) Raw() Record {
	r := Record{
		"number":     m.Number,
		"start_date": validation.FormatDate(m.StartDate),
		"due_date":   validation.FormatDate(m.DueDate),
	}
	putOptional(r, "terms", m.Terms)
	return r
}

// =============================================================================
// INVOICE HEADER
// =============================================================================

// InvoiceHeader groups the business, client, and meta sections of an invoice.
type InvoiceHeader struct {
	Business BusinessInfo
	Client   ClientInfo
	Meta     InvoiceMeta
}

// NewInvoiceHeader validates a header record whose "business", "client" and
// "meta" fields are nested records or already validated entities.
func NewInvoiceHeader(r Record) (InvoiceHeader, error) {
	var h InvoiceHeader
	p := newFieldParser("InvoiceHeader", r)

	switch v := r.Get("business").(type) {
	case BusinessInfo:
		h.Business = v.clone()
	default:
		rec := nestedRecord(p, "business")
		if p.err == nil {
			b, err := NewBusinessInfo(rec)
			p.nested("business", err)
			h.Business = b
		}
	}

	switch v := r.Get("client").(type) {
	case ClientInfo:
		h.Client = v.clone()
	default:
		rec := nestedRecord(p, "client")
		if p.err == nil {
			c, err := NewClientInfo(rec)
			p.nested("client", err)
			h.Client = c
		}
	}

	switch v := r.Get("meta").(type) {
	case InvoiceMeta:
		h.Meta = v
	default:
		rec := nestedRecord(p, "meta")
		if p.err == nil {
			m, err := NewInvoiceMeta(rec)
			p.nested("meta", err)
			h.Meta = m
		}
	}

	if err := p.Err(); err != nil {
		return InvoiceHeader{}, err
	}
	return h, nil
}

// Clone returns a deep copy of the header. Invoices built from one header
// template never share mutable state.
func (h InvoiceHeader) Clone() InvoiceHeader {
	return InvoiceHeader{
		Business: h.Business.clone(),
		Client:   h.Client.clone(),
		Meta:     h.Meta,
	}
}

// ForProject returns a copy of the header numbered and labelled for one
// project. The receiver is not modified.
func (h InvoiceHeader) ForProject(number, project string) InvoiceHeader {
	c := h.Clone()
	c.Meta.Number = number
	c.Client.ProjectName = project
	return c
}

// Raw returns the canonical field values as a Record.
func (h InvoiceHeader) Raw() Record {
	return Record{
		"business": h.Business.Raw(),
		"client":   h.Client.Raw(),
		"meta":     h.Meta.Raw(),
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func nestedRecord(p *fieldParser, key string) Record {
	if p.err != nil {
		return nil
	}
	rec, ok, err := asRecord(p.rec.Get(key), key)
	if err != nil {
		p.fail(err)
		return nil
	}
	if !ok {
		p.fail(requireNested(key))
		return nil
	}
	return rec
}

func putOptional(r Record, key, value string) {
	if value != "" {
		r[key] = value
	}
}

func cloneContact(c *ContactInfo) *ContactInfo {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
