package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delga-0098/invoicegen/internal/validation"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// freezeToday pins the package clock for the duration of a test.
func freezeToday(t *testing.T, d time.Time) {
	t.Helper()
	prev := today
	today = func() time.Time { return d }
	t.Cleanup(func() { today = prev })
}

func baseAddressRecord() Record {
	return Record{
		"line1":       "1234 Main St.",
		"line2":       "5678 Main St.",
		"city":        "City",
		"state":       "California",
		"postal_code": "12345",
	}
}

func baseHeaderRecord() Record {
	return Record{
		"business": Record{
			"name":           " Business Name ",
			"address":        baseAddressRecord(),
			"logo":           "logo.jpg",
			"license_number": "14L782P",
			"tax_id":         "23-2098492",
			"contact": Record{
				"phone":   "1234567890",
				"email":   " johndoe123@gmail.com ",
				"website": "example.com",
			},
		},
		"client": Record{
			"name":         "John Doe",
			"address":      baseAddressRecord(),
			"project_name": "Project 1",
		},
		"meta": Record{
			"number":     "INV-0001",
			"start_date": "12/1/2025",
			"terms":      "Net 15",
		},
	}
}

func TestNewInvoiceHeader_HappyPath(t *testing.T) {
	h, err := NewInvoiceHeader(baseHeaderRecord())
	require.NoError(t, err)

	assert.Equal(t, "Business Name", h.Business.Name)
	assert.Equal(t, "1234 Main St.", h.Business.Address.Line1)
	assert.Equal(t, "5678 Main St.", h.Business.Address.Line2)
	assert.Equal(t, "US", h.Business.Address.Country)
	assert.Equal(t, "logo.jpg", h.Business.Logo)
	assert.Equal(t, "14L782P", h.Business.LicenseNumber)
	assert.Equal(t, "23-2098492", h.Business.TaxID)
	require.NotNil(t, h.Business.Contact)
	assert.Equal(t, "johndoe123@gmail.com", h.Business.Contact.Email)

	assert.Equal(t, "John Doe", h.Client.Name)
	assert.Equal(t, "Project 1", h.Client.ProjectName)
	assert.Nil(t, h.Client.Contact)

	assert.Equal(t, "INV-0001", h.Meta.Number)
	assert.Equal(t, day(2025, 12, 1), h.Meta.StartDate)
	assert.Equal(t, day(2025, 12, 16), h.Meta.DueDate)
	assert.Equal(t, "Net 15", h.Meta.Terms)
}

func TestNewAddress_Defaults(t *testing.T) {
	rec := baseAddressRecord()
	rec["line2"] = "   "

	a, err := NewAddress(rec)
	require.NoError(t, err)
	assert.Equal(t, "", a.Line2)
	assert.Equal(t, DefaultCountry, a.Country)

	rec["country"] = " MX "
	a, err = NewAddress(rec)
	require.NoError(t, err)
	assert.Equal(t, "MX", a.Country)
}

func TestNewAddress_Errors(t *testing.T) {
	tests := []struct {
		name  string
		field string
		raw   any
		kind  validation.Kind
	}{
		{"line1 blank", "line1", "  ", validation.KindEmpty},
		{"city missing", "city", nil, validation.KindType},
		{"state not string", "state", 12, validation.KindType},
		{"postal code blank", "postal_code", "", validation.KindEmpty},
		{"country blank", "country", " ", validation.KindEmpty},
		{"line2 not string", "line2", true, validation.KindType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := baseAddressRecord()
			rec[tt.field] = tt.raw

			_, err := NewAddress(rec)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			fe := fieldError(t, err)
			assert.Equal(t, "Address", fe.Entity)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestNewInvoiceHeader_NestedErrorPath(t *testing.T) {
	rec := baseHeaderRecord()
	rec["business"].(Record)["address"].(Record)["city"] = ""

	_, err := NewInvoiceHeader(rec)
	require.Error(t, err)
	assert.ErrorIs(t, err, validation.KindEmpty)

	fe := fieldError(t, err)
	assert.Equal(t, "InvoiceHeader", fe.Entity)
	assert.Equal(t, "business.address.city", fe.Field)
}

func TestNewInvoiceHeader_MissingSection(t *testing.T) {
	rec := baseHeaderRecord()
	delete(rec, "client")

	_, err := NewInvoiceHeader(rec)
	assert.ErrorIs(t, err, validation.KindType)

	rec = baseHeaderRecord()
	rec["meta"] = "INV-1"
	_, err = NewInvoiceHeader(rec)
	assert.ErrorIs(t, err, validation.KindType)
}

func TestNewInvoiceHeader_AcceptsValidatedSections(t *testing.T) {
	biz, err := NewBusinessInfo(baseHeaderRecord()["business"].(Record))
	require.NoError(t, err)

	h, err := NewInvoiceHeader(Record{
		"business": biz,
		"client":   map[string]any{"name": "Jane", "address": map[string]any(baseAddressRecord())},
		"meta":     Record{"number": "Placeholder", "start_date": "1/1/2025"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Business Name", h.Business.Name)
	assert.Equal(t, "Jane", h.Client.Name)

	// The header owns its own contact copy.
	h.Business.Contact.Phone = "000"
	assert.Equal(t, "1234567890", biz.Contact.Phone)
}

func TestNewInvoiceMeta_DueDates(t *testing.T) {
	freezeToday(t, day(2026, 3, 10))

	tests := []struct {
		name      string
		rec       Record
		wantStart time.Time
		wantDue   time.Time
	}{
		{
			name:      "no start and no terms is due today",
			rec:       Record{"number": "A"},
			wantStart: day(2026, 3, 10),
			wantDue:   day(2026, 3, 10),
		},
		{
			name:      "net 15",
			rec:       Record{"number": "A", "start_date": "1/1/2025", "terms": "Net 15"},
			wantStart: day(2025, 1, 1),
			wantDue:   day(2025, 1, 16),
		},
		{
			name:      "net 30",
			rec:       Record{"number": "A", "start_date": "1/1/2025", "terms": " Net 30 "},
			wantStart: day(2025, 1, 1),
			wantDue:   day(2025, 1, 31),
		},
		{
			name:      "net 60",
			rec:       Record{"number": "A", "start_date": "1/1/2025", "terms": "Net 60"},
			wantStart: day(2025, 1, 1),
			wantDue:   day(2025, 3, 2),
		},
		{
			name:      "net 90",
			rec:       Record{"number": "A", "start_date": "1/1/2025", "terms": "Net 90"},
			wantStart: day(2025, 1, 1),
			wantDue:   day(2025, 4, 1),
		},
		{
			name:      "unrecognized terms are kept and due on start",
			rec:       Record{"number": "A", "start_date": "1/1/2025", "terms": "Net 45"},
			wantStart: day(2025, 1, 1),
			wantDue:   day(2025, 1, 1),
		},
		{
			name:      "explicit due date wins over terms",
			rec:       Record{"number": "A", "start_date": "1/1/2025", "due_date": "2/1/2025", "terms": "Net 15"},
			wantStart: day(2025, 1, 1),
			wantDue:   day(2025, 2, 1),
		},
		{
			name:      "due on start date is allowed",
			rec:       Record{"number": "A", "start_date": "1/1/2025", "due_date": "01/01/2025"},
			wantStart: day(2025, 1, 1),
			wantDue:   day(2025, 1, 1),
		},
		{
			name:      "due date without start compares against today",
			rec:       Record{"number": "A", "due_date": "4/1/2026"},
			wantStart: day(2026, 3, 10),
			wantDue:   day(2026, 4, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewInvoiceMeta(tt.rec)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, m.StartDate)
			assert.Equal(t, tt.wantDue, m.DueDate)
		})
	}
}

func TestNewInvoiceMeta_Errors(t *testing.T) {
	freezeToday(t, day(2026, 3, 10))

	_, err := NewInvoiceMeta(Record{"number": "A", "start_date": "2/1/2025", "due_date": "1/31/2025"})
	require.Error(t, err)
	assert.ErrorIs(t, err, validation.KindInvalid)
	assert.Equal(t, "due_date", fieldError(t, err).Field)

	_, err = NewInvoiceMeta(Record{"number": "A", "due_date": "1/1/2026"})
	assert.ErrorIs(t, err, validation.KindInvalid)

	_, err = NewInvoiceMeta(Record{"number": " "})
	assert.ErrorIs(t, err, validation.KindEmpty)

	_, err = NewInvoiceMeta(Record{"number": "A", "start_date": "2025-01-01"})
	assert.ErrorIs(t, err, validation.KindFormat)

	_, err = NewInvoiceMeta(Record{"number": "A", "start_date": "18/56/2025"})
	assert.ErrorIs(t, err, validation.KindInvalid)

	_, err = NewInvoiceMeta(Record{"number": "A", "terms": 30})
	assert.ErrorIs(t, err, validation.KindType)
}

func TestInvoiceHeader_ForProjectDoesNotAlias(t *testing.T) {
	h, err := NewInvoiceHeader(baseHeaderRecord())
	require.NoError(t, err)

	a := h.ForProject("INV-1", "Elderwood")
	b := h.ForProject("INV-2", "Hill")

	assert.Equal(t, "INV-0001", h.Meta.Number)
	assert.Equal(t, "Project 1", h.Client.ProjectName)
	assert.Equal(t, "INV-1", a.Meta.Number)
	assert.Equal(t, "Elderwood", a.Client.ProjectName)
	assert.Equal(t, "INV-2", b.Meta.Number)
	assert.Equal(t, "Hill", b.Client.ProjectName)

	a.Business.Contact.Email = "changed@example.com"
	assert.Equal(t, "johndoe123@gmail.com", h.Business.Contact.Email)
	assert.Equal(t, "johndoe123@gmail.com", b.Business.Contact.Email)
}

func TestInvoiceHeader_RawRoundTrip(t *testing.T) {
	h, err := NewInvoiceHeader(baseHeaderRecord())
	require.NoError(t, err)

	again, err := NewInvoiceHeader(h.Raw())
	require.NoError(t, err)
	assert.Equal(t, h, again)
}

func fieldError(t *testing.T, err error) *validation.FieldError {
	t.Helper()
	var fe *validation.FieldError
	require.ErrorAs(t, err, &fe)
	return fe
}
