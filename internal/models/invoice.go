// =============================================================================
// Invoice Generator - Invoices and Payments
// =============================================================================
//
// An Invoice aggregates one project's job lines under a numbered header and
// derives its totals with fixed-point arithmetic:
//
//   subtotal    = round(sum(line.line_total), 2)
//   amount_paid = round(sum(payment.amount), 2)
//   tax_total   = round(subtotal * tax_rate, 2)
//   total       = subtotal + tax_total
//   balance_due = total - amount_paid
//
// The tax rate is accepted as a percentage in [0, 100] and stored as a
// fraction in [0, 1].
//
// =============================================================================

package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/delga-0098/invoicegen/internal/validation"
)

// DefaultCurrency is the currency label used when none is configured.
const DefaultCurrency = "USD$"

var hundred = decimal.NewFromInt(100)

// =============================================================================
// PAYMENT
// =============================================================================

// Payment is a payment received against an invoice.
type Payment struct {
	Dates  time.Time
	Amount decimal.Decimal
	Note   string
}

// NewPayment validates a payment record. The amount is rounded to two
// places at validation time.
func NewPayment(r Record) (Payment, error) {
	p := newFieldParser("Payment", r)
	pay := Payment{
		Dates:  p.date("dates"),
		Amount: p.decimal("amount"),
		Note:   p.optional("note"),
	}
	if err := p.Err(); err != nil {
		return Payment{}, err
	}

	pay.Amount = Round2(pay.Amount)
	return pay, nil
}

// Raw returns the canonical field values as a Record.
func (p Payment) Raw() Record {
	r := Record{
		"dates":  validation.FormatDate(p.Dates),
		"amount": p.Amount,
	}
	putOptional(r, "note", p.Note)
	return r
}

// =============================================================================
// INVOICE
// =============================================================================

// InvoiceInput is the raw material for NewInvoice.
type InvoiceInput struct {
	Header InvoiceHeader
	Lines  []JobLine

	// Currency defaults to DefaultCurrency when empty.
	Currency string

	// TaxRatePercent is a percentage in [0, 100]. Zero means untaxed.
	TaxRatePercent decimal.Decimal

	// Payments may be nil; an empty slice is treated as nil.
	Payments []Payment
}

// Invoice is a numbered bill for one project with derived totals.
type Invoice struct {
	Header   InvoiceHeader
	Lines    []JobLine
	Currency string

	// TaxRate is a fraction in [0, 1].
	TaxRate  decimal.Decimal
	Payments []Payment

	Subtotal   decimal.Decimal
	TaxTotal   decimal.Decimal
	Total      decimal.Decimal
	AmountPaid decimal.Decimal
	BalanceDue decimal.Decimal
}

// NewInvoice validates the input and computes every derived total. The
// invoice owns copies of the header, lines and payments.
func NewInvoice(in InvoiceInput) (*Invoice, error) {
	if len(in.Lines) == 0 {
		return nil, validation.Errorf("Invoice", "lines", validation.KindStructure,
			"job lines are empty, must include at least one line")
	}

	if in.TaxRatePercent.IsNegative() || in.TaxRatePercent.GreaterThan(hundred) {
		return nil, validation.Errorf("Invoice", "tax_rate", validation.KindRange,
			"tax rate should be between 0 and 100, got %s", in.TaxRatePercent.String())
	}

	currency := in.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	inv := &Invoice{
		Header:   in.Header.Clone(),
		Lines:    append([]JobLine(nil), in.Lines...),
		Currency: currency,
		TaxRate:  in.TaxRatePercent.Div(hundred),
	}
	if len(in.Payments) > 0 {
		inv.Payments = append([]Payment(nil), in.Payments...)
	}

	inv.compute()
	return inv, nil
}

// compute derives the five totals from lines, payments and tax rate.
func (inv *Invoice) compute() {
	lineTotals := make([]decimal.Decimal, len(inv.Lines))
	for i, line := range inv.Lines {
		lineTotals[i] = line.LineTotal
	}

	amounts := make([]decimal.Decimal, len(inv.Payments))
	for i, p := range inv.Payments {
		amounts[i] = p.Amount
	}

	inv.Subtotal = Round2(sum(lineTotals))
	inv.AmountPaid = Round2(sum(amounts))
	inv.TaxTotal = Round2(inv.Subtotal.Mul(inv.TaxRate))
	inv.Total = inv.Subtotal.Add(inv.TaxTotal)
	inv.BalanceDue = inv.Total.Sub(inv.AmountPaid)
}

// TaxRatePercent returns the tax rate as a percentage.
func (inv *Invoice) TaxRatePercent() decimal.Decimal {
	return inv.TaxRate.Mul(hundred)
}

// Number returns the invoice number.
func (inv *Invoice) Number() string {
	return inv.Header.Meta.Number
}

// Project returns the project (address) the invoice bills.
func (inv *Invoice) Project() string {
	return inv.Header.Client.ProjectName
}

// Paid reports whether every job line on the invoice is marked paid.
func (inv *Invoice) Paid() bool {
	for _, line := range inv.Lines {
		if !line.Paid {
			return false
		}
	}
	return true
}

// Period returns the first and last job dates on the invoice.
func (inv *Invoice) Period() (first, last time.Time) {
	for i, line := range inv.Lines {
		if i == 0 || line.Dates.Before(first) {
			first = line.Dates
		}
		if i == 0 || line.Dates.After(last) {
			last = line.Dates
		}
	}
	return first, last
}
