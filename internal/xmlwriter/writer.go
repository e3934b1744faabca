// =============================================================================
// Invoice Generator - XML Writer Module
// =============================================================================
//
// This module renders a built batch as an XML document for systems that
// import invoices rather than read them.
//
// XML STRUCTURE:
//
//   <invoices batch="...">                   <!-- Root element -->
//     <invoice n="1" number="INV-2024111">    <!-- One per project -->
//       <project>Elderwood</project>
//       <business>...</business>
//       <client>...</client>
//       <lineItem n="1">                       <!-- Global index by default -->
//         <description>First visit</description>
//       </lineItem>
//       <totals>...</totals>
//     </invoice>
//   </invoices>
//
// Money is written with two decimal places. Dates use MM/DD/YYYY.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/delga-0098/invoicegen/internal/builder"
	"github.com/delga-0098/invoicegen/internal/models"
	"github.com/delga-0098/invoicegen/internal/validation"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// LineItemNumberingGlobal determines if line item numbering is global.
	// If true: line items are numbered 1, 2, 3, 4... across all invoices.
	// If false: line items restart at 1 for each invoice.
	// Default: true
	LineItemNumberingGlobal bool
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                  "  ",
		IncludeXMLDeclaration:   true,
		LineItemNumberingGlobal: true,
	}
}

// =============================================================================
// DOCUMENT ELEMENTS
// =============================================================================

type document struct {
	XMLName       xml.Name  `xml:"invoices"`
	Batch         string    `xml:"batch,attr"`
	StartSequence int64     `xml:"startSequence,attr"`
	NextSequence  int64     `xml:"nextSequence,attr"`
	Invoices      []invoice `xml:"invoice"`
}

type invoice struct {
	Index     int        `xml:"n,attr"`
	Number    string     `xml:"number,attr"`
	Project   string     `xml:"project"`
	StartDate string     `xml:"startDate"`
	DueDate   string     `xml:"dueDate"`
	Terms     string     `xml:"terms,omitempty"`
	Business  party      `xml:"business"`
	Client    party      `xml:"client"`
	LineItems []lineItem `xml:"lineItem"`
	Payments  []payment  `xml:"payment,omitempty"`
	Totals    totals     `xml:"totals"`
}

type party struct {
	Name       string `xml:"name"`
	Line1      string `xml:"address>line1"`
	Line2      string `xml:"address>line2,omitempty"`
	City       string `xml:"address>city"`
	State      string `xml:"address>state"`
	PostalCode string `xml:"address>postalCode"`
	Country    string `xml:"address>country"`
}

type lineItem struct {
	Index       int    `xml:"n,attr"`
	SourceRow   int    `xml:"sourceRow,attr"`
	Date        string `xml:"date"`
	Unit        string `xml:"unit"`
	Description string `xml:"description"`
	Qty         string `xml:"qty"`
	Rate        string `xml:"rate"`
	Amount      string `xml:"amount"`
	Paid        bool   `xml:"paid"`
}

type payment struct {
	Date   string `xml:"date"`
	Amount string `xml:"amount"`
	Note   string `xml:"note,omitempty"`
}

type totals struct {
	Currency   string `xml:"currency,attr"`
	TaxRate    string `xml:"taxRatePercent,attr"`
	Subtotal   string `xml:"subtotal"`
	Tax        string `xml:"tax"`
	Total      string `xml:"total"`
	AmountPaid string `xml:"amountPaid"`
	BalanceDue string `xml:"balanceDue"`
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate creates an XML document from a batch using the default options.
func Generate(batch *builder.Batch) ([]byte, error) {
	return GenerateWithOptions(batch, DefaultGenerateOptions())
}

// GenerateWithOptions creates an XML document from a batch.
//
// PARAMETERS:
//   - batch: The built invoices.
//   - options: Formatting and numbering options.
//
// RETURNS:
//   - The XML document as a byte slice.
//   - An error if marshaling fails.
func GenerateWithOptions(batch *builder.Batch, options GenerateOptions) ([]byte, error) {
	if batch == nil {
		return nil, fmt.Errorf("no batch to generate")
	}

	doc := buildDocument(batch, options)

	var buffer bytes.Buffer
	if options.IncludeXMLDeclaration {
		buffer.WriteString(xml.Header)
	}

	enc := xml.NewEncoder(&buffer)
	enc.Indent("", options.Indent)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to marshal XML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal XML: %w", err)
	}
	buffer.WriteString("\n")

	return buffer.Bytes(), nil
}

func buildDocument(batch *builder.Batch, options GenerateOptions) document {
	doc := document{
		Batch:         batch.ID.String(),
		StartSequence: batch.StartSequence,
		NextSequence:  batch.NextSequence,
		Invoices:      make([]invoice, 0, len(batch.Invoices)),
	}

	globalLineItemIndex := 0
	for i, inv := range batch.Invoices {
		if !options.LineItemNumberingGlobal {
			globalLineItemIndex = 0
		}
		doc.Invoices = append(doc.Invoices, buildInvoiceElement(i+1, inv, &globalLineItemIndex))
	}
	return doc
}

func buildInvoiceElement(index int, inv *models.Invoice, lineItemIndex *int) invoice {
	meta := inv.Header.Meta
	el := invoice{
		Index:     index,
		Number:    inv.Number(),
		Project:   inv.Project(),
		StartDate: validation.FormatDate(meta.StartDate),
		DueDate:   validation.FormatDate(meta.DueDate),
		Terms:     meta.Terms,
		Business:  newParty(inv.Header.Business.Name, inv.Header.Business.Address),
		Client:    newParty(inv.Header.Client.Name, inv.Header.Client.Address),
		Totals: totals{
			Currency:   inv.Currency,
			TaxRate:    inv.TaxRatePercent().String(),
			Subtotal:   money(inv.Subtotal),
			Tax:        money(inv.TaxTotal),
			Total:      money(inv.Total),
			AmountPaid: money(inv.AmountPaid),
			BalanceDue: money(inv.BalanceDue),
		},
	}

	for _, line := range inv.Lines {
		*lineItemIndex++
		el.LineItems = append(el.LineItems, lineItem{
			Index:       *lineItemIndex,
			SourceRow:   line.SourceRow,
			Date:        validation.FormatDate(line.Dates),
			Unit:        line.Unit,
			Description: line.Description,
			Qty:         line.Qty.String(),
			Rate:        line.Rate.String(),
			Amount:      money(line.LineTotal),
			Paid:        line.Paid,
		})
	}

	for _, p := range inv.Payments {
		el.Payments = append(el.Payments, payment{
			Date:   validation.FormatDate(p.Dates),
			Amount: money(p.Amount),
			Note:   p.Note,
		})
	}
	return el
}

func newParty(name string, addr models.Address) party {
	return party{
		Name:       name,
		Line1:      addr.Line1,
		Line2:      addr.Line2,
		City:       addr.City,
		State:      addr.State,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(models.MoneyPlaces)
}
