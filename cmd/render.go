package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/delga-0098/invoicegen/internal/builder"
	"github.com/delga-0098/invoicegen/internal/models"
	"github.com/delga-0098/invoicegen/internal/validation"
	"github.com/delga-0098/invoicegen/internal/xmlwriter"
)

// renderer writes a batch in one output format.
type renderer func(w io.Writer, batch *builder.Batch) error

func rendererFor(format string) (renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text", "":
		return renderText, nil
	case "yaml", "yml":
		return renderYAML, nil
	case "xml":
		return renderXML, nil
	}
	return nil, fmt.Errorf("unknown output format %q (expected text, yaml or xml)", format)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(models.MoneyPlaces)
}

// =============================================================================
// TEXT OUTPUT
// =============================================================================

func renderText(w io.Writer, batch *builder.Batch) error {
	fmt.Fprintf(w, "Batch %s: %d invoice(s), sequence %d -> %d\n",
		batch.ID, len(batch.Invoices), batch.StartSequence, batch.NextSequence)

	for _, inv := range batch.Invoices {
		h := inv.Header
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Invoice %s  %s\n", inv.Number(), inv.Project())
		fmt.Fprintf(w, "From: %s\n", h.Business.Name)
		fmt.Fprintf(w, "To:   %s\n", h.Client.Name)
		fmt.Fprintf(w, "Date: %s  Due: %s", validation.FormatDate(h.Meta.StartDate), validation.FormatDate(h.Meta.DueDate))
		if h.Meta.Terms != "" {
			fmt.Fprintf(w, "  (%s)", h.Meta.Terms)
		}
		fmt.Fprintln(w)

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Row\tDate\tUnit\tDescription\tQty\tRate\tAmount\tPaid\t")
		for _, line := range inv.Lines {
			paid := ""
			if line.Paid {
				paid = "yes"
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
				line.SourceRow,
				validation.FormatDate(line.Dates),
				line.Unit,
				truncate(line.Description, 40),
				line.Qty.String(),
				line.Rate.String(),
				money(line.LineTotal),
				paid,
			)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintf(tw, "Subtotal\t%s %s\t\n", inv.Currency, money(inv.Subtotal))
		fmt.Fprintf(tw, "Tax (%s%%)\t%s %s\t\n", inv.TaxRatePercent().String(), inv.Currency, money(inv.TaxTotal))
		fmt.Fprintf(tw, "Total\t%s %s\t\n", inv.Currency, money(inv.Total))
		if inv.Payments != nil {
			fmt.Fprintf(tw, "Paid\t%s %s\t\n", inv.Currency, money(inv.AmountPaid))
		}
		fmt.Fprintf(tw, "Balance due\t%s %s\t\n", inv.Currency, money(inv.BalanceDue))
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// =============================================================================
// YAML OUTPUT
// =============================================================================

type batchView struct {
	BatchID       string        `yaml:"batch_id"`
	StartSequence int64         `yaml:"start_sequence"`
	NextSequence  int64         `yaml:"next_sequence"`
	Invoices      []invoiceView `yaml:"invoices"`
}

type invoiceView struct {
	Number     string        `yaml:"number"`
	Project    string        `yaml:"project"`
	Business   string        `yaml:"business"`
	Client     string        `yaml:"client"`
	StartDate  string        `yaml:"start_date"`
	DueDate    string        `yaml:"due_date"`
	Terms      string        `yaml:"terms,omitempty"`
	Currency   string        `yaml:"currency"`
	TaxRate    string        `yaml:"tax_rate_percent"`
	Lines      []lineView    `yaml:"lines"`
	Payments   []paymentView `yaml:"payments,omitempty"`
	Subtotal   string        `yaml:"subtotal"`
	TaxTotal   string        `yaml:"tax_total"`
	Total      string        `yaml:"total"`
	AmountPaid string        `yaml:"amount_paid"`
	BalanceDue string        `yaml:"balance_due"`
	Paid       bool          `yaml:"paid"`
}

type lineView struct {
	SourceRow   int    `yaml:"source_row"`
	Dates       string `yaml:"dates"`
	Unit        string `yaml:"unit"`
	Description string `yaml:"description"`
	Qty         string `yaml:"qty"`
	Rate        string `yaml:"rate"`
	LineTotal   string `yaml:"line_total"`
	Paid        bool   `yaml:"paid"`
}

type paymentView struct {
	Dates  string `yaml:"dates"`
	Amount string `yaml:"amount"`
	Note   string `yaml:"note,omitempty"`
}

func newBatchView(batch *builder.Batch) batchView {
	view := batchView{
		BatchID:       batch.ID.String(),
		StartSequence: batch.StartSequence,
		NextSequence:  batch.NextSequence,
		Invoices:      make([]invoiceView, 0, len(batch.Invoices)),
	}

	for _, inv := range batch.Invoices {
		iv := invoiceView{
			Number:     inv.Number(),
			Project:    inv.Project(),
			Business:   inv.Header.Business.Name,
			Client:     inv.Header.Client.Name,
			StartDate:  validation.FormatDate(inv.Header.Meta.StartDate),
			DueDate:    validation.FormatDate(inv.Header.Meta.DueDate),
			Terms:      inv.Header.Meta.Terms,
			Currency:   inv.Currency,
			TaxRate:    inv.TaxRatePercent().String(),
			Subtotal:   money(inv.Subtotal),
			TaxTotal:   money(inv.TaxTotal),
			Total:      money(inv.Total),
			AmountPaid: money(inv.AmountPaid),
			BalanceDue: money(inv.BalanceDue),
			Paid:       inv.Paid(),
		}
		for _, line := range inv.Lines {
			iv.Lines = append(iv.Lines, lineView{
				SourceRow:   line.SourceRow,
				Dates:       validation.FormatDate(line.Dates),
				Unit:        line.Unit,
				Description: line.Description,
				Qty:         line.Qty.String(),
				Rate:        line.Rate.String(),
				LineTotal:   money(line.LineTotal),
				Paid:        line.Paid,
			})
		}
		for _, p := range inv.Payments {
			iv.Payments = append(iv.Payments, paymentView{
				Dates:  validation.FormatDate(p.Dates),
				Amount: money(p.Amount),
				Note:   p.Note,
			})
		}
		view.Invoices = append(view.Invoices, iv)
	}
	return view
}

func renderYAML(w io.Writer, batch *builder.Batch) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newBatchView(batch)); err != nil {
		return fmt.Errorf("failed to encode invoices: %w", err)
	}
	return enc.Close()
}

// =============================================================================
// XML OUTPUT
// =============================================================================

func renderXML(w io.Writer, batch *builder.Batch) error {
	data, err := xmlwriter.Generate(batch)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
