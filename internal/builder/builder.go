// =============================================================================
// Invoice Generator - Batch Builder
// =============================================================================
//
// The builder turns a batch of validated job lines into numbered invoices.
//
// BUILD PIPELINE:
//   1. Group job lines by address into projects (first-seen order)
//   2. Sort each project's lines by date (stable; ties keep input order)
//   3. Number each project from the running sequence
//   4. Copy the header for the project and stamp number and project name
//   5. Construct the Invoice, which computes its totals
//
// SEQUENCE COUNTER:
//   The builder never mutates configuration. It reads Settings.SequenceStart
//   as a snapshot and reports the next unused value in Batch.NextSequence;
//   committing it is up to the caller.
//
// CONCURRENCY:
//   A Builder holds no mutable state and may be shared between goroutines.
//   Batches built concurrently from the same starting sequence will reuse
//   numbers, so callers that persist the counter must serialize commits.
//
// =============================================================================

package builder

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/delga-0098/invoicegen/internal/models"
	"github.com/delga-0098/invoicegen/internal/numbering"
)

// =============================================================================
// SETTINGS AND OPTIONS
// =============================================================================

// Settings holds the configuration values a build depends on.
type Settings struct {
	// Pattern selects the numbering strategy. Empty means the default.
	Pattern numbering.Pattern

	// Prefix is prepended to every invoice number.
	Prefix string

	// SequenceStart is the sequence value given to the first invoice.
	SequenceStart int64

	// TaxRatePercent is applied to every invoice, in [0, 100].
	TaxRatePercent decimal.Decimal

	// Currency labels every invoice. Empty means models.DefaultCurrency.
	Currency string
}

// Option customizes a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for build events.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithPayments attaches payments to projects, keyed by job line address.
func WithPayments(payments map[string][]models.Payment) Option {
	return func(b *Builder) {
		b.payments = payments
	}
}

// =============================================================================
// BUILDER
// =============================================================================

// Builder groups, numbers and prices job lines.
type Builder struct {
	settings Settings
	numberer numbering.Numberer
	payments map[string][]models.Payment
	logger   zerolog.Logger
}

// New creates a Builder.
//
// PARAMETERS:
//   - settings: Numbering, tax and currency settings for every batch.
//   - opts: Optional logger and payments.
//
// RETURNS:
//   - A ready Builder, or an error if the settings are unusable.
func New(settings Settings, opts ...Option) (*Builder, error) {
	if settings.Pattern == "" {
		settings.Pattern = numbering.DefaultPattern
	}

	numberer, err := numbering.For(settings.Pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to select numbering strategy: %w", err)
	}

	if settings.SequenceStart < 0 {
		return nil, fmt.Errorf("sequence start must be at least 0, got %d", settings.SequenceStart)
	}

	b := &Builder{
		settings: settings,
		numberer: numberer,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Batch is the result of one build.
type Batch struct {
	// ID identifies the build run in logs and output.
	ID uuid.UUID

	// Invoices holds one invoice per project, in first-seen project order.
	Invoices []*models.Invoice

	// StartSequence is the sequence value the batch started from.
	StartSequence int64

	// NextSequence is the first sequence value not used by this batch.
	NextSequence int64
}

// Build numbers and prices a batch of validated job lines.
//
// PARAMETERS:
//   - lines: Validated job lines, in input order.
//   - header: Template header. It is copied per invoice and never modified.
//
// RETURNS:
//   - The batch of invoices, or the first invoice construction error.
//     On error no sequence values are consumed.
func (b *Builder) Build(lines []models.JobLine, header models.InvoiceHeader) (*Batch, error) {
	batch := &Batch{
		ID:            uuid.New(),
		StartSequence: b.settings.SequenceStart,
	}
	log := b.logger.With().Str("batch_id", batch.ID.String()).Logger()

	projects := groupProjects(lines)
	if len(projects) == 0 {
		log.Warn().Msg("no job lines to invoice")
	}

	seq := b.settings.SequenceStart
	invoices := make([]*models.Invoice, 0, len(projects))

	for _, p := range projects {
		number := b.numberer.Number(b.settings.Prefix, seq, p.lines)

		inv, err := models.NewInvoice(models.InvoiceInput{
			Header:         header.ForProject(number, p.name),
			Lines:          p.lines,
			Currency:       b.settings.Currency,
			TaxRatePercent: b.settings.TaxRatePercent,
			Payments:       b.payments[p.name],
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build invoice for project %q: %w", p.name, err)
		}

		log.Debug().
			Str("project", p.name).
			Int("lines", len(p.lines)).
			Str("number", number).
			Str("total", inv.Total.StringFixed(models.MoneyPlaces)).
			Msg("invoice built")

		invoices = append(invoices, inv)
		seq++
	}

	for name := range b.payments {
		if !hasProject(projects, name) {
			log.Warn().Str("project", name).Msg("payments given for a project with no job lines")
		}
	}

	batch.Invoices = invoices
	batch.NextSequence = seq

	log.Info().
		Int("invoices", len(invoices)).
		Int64("start_sequence", batch.StartSequence).
		Int64("next_sequence", batch.NextSequence).
		Msg("batch built")

	return batch, nil
}

// BuildFromRecords validates raw job line records and builds them. Every
// invalid record is reported; if any fails, nothing is built.
func (b *Builder) BuildFromRecords(records []models.Record, header models.InvoiceHeader) (*Batch, error) {
	lines, err := models.ParseJobLines(records)
	if err != nil {
		return nil, err
	}
	return b.Build(lines, header)
}

// =============================================================================
// GROUPING
// =============================================================================

type project struct {
	name  string
	lines []models.JobLine
}

// groupProjects partitions lines by address. Projects keep the order in
// which their address was first seen; each project's lines are stably
// sorted by date.
func groupProjects(lines []models.JobLine) []project {
	groups := make(map[string][]models.JobLine)
	groupOrder := []string{}

	for _, line := range lines {
		if _, exists := groups[line.Address]; !exists {
			groupOrder = append(groupOrder, line.Address)
		}
		groups[line.Address] = append(groups[line.Address], line)
	}

	projects := make([]project, len(groupOrder))
	for i, name := range groupOrder {
		group := groups[name]
		sort.SliceStable(group, func(a, b int) bool {
			return group[a].Dates.Before(group[b].Dates)
		})
		projects[i] = project{name: name, lines: group}
	}
	return projects
}

func hasProject(projects []project, name string) bool {
	for _, p := range projects {
		if p.name == name {
			return true
		}
	}
	return false
}
