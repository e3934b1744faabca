// =============================================================================
// Invoice Generator - Main Entry Point
// =============================================================================
//
// USAGE:
//   invoicegen validate   - Validate a job sheet against the configuration
//   invoicegen build      - Build numbered invoices from a job sheet
//   invoicegen version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/                : CLI command definitions (Cobra)
//   - internal/validation : field normalizers and the error taxonomy
//   - internal/models     : validated entities and computed totals
//   - internal/numbering  : invoice numbering strategies
//   - internal/builder    : grouping, ordering and numbering of invoices
//   - internal/config     : YAML configuration loading
//   - internal/sheet      : job sheet readers (.xlsx, .csv)
//   - internal/xmlwriter  : XML rendering of built invoices
//
// =============================================================================

package main

import (
	"github.com/delga-0098/invoicegen/cmd"
)

func main() {
	cmd.Execute()
}
