package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads a job sheet from an Excel workbook. Cell values are read as
// displayed, so date columns must use an m/d/yyyy number format.
func ReadXLSX(path string, opts Options) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := opts.SheetName
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("workbook has no sheets")
		}
	} else if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("workbook has no sheet named %q", sheetName)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return fromRows(path, rows, opts)
}
