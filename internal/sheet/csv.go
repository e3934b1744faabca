package sheet

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// ReadCSV reads a job sheet from a CSV file. A record's row number is the
// line on which it starts; blank lines still count as rows.
func ReadCSV(path string, opts Options) (*Sheet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return parseCSV(path, bufio.NewReader(file), opts)
}

func parseCSV(source string, r io.Reader, opts Options) (*Sheet, error) {
	reader := csv.NewReader(r)
	reader.Comma = ','
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}

	// Rows may have trailing cells trimmed by the exporting spreadsheet.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	// rows is indexed by line number - 1 so that skipped blank lines keep
	// their place. The first record is always the header row.
	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		if rows == nil {
			rows = [][]string{record}
			continue
		}

		line, _ := reader.FieldPos(0)
		for len(rows) < line-1 {
			rows = append(rows, nil)
		}
		rows = append(rows, record)
	}

	return fromRows(source, rows, opts)
}
