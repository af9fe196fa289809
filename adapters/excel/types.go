package excel

import (
	"fmt"
	"strconv"
)

// RawRowData represents a row of raw spreadsheet data as string key-value pairs
type RawRowData map[string]string

// ExcelData represents a complete sheet: the header row plus data rows
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// Column returns the position of a header, or -1
func (d *ExcelData) Column(name string) int {
	for i, h := range d.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Floats parses every value of a column. Empty cells are an error.
func (d *ExcelData) Floats(name string) ([]float64, error) {
	if d.Column(name) < 0 {
		return nil, fmt.Errorf("column %q not found", name)
	}
	out := make([]float64, len(d.Rows))
	for i, row := range d.Rows {
		v, err := strconv.ParseFloat(row[name], 64)
		if err != nil {
			// +2: header row and 1-based numbering
			return nil, fmt.Errorf("row %d column %q: %w", i+2, name, err)
		}
		out[i] = v
	}
	return out, nil
}
