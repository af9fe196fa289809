package synthgen

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"utitriage/adapters/excel"
	"utitriage/internal"
)

// Output formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// FormatFor infers the output format from a file extension, defaulting to CSV
func FormatFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// Write stores ds at path in the given format
func Write(path, format string, ds *Dataset) error {
	switch strings.ToLower(format) {
	case FormatCSV:
		return WriteCSV(path, ds)
	case FormatXLSX:
		return WriteXLSX(path, ds)
	}
	return fmt.Errorf("unsupported format: %s", format)
}

func WriteCSV(path string, ds *Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(ds.Headers); err != nil {
		return err
	}
	record := make([]string, len(ds.Headers))
	for _, row := range ds.Rows {
		for i, v := range row {
			record[i] = formatValue(v)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func WriteXLSX(path string, ds *Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(excel.SheetName)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(ds.Headers))
	for i, h := range ds.Headers {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for r, row := range ds.Rows {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Load reads a CSV or XLSX dataset back. Every generator column must be present;
// extra columns are ignored.
func Load(path string, logger *internal.Logger) (*Dataset, error) {
	data, err := excel.NewDataReader(path, logger).ReadData()
	if err != nil {
		return nil, err
	}

	columns := make([][]float64, len(Columns))
	for i, name := range Columns {
		col, err := data.Floats(name)
		if err != nil {
			return nil, err
		}
		columns[i] = col
	}

	ds := &Dataset{Headers: append([]string(nil), Columns...), Rows: make([][]float64, len(data.Rows))}
	for r := range data.Rows {
		row := make([]float64, len(Columns))
		for i := range Columns {
			row[i] = columns[i][r]
		}
		ds.Rows[r] = row
	}
	return ds, nil
}
