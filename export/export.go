// Package export renders analysis history as CSV or XLSX downloads.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// Format is a download file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned by ParseFormat for unknown formats.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat validates a format name. An empty name means CSV.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// ContentType is the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Table is a named grid of cells with a header row.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]interface{}
}

// Filename returns the download name of the table in format f.
func (t *Table) Filename(f Format) string {
	return t.Name + "." + string(f)
}

// Write renders t to w in format f.
func Write(w io.Writer, t *Table, f Format) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// WriteCSV writes t as comma-separated values with a header row.
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	values := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range values {
			values[i] = ""
			if i < len(row) {
				values[i] = formatValue(row[i])
			}
		}
		if err := writer.Write(values); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes t as a single-sheet workbook with a bold, frozen header.
func WriteXLSX(w io.Writer, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(t.Name)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	for i, col := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}

		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := float64(len(col) + 5)
		if width < 15 {
			width = 15
		}
		if width > excelize.MaxColumnWidth {
			width = excelize.MaxColumnWidth
		}
		if err := f.SetColWidth(sheet, colName, colName, width); err != nil {
			return fmt.Errorf("failed to size column %s: %w", colName, err)
		}
	}

	for r, row := range t.Rows {
		for i, val := range row {
			if i >= len(t.Columns) {
				break
			}
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return err
			}
			switch v := val.(type) {
			case time.Time, *string:
				val = formatValue(v)
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return err
			}
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case *string:
		if val == nil {
			return ""
		}
		return *val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Excel limits sheet names to 31 characters and forbids a few symbols.
func sheetName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			r = '_'
		}
		out = append(out, r)
	}
	if len(out) > 31 {
		out = out[:31]
	}
	if len(out) == 0 {
		return "Sheet1"
	}
	return string(out)
}
