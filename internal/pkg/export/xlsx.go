package export

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// Table is a single worksheet of header plus rows.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
	Widths  map[int]float64 // 1-based column index -> width
}

// XLSX renders t as an .xlsx workbook.
func XLSX(t Table) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("failed to close workbook", "error", err)
		}
	}()

	row, err := writeHeader(f, defaultSheet, 0, t.Headers)
	if err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, values := range t.Rows {
		row++
		for i, v := range values {
			if err := writeColumn(f, defaultSheet, i+1, row, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}
	for col, width := range t.Widths {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(defaultSheet, name, name, width); err != nil {
			return nil, err
		}
	}

	if t.Name != "" && t.Name != defaultSheet {
		if err := f.SetSheetName(defaultSheet, t.Name); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeColumn(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

func writeHeader(f *excelize.File, sheet string, row int, headers []string) (int, error) {
	row++
	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return row, err
	}
	for i, h := range headers {
		if err := writeColumn(f, sheet, i+1, row, h); err != nil {
			return row, err
		}
	}
	if len(headers) == 0 {
		return row, nil
	}
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return row, err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), row)
	if err != nil {
		return row, err
	}
	return row, f.SetCellStyle(sheet, first, last, style)
}

// ReadXLSX returns the rows of the first sheet. Used to verify exports.
func ReadXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetRows(f.GetSheetName(0))
}
