package source

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// FormatXLSX is the registry key of XLSXReader.
const FormatXLSX = "xlsx"

// XLSXReader reads an Excel workbook. Cells are read raw so numbers keep
// their stored value instead of the display format.
type XLSXReader struct {
	Sheet string // first sheet when empty
}

// Format returns the reader name.
func (r *XLSXReader) Format() string { return FormatXLSX }

// Read opens the workbook at path and returns the chosen sheet.
func (r *XLSXReader) Read(ctx context.Context, path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()

	sheet := r.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}
	return &Table{Header: rows[0], Rows: rows[1:]}, nil
}
