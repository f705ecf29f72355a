package sheet

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Sheet is one named grid of cells. Rows may have different lengths; a
// missing trailing cell is equivalent to an empty one.
type Sheet struct {
	Name string
	Rows [][]string
}

// AppendRow adds a row of cells to the sheet.
func (s *Sheet) AppendRow(cells ...string) {
	s.Rows = append(s.Rows, cells)
}

// Cell returns the cell at (row, col), or "" when the row is short.
func (s *Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) {
		return ""
	}
	if col < 0 || col >= len(s.Rows[row]) {
		return ""
	}
	return s.Rows[row][col]
}

// Workbook is an ordered collection of sheets.
type Workbook struct {
	Sheets []*Sheet
}

// AddSheet appends a new empty sheet and returns it.
func (w *Workbook) AddSheet(name string) *Sheet {
	s := &Sheet{Name: name}
	w.Sheets = append(w.Sheets, s)
	return s
}

// Sheet returns the sheet with the given name, or nil.
func (w *Workbook) Sheet(name string) *Sheet {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// BadWorkbookError reports a structural problem with a workbook: the bytes
// are not a readable xlsx file or a sheet cannot be extracted. It is the
// unrecoverable-I/O half of the import error taxonomy; data-quality issues
// are returned as warnings instead.
type BadWorkbookError struct {
	Err error
}

func (e *BadWorkbookError) Error() string {
	return fmt.Sprintf("cannot read workbook: %v", e.Err)
}

func (e *BadWorkbookError) Unwrap() error {
	return e.Err
}

// Read parses an xlsx workbook from r into the in-memory representation.
// Cell values arrive as displayed strings; typed coercion happens later
// against the per-kind schema.
func Read(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &BadWorkbookError{Err: err}
	}
	defer f.Close()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, &BadWorkbookError{Err: fmt.Errorf("sheet %s: %w", name, err)}
		}
		wb.Sheets = append(wb.Sheets, &Sheet{Name: name, Rows: rows})
	}
	return wb, nil
}

// ReadBytes parses an xlsx workbook from an in-memory buffer.
func ReadBytes(data []byte) (*Workbook, error) {
	return Read(bytes.NewReader(data))
}

// Bytes renders the workbook as an xlsx file.
func (w *Workbook) Bytes() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range w.Sheets {
		if i == 0 {
			// Rename the default sheet instead of leaving it empty.
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				return nil, fmt.Errorf("failed to name sheet %s: %w", s.Name, err)
			}
		} else {
			if _, err := f.NewSheet(s.Name); err != nil {
				return nil, fmt.Errorf("failed to create sheet %s: %w", s.Name, err)
			}
		}
		for rowIdx, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, rowIdx+1)
			if err != nil {
				return nil, err
			}
			values := make([]interface{}, len(row))
			for colIdx, v := range row {
				values[colIdx] = v
			}
			if err := f.SetSheetRow(s.Name, cell, &values); err != nil {
				return nil, fmt.Errorf("failed to write row %d of sheet %s: %w", rowIdx+1, s.Name, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}
