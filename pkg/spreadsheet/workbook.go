// Package spreadsheet decodes xlsx workbooks into typed cells and locates the
// columns an import needs from a header row.
package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
)

const (
	xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	zipMIME  = "application/zip"
)

var (
	ErrNotWorkbook   = errors.New("not an xlsx workbook")
	ErrSheetNotFound = errors.New("sheet not found")
)

// Workbook is a read-only view over an opened xlsx file.
type Workbook struct {
	file *excelize.File
}

// CheckContentType sniffs blob and rejects anything that is not an xlsx container.
// A bare zip also passes; Open rejects it if it is not a workbook.
func CheckContentType(blob []byte) error {
	mt := mimetype.Detect(blob)
	if !mt.Is(xlsxMIME) && !mt.Is(zipMIME) {
		return fmt.Errorf("%w: detected %s", ErrNotWorkbook, mt.String())
	}
	return nil
}

// Open reads a workbook from r.
func Open(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return &Workbook{file: f}, nil
}

// OpenBytes is Open over an in-memory blob.
func OpenBytes(blob []byte) (*Workbook, error) {
	return Open(bytes.NewReader(blob))
}

// FromFile wraps an already opened excelize file.
func FromFile(f *excelize.File) *Workbook {
	return &Workbook{file: f}
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// HasSheet reports whether a sheet with exactly this name exists.
func (w *Workbook) HasSheet(name string) bool {
	for _, s := range w.file.GetSheetList() {
		if s == name {
			return true
		}
	}
	return false
}

// Rows returns every row of the sheet as cells. Rows are padded with Empty to the
// width of the widest row so column indexes are always addressable.
func (w *Workbook) Rows(sheet string) ([][]Cell, error) {
	if !w.HasSheet(sheet) {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}
	raw, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	width := 0
	for _, r := range raw {
		if len(r) > width {
			width = len(r)
		}
	}

	rows := make([][]Cell, len(raw))
	for i, r := range raw {
		row := make([]Cell, width)
		for j, v := range r {
			row[j] = NewCell(v)
		}
		rows[i] = row
	}
	return rows, nil
}

// Strings renders a row back to trimmed strings, e.g. for header detection.
func Strings(row []Cell) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = c.String()
	}
	return out
}

// IsBlank reports whether every cell of the row is empty.
func IsBlank(row []Cell) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}
