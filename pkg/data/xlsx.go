package data

import (
	"context"
	"os"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSXSource reads sources from one workbook, one sheet per source name.
// The workbook is parsed once and shared by concurrent loads.
type XLSXSource struct {
	Path string

	mu   sync.Mutex
	file *xlsx.File
}

func NewXLSXSource(path string) *XLSXSource { return &XLSXSource{Path: path} }

func (s *XLSXSource) open() (*xlsx.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil {
		return s.file, nil
	}
	f, err := xlsx.OpenFile(s.Path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	s.file = f
	return f, nil
}

func (s *XLSXSource) Load(ctx context.Context, name string) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Source: name, Err: err}
	}
	f, err := s.open()
	if err != nil {
		return nil, &LoadError{Source: name, Err: err}
	}
	sheet, ok := f.Sheet[name]
	if !ok {
		return nil, &LoadError{Source: name, Err: eris.Errorf("xlsx: sheet %q not found", name)}
	}
	if len(sheet.Rows) == 0 {
		return nil, &LoadError{Source: name, Err: eris.Errorf("xlsx: sheet %q is empty", name)}
	}

	header := rowToStrings(sheet.Rows[0], 0)
	rows := make([][]string, 0, len(sheet.Rows)-1)
	for _, r := range sheet.Rows[1:] {
		rows = append(rows, rowToStrings(r, len(header)))
	}
	t, err := NewTable(name, header, rows)
	if err != nil {
		return nil, &LoadError{Source: name, Err: err}
	}
	return t, nil
}

// rowToStrings pads short rows (trailing empty cells are not stored) to width.
func rowToStrings(row *xlsx.Row, width int) []string {
	n := len(row.Cells)
	if width > n {
		n = width
	}
	cells := make([]string, n)
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	if width > 0 {
		return cells[:width]
	}
	return cells
}

// WriteXLSX saves tables to a new workbook, one sheet each.
func WriteXLSX(path string, tables ...*Table) error {
	f := xlsx.NewFile()
	for _, t := range tables {
		sheet, err := f.AddSheet(t.Name)
		if err != nil {
			return eris.Wrapf(err, "xlsx: add sheet %q", t.Name)
		}
		addRow(sheet, t.Header)
		for _, r := range t.Rows {
			addRow(sheet, r)
		}
	}
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return eris.Wrap(err, "xlsx: replace file")
		}
	}
	return eris.Wrap(f.Save(path), "xlsx: save")
}

func addRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}
