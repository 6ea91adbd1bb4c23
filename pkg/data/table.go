package data

import (
	"slices"

	"github.com/rotisserie/eris"
)

// Table is a loaded source: an ordered header and one raw string cell per
// column per record. Cells are never modified after loading.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// NewTable builds a table, rejecting ragged rows.
func NewTable(name string, header []string, rows [][]string) (*Table, error) {
	for i, r := range rows {
		if len(r) != len(header) {
			return nil, eris.Errorf("data: %s: row %d has %d cells, header has %d", name, i, len(r), len(header))
		}
	}
	return &Table{Name: name, Header: header, Rows: rows}, nil
}

func (t *Table) SourceName() string { return t.Name }
func (t *Table) Columns() []string  { return t.Header }

// Len is the number of records.
func (t *Table) Len() int { return len(t.Rows) }

// ColumnIndex returns the header position of name, or -1.
func (t *Table) ColumnIndex(name string) int { return slices.Index(t.Header, name) }

// Column returns a copy of the cells of one column.
func (t *Table) Column(name string) ([]string, bool) {
	j := t.ColumnIndex(name)
	if j < 0 {
		return nil, false
	}
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[j]
	}
	return out, true
}

// IsMissing reports whether a raw cell holds no value.
func IsMissing(v string) bool {
	return v == "" || v == "NA" || v == "NaN" || v == "nan"
}
