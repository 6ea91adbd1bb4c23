package data

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// DefaultCSVSuffix is appended to a source name to form its file name,
// e.g. "Helios Ridge" -> "Helios Ridge_data.csv".
const DefaultCSVSuffix = "_data.csv"

// CSVSource reads one delimited file per source from a directory.
type CSVSource struct {
	Dir    string
	Suffix string
}

func NewCSVSource(dir string) *CSVSource {
	return &CSVSource{Dir: dir, Suffix: DefaultCSVSuffix}
}

// Path returns the file a source name maps to.
func (s *CSVSource) Path(name string) string {
	suffix := s.Suffix
	if suffix == "" {
		suffix = DefaultCSVSuffix
	}
	return filepath.Join(s.Dir, name+suffix)
}

func (s *CSVSource) Load(ctx context.Context, name string) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Source: name, Err: err}
	}
	f, err := os.Open(s.Path(name))
	if err != nil {
		return nil, &LoadError{Source: name, Err: err}
	}
	defer f.Close()

	t, err := ReadCSV(name, f)
	if err != nil {
		return nil, &LoadError{Source: name, Err: err}
	}
	return t, nil
}

// ReadCSV parses a header row followed by records.
func ReadCSV(name string, r io.Reader) (*Table, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, eris.New("csv: empty file")
	}
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}
	// Remove a UTF-8 BOM left by spreadsheet exports.
	if len(header) > 0 && len(header[0]) >= 3 && header[0][:3] == "\xef\xbb\xbf" {
		header[0] = header[0][3:]
	}

	var rows [][]string
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "csv: read row %d", len(rows)+1)
		}
		rows = append(rows, rec)
	}
	return NewTable(name, header, rows)
}

// WriteCSV writes the header and every record of t.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return eris.Wrap(err, "csv: write header")
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return eris.Wrap(err, "csv: write rows")
	}
	return nil
}

// Save writes t to the file its name maps to, creating the directory.
func (s *CSVSource) Save(t *Table) error {
	if err := os.MkdirAll(s.Dir, fs.ModePerm); err != nil {
		return eris.Wrap(err, "csv: create dir")
	}
	f, err := os.Create(s.Path(t.Name))
	if err != nil {
		return eris.Wrap(err, "csv: create file")
	}
	if err := WriteCSV(f, t); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrap(f.Close(), "csv: close file")
}
