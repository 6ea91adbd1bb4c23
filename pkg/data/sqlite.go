package data

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteSource reads sources from a SQLite database, one table per source name.
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database file at path.
func OpenSQLite(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "sqlite: ping")
	}
	return &SQLiteSource{db: db}, nil
}

func (s *SQLiteSource) Close() error { return s.db.Close() }

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (s *SQLiteSource) Load(ctx context.Context, name string) (*Table, error) {
	var found string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &LoadError{Source: name, Err: eris.Errorf("sqlite: table %q not found", name)}
	}
	if err != nil {
		return nil, &LoadError{Source: name, Err: eris.Wrap(err, "sqlite: lookup table")}
	}

	rows, err := s.db.QueryContext(ctx, `SELECT * FROM `+quoteIdent(name)+` ORDER BY rowid`)
	if err != nil {
		return nil, &LoadError{Source: name, Err: eris.Wrap(err, "sqlite: query")}
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, &LoadError{Source: name, Err: eris.Wrap(err, "sqlite: columns")}
	}

	var records [][]string
	for rows.Next() {
		cells := make([]sql.NullString, len(header))
		ptrs := make([]any, len(header))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &LoadError{Source: name, Err: eris.Wrap(err, "sqlite: scan")}
		}
		rec := make([]string, len(header))
		for i, c := range cells {
			if c.Valid {
				rec[i] = c.String
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &LoadError{Source: name, Err: eris.Wrap(err, "sqlite: rows")}
	}
	return NewTable(name, header, records)
}

// Save replaces the database table named after t with its contents. Empty
// cells are stored as NULL.
func (s *SQLiteSource) Save(ctx context.Context, t *Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+quoteIdent(t.Name)); err != nil {
		return eris.Wrap(err, "sqlite: drop table")
	}
	cols := make([]string, len(t.Header))
	marks := make([]string, len(t.Header))
	for i, h := range t.Header {
		cols[i] = quoteIdent(h) + " TEXT"
		marks[i] = "?"
	}
	if _, err := tx.ExecContext(ctx, `CREATE TABLE `+quoteIdent(t.Name)+` (`+strings.Join(cols, ", ")+`)`); err != nil {
		return eris.Wrap(err, "sqlite: create table")
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+quoteIdent(t.Name)+` VALUES (`+strings.Join(marks, ", ")+`)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	for _, r := range t.Rows {
		args := make([]any, len(r))
		for i, c := range r {
			if c != "" {
				args[i] = c
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return eris.Wrap(err, "sqlite: insert")
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit")
}
