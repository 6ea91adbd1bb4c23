package data

import (
	"context"
	"fmt"
	"sync"

	"github.com/rotisserie/eris"
)

// Source loads one table per source name.
type Source interface {
	Load(ctx context.Context, name string) (*Table, error)
}

// LoadError reports a missing or unreadable source.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("data: load %q: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// DataError reports a source whose cells cannot be turned into features or
// targets: an unparsable number, or a column without a single value.
type DataError struct {
	Source string
	Column string
	Err    error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("data: %q: column %s: %v", e.Source, e.Column, e.Err)
}

func (e *DataError) Unwrap() error { return e.Err }

// MemorySource serves tables held in memory.
type MemorySource struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

func NewMemorySource(tables ...*Table) *MemorySource {
	m := &MemorySource{tables: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		m.tables[t.Name] = t
	}
	return m
}

// Put adds or replaces a table.
func (m *MemorySource) Put(t *Table) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[t.Name] = t
}

func (m *MemorySource) Load(_ context.Context, name string) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[name]
	if !ok {
		return nil, &LoadError{Source: name, Err: eris.New("no such table")}
	}
	return t, nil
}
