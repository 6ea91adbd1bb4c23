package schema

import (
	"fmt"
	"slices"
)

// Kind tells the preprocessor how a column is turned into a float.
type Kind int

const (
	Numeric Kind = iota
	Categorical
)

func (k Kind) String() string {
	if k == Categorical {
		return "category"
	}
	return "float"
}

// Field is one named feature column.
type Field struct {
	Name string
	Kind Kind
}

// FeatureSchema describes the structure of a dataset: the ordered feature
// columns a model is fitted on, the optional target column and the columns
// that never reach the feature matrix (timestamps, identifiers).
type FeatureSchema struct {
	Name   string
	Fields []Field
	Target string
	Drop   []string
}

// Columnar is anything exposing a named, ordered column set.
type Columnar interface {
	SourceName() string
	Columns() []string
}

// SchemaError reports required columns absent from a source.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: %s: missing columns: %v", e.Source, e.Missing)
}

// Width is the length of a FeatureVector for this schema.
func (s FeatureSchema) Width() int { return len(s.Fields) }

// Names returns the feature column names in schema order.
func (s FeatureSchema) Names() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

// Index returns the position of a feature column, or -1.
func (s FeatureSchema) Index(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Categorical returns the names of the categorical feature columns in schema order.
func (s FeatureSchema) Categorical() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Kind == Categorical {
			out = append(out, f.Name)
		}
	}
	return out
}

// Required lists every column a source must carry: the features, then the target.
func (s FeatureSchema) Required() []string {
	req := s.Names()
	if s.Target != "" {
		req = append(req, s.Target)
	}
	return req
}

// Validate checks that every required column is present in t. The table is
// never modified.
func (s FeatureSchema) Validate(t Columnar) error {
	cols := t.Columns()
	var missing []string
	for _, name := range s.Required() {
		if !slices.Contains(cols, name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Source: t.SourceName(), Missing: missing}
	}
	return nil
}

// Equal reports whether two schemas have the same ordered fields.
func (s FeatureSchema) Equal(o FeatureSchema) bool {
	return slices.Equal(s.Fields, o.Fields)
}
