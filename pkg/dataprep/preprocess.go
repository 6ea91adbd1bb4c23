package dataprep

import (
	"slices"

	"github.com/rotisserie/eris"

	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/data"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/schema"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/stats"
)

// Preprocessor turns validated tables into feature matrices in schema order.
//
// Missing numeric cells are filled with the mean of their column in the
// table being transformed. Categorical columns are label encoded with
// encodings fitted once by Fit. Numeric columns are standardized with
// statistics fitted once by Fit and reused by every later Transform.
// Columns outside the schema (timestamps, the target) never reach the matrix.
type Preprocessor struct {
	schema    schema.FeatureSchema
	encodings map[string]*Encoding
	scaler    *stats.StandardScaler
}

func NewPreprocessor(s schema.FeatureSchema) *Preprocessor {
	return &Preprocessor{schema: s}
}

// Schema returns the schema the preprocessor produces vectors for.
func (p *Preprocessor) Schema() schema.FeatureSchema { return p.schema }

// Fitted reports whether Fit has completed.
func (p *Preprocessor) Fitted() bool { return p.scaler != nil && p.scaler.Fitted() }

// Fit learns the categorical encodings and the scaling statistics from the
// given tables taken together.
func (p *Preprocessor) Fit(tables ...*data.Table) error {
	if len(tables) == 0 {
		return eris.New("dataprep: fit needs at least one table")
	}
	for _, t := range tables {
		if err := p.schema.Validate(t); err != nil {
			return err
		}
	}

	p.encodings = make(map[string]*Encoding)
	for _, name := range p.schema.Categorical() {
		var all []string
		for _, t := range tables {
			col, _ := t.Column(name)
			all = append(all, col...)
		}
		p.encodings[name] = LabelEncode(name, all)
	}

	var X [][]float64
	for _, t := range tables {
		m, err := p.matrix(t)
		if err != nil {
			return err
		}
		X = append(X, m...)
	}

	passthrough := make([]bool, p.schema.Width())
	for j, f := range p.schema.Fields {
		passthrough[j] = f.Kind == schema.Categorical
	}
	scaler := stats.NewStandardScaler(passthrough...)
	if err := scaler.Fit(X); err != nil {
		return eris.Wrapf(err, "dataprep: fit %s", p.schema.Name)
	}
	p.scaler = scaler
	return nil
}

// Transform produces one scaled feature vector per record of t, in row order.
func (p *Preprocessor) Transform(t *data.Table) ([][]float64, error) {
	if !p.Fitted() {
		return nil, eris.New("dataprep: transform before fit")
	}
	m, err := p.matrix(t)
	if err != nil {
		return nil, err
	}
	return p.scaler.Transform(m)
}

// FitTransform fits on t alone and transforms it.
func (p *Preprocessor) FitTransform(t *data.Table) ([][]float64, error) {
	if err := p.Fit(t); err != nil {
		return nil, err
	}
	return p.Transform(t)
}

// TransformVector scales one raw vector given in schema order, with
// categorical columns already holding their integer codes.
func (p *Preprocessor) TransformVector(raw []float64) ([]float64, error) {
	if !p.Fitted() {
		return nil, eris.New("dataprep: transform before fit")
	}
	if len(raw) != p.schema.Width() {
		return nil, eris.Errorf("dataprep: vector has %d values, schema %s has %d", len(raw), p.schema.Name, p.schema.Width())
	}
	for j, f := range p.schema.Fields {
		if f.Kind != schema.Categorical {
			continue
		}
		if _, err := p.encodings[f.Name].Decode(int(raw[j])); err != nil {
			return nil, err
		}
	}
	return p.scaler.TransformRow(raw)
}

// Encoding returns the fitted encoding of a categorical column.
func (p *Preprocessor) Encoding(column string) (*Encoding, bool) {
	e, ok := p.encodings[column]
	return e, ok
}

// Decode maps a categorical code back to its original value.
func (p *Preprocessor) Decode(column string, code int) (string, error) {
	e, ok := p.encodings[column]
	if !ok {
		return "", eris.Errorf("dataprep: column %s is not categorical", column)
	}
	return e.Decode(code)
}

// Check reports the faults that keep t from being transformed on its own:
// missing columns, unparsable numeric cells and feature columns without a
// single value. It needs no fitted state, so callers run it per source
// before pooling tables into Fit.
func (p *Preprocessor) Check(t *data.Table) error {
	if err := p.schema.Validate(t); err != nil {
		return err
	}
	if t.Len() == 0 {
		return nil
	}
	for _, f := range p.schema.Fields {
		col, _ := t.Column(f.Name)
		var err error
		if f.Kind == schema.Categorical {
			_, err = categoricalColumn(t.Name, f.Name, col)
		} else {
			_, err = numericColumn(t.Name, f.Name, col)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// matrix builds the unscaled feature matrix of t.
func (p *Preprocessor) matrix(t *data.Table) ([][]float64, error) {
	if err := p.schema.Validate(t); err != nil {
		return nil, err
	}
	X := make([][]float64, t.Len())
	for i := range X {
		X[i] = make([]float64, p.schema.Width())
	}
	if t.Len() == 0 {
		return X, nil
	}

	for j, f := range p.schema.Fields {
		col, _ := t.Column(f.Name)
		var vals []float64
		var err error
		switch f.Kind {
		case schema.Categorical:
			var cells []string
			if cells, err = categoricalColumn(t.Name, f.Name, col); err == nil {
				vals, err = p.encodings[f.Name].EncodeAll(cells)
			}
		default:
			vals, err = numericColumn(t.Name, f.Name, col)
		}
		if err != nil {
			return nil, err
		}
		for i, v := range vals {
			X[i][j] = v
		}
	}
	return X, nil
}

// numericColumn parses and mean-imputes one column of source.
func numericColumn(source, name string, col []string) ([]float64, error) {
	vals, err := ParseNumeric(name, col)
	if err == nil {
		vals, _, err = ImputeMean(name, vals)
	}
	if err != nil {
		return nil, &data.DataError{Source: source, Column: name, Err: err}
	}
	return vals, nil
}

// categoricalColumn mode-imputes one column of source.
func categoricalColumn(source, name string, col []string) ([]string, error) {
	if !slices.ContainsFunc(col, func(v string) bool { return !data.IsMissing(v) }) {
		return nil, &data.DataError{Source: source, Column: name, Err: eris.New("dataprep: no values to impute from")}
	}
	return ImputeMode(col), nil
}
