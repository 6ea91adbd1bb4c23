// Package labels derives training targets: binary "best source" labels for
// the multi-source classification task and the target column for regression.
package labels

import (
	"github.com/rotisserie/eris"

	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/data"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/dataprep"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/schema"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/stats"
)

// Score is the suitability of one source: the sum of the means of the
// quality columns over that source's table.
type Score struct {
	Source string             `json:"source" yaml:"source"`
	Value  float64            `json:"value" yaml:"value"`
	Means  map[string]float64 `json:"means" yaml:"means"`
}

// LabelSet assigns label 1 to the best source and 0 to every other one.
type LabelSet struct {
	Scores []Score
	Best   string
	Labels map[string]int
}

// Suitability scores one table. Missing cells are ignored by the means.
func Suitability(t *data.Table, columns []string) (Score, error) {
	if len(columns) == 0 {
		return Score{}, eris.New("labels: no quality columns")
	}
	sc := Score{Source: t.Name, Means: make(map[string]float64, len(columns))}
	for _, c := range columns {
		raw, ok := t.Column(c)
		if !ok {
			return Score{}, &schema.SchemaError{Source: t.Name, Missing: []string{c}}
		}
		vals, err := dataprep.ParseNumeric(c, raw)
		if err != nil {
			return Score{}, &data.DataError{Source: t.Name, Column: c, Err: err}
		}
		m, ok := stats.NanMean(vals)
		if !ok {
			return Score{}, &data.DataError{Source: t.Name, Column: c, Err: eris.New("labels: no values")}
		}
		sc.Means[c] = m
		sc.Value += m
	}
	return sc, nil
}

// Derive scores every table and labels the highest scoring one. When scores
// tie exactly, the table that comes first wins.
func Derive(tables []*data.Table, columns []string) (*LabelSet, error) {
	scores := make([]Score, 0, len(tables))
	for _, t := range tables {
		sc, err := Suitability(t, columns)
		if err != nil {
			return nil, err
		}
		scores = append(scores, sc)
	}
	return Rank(scores)
}

// Rank labels the highest of already computed scores, first wins on ties.
// Labels are keyed by source name, so names must be unique.
func Rank(scores []Score) (*LabelSet, error) {
	if len(scores) == 0 {
		return nil, eris.New("labels: no sources to rank")
	}
	ls := &LabelSet{Scores: scores, Labels: make(map[string]int, len(scores))}
	values := make([]float64, len(scores))
	for i, sc := range scores {
		if _, dup := ls.Labels[sc.Source]; dup {
			return nil, eris.Errorf("labels: source %q ranked twice", sc.Source)
		}
		ls.Labels[sc.Source] = 0
		values[i] = sc.Value
	}
	ls.Best = scores[stats.ArgMax(values)].Source
	ls.Labels[ls.Best] = 1
	return ls, nil
}

// Targets expands the per-source labels to one label per record, tables
// concatenated in the given order.
func (ls *LabelSet) Targets(tables []*data.Table) []float64 {
	var y []float64
	for _, t := range tables {
		l := float64(ls.Labels[t.Name])
		for range t.Len() {
			y = append(y, l)
		}
	}
	return y
}

// Target extracts the regression target column of s from t. Missing targets
// are filled with the column mean like any numeric feature.
func Target(t *data.Table, s schema.FeatureSchema) ([]float64, error) {
	if s.Target == "" {
		return nil, eris.Errorf("labels: schema %s has no target column", s.Name)
	}
	raw, ok := t.Column(s.Target)
	if !ok {
		return nil, &schema.SchemaError{Source: t.Name, Missing: []string{s.Target}}
	}
	vals, err := dataprep.ParseNumeric(s.Target, raw)
	if err != nil {
		return nil, &data.DataError{Source: t.Name, Column: s.Target, Err: err}
	}
	if len(vals) == 0 {
		return vals, nil
	}
	y, _, err := dataprep.ImputeMean(s.Target, vals)
	if err != nil {
		return nil, &data.DataError{Source: t.Name, Column: s.Target, Err: err}
	}
	return y, nil
}
