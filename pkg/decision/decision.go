// Package decision reduces per-record predictions to the reported outcome of
// a run: the best habitat area, or the rover estimates with their decoded
// input conditions.
package decision

import (
	"github.com/rotisserie/eris"

	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/labels"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/sampler"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/schema"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/stats"
)

// Skip records a source left out of a run and why.
type Skip struct {
	Source string `json:"source" yaml:"source"`
	Reason string `json:"reason" yaml:"reason"`
}

// SourceTotal is the number of records of a source predicted positive.
type SourceTotal struct {
	Source   string  `json:"source" yaml:"source"`
	Positive float64 `json:"positive" yaml:"positive"`
	Rows     int     `json:"rows" yaml:"rows"`
}

// Importance is the share of impurity decrease attributed to one feature.
type Importance struct {
	Feature string  `json:"feature" yaml:"feature"`
	Value   float64 `json:"value" yaml:"value"`
}

// HabitatDecision names the most sustainable area and the evidence behind it.
type HabitatDecision struct {
	Area         string         `json:"area" yaml:"area"`
	Algorithm    string         `json:"algorithm" yaml:"algorithm"`
	Accuracy     float64        `json:"accuracy" yaml:"accuracy"`
	Precision    float64        `json:"precision" yaml:"precision"`
	Recall       float64        `json:"recall" yaml:"recall"`
	F1           float64        `json:"f1" yaml:"f1"`
	CVScore      float64        `json:"cv_accuracy,omitempty" yaml:"cv_accuracy,omitempty"`
	TrainRows    int            `json:"train_rows" yaml:"train_rows"`
	TestRows     int            `json:"test_rows" yaml:"test_rows"`
	Totals       []SourceTotal  `json:"totals" yaml:"totals"`
	Suitability  []labels.Score `json:"suitability" yaml:"suitability"`
	LabelledBest string         `json:"labelled_best" yaml:"labelled_best"`
	Importances  []Importance   `json:"importances,omitempty" yaml:"importances,omitempty"`
	Skipped      []Skip         `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Sources lists the areas that took part in the decision.
func (d *HabitatDecision) Sources() []string {
	out := make([]string, len(d.Totals))
	for i, t := range d.Totals {
		out[i] = t.Source
	}
	return out
}

// Condition is one input feature of a point prediction. Label holds the
// decoded category for categorical features.
type Condition struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
	Label string  `json:"label,omitempty" yaml:"label,omitempty"`
}

// Point is one sampled condition vector and the model output for it.
type Point struct {
	Conditions []Condition `json:"conditions" yaml:"conditions"`
	Prediction float64     `json:"prediction" yaml:"prediction"`
}

// RoverReport is the outcome of one rover regression model.
type RoverReport struct {
	Source    string  `json:"source" yaml:"source"`
	Target    string  `json:"target" yaml:"target"`
	Algorithm string  `json:"algorithm" yaml:"algorithm"`
	Score     float64 `json:"r2" yaml:"r2"`
	MAE       float64 `json:"mae" yaml:"mae"`
	RMSE      float64 `json:"rmse" yaml:"rmse"`
	CVScore   float64 `json:"cv_r2,omitempty" yaml:"cv_r2,omitempty"`
	TrainRows int     `json:"train_rows" yaml:"train_rows"`
	TestRows  int     `json:"test_rows" yaml:"test_rows"`
	Points    []Point `json:"points" yaml:"points"`
}

// RoverDecision bundles the rover estimates of one run.
type RoverDecision struct {
	Rovers  []RoverReport `json:"rovers" yaml:"rovers"`
	Skipped []Skip        `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Decoder maps a categorical code back to its label.
type Decoder interface {
	Decode(column string, code int) (string, error)
}

// SelectArea sums the positive predictions of every source and returns the
// index of the largest sum. Equal sums resolve to the earliest source.
func SelectArea(sources []string, predictions [][]float64) (int, []SourceTotal, error) {
	if len(sources) == 0 {
		return -1, nil, eris.New("decision: no sources")
	}
	if len(sources) != len(predictions) {
		return -1, nil, eris.Errorf("decision: %d sources but %d prediction sets", len(sources), len(predictions))
	}
	totals := make([]SourceTotal, len(sources))
	sums := make([]float64, len(sources))
	for i, preds := range predictions {
		pos := 0.0
		for _, p := range preds {
			if p > 0 {
				pos += p
			}
		}
		totals[i] = SourceTotal{Source: sources[i], Positive: pos, Rows: len(preds)}
		sums[i] = pos
	}
	return stats.ArgMax(sums), totals, nil
}

// Importances pairs feature names with importance values, in schema order.
func Importances(fs schema.FeatureSchema, values []float64) []Importance {
	if len(values) != fs.Width() {
		return nil
	}
	out := make([]Importance, len(values))
	for i, f := range fs.Fields {
		out[i] = Importance{Feature: f.Name, Value: values[i]}
	}
	return out
}

// DecodeConditions turns a sampled vector into named conditions, decoding
// categorical codes with dec.
func DecodeConditions(c sampler.Condition, dec Decoder) ([]Condition, error) {
	out := make([]Condition, len(c.Values))
	for j, f := range c.Schema.Fields {
		out[j] = Condition{Name: f.Name, Value: c.Values[j]}
		if f.Kind != schema.Categorical {
			continue
		}
		label, err := dec.Decode(f.Name, int(c.Values[j]))
		if err != nil {
			return nil, eris.Wrapf(err, "decision: decode %s", f.Name)
		}
		out[j].Label = label
	}
	return out, nil
}
