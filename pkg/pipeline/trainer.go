package pipeline

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/dataprep"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/loader"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/model"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/sampler"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/schema"
)

// Trainer fits one model per call on a seeded train/test split and scores it
// on the held-out rows. With Folds > 1 it also reports the mean k-fold
// cross-validated score over all rows.
type Trainer struct {
	Algorithm string
	Model     model.Config
	TestRatio float64
	Seed      int64
	Folds     int
}

// FittedModel is a trained model bound to the schema it was fitted on. It is
// never refitted; training again yields a new FittedModel.
type FittedModel struct {
	Schema    schema.FeatureSchema
	Task      model.Task
	Algorithm string
	Score     float64 // accuracy for classifiers, R² for regressors
	Eval      model.Evaluation
	CVScore   float64 // mean fold score, 0 unless the trainer ran folds
	TrainRows int
	TestRows  int
	Elapsed   time.Duration

	model model.Model
}

// Train splits X/y, fits a new model on the training rows and scores it on
// the test rows. X and y are not modified.
func (tr Trainer) Train(X [][]float64, y []float64, fs schema.FeatureSchema, task model.Task) (*FittedModel, error) {
	if len(X) != len(y) {
		return nil, &loader.FeatureMismatchError{Rows: len(X), Targets: len(y)}
	}
	for _, row := range X {
		if len(row) != fs.Width() {
			return nil, &SchemaMismatchError{Schema: fs.Name, Want: fs.Width(), Got: len(row)}
		}
	}
	xTrain, xTest, yTrain, yTest, err := loader.TrainTestSplit(X, y, tr.TestRatio, tr.Seed)
	if err != nil {
		return nil, err
	}

	m, err := model.New(tr.Algorithm, task, tr.Model)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	if err := m.Fit(xTrain, yTrain); err != nil {
		return nil, eris.Wrapf(err, "pipeline: fit %s %s", fs.Name, tr.Algorithm)
	}
	eval := model.Evaluate(task, yTest, m.Predict(xTest))
	fm := &FittedModel{
		Schema:    fs,
		Task:      task,
		Algorithm: tr.Algorithm,
		Score:     eval.Score(),
		Eval:      eval,
		TrainRows: len(xTrain),
		TestRows:  len(xTest),
		Elapsed:   time.Since(start),
		model:     m,
	}
	if tr.Folds > 1 {
		if fm.CVScore, err = tr.crossValidate(X, y, fs, task); err != nil {
			return nil, err
		}
	}
	return fm, nil
}

// crossValidate fits one fresh model per fold and averages the fold scores.
func (tr Trainer) crossValidate(X [][]float64, y []float64, fs schema.FeatureSchema, task model.Task) (float64, error) {
	if len(X) < tr.Folds {
		return 0, &loader.InsufficientDataError{Rows: len(X)}
	}
	total := 0.0
	for k, test := range loader.KFoldSplit(len(X), tr.Folds, tr.Seed) {
		held := make([]bool, len(X))
		for _, i := range test {
			held[i] = true
		}
		train := make([]int, 0, len(X)-len(test))
		for i := range X {
			if !held[i] {
				train = append(train, i)
			}
		}
		xTrain, yTrain := loader.Take(X, y, train)
		xTest, yTest := loader.Take(X, y, test)

		m, err := model.New(tr.Algorithm, task, tr.Model)
		if err != nil {
			return 0, err
		}
		if err := m.Fit(xTrain, yTrain); err != nil {
			return 0, eris.Wrapf(err, "pipeline: fit %s %s fold %d", fs.Name, tr.Algorithm, k)
		}
		total += model.Score(task, yTest, m.Predict(xTest))
	}
	return total / float64(tr.Folds), nil
}

// Predict applies the model to every row, keeping row order.
func (f *FittedModel) Predict(X [][]float64) ([]float64, error) {
	for _, row := range X {
		if len(row) != f.Schema.Width() {
			return nil, &SchemaMismatchError{Schema: f.Schema.Name, Want: f.Schema.Width(), Got: len(row)}
		}
	}
	return f.model.Predict(X), nil
}

// PredictOne applies the model to a single preprocessed vector.
func (f *FittedModel) PredictOne(v []float64) (float64, error) {
	out, err := f.Predict([][]float64{v})
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// FeatureImportances returns the model's importances in schema order when
// the algorithm provides them.
func (f *FittedModel) FeatureImportances() ([]float64, bool) {
	imp, ok := f.model.(model.Importancer)
	if !ok {
		return nil, false
	}
	return imp.FeatureImportances(), true
}

// Predictor answers point queries: raw condition vectors are checked against
// the fitted schema, scaled with the fit-time preprocessor and predicted.
type Predictor struct {
	Prep  *dataprep.Preprocessor
	Model *FittedModel
}

// PredictCondition predicts one sampled condition.
func (p Predictor) PredictCondition(c sampler.Condition) (float64, error) {
	want := p.Model.Schema
	if !c.Schema.Equal(want) {
		return 0, &SchemaMismatchError{
			Schema:    want.Name,
			Want:      want.Width(),
			Got:       c.Schema.Width(),
			WantOrder: want.Names(),
			GotOrder:  c.Schema.Names(),
		}
	}
	if len(c.Values) != want.Width() {
		return 0, &SchemaMismatchError{Schema: want.Name, Want: want.Width(), Got: len(c.Values)}
	}
	v, err := p.Prep.TransformVector(c.Values)
	if err != nil {
		return 0, err
	}
	return p.Model.PredictOne(v)
}
