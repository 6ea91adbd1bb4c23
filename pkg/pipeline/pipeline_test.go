package pipeline

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"runtime"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/data"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/dataprep"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/labels"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/loader"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/model"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/sampler"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/schema"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/synth"
)

var toy = schema.FeatureSchema{
	Name:   "toy",
	Fields: []schema.Field{{Name: "x", Kind: schema.Numeric}, {Name: "noise", Kind: schema.Numeric}},
}

func separable(n int) ([][]float64, []float64) {
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := range n {
		X[i] = []float64{float64(i), float64(i % 3)}
		if i >= n/2 {
			y[i] = 1
		}
	}
	return X, y
}

func testTrainer(alg string) Trainer {
	cfg := model.DefaultConfig()
	cfg.NEstimators = 20
	return Trainer{Algorithm: alg, Model: cfg, TestRatio: 0.2, Seed: 42}
}

func TestTrainerTrain(t *testing.T) {
	X, y := separable(100)
	before := make([][]float64, len(X))
	for i := range X {
		before[i] = slices.Clone(X[i])
	}

	fm, err := testTrainer(model.AlgTree).Train(X, y, toy, model.Classification)
	require.NoError(t, err)
	assert.Equal(t, 80, fm.TrainRows)
	assert.Equal(t, 20, fm.TestRows)
	assert.GreaterOrEqual(t, fm.Score, 0.9)
	assert.Equal(t, before, X)

	again, err := testTrainer(model.AlgTree).Train(X, y, toy, model.Classification)
	require.NoError(t, err)
	assert.Equal(t, fm.Score, again.Score)

	preds, err := fm.Predict([][]float64{{5, 0}, {95, 0}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, preds)

	imp, ok := fm.FeatureImportances()
	require.True(t, ok)
	assert.Len(t, imp, 2)

	knn, err := testTrainer(model.AlgKNN).Train(X, y, toy, model.Classification)
	require.NoError(t, err)
	_, ok = knn.FeatureImportances()
	assert.False(t, ok)

	assert.Equal(t, fm.Score, fm.Eval.Accuracy)
	assert.True(t, fm.Eval.F1 >= 0 && fm.Eval.F1 <= 1)
	assert.Zero(t, fm.CVScore)
}

func TestTrainerCrossValidates(t *testing.T) {
	X, y := separable(100)
	tr := testTrainer(model.AlgTree)
	tr.Folds = 5
	fm, err := tr.Train(X, y, toy, model.Classification)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, fm.CVScore, 0.9)
	assert.LessOrEqual(t, fm.CVScore, 1.0)

	again, err := tr.Train(X, y, toy, model.Classification)
	require.NoError(t, err)
	assert.Equal(t, fm.CVScore, again.CVScore)

	tr.Folds = 200
	_, err = tr.Train(X, y, toy, model.Classification)
	var ie *loader.InsufficientDataError
	assert.True(t, errors.As(err, &ie))
}

func TestTrainerErrors(t *testing.T) {
	tr := testTrainer(model.AlgTree)

	_, err := tr.Train([][]float64{{1, 1}, {2, 2}, {3, 3}}, []float64{0, 1}, toy, model.Classification)
	var fe *loader.FeatureMismatchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 3, fe.Rows)
	assert.Equal(t, 2, fe.Targets)

	_, err = tr.Train([][]float64{{1, 1}}, []float64{0}, toy, model.Classification)
	var ie *loader.InsufficientDataError
	require.True(t, errors.As(err, &ie))

	_, err = tr.Train([][]float64{{1}, {2}}, []float64{0, 1}, toy, model.Classification)
	var se *SchemaMismatchError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 2, se.Want)
	assert.Equal(t, 1, se.Got)

	tr.Algorithm = "svm"
	_, err = tr.Train([][]float64{{1, 1}, {2, 2}}, []float64{0, 1}, toy, model.Classification)
	assert.Error(t, err)
}

func TestPredictRejectsWrongWidth(t *testing.T) {
	X, y := separable(40)
	fm, err := testTrainer(model.AlgTree).Train(X, y, toy, model.Classification)
	require.NoError(t, err)

	_, err = fm.Predict([][]float64{{1, 0}, {1, 0, 0}})
	var se *SchemaMismatchError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 3, se.Got)

	_, err = fm.PredictOne([]float64{1})
	assert.True(t, errors.As(err, &se))
}

func TestPredictConditionChecksSchema(t *testing.T) {
	g := synth.New(3, nil, "farm", "recycle")
	g.RoverRows = 60
	tbl := g.Recycling("recycle")

	prep := dataprep.NewPreprocessor(schema.Recycling)
	X, err := prep.FitTransform(tbl)
	require.NoError(t, err)
	y, err := labels.Target(tbl, schema.Recycling)
	require.NoError(t, err)
	fm, err := testTrainer(model.AlgForest).Train(X, y, schema.Recycling, model.Regression)
	require.NoError(t, err)
	pred := Predictor{Prep: prep, Model: fm}

	c, err := sampler.New(5).Sample(schema.Recycling, nil)
	require.NoError(t, err)
	v, err := pred.PredictCondition(c)
	require.NoError(t, err)
	assert.True(t, v >= 0 && v <= 100)

	swapped := schema.Recycling
	swapped.Fields = slices.Clone(swapped.Fields)
	swapped.Fields[0], swapped.Fields[1] = swapped.Fields[1], swapped.Fields[0]
	_, err = pred.PredictCondition(sampler.Condition{Schema: swapped, Values: c.Values})
	var se *SchemaMismatchError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Error(), "column order")

	_, err = pred.PredictCondition(sampler.Condition{Schema: schema.Recycling, Values: c.Values[:3]})
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 3, se.Got)
}

type fakeRecorder struct {
	mu      sync.Mutex
	loaded  []string
	skipped map[string]string
	trained []string
}

func (r *fakeRecorder) SourceLoaded(source string, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded = append(r.loaded, source)
}

func (r *fakeRecorder) SourceSkipped(source, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.skipped == nil {
		r.skipped = map[string]string{}
	}
	r.skipped[source] = reason
}

func (r *fakeRecorder) ModelTrained(schemaName, _ string, _ float64, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trained = append(r.trained, schemaName)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Model.NEstimators = 25
	cfg.SamplerSeed = 9
	return cfg
}

func TestHabitatPicksHighestSuitability(t *testing.T) {
	cfg := testConfig()
	gen := synth.New(42, cfg.Areas, cfg.FarmingSource, cfg.RecyclingSource)

	best, bestScore := "", math.Inf(-1)
	for _, area := range cfg.Areas {
		sc, err := labels.Suitability(gen.Habitat(area), cfg.QualityColumns)
		require.NoError(t, err)
		if sc.Value > bestScore {
			best, bestScore = area, sc.Value
		}
	}

	rec := &fakeRecorder{}
	d, err := NewSession(cfg, gen, WithRecorder(rec)).Habitat(context.Background())
	require.NoError(t, err)

	assert.Equal(t, best, d.LabelledBest)
	assert.Equal(t, best, d.Area)
	assert.Equal(t, cfg.Areas, d.Sources())
	assert.Empty(t, d.Skipped)
	assert.Equal(t, 144, d.TrainRows+d.TestRows)
	assert.Equal(t, 29, d.TestRows)
	assert.True(t, d.Accuracy >= 0 && d.Accuracy <= 1)
	assert.True(t, d.F1 >= 0 && d.F1 <= 1)

	require.Len(t, d.Importances, schema.Habitat.Width())
	sum := 0.0
	for i, imp := range d.Importances {
		assert.Equal(t, schema.Habitat.Fields[i].Name, imp.Feature)
		sum += imp.Value
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	require.Len(t, d.Suitability, 3)
	for _, tot := range d.Totals {
		if tot.Source != best {
			assert.Less(t, tot.Positive, d.Totals[slices.Index(cfg.Areas, best)].Positive)
		}
	}
	assert.ElementsMatch(t, cfg.Areas, rec.loaded)
	assert.Equal(t, []string{"habitat"}, rec.trained)

	again, err := NewSession(cfg, gen).Habitat(context.Background())
	require.NoError(t, err)
	assert.Equal(t, d, again)
}

func TestHabitatSkipsFailedSources(t *testing.T) {
	cfg := testConfig()
	cfg.Areas = []string{"Astraeon Basin", "Helios Ridge", "Elysium Crater", "Nowhere", "Broken"}
	gen := synth.New(42, cfg.Areas[:3], cfg.FarmingSource, cfg.RecyclingSource)

	mem := data.NewMemorySource()
	for _, area := range cfg.Areas[:2] {
		tbl, err := gen.Load(context.Background(), area)
		require.NoError(t, err)
		mem.Put(tbl)
	}
	broken := gen.Habitat("Elysium Crater")
	mem.Put(&data.Table{Name: "Broken", Header: broken.Header[1:], Rows: [][]string{broken.Rows[0][1:]}})

	rec := &fakeRecorder{}
	d, err := NewSession(cfg, mem, WithRecorder(rec)).Habitat(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Astraeon Basin", "Helios Ridge"}, d.Sources())
	require.Len(t, d.Skipped, 3)
	assert.Equal(t, "Elysium Crater", d.Skipped[0].Source)
	assert.Equal(t, "Nowhere", d.Skipped[1].Source)
	assert.Equal(t, "Broken", d.Skipped[2].Source)
	assert.Contains(t, d.Skipped[2].Reason, schema.Temperature)

	assert.Equal(t, ReasonLoad, rec.skipped["Nowhere"])
	assert.Equal(t, ReasonSchema, rec.skipped["Broken"])
	assert.Contains(t, d.Sources(), d.Area)
}

// corrupt returns a copy of tbl whose column cells are replaced by cell.
func corrupt(t *testing.T, tbl *data.Table, column string, cell func(row int, v string) string) *data.Table {
	t.Helper()
	j := tbl.ColumnIndex(column)
	require.GreaterOrEqual(t, j, 0, column)
	rows := make([][]string, len(tbl.Rows))
	for i, r := range tbl.Rows {
		rows[i] = slices.Clone(r)
		rows[i][j] = cell(i, r[j])
	}
	out, err := data.NewTable(tbl.Name, slices.Clone(tbl.Header), rows)
	require.NoError(t, err)
	return out
}

// replaceAt swaps in bad at one row only.
func replaceAt(at int, bad string) func(int, string) string {
	return func(row int, v string) string {
		if row == at {
			return bad
		}
		return v
	}
}

func blank(int, string) string { return "" }

func TestHabitatSkipsBadData(t *testing.T) {
	tests := []struct {
		name   string
		column string
		cell   func(row int, v string) string
	}{
		{name: "unparsable feature cell", column: schema.Gravity, cell: replaceAt(3, "n/a?")},
		{name: "feature column without values", column: schema.Gravity, cell: blank},
		{name: "unparsable quality cell", column: schema.OxygenPercentage, cell: replaceAt(0, "lots")},
		{name: "quality column without values", column: schema.SoilQuality, cell: func(int, string) string { return "NA" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			gen := synth.New(42, cfg.Areas, cfg.FarmingSource, cfg.RecyclingSource)
			mem := data.NewMemorySource(gen.Habitat(cfg.Areas[0]), gen.Habitat(cfg.Areas[1]))
			mem.Put(corrupt(t, gen.Habitat(cfg.Areas[2]), tt.column, tt.cell))

			rec := &fakeRecorder{}
			d, err := NewSession(cfg, mem, WithRecorder(rec)).Habitat(context.Background())
			require.NoError(t, err)

			assert.Equal(t, cfg.Areas[:2], d.Sources())
			require.Len(t, d.Skipped, 1)
			assert.Equal(t, cfg.Areas[2], d.Skipped[0].Source)
			assert.Contains(t, d.Skipped[0].Reason, tt.column)
			assert.Equal(t, ReasonData, rec.skipped[cfg.Areas[2]])
			assert.Contains(t, cfg.Areas[:2], d.Area)
			assert.Len(t, d.Suitability, 2)
			assert.Equal(t, 96, d.TrainRows+d.TestRows)
		})
	}
}

func TestRoversSkipBadData(t *testing.T) {
	tests := []struct {
		name   string
		column string
		cell   func(row int, v string) string
	}{
		{name: "unparsable feature cell", column: schema.Temperature, cell: replaceAt(7, "warm")},
		{name: "categorical column without values", column: schema.CropType, cell: blank},
		{name: "unparsable target", column: schema.CropHealth, cell: replaceAt(2, "good")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			gen := synth.New(42, nil, cfg.FarmingSource, cfg.RecyclingSource)
			gen.RoverRows = 60
			mem := data.NewMemorySource(
				corrupt(t, gen.Farming(cfg.FarmingSource), tt.column, tt.cell),
				gen.Recycling(cfg.RecyclingSource),
			)

			rec := &fakeRecorder{}
			d, err := NewSession(cfg, mem, WithRecorder(rec)).Rovers(context.Background())
			require.NoError(t, err)
			require.Len(t, d.Rovers, 1)
			assert.Equal(t, cfg.RecyclingSource, d.Rovers[0].Source)
			require.Len(t, d.Skipped, 1)
			assert.Equal(t, cfg.FarmingSource, d.Skipped[0].Source)
			assert.Equal(t, ReasonData, rec.skipped[cfg.FarmingSource])
		})
	}
}

func TestHabitatFromWorkbookLoadsConcurrently(t *testing.T) {
	defer runtime.GOMAXPROCS(runtime.GOMAXPROCS(4))

	cfg := testConfig()
	gen := synth.New(42, cfg.Areas, cfg.FarmingSource, cfg.RecyclingSource)
	var tables []*data.Table
	for _, area := range cfg.Areas {
		tables = append(tables, gen.Habitat(area))
	}
	path := filepath.Join(t.TempDir(), "areas.xlsx")
	require.NoError(t, data.WriteXLSX(path, tables...))

	fromBook, err := NewSession(cfg, data.NewXLSXSource(path)).Habitat(context.Background())
	require.NoError(t, err)
	fromGen, err := NewSession(cfg, gen).Habitat(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fromGen.Area, fromBook.Area)
	assert.Equal(t, cfg.Areas, fromBook.Sources())
}

func TestHabitatNoDecision(t *testing.T) {
	cfg := testConfig()
	_, err := NewSession(cfg, data.NewMemorySource()).Habitat(context.Background())
	assert.True(t, errors.Is(err, ErrNoDecision))

	_, err = NewSession(cfg, data.NewMemorySource()).Rovers(context.Background())
	assert.True(t, errors.Is(err, ErrNoDecision))
}

func TestRovers(t *testing.T) {
	cfg := testConfig()
	cfg.Samples = 3
	gen := synth.New(42, cfg.Areas, cfg.FarmingSource, cfg.RecyclingSource)
	gen.RoverRows = 150

	d, err := NewSession(cfg, gen).Rovers(context.Background())
	require.NoError(t, err)
	require.Len(t, d.Rovers, 2)
	assert.Empty(t, d.Skipped)

	farm := d.Rovers[0]
	assert.Equal(t, cfg.FarmingSource, farm.Source)
	assert.Equal(t, schema.CropHealth, farm.Target)
	assert.Equal(t, 30, farm.TestRows)
	require.Len(t, farm.Points, 3)
	for _, p := range farm.Points {
		require.Len(t, p.Conditions, schema.Farming.Width())
		assert.Contains(t, synth.Crops, p.Conditions[4].Label)
		assert.Contains(t, synth.SoilConditions, p.Conditions[5].Label)
		assert.Contains(t, synth.WeatherConditions, p.Conditions[6].Label)
		assert.Empty(t, p.Conditions[0].Label)
		assert.False(t, math.IsNaN(p.Prediction))
	}

	assert.GreaterOrEqual(t, farm.RMSE, farm.MAE)
	assert.Positive(t, farm.MAE)

	rec := d.Rovers[1]
	assert.Equal(t, schema.WasteReduction, rec.Target)
	for _, p := range rec.Points {
		assert.True(t, p.Prediction >= 0 && p.Prediction <= 100)
	}

	again, err := NewSession(cfg, gen).Rovers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, d, again)
}

func TestRoversSkipMissingSource(t *testing.T) {
	cfg := testConfig()
	gen := synth.New(42, nil, cfg.FarmingSource, "elsewhere")
	gen.RoverRows = 60

	d, err := NewSession(cfg, gen).Rovers(context.Background())
	require.NoError(t, err)
	require.Len(t, d.Rovers, 1)
	assert.Equal(t, cfg.FarmingSource, d.Rovers[0].Source)
	require.Len(t, d.Skipped, 1)
	assert.Equal(t, cfg.RecyclingSource, d.Skipped[0].Source)
}
