// Package pipeline runs the data-to-decision flows. A Session owns
// everything one run creates (tables, encodings, scalers, fitted models);
// nothing is shared between sessions.
package pipeline

import (
	"context"
	"runtime"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/data"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/dataprep"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/decision"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/labels"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/loader"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/model"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/sampler"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/schema"
)

// Default source names.
var (
	DefaultAreas           = []string{"Astraeon Basin", "Helios Ridge", "Elysium Crater"}
	DefaultFarmingSource   = "Farming_Rover_Area"
	DefaultRecyclingSource = "Recycling_Rover_Area"
)

// Config holds the knobs of one session.
type Config struct {
	Areas           []string
	QualityColumns  []string
	FarmingSource   string
	RecyclingSource string

	Classifier string
	Regressor  string
	Model      model.Config

	TestRatio   float64
	SplitSeed   int64
	Folds       int   // k-fold cross-validation, off below 2
	SamplerSeed int64 // 0 seeds from the clock
	Samples     int   // point predictions per rover
}

// DefaultConfig reproduces the reference habitat and rover runs.
func DefaultConfig() Config {
	return Config{
		Areas:           DefaultAreas,
		QualityColumns:  []string{schema.OxygenPercentage, schema.SoilQuality},
		FarmingSource:   DefaultFarmingSource,
		RecyclingSource: DefaultRecyclingSource,
		Classifier:      model.AlgForest,
		Regressor:       model.AlgForest,
		Model:           model.DefaultConfig(),
		TestRatio:       0.2,
		SplitSeed:       42,
		Samples:         1,
	}
}

// Recorder receives run events. internal/metrics provides a Prometheus
// implementation.
type Recorder interface {
	SourceLoaded(source string, rows int)
	SourceSkipped(source, reason string)
	ModelTrained(schemaName, algorithm string, score float64, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) SourceLoaded(string, int)                            {}
func (nopRecorder) SourceSkipped(string, string)                        {}
func (nopRecorder) ModelTrained(string, string, float64, time.Duration) {}

// Session runs the habitat and rover flows against one data source.
type Session struct {
	cfg Config
	src data.Source
	log *zap.Logger
	rec Recorder
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option { return func(s *Session) { s.log = l } }

// WithRecorder sets the receiver of run metrics.
func WithRecorder(r Recorder) Option { return func(s *Session) { s.rec = r } }

func NewSession(cfg Config, src data.Source, opts ...Option) *Session {
	s := &Session{cfg: cfg, src: src, log: zap.NewNop(), rec: nopRecorder{}}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Session) trainer(algorithm string) Trainer {
	return Trainer{
		Algorithm: algorithm,
		Model:     s.cfg.Model,
		TestRatio: s.cfg.TestRatio,
		Seed:      s.cfg.SplitSeed,
		Folds:     s.cfg.Folds,
	}
}

// loadAll loads and validates every named source concurrently. Per-source
// failures land in errs at the source's index; the returned error is only
// set when ctx is done.
func (s *Session) loadAll(ctx context.Context, names []string, schemas []schema.FeatureSchema) ([]*data.Table, []error, error) {
	tables := make([]*data.Table, len(names))
	errs := make([]error, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range names {
		g.Go(func() error {
			t, err := s.src.Load(gctx, name)
			if err == nil {
				err = schemas[i].Validate(t)
			}
			if err == nil && t.Len() == 0 {
				err = &loader.InsufficientDataError{Rows: 0}
			}
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				errs[i] = err
				return nil
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, eris.Wrap(err, "pipeline: load sources")
	}
	return tables, errs, nil
}

// skip logs and records a failed source.
func (s *Session) skip(name string, err error) (decision.Skip, bool) {
	reason, ok := sourceFailure(err)
	if !ok {
		return decision.Skip{}, false
	}
	s.log.Warn("skipping source", zap.String("source", name), zap.String("reason", reason), zap.Error(err))
	s.rec.SourceSkipped(name, reason)
	return decision.Skip{Source: name, Reason: err.Error()}, true
}

// Habitat ranks the configured areas by suitability, trains a classifier on
// the pooled records and names the area with the most positive predictions.
func (s *Session) Habitat(ctx context.Context) (*decision.HabitatDecision, error) {
	schemas := make([]schema.FeatureSchema, len(s.cfg.Areas))
	for i := range schemas {
		schemas[i] = schema.Habitat
	}
	loaded, errs, err := s.loadAll(ctx, s.cfg.Areas, schemas)
	if err != nil {
		return nil, err
	}

	d := &decision.HabitatDecision{Algorithm: s.cfg.Classifier}
	prep := dataprep.NewPreprocessor(schema.Habitat)
	var tables []*data.Table
	var scores []labels.Score
	for i, name := range s.cfg.Areas {
		err := errs[i]
		if err == nil {
			var sc labels.Score
			if sc, err = labels.Suitability(loaded[i], s.cfg.QualityColumns); err == nil {
				err = prep.Check(loaded[i])
			}
			if err == nil {
				s.log.Info("loaded source", zap.String("source", name), zap.Int("rows", loaded[i].Len()))
				s.rec.SourceLoaded(name, loaded[i].Len())
				tables = append(tables, loaded[i])
				scores = append(scores, sc)
				continue
			}
		}
		sk, ok := s.skip(name, err)
		if !ok {
			return nil, err
		}
		d.Skipped = append(d.Skipped, sk)
	}
	if len(tables) == 0 {
		return nil, ErrNoDecision
	}

	ls, err := labels.Rank(scores)
	if err != nil {
		return nil, err
	}
	d.Suitability = ls.Scores
	d.LabelledBest = ls.Best

	if err := prep.Fit(tables...); err != nil {
		return nil, err
	}
	perSource := make([][][]float64, len(tables))
	var X [][]float64
	for i, t := range tables {
		m, err := prep.Transform(t)
		if err != nil {
			return nil, err
		}
		perSource[i] = m
		X = append(X, m...)
	}

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: habitat")
	}
	fm, err := s.trainer(s.cfg.Classifier).Train(X, ls.Targets(tables), schema.Habitat, model.Classification)
	if err != nil {
		return nil, err
	}
	s.trained(fm)
	d.Accuracy = fm.Score
	d.Precision, d.Recall, d.F1 = fm.Eval.Precision, fm.Eval.Recall, fm.Eval.F1
	d.CVScore = fm.CVScore
	d.TrainRows, d.TestRows = fm.TrainRows, fm.TestRows
	if imp, ok := fm.FeatureImportances(); ok {
		d.Importances = decision.Importances(schema.Habitat, imp)
	}

	names := make([]string, len(tables))
	preds := make([][]float64, len(tables))
	for i, t := range tables {
		names[i] = t.Name
		if preds[i], err = fm.Predict(perSource[i]); err != nil {
			return nil, err
		}
	}
	best, totals, err := decision.SelectArea(names, preds)
	if err != nil {
		return nil, err
	}
	d.Area = names[best]
	d.Totals = totals

	s.log.Info("habitat decision",
		zap.String("area", d.Area),
		zap.String("labelled_best", d.LabelledBest),
		zap.Float64("accuracy", d.Accuracy),
		zap.Int("skipped", len(d.Skipped)))
	return d, nil
}

// Rovers trains the crop health and waste reduction regressors and predicts
// both for freshly sampled conditions.
func (s *Session) Rovers(ctx context.Context) (*decision.RoverDecision, error) {
	names := []string{s.cfg.FarmingSource, s.cfg.RecyclingSource}
	schemas := []schema.FeatureSchema{schema.Farming, schema.Recycling}
	loaded, errs, err := s.loadAll(ctx, names, schemas)
	if err != nil {
		return nil, err
	}

	smp := sampler.New(s.cfg.SamplerSeed)
	d := &decision.RoverDecision{}
	for i, name := range names {
		err := errs[i]
		if err == nil {
			s.rec.SourceLoaded(name, loaded[i].Len())
			var rep decision.RoverReport
			if rep, err = s.rover(loaded[i], schemas[i], smp); err == nil {
				d.Rovers = append(d.Rovers, rep)
				continue
			}
		}
		sk, ok := s.skip(name, err)
		if !ok {
			return nil, err
		}
		d.Skipped = append(d.Skipped, sk)
	}
	if len(d.Rovers) == 0 {
		return nil, ErrNoDecision
	}
	return d, nil
}

func (s *Session) rover(t *data.Table, fs schema.FeatureSchema, smp *sampler.Sampler) (decision.RoverReport, error) {
	prep := dataprep.NewPreprocessor(fs)
	X, err := prep.FitTransform(t)
	if err != nil {
		return decision.RoverReport{}, err
	}
	y, err := labels.Target(t, fs)
	if err != nil {
		return decision.RoverReport{}, err
	}
	fm, err := s.trainer(s.cfg.Regressor).Train(X, y, fs, model.Regression)
	if err != nil {
		return decision.RoverReport{}, err
	}
	s.trained(fm)

	levels := make(map[string]int)
	for _, col := range fs.Categorical() {
		if enc, ok := prep.Encoding(col); ok {
			levels[col] = enc.Len()
		}
	}
	seq, err := smp.Seq(fs, levels)
	if err != nil {
		return decision.RoverReport{}, err
	}

	rep := decision.RoverReport{
		Source:    t.Name,
		Target:    fs.Target,
		Algorithm: fm.Algorithm,
		Score:     fm.Score,
		MAE:       fm.Eval.MAE,
		RMSE:      fm.Eval.RMSE,
		CVScore:   fm.CVScore,
		TrainRows: fm.TrainRows,
		TestRows:  fm.TestRows,
	}
	pred := Predictor{Prep: prep, Model: fm}
	for _, c := range sampler.Take(seq, max(1, s.cfg.Samples)) {
		v, err := pred.PredictCondition(c)
		if err != nil {
			return decision.RoverReport{}, err
		}
		conds, err := decision.DecodeConditions(c, prep)
		if err != nil {
			return decision.RoverReport{}, err
		}
		rep.Points = append(rep.Points, decision.Point{Conditions: conds, Prediction: v})
	}
	s.log.Info("rover prediction",
		zap.String("source", t.Name),
		zap.String("target", fs.Target),
		zap.Float64("prediction", rep.Points[0].Prediction))
	return rep, nil
}

func (s *Session) trained(fm *FittedModel) {
	s.log.Info("model trained",
		zap.String("schema", fm.Schema.Name),
		zap.String("task", fm.Task.String()),
		zap.String("algorithm", fm.Algorithm),
		zap.Float64("score", fm.Score),
		zap.Int("train_rows", fm.TrainRows),
		zap.Int("test_rows", fm.TestRows),
		zap.Duration("elapsed", fm.Elapsed))
	s.rec.ModelTrained(fm.Schema.Name, fm.Algorithm, fm.Score, fm.Elapsed)
}
