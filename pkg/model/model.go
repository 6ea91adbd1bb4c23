package model

import "time"

// Model is a generic supervised learning interface. Classifiers take class
// labels encoded as floats (0/1 for binary tasks) and predict labels;
// regressors predict continuous values. Predictions keep the row order of X.
type Model interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) []float64
}

// Classifier optionally exposes probabilities.
type Classifier interface {
	Model
	PredictProba(X [][]float64) []float64 // returns p(y=1) for binary classifiers
}

// Importancer exposes per-feature importances summing to 1.
type Importancer interface {
	FeatureImportances() []float64
}

// Task selects what a model predicts.
type Task int

const (
	Classification Task = iota
	Regression
)

func (t Task) String() string {
	if t == Regression {
		return "regression"
	}
	return "classification"
}

// Params holds the hyperparameters shared by trees and forests.
type Params struct {
	MaxDepth            int     // maximum depth (root depth = 0). 0 => no limit
	MinSamplesSplit     int     // minimum samples to attempt a split
	MinSamplesLeaf      int     // minimum samples required in each leaf
	Criterion           string  // "gini" (default) or "entropy"; regression always uses variance
	MaxFeatures         int     // 0 => all features for trees; see RandomForest for forests
	MinImpurityDecrease float64 // minimal impurity decrease to accept a split
	RandomState         int64   // seed for bootstrap and feature subsampling

	NEstimators int
	Bootstrap   bool
}

// Option functional config
type Option func(*Params)

func WithMaxDepth(d int) Option         { return func(p *Params) { p.MaxDepth = d } }
func WithMinSamplesSplit(n int) Option  { return func(p *Params) { p.MinSamplesSplit = n } }
func WithMinSamplesLeaf(n int) Option   { return func(p *Params) { p.MinSamplesLeaf = n } }
func WithCriterion(c string) Option     { return func(p *Params) { p.Criterion = c } }
func WithMaxFeatures(k int) Option      { return func(p *Params) { p.MaxFeatures = k } }
func WithRandomState(seed int64) Option { return func(p *Params) { p.RandomState = seed } }
func WithNEstimators(n int) Option      { return func(p *Params) { p.NEstimators = n } }
func WithBootstrap(b bool) Option       { return func(p *Params) { p.Bootstrap = b } }
func WithMinImpurityDecrease(v float64) Option {
	return func(p *Params) { p.MinImpurityDecrease = v }
}

func defaultParams(opts []Option) Params {
	p := Params{
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Criterion:       "gini",
		NEstimators:     100,
		Bootstrap:       true,
		RandomState:     time.Now().UnixNano(),
	}
	for _, o := range opts {
		o(&p)
	}
	return p
}
