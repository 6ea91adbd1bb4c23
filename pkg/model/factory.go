package model

import "github.com/rotisserie/eris"

// Algorithm names accepted by New.
const (
	AlgForest = "forest"
	AlgTree   = "tree"
	AlgKNN    = "knn"
	AlgLinear = "linear" // logistic regression for classification
)

// Config carries every hyperparameter a model might need. Fields that do not
// apply to the chosen algorithm are ignored; zero values fall back to
// defaults.
type Config struct {
	NEstimators         int
	MaxDepth            int
	MinSamplesSplit     int
	MinSamplesLeaf      int
	MaxFeatures         int
	MinImpurityDecrease float64
	Criterion           string // gini or entropy, classification trees only
	NoBootstrap         bool   // forests fit every tree on all rows
	K                   int
	LearningRate        float64
	Epochs              int
	BatchSize           int
	Seed                int64
}

// DefaultConfig mirrors the CLI defaults.
func DefaultConfig() Config {
	return Config{
		NEstimators:     100,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Criterion:       "gini",
		K:               5,
		LearningRate:    0.01,
		Epochs:          200,
		BatchSize:       32,
		Seed:            42,
	}
}

// New builds an untrained model for the algorithm and task.
func New(algorithm string, task Task, cfg Config) (Model, error) {
	d := DefaultConfig()
	if cfg.NEstimators <= 0 {
		cfg.NEstimators = d.NEstimators
	}
	if cfg.MinSamplesSplit <= 0 {
		cfg.MinSamplesSplit = d.MinSamplesSplit
	}
	if cfg.MinSamplesLeaf <= 0 {
		cfg.MinSamplesLeaf = d.MinSamplesLeaf
	}
	switch cfg.Criterion {
	case "":
		cfg.Criterion = d.Criterion
	case "gini", "entropy":
	default:
		return nil, eris.Errorf("model: unknown criterion %q", cfg.Criterion)
	}
	if cfg.K <= 0 {
		cfg.K = d.K
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = d.LearningRate
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = d.Epochs
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = d.BatchSize
	}

	opts := []Option{
		WithMaxDepth(cfg.MaxDepth),
		WithMinSamplesSplit(cfg.MinSamplesSplit),
		WithMinSamplesLeaf(cfg.MinSamplesLeaf),
		WithMaxFeatures(cfg.MaxFeatures),
		WithMinImpurityDecrease(cfg.MinImpurityDecrease),
		WithCriterion(cfg.Criterion),
		WithBootstrap(!cfg.NoBootstrap),
		WithRandomState(cfg.Seed),
		WithNEstimators(cfg.NEstimators),
	}
	sgd := SGDParams{
		Lr:          cfg.LearningRate,
		Epochs:      cfg.Epochs,
		BatchSize:   cfg.BatchSize,
		RandomState: cfg.Seed,
	}

	switch algorithm {
	case AlgForest:
		if task == Regression {
			return NewRandomForestRegressor(opts...), nil
		}
		return NewRandomForest(opts...), nil
	case AlgTree:
		if task == Regression {
			return NewDecisionTreeRegressor(opts...), nil
		}
		return NewDecisionTreeClassifier(opts...), nil
	case AlgKNN:
		return NewKNN(cfg.K, task), nil
	case AlgLinear:
		if task == Regression {
			return NewLinearRegression(sgd), nil
		}
		return NewLogisticRegression(sgd), nil
	default:
		return nil, eris.Errorf("model: unknown algorithm %q", algorithm)
	}
}
