package model

import (
	"math"
	"math/rand"
	"runtime"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
)

// forest fits independent trees on bootstrap samples. Tree i is seeded with
// RandomState+i and stored at index i, so the result does not depend on
// which goroutine finishes first.
type forest struct {
	Params
	nFeatures int
}

// maxFeatures resolves MaxFeatures 0: sqrt(p) for classification, all
// features for regression.
func (f *forest) maxFeatures(p int, task Task) int {
	if f.MaxFeatures > 0 {
		return f.MaxFeatures
	}
	if task == Classification {
		return max(1, int(math.Sqrt(float64(p))))
	}
	return p
}

func (f *forest) sample(idx, n int) []int {
	if !f.Bootstrap {
		return allRows(n)
	}
	treeRand := rand.New(rand.NewSource(f.RandomState + int64(idx)))
	sampleIndices := make([]int, n)
	for j := range sampleIndices {
		sampleIndices[j] = treeRand.Intn(n)
	}
	return sampleIndices
}

func (f *forest) treeParams(idx, p int, task Task) Params {
	tp := f.Params
	tp.RandomState = f.RandomState + int64(idx)
	tp.MaxFeatures = f.maxFeatures(p, task)
	return tp
}

func (f *forest) grow(fitTree func(i int) error) error {
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < f.NEstimators; i++ {
		g.Go(func() error { return fitTree(i) })
	}
	return g.Wait()
}

// RandomForest for classification
type RandomForest struct {
	forest
	Trees   []*DecisionTreeClassifier
	classes []float64
}

// NewRandomForest initializes the forest with sensible defaults.
func NewRandomForest(opts ...Option) *RandomForest {
	return &RandomForest{forest: forest{Params: defaultParams(opts)}}
}

// Fit trains the random forest.
// It uses index-based sampling for memory efficiency.
func (rf *RandomForest) Fit(X [][]float64, y []float64) error {
	if err := checkXY(X, y); err != nil {
		return eris.Wrap(err, "randomforest")
	}
	if rf.NEstimators <= 0 {
		return eris.New("randomforest: NEstimators must be positive")
	}
	n, p := len(X), len(X[0])
	rf.nFeatures = p
	rf.classes = classesOf(y)
	rf.Trees = make([]*DecisionTreeClassifier, rf.NEstimators)
	return rf.grow(func(i int) error {
		tree := &DecisionTreeClassifier{cart: cart{Params: rf.treeParams(i, p, Classification)}}
		tree.fitIndices(X, y, rf.sample(i, n), rf.classes)
		rf.Trees[i] = tree
		return nil
	})
}

// PredictProbaAll averages the class probabilities of all trees.
func (rf *RandomForest) PredictProbaAll(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i := range out {
		out[i] = make([]float64, len(rf.classes))
	}
	for _, t := range rf.Trees {
		for i, probs := range t.PredictProbaAll(X) {
			for k, p := range probs {
				out[i][k] += p
			}
		}
	}
	for i := range out {
		for k := range out[i] {
			out[i][k] /= float64(len(rf.Trees))
		}
	}
	return out
}

// Predict returns the class with the highest mean probability; exact ties
// go to the smaller label.
func (rf *RandomForest) Predict(X [][]float64) []float64 {
	finalPred := make([]float64, len(X))
	for i, probs := range rf.PredictProbaAll(X) {
		finalPred[i] = rf.classes[argmaxFloat(probs)]
	}
	return finalPred
}

// PredictProba returns p(y=1) for each row.
func (rf *RandomForest) PredictProba(X [][]float64) []float64 {
	return positiveColumn(rf.classes, rf.PredictProbaAll(X))
}

// FeatureImportances averages the normalized importances of all trees.
func (rf *RandomForest) FeatureImportances() []float64 {
	imp := make([]float64, rf.nFeatures)
	for _, t := range rf.Trees {
		for j, v := range t.importances {
			imp[j] += v
		}
	}
	return normalize(imp)
}

// RandomForestRegressor averages the predictions of regression trees.
type RandomForestRegressor struct {
	forest
	Trees []*DecisionTreeRegressor
}

func NewRandomForestRegressor(opts ...Option) *RandomForestRegressor {
	return &RandomForestRegressor{forest: forest{Params: defaultParams(opts)}}
}

func (rf *RandomForestRegressor) Fit(X [][]float64, y []float64) error {
	if err := checkXY(X, y); err != nil {
		return eris.Wrap(err, "randomforest")
	}
	if rf.NEstimators <= 0 {
		return eris.New("randomforest: NEstimators must be positive")
	}
	n, p := len(X), len(X[0])
	rf.nFeatures = p
	rf.Trees = make([]*DecisionTreeRegressor, rf.NEstimators)
	return rf.grow(func(i int) error {
		tree := &DecisionTreeRegressor{cart: cart{Params: rf.treeParams(i, p, Regression)}}
		tree.fit(X, y, rf.sample(i, n))
		rf.Trees[i] = tree
		return nil
	})
}

func (rf *RandomForestRegressor) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for _, t := range rf.Trees {
		for i, v := range t.Predict(X) {
			out[i] += v
		}
	}
	for i := range out {
		out[i] /= float64(len(rf.Trees))
	}
	return out
}

func (rf *RandomForestRegressor) FeatureImportances() []float64 {
	imp := make([]float64, rf.nFeatures)
	for _, t := range rf.Trees {
		for j, v := range t.importances {
			imp[j] += v
		}
	}
	return normalize(imp)
}

func normalize(v []float64) []float64 {
	total := 0.0
	for _, x := range v {
		total += x
	}
	if total == 0 {
		return v
	}
	for j := range v {
		v[j] /= total
	}
	return v
}
