package model

import (
	"context"
	"math"
	"math/rand"
	"runtime"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/data"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/optim"
)

// SGDParams configures mini-batch gradient descent.
type SGDParams struct {
	Lr          float64
	Epochs      int
	BatchSize   int
	Momentum    float64
	RandomState int64
}

// linearModel is a weight vector plus bias trained by mini-batch SGD. Rows
// are reshuffled every epoch from a seeded source.
type linearModel struct {
	SGDParams
	W []float64 // weights
	b float64   // bias
}

// scores computes X·W + b, spreading rows over CPU cores.
func (m *linearModel) scores(X [][]float64, activation func(float64) float64) []float64 {
	if len(X) == 0 {
		return nil
	}
	out := make([]float64, len(X))
	var wg sync.WaitGroup

	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (len(X) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		s := w * rowsPerWorker
		e := min(s+rowsPerWorker, len(X))
		if s >= e {
			continue
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				sum := m.b
				for j, v := range X[i] {
					sum += m.W[j] * v
				}
				out[i] = activation(sum)
			}
		}(s, e)
	}
	wg.Wait()
	return out
}

func (m *linearModel) train(X [][]float64, y []float64, activation func(float64) float64, loss func(yTrue, yPred []float64) (float64, []float64)) error {
	if err := checkXY(X, y); err != nil {
		return eris.Wrap(err, "sgd")
	}
	if m.Epochs <= 0 || m.Lr <= 0 {
		return eris.New("sgd: epochs and learning rate must be positive")
	}

	rnd := rand.New(rand.NewSource(m.RandomState))
	m.W = make([]float64, len(X[0]))
	for i := range m.W {
		m.W[i] = rnd.NormFloat64() * 0.01
	}
	m.b = 0
	opt := optim.NewSGD(m.Lr).WithMomentum(m.Momentum)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	for range m.Epochs {
		for batch := range data.Batches(ctx, X, y, m.BatchSize, rnd.Perm(len(X))) {
			_, dy := loss(batch.Y, m.scores(batch.X, activation))
			gW := make([]float64, len(m.W))
			gb := 0.0
			for i, row := range batch.X {
				d := dy[i]
				for j, xij := range row {
					gW[j] += d * xij
				}
				gb += d
			}
			opt.Step(m.W, gW)
			m.b -= m.Lr * gb
		}
	}

	for _, w := range append(m.W, m.b) {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return eris.New("sgd: weights diverged; lower the learning rate")
		}
	}
	return nil
}

// Bias returns the current bias value of the model.
func (m *linearModel) Bias() float64 { return m.b }

func identity(x float64) float64 { return x }

// LinearRegression via mini-batch gradient descent on squared error.
type LinearRegression struct {
	linearModel
}

func NewLinearRegression(p SGDParams) *LinearRegression {
	return &LinearRegression{linearModel{SGDParams: p}}
}

func (m *LinearRegression) Fit(X [][]float64, y []float64) error {
	return m.train(X, y, identity, optim.MSE)
}

// Predict returns predictions for rows in X (rows of features).
func (m *LinearRegression) Predict(X [][]float64) []float64 {
	return m.scores(X, identity)
}

// LogisticRegression (binary) with sigmoid, trained on cross-entropy.
type LogisticRegression struct {
	linearModel
}

func NewLogisticRegression(p SGDParams) *LogisticRegression {
	return &LogisticRegression{linearModel{SGDParams: p}}
}

func (m *LogisticRegression) Fit(X [][]float64, y []float64) error {
	for _, v := range y {
		if v != 0 && v != 1 {
			return eris.Errorf("logistic: labels must be 0 or 1, got %v", v)
		}
	}
	return m.train(X, y, optim.Sigmoid, optim.BCE)
}

// PredictProba returns the probability scores (between 0 and 1) for each input row in X.
func (m *LogisticRegression) PredictProba(X [][]float64) []float64 {
	return m.scores(X, optim.Sigmoid)
}

// Predict returns the class labels (0 or 1) based on a 0.5 probability threshold.
func (m *LogisticRegression) Predict(X [][]float64) []float64 {
	return BinaryPredFromProba(m.PredictProba(X), 0.5)
}
