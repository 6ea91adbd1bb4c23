package model

import (
	"cmp"
	"runtime"
	"slices"
	"sync"

	"github.com/rotisserie/eris"
)

// KNN predicts from the K nearest training rows. A classifier returns the
// majority label among them, a regressor their mean target.
type KNN struct {
	K    int
	Task Task
	X    [][]float64
	y    []float64
}

// NewKNN creates and returns a new KNN model.
func NewKNN(k int, task Task) *KNN {
	return &KNN{K: k, Task: task}
}

// Fit stores the training data and labels. This is the "lazy" part of a KNN
// model.
func (m *KNN) Fit(X [][]float64, y []float64) error {
	if err := checkXY(X, y); err != nil {
		return eris.Wrap(err, "knn")
	}
	if m.K <= 0 {
		return eris.Errorf("knn: k must be positive, got %d", m.K)
	}
	m.X = X
	m.y = y
	return nil
}

// Predict finds the K nearest neighbors for each row, spread across CPU cores.
func (m *KNN) Predict(X [][]float64) []float64 {
	if len(X) == 0 {
		return nil
	}

	out := make([]float64, len(X))
	var wg sync.WaitGroup
	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (len(X) + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := min(start+rowsPerWorker, len(X))
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				out[i] = m.predictSingle(X[i])
			}
		}(start, end)
	}

	wg.Wait()
	return out
}

type neighbor struct {
	d   float64
	idx int
}

// predictSingle keeps a sorted window of the K closest rows. Equal distances
// are ordered by training row so results do not depend on scheduling.
func (m *KNN) predictSingle(xi []float64) float64 {
	less := func(a, b neighbor) int {
		if c := cmp.Compare(a.d, b.d); c != 0 {
			return c
		}
		return cmp.Compare(a.idx, b.idx)
	}

	k := min(m.K, len(m.X))
	nbrs := make([]neighbor, 0, k+1)
	for j, xj := range m.X {
		n := neighbor{d: euclidSquared(xi, xj), idx: j}
		if len(nbrs) < k {
			nbrs = append(nbrs, n)
			slices.SortFunc(nbrs, less)
		} else if less(n, nbrs[k-1]) < 0 {
			nbrs[k-1] = n
			slices.SortFunc(nbrs, less)
		}
	}

	if m.Task == Regression {
		sum := 0.0
		for _, n := range nbrs {
			sum += m.y[n.idx]
		}
		return sum / float64(len(nbrs))
	}

	votes := map[float64]int{}
	for _, n := range nbrs {
		votes[m.y[n.idx]]++
	}
	best, bestVotes := 0.0, -1
	for label, v := range votes {
		if v > bestVotes || (v == bestVotes && label < best) {
			best, bestVotes = label, v
		}
	}
	return best
}

// euclidSquared computes the squared Euclidean distance between two vectors.
func euclidSquared(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
