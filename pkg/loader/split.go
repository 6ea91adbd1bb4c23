package loader

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/rotisserie/eris"
)

// InsufficientDataError reports too few rows to form both partitions.
type InsufficientDataError struct {
	Rows int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("loader: %d rows, need at least 2 to split", e.Rows)
}

// FeatureMismatchError reports a feature matrix and target vector of different lengths.
type FeatureMismatchError struct {
	Rows    int
	Targets int
}

func (e *FeatureMismatchError) Error() string {
	return fmt.Sprintf("loader: %d feature rows but %d targets", e.Rows, e.Targets)
}

// Partition holds disjoint row indices that together cover every input row.
type Partition struct {
	Train []int
	Test  []int
}

// Split shuffles n row indices with the given seed and holds out
// ceil(n*testRatio) of them for testing, keeping at least one row on each side.
func Split(n int, testRatio float64, seed int64) (Partition, error) {
	if n < 2 {
		return Partition{}, &InsufficientDataError{Rows: n}
	}
	if testRatio <= 0 || testRatio >= 1 {
		return Partition{}, eris.Errorf("loader: test ratio %v outside (0, 1)", testRatio)
	}
	nTest := int(math.Ceil(float64(n)*testRatio - 1e-9))
	nTest = max(1, min(nTest, n-1))

	indices := rand.New(rand.NewSource(seed)).Perm(n)
	return Partition{Train: indices[nTest:], Test: indices[:nTest]}, nil
}

// TrainTestSplit splits X, Y into train and test sets by ratio. Rows keep
// their pairing and the inputs are not modified.
func TrainTestSplit(X [][]float64, Y []float64, testRatio float64, seed int64) (XTrain, XTest [][]float64, YTrain, YTest []float64, err error) {
	if len(X) != len(Y) {
		return nil, nil, nil, nil, &FeatureMismatchError{Rows: len(X), Targets: len(Y)}
	}
	p, err := Split(len(X), testRatio, seed)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	XTrain, YTrain = Take(X, Y, p.Train)
	XTest, YTest = Take(X, Y, p.Test)
	return XTrain, XTest, YTrain, YTest, nil
}

// Take selects rows of X and Y by index.
func Take(X [][]float64, Y []float64, idx []int) ([][]float64, []float64) {
	xs := make([][]float64, len(idx))
	ys := make([]float64, len(idx))
	for i, j := range idx {
		xs[i] = X[j]
		ys[i] = Y[j]
	}
	return xs, ys
}

// KFoldSplit yields k folds of test indices over a seeded shuffle of n rows.
func KFoldSplit(n, k int, seed int64) [][]int {
	indices := rand.New(rand.NewSource(seed)).Perm(n)
	folds := make([][]int, k)
	for i := range n {
		folds[i%k] = append(folds[i%k], indices[i])
	}
	return folds
}
