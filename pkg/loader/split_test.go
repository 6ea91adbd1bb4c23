package loader

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitDisjointAndCovering(t *testing.T) {
	for _, n := range []int{2, 3, 10, 48, 144} {
		p, err := Split(n, 0.2, 42)
		require.NoError(t, err)
		assert.NotEmpty(t, p.Train)
		assert.NotEmpty(t, p.Test)

		all := append(slices.Clone(p.Train), p.Test...)
		slices.Sort(all)
		want := make([]int, n)
		for i := range want {
			want[i] = i
		}
		assert.Equal(t, want, all, "n=%d", n)
	}
}

func TestSplitSizes(t *testing.T) {
	p, err := Split(144, 0.2, 42)
	require.NoError(t, err)
	assert.Len(t, p.Test, 29)
	assert.Len(t, p.Train, 115)
}

func TestSplitReproducible(t *testing.T) {
	a, err := Split(100, 0.2, 7)
	require.NoError(t, err)
	b, err := Split(100, 0.2, 7)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Split(100, 0.2, 8)
	require.NoError(t, err)
	assert.NotEqual(t, a.Test, c.Test)
}

func TestSplitErrors(t *testing.T) {
	_, err := Split(1, 0.2, 1)
	var ie *InsufficientDataError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 1, ie.Rows)

	_, err = Split(10, 0, 1)
	require.Error(t, err)
	_, err = Split(10, 1, 1)
	require.Error(t, err)
}

func TestTrainTestSplit(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}, {3}, {4}}
	Y := []float64{0, 10, 20, 30, 40}

	XTrain, XTest, YTrain, YTest, err := TrainTestSplit(X, Y, 0.4, 42)
	require.NoError(t, err)
	assert.Len(t, XTest, 2)
	assert.Len(t, XTrain, 3)
	for i := range XTrain {
		assert.Equal(t, XTrain[i][0]*10, YTrain[i])
	}
	for i := range XTest {
		assert.Equal(t, XTest[i][0]*10, YTest[i])
	}
	assert.Equal(t, []float64{0, 10, 20, 30, 40}, Y)

	_, _, _, _, err = TrainTestSplit(X, Y[:4], 0.2, 42)
	var fm *FeatureMismatchError
	require.True(t, errors.As(err, &fm))
	assert.Equal(t, 5, fm.Rows)
	assert.Equal(t, 4, fm.Targets)
}

func TestKFoldSplit(t *testing.T) {
	folds := KFoldSplit(10, 3, 1)
	require.Len(t, folds, 3)
	var all []int
	for _, f := range folds {
		all = append(all, f...)
	}
	slices.Sort(all)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, all)
}
