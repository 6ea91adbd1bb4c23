package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoments(t *testing.T) {
	x := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 5.0, Mean(x), 1e-12)
	assert.InDelta(t, 4.0, Variance(x), 1e-12)
	assert.InDelta(t, 2.0, Std(x), 1e-12)
	assert.InDelta(t, 40.0, Sum(x), 1e-12)
	assert.Equal(t, 0.0, Mean(nil))
}

func TestNanMean(t *testing.T) {
	m, ok := NanMean([]float64{1, math.NaN(), 3})
	require.True(t, ok)
	assert.InDelta(t, 2.0, m, 1e-12)

	_, ok = NanMean([]float64{math.NaN()})
	assert.False(t, ok)
}

func TestArgMaxFirstWins(t *testing.T) {
	assert.Equal(t, 1, ArgMax([]float64{5, 8, 3}))
	assert.Equal(t, 0, ArgMax([]float64{7, 7, 1}))
	assert.Equal(t, 1, ArgMax([]float64{1, 9, 9}))
	assert.Equal(t, -1, ArgMax(nil))
}

func TestStandardScaler(t *testing.T) {
	X := [][]float64{{1, 10, 3}, {3, 10, 1}, {5, 10, 2}}
	s := NewStandardScaler(false, false, true)

	_, err := s.TransformRow([]float64{1, 2, 3})
	require.Error(t, err)

	out, err := s.FitTransform(X)
	require.NoError(t, err)
	require.True(t, s.Fitted())

	col := Column(out, 0)
	assert.InDelta(t, 0, Mean(col), 1e-12)
	assert.InDelta(t, 1, Std(col), 1e-12)
	// Constant column maps to zero.
	assert.Equal(t, []float64{0, 0, 0}, Column(out, 1))
	// Passthrough column is untouched.
	assert.Equal(t, []float64{3, 1, 2}, Column(out, 2))

	// Inference reuses fit-time statistics instead of refitting.
	row, err := s.TransformRow([]float64{3, 11, 4})
	require.NoError(t, err)
	assert.InDelta(t, 0, row[0], 1e-12)
	assert.InDelta(t, 1, row[1], 1e-12)
	assert.Equal(t, 4.0, row[2])

	_, err = s.TransformRow([]float64{1})
	require.Error(t, err)
}
