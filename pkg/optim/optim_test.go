package optim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSGDStep(t *testing.T) {
	w := []float64{1, -1}
	NewSGD(0.5).Step(w, []float64{2, -2})
	assert.Equal(t, []float64{0, 0}, w)
}

func TestSGDMomentumAccumulates(t *testing.T) {
	o := NewSGD(0.1).WithMomentum(0.9)
	w := []float64{0}
	o.Step(w, []float64{1})
	assert.InDelta(t, -0.1, w[0], 1e-12)
	o.Step(w, []float64{1})
	// v = 0.9*-0.1 - 0.1 = -0.19
	assert.InDelta(t, -0.29, w[0], 1e-12)
}

func TestLosses(t *testing.T) {
	loss, grad := MSE([]float64{1, 2}, []float64{2, 2})
	assert.InDelta(t, 0.5, loss, 1e-12)
	assert.Equal(t, []float64{1, 0}, grad)

	loss, grad = BCE([]float64{1, 0}, []float64{0.5, 0.5})
	assert.InDelta(t, 0.6931471805599453, loss, 1e-12)
	assert.InDelta(t, -0.25, grad[0], 1e-12)
	assert.InDelta(t, 0.25, grad[1], 1e-12)

	assert.InDelta(t, 0.5, Sigmoid(0), 1e-12)
}
