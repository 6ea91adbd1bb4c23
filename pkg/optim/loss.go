package optim

import "math"

// probability clamp keeping log() finite
const eps = 1e-12

func Sigmoid(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) }

// MSE returns the mean squared error and its gradient with respect to yPred.
// Use this loss when predicting continuous values (regression problems).
func MSE(yTrue, yPred []float64) (float64, []float64) {
	n := len(yTrue)
	s := 0.0
	grad := make([]float64, n)
	for i := range n {
		e := yPred[i] - yTrue[i]
		s += e * e
		grad[i] = 2 * e / float64(n)
	}
	return s / float64(n), grad
}

// BCE returns the binary cross-entropy of probabilities yPred and its
// gradient with respect to the logits that produced them through Sigmoid.
func BCE(yTrue, yPred []float64) (float64, []float64) {
	n := len(yTrue)
	s := 0.0
	grad := make([]float64, n)
	for i := range n {
		p := math.Min(math.Max(yPred[i], eps), 1-eps)
		y := yTrue[i]
		s += -(y*math.Log(p) + (1-y)*math.Log(1-p))
		grad[i] = (p - y) / float64(n)
	}
	return s / float64(n), grad
}
