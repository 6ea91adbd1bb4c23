package optim

// SGD is stochastic gradient descent with optional classical momentum.
type SGD struct {
	LearningRate float64
	Momentum     float64

	velocity []float64
}

func NewSGD(lr float64) *SGD { return &SGD{LearningRate: lr} }

// WithMomentum sets the momentum coefficient (0 disables it).
func (o *SGD) WithMomentum(m float64) *SGD { o.Momentum = m; return o }

// Step updates params in place from grads. The velocity buffer is sized on
// first use; params and grads must keep the same length across calls.
func (o *SGD) Step(params, grads []float64) {
	if o.Momentum == 0 {
		for i := range params {
			params[i] -= o.LearningRate * grads[i]
		}
		return
	}
	if len(o.velocity) != len(params) {
		o.velocity = make([]float64, len(params))
	}
	for i := range params {
		o.velocity[i] = o.Momentum*o.velocity[i] - o.LearningRate*grads[i]
		params[i] += o.velocity[i]
	}
}
