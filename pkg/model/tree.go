package model

import "slices"

// DecisionTreeClassifier is a CART-style classifier.
type DecisionTreeClassifier struct {
	cart
	classes []float64 // sorted distinct labels (order used by probas)
}

// NewDecisionTreeClassifier returns a classifier with sensible defaults.
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	return &DecisionTreeClassifier{cart: cart{Params: defaultParams(opts)}}
}

// Fit trains the decision tree on X (n x p) and class labels y.
// Categorical features: encode categories as integers (0,1,2...) in the
// corresponding float64 entry; equality splits are tried on them.
func (t *DecisionTreeClassifier) Fit(X [][]float64, y []float64) error {
	if err := checkXY(X, y); err != nil {
		return err
	}
	t.fitIndices(X, y, allRows(len(X)), classesOf(y))
	return nil
}

// fitIndices trains on the rows in idx with a fixed class list so that
// forest members agree on probability columns.
func (t *DecisionTreeClassifier) fitIndices(X [][]float64, y []float64, idx []int, classes []float64) {
	t.classes = classes
	t.nClasses = len(classes)
	encoded := make([]float64, len(y))
	for i, v := range y {
		encoded[i] = float64(slices.Index(classes, v))
	}
	t.fit(X, encoded, idx)
}

// Classes returns the labels in probability column order.
func (t *DecisionTreeClassifier) Classes() []float64 { return slices.Clone(t.classes) }

// Predict returns predicted class labels.
func (t *DecisionTreeClassifier) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, probs := range t.PredictProbaAll(X) {
		out[i] = t.classes[argmaxFloat(probs)]
	}
	return out
}

// PredictProbaAll returns the per-class probability vectors for rows in X.
func (t *DecisionTreeClassifier) PredictProbaAll(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i := range X {
		out[i] = t.leafValue(X[i])
	}
	return out
}

// PredictProba returns p(y=1) for each row.
func (t *DecisionTreeClassifier) PredictProba(X [][]float64) []float64 {
	return positiveColumn(t.classes, t.PredictProbaAll(X))
}

// DecisionTreeRegressor is a CART regression tree splitting on variance reduction.
type DecisionTreeRegressor struct {
	cart
}

// NewDecisionTreeRegressor returns a regressor with sensible defaults.
func NewDecisionTreeRegressor(opts ...Option) *DecisionTreeRegressor {
	return &DecisionTreeRegressor{cart: cart{Params: defaultParams(opts)}}
}

func (t *DecisionTreeRegressor) Fit(X [][]float64, y []float64) error {
	if err := checkXY(X, y); err != nil {
		return err
	}
	t.fit(X, y, allRows(len(X)))
	return nil
}

// Predict returns the mean target of the leaf each row falls into.
func (t *DecisionTreeRegressor) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i := range X {
		out[i] = t.leafValue(X[i])[0]
	}
	return out
}

func classesOf(y []float64) []float64 {
	classes := slices.Clone(y)
	slices.Sort(classes)
	return slices.Compact(classes)
}

func positiveColumn(classes []float64, probs [][]float64) []float64 {
	k := slices.Index(classes, 1)
	out := make([]float64, len(probs))
	if k < 0 {
		return out
	}
	for i, p := range probs {
		out[i] = p[k]
	}
	return out
}

func argmaxFloat(arr []float64) int {
	best := 0
	for i := 1; i < len(arr); i++ {
		if arr[i] > arr[best] {
			best = i
		}
	}
	return best
}
