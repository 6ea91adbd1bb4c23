package model

import "math"

// Regression metrics

func MSE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	n := float64(len(yTrue))
	s := 0.0
	for i := range yTrue {
		d := yPred[i] - yTrue[i]
		s += d * d
	}
	return s / n
}

func MAE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	n := float64(len(yTrue))
	s := 0.0
	for i := range yTrue {
		d := yPred[i] - yTrue[i]
		if d < 0 {
			d = -d
		}
		s += d
	}
	return s / n
}

func RMSE(yTrue, yPred []float64) float64 { return math.Sqrt(MSE(yTrue, yPred)) }

// R2 is the coefficient of determination; 0 when yTrue is constant.
func R2(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	m := 0.0
	for _, v := range yTrue {
		m += v
	}
	m /= float64(len(yTrue))
	ssTot := 0.0
	ssRes := 0.0
	for i := range yTrue {
		d := yTrue[i] - m
		ssTot += d * d
		r := yTrue[i] - yPred[i]
		ssRes += r * r
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// Accuracy is the share of exact label matches.
func Accuracy(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	c := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			c++
		}
	}
	return float64(c) / float64(len(yTrue))
}

func BinaryPredFromProba(proba []float64, threshold float64) []float64 {
	out := make([]float64, len(proba))
	for i, p := range proba {
		if p >= threshold {
			out[i] = 1
		}
	}
	return out
}

// PrecisionRecallF1 for binary labels 0/1.
func PrecisionRecallF1(yTrue, yPred []float64) (prec, rec, f1 float64) {
	tp, fp, fn := 0, 0, 0
	for i := range yTrue {
		if yPred[i] == 1 && yTrue[i] == 1 {
			tp++
		}
		if yPred[i] == 1 && yTrue[i] == 0 {
			fp++
		}
		if yPred[i] == 0 && yTrue[i] == 1 {
			fn++
		}
	}
	if tp+fp > 0 {
		prec = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		rec = float64(tp) / float64(tp+fn)
	}
	if prec+rec > 0 {
		f1 = 2 * prec * rec / (prec + rec)
	}
	return
}

// Score is the default held-out metric for a task: accuracy for
// classifiers, R² for regressors.
func Score(task Task, yTrue, yPred []float64) float64 {
	if task == Classification {
		return Accuracy(yTrue, yPred)
	}
	return R2(yTrue, yPred)
}

// Evaluation holds the held-out metrics of one model. Classification fills
// Accuracy, Precision, Recall and F1; regression fills R2, MSE, MAE and RMSE.
type Evaluation struct {
	Task      Task
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
	R2        float64
	MSE       float64
	MAE       float64
	RMSE      float64
}

// Evaluate computes the metrics of task on a held-out set.
func Evaluate(task Task, yTrue, yPred []float64) Evaluation {
	e := Evaluation{Task: task}
	if task == Classification {
		e.Accuracy = Accuracy(yTrue, yPred)
		e.Precision, e.Recall, e.F1 = PrecisionRecallF1(yTrue, yPred)
		return e
	}
	e.R2 = R2(yTrue, yPred)
	e.MSE = MSE(yTrue, yPred)
	e.MAE = MAE(yTrue, yPred)
	e.RMSE = RMSE(yTrue, yPred)
	return e
}

// Score is the headline metric of the evaluation, matching Score.
func (e Evaluation) Score() float64 {
	if e.Task == Classification {
		return e.Accuracy
	}
	return e.R2
}
