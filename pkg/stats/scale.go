package stats

import "github.com/rotisserie/eris"

// StandardScaler standardizes columns to zero mean and unit variance. The
// statistics are computed once by Fit and reused unchanged by every
// Transform, so inference data is scaled exactly like the training data.
type StandardScaler struct {
	Mean []float64
	Std  []float64
	// Passthrough marks columns left untouched (e.g. categorical codes).
	Passthrough []bool
	fit         bool
}

func NewStandardScaler(passthrough ...bool) *StandardScaler {
	return &StandardScaler{Passthrough: passthrough}
}

func (s *StandardScaler) skip(j int) bool {
	return j < len(s.Passthrough) && s.Passthrough[j]
}

// Fit learns per-column mean and standard deviation. Constant columns get a
// unit std so they map to zero instead of NaN.
func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 {
		return eris.New("scaler: empty X")
	}
	c := len(X[0])
	s.Mean = make([]float64, c)
	s.Std = make([]float64, c)
	for j := 0; j < c; j++ {
		if s.skip(j) {
			s.Std[j] = 1
			continue
		}
		col := Column(X, j)
		s.Mean[j] = Mean(col)
		s.Std[j] = Std(col)
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
	s.fit = true
	return nil
}

// Fitted reports whether Fit has run.
func (s *StandardScaler) Fitted() bool { return s.fit }

// Transform scales X with the fitted statistics into a new matrix.
func (s *StandardScaler) Transform(X [][]float64) ([][]float64, error) {
	out := make([][]float64, len(X))
	for i, row := range X {
		r, err := s.TransformRow(row)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// TransformRow scales a single feature vector.
func (s *StandardScaler) TransformRow(row []float64) ([]float64, error) {
	if !s.fit {
		return nil, eris.New("scaler: not fitted")
	}
	if len(row) != len(s.Mean) {
		return nil, eris.Errorf("scaler: row has %d columns, fitted on %d", len(row), len(s.Mean))
	}
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out, nil
}

// FitTransform fits on X and returns X scaled.
func (s *StandardScaler) FitTransform(X [][]float64) ([][]float64, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}
