package dataprep

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/data"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/schema"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/stats"
)

var soil = schema.FeatureSchema{
	Name: "soil",
	Fields: []schema.Field{
		{Name: "Moisture", Kind: schema.Numeric},
		{Name: "Crop", Kind: schema.Categorical},
		{Name: "Depth", Kind: schema.Numeric},
	},
	Target: "Yield",
	Drop:   []string{"Time"},
}

func soilTable(t *testing.T, name string, rows [][]string) *data.Table {
	t.Helper()
	tbl, err := data.NewTable(name, []string{"Time", "Moisture", "Crop", "Depth", "Yield"}, rows)
	require.NoError(t, err)
	return tbl
}

func TestImputeMeanUsesPreImputationMean(t *testing.T) {
	raw := []string{"1", "", "5", "NA", "6"}
	vals, err := ParseNumeric("x", raw)
	require.NoError(t, err)

	filled, mean, err := ImputeMean("x", vals)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, mean, 1e-12)
	assert.Equal(t, []float64{1, 4, 5, 4, 6}, filled)
	assert.True(t, math.IsNaN(vals[1]), "input must not be modified")

	_, _, err = ImputeMean("x", []float64{math.NaN()})
	require.Error(t, err)
}

func TestParseNumericRejectsText(t *testing.T) {
	_, err := ParseNumeric("x", []string{"1", "abc"})
	require.Error(t, err)
}

func TestImputeMode(t *testing.T) {
	assert.Equal(t, []string{"b", "b", "a", "b"}, ImputeMode([]string{"b", "", "a", "b"}))
	// Tie goes to the value that sorts first.
	assert.Equal(t, []string{"z", "a", "a"}, ImputeMode([]string{"z", "a", ""}))
}

func TestLabelEncodeRoundTrip(t *testing.T) {
	col := []string{"Wheat", "Rice", "Corn", "Wheat", "", "Soybean", "Potato"}
	enc := LabelEncode("Crop_Type", col)
	assert.Equal(t, []string{"Corn", "Potato", "Rice", "Soybean", "Wheat"}, enc.Values)
	assert.Equal(t, 5, enc.Len())

	for _, v := range enc.Values {
		code, err := enc.Encode(v)
		require.NoError(t, err)
		back, err := enc.Decode(code)
		require.NoError(t, err)
		assert.Equal(t, v, back)
	}

	_, err := enc.Encode("Barley")
	var uc *UnknownCategoryError
	require.True(t, errors.As(err, &uc))
	assert.Equal(t, "Barley", uc.Value)

	_, err = enc.Decode(5)
	require.Error(t, err)
	_, err = enc.Decode(-1)
	require.Error(t, err)
}

func TestLabelEncodeIgnoresRowOrder(t *testing.T) {
	a := LabelEncode("c", []string{"x", "y", "z"})
	b := LabelEncode("c", []string{"z", "x", "y"})
	assert.Equal(t, a.Values, b.Values)
}

func TestPreprocessorFitTransform(t *testing.T) {
	tbl := soilTable(t, "plot", [][]string{
		{"t0", "10", "Rice", "1", "50"},
		{"t1", "", "Wheat", "2", "60"},
		{"t2", "30", "Rice", "3", "70"},
		{"t3", "20", "", "", "80"},
	})
	p := NewPreprocessor(soil)
	X, err := p.FitTransform(tbl)
	require.NoError(t, err)
	require.Len(t, X, tbl.Len())
	for _, row := range X {
		assert.Len(t, row, soil.Width())
	}

	// Missing moisture filled with 20 (mean of 10, 30, 20) then standardized.
	assert.InDelta(t, X[3][0], X[1][0], 1e-12)
	assert.InDelta(t, 0, stats.Mean(stats.Column(X, 0)), 1e-12)
	assert.InDelta(t, 1, stats.Std(stats.Column(X, 0)), 1e-12)

	// Categorical codes are not scaled; the missing crop takes the mode.
	assert.Equal(t, []float64{0, 1, 0, 0}, stats.Column(X, 1))

	enc, ok := p.Encoding("Crop")
	require.True(t, ok)
	assert.Equal(t, []string{"Rice", "Wheat"}, enc.Values)
	v, err := p.Decode("Crop", 1)
	require.NoError(t, err)
	assert.Equal(t, "Wheat", v)
	_, err = p.Decode("Depth", 0)
	require.Error(t, err)
}

func TestPreprocessorReusesFitStatistics(t *testing.T) {
	train := soilTable(t, "train", [][]string{
		{"t0", "0", "Rice", "1", "1"},
		{"t1", "10", "Rice", "1", "1"},
	})
	shifted := soilTable(t, "infer", [][]string{
		{"t2", "100", "Rice", "1", "1"},
		{"t3", "110", "Rice", "1", "1"},
	})
	p := NewPreprocessor(soil)
	require.NoError(t, p.Fit(train))

	X, err := p.Transform(shifted)
	require.NoError(t, err)
	// Fit mean 5, std 5: inference rows are not re-centred.
	assert.InDelta(t, 19.0, X[0][0], 1e-12)
	assert.InDelta(t, 21.0, X[1][0], 1e-12)
}

func TestPreprocessorFitAcrossTables(t *testing.T) {
	a := soilTable(t, "a", [][]string{{"t", "1", "Rice", "1", "1"}})
	b := soilTable(t, "b", [][]string{{"t", "3", "Corn", "1", "1"}})
	p := NewPreprocessor(soil)
	require.NoError(t, p.Fit(a, b))

	enc, _ := p.Encoding("Crop")
	assert.Equal(t, []string{"Corn", "Rice"}, enc.Values)

	Xa, err := p.Transform(a)
	require.NoError(t, err)
	Xb, err := p.Transform(b)
	require.NoError(t, err)
	assert.InDelta(t, -1, Xa[0][0], 1e-12)
	assert.InDelta(t, 1, Xb[0][0], 1e-12)
}

func TestPreprocessorErrors(t *testing.T) {
	p := NewPreprocessor(soil)
	_, err := p.Transform(soilTable(t, "x", nil))
	require.Error(t, err)
	_, err = p.TransformVector([]float64{1, 0, 1})
	require.Error(t, err)

	require.Error(t, p.Fit())

	missing, err := data.NewTable("bad", []string{"Moisture", "Crop"}, [][]string{{"1", "Rice"}})
	require.NoError(t, err)
	err = p.Fit(missing)
	var se *schema.SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []string{"Depth", "Yield"}, se.Missing)

	require.NoError(t, p.Fit(soilTable(t, "ok", [][]string{
		{"t0", "1", "Rice", "1", "1"},
		{"t1", "2", "Rice", "2", "1"},
	})))
	_, err = p.Transform(soilTable(t, "new", [][]string{{"t", "1", "Barley", "1", "1"}}))
	var uc *UnknownCategoryError
	require.True(t, errors.As(err, &uc))
}

func TestPreprocessorCheck(t *testing.T) {
	tests := []struct {
		name   string
		rows   [][]string
		column string
	}{
		{name: "clean", rows: [][]string{{"t0", "1", "Rice", "1", "1"}, {"t1", "", "", "2", "1"}}},
		{name: "unparsable number", rows: [][]string{{"t0", "1", "Rice", "1", "1"}, {"t1", "n/a?", "Rice", "2", "1"}}, column: "Moisture"},
		{name: "numeric column empty", rows: [][]string{{"t0", "1", "Rice", "", "1"}, {"t1", "2", "Rice", "NA", "1"}}, column: "Depth"},
		{name: "categorical column empty", rows: [][]string{{"t0", "1", "", "1", "1"}, {"t1", "2", "", "2", "1"}}, column: "Crop"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPreprocessor(soil)
			err := p.Check(soilTable(t, "plot", tt.rows))
			if tt.column == "" {
				require.NoError(t, err)
				return
			}
			var de *data.DataError
			require.True(t, errors.As(err, &de), "got %v", err)
			assert.Equal(t, "plot", de.Source)
			assert.Equal(t, tt.column, de.Column)

			// The same fault surfaces from FitTransform as a DataError too.
			_, err = p.FitTransform(soilTable(t, "plot", tt.rows))
			require.True(t, errors.As(err, &de), "got %v", err)
		})
	}
}

func TestTransformVector(t *testing.T) {
	p := NewPreprocessor(soil)
	require.NoError(t, p.Fit(soilTable(t, "ok", [][]string{
		{"t0", "0", "Rice", "0", "1"},
		{"t1", "10", "Wheat", "2", "1"},
	})))

	v, err := p.TransformVector([]float64{5, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0}, v)

	_, err = p.TransformVector([]float64{5, 1})
	require.Error(t, err)

	_, err = p.TransformVector([]float64{5, 7, 1})
	var uc *UnknownCategoryError
	require.True(t, errors.As(err, &uc))
}
