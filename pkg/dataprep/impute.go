package dataprep

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/data"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/stats"
)

// ParseNumeric converts raw cells to floats. Missing cells become NaN.
func ParseNumeric(column string, col []string) ([]float64, error) {
	out := make([]float64, len(col))
	for i, v := range col {
		if data.IsMissing(v) {
			out[i] = math.NaN()
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "dataprep: column %s row %d", column, i)
		}
		out[i] = f
	}
	return out, nil
}

// ImputeMean replaces NaN entries with the mean of the remaining entries of
// the same column and returns that mean. The input is not modified.
func ImputeMean(column string, col []float64) ([]float64, float64, error) {
	mean, ok := stats.NanMean(col)
	if !ok {
		return nil, 0, eris.Errorf("dataprep: column %s has no values to impute from", column)
	}
	out := make([]float64, len(col))
	for i, v := range col {
		if math.IsNaN(v) {
			out[i] = mean
		} else {
			out[i] = v
		}
	}
	return out, mean, nil
}

// ImputeMode replaces missing categorical cells with the most frequent value.
// Ties go to the value that sorts first.
func ImputeMode(col []string) []string {
	counts := map[string]int{}
	for _, v := range col {
		if !data.IsMissing(v) {
			counts[v]++
		}
	}
	if len(counts) == 0 {
		return slices.Clone(col)
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	mode := keys[0]
	for _, k := range keys[1:] {
		if counts[k] > counts[mode] {
			mode = k
		}
	}

	out := make([]string, len(col))
	for i, v := range col {
		if data.IsMissing(v) {
			out[i] = mode
		} else {
			out[i] = v
		}
	}
	return out
}
