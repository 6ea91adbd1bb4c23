package dataprep

import (
	"fmt"
	"slices"

	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/data"
)

// UnknownCategoryError reports a value that was not seen when the encoding
// was fitted, or a code outside its range.
type UnknownCategoryError struct {
	Column string
	Value  string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("dataprep: column %s: unknown category %q", e.Column, e.Value)
}

// Encoding is a bijection between the distinct values of one categorical
// column and dense integer codes. Codes follow sorted value order, so the
// same set of values always yields the same codes whatever the row order.
type Encoding struct {
	Column string
	Values []string
	codes  map[string]int
}

// LabelEncode fits an encoding on the non-missing values of col.
func LabelEncode(column string, col []string) *Encoding {
	seen := map[string]struct{}{}
	var values []string
	for _, v := range col {
		if data.IsMissing(v) {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			values = append(values, v)
		}
	}
	slices.Sort(values)

	codes := make(map[string]int, len(values))
	for i, v := range values {
		codes[v] = i
	}
	return &Encoding{Column: column, Values: values, codes: codes}
}

// Len is the number of codes; valid codes are 0..Len()-1.
func (e *Encoding) Len() int { return len(e.Values) }

// Encode returns the code of v.
func (e *Encoding) Encode(v string) (int, error) {
	c, ok := e.codes[v]
	if !ok {
		return 0, &UnknownCategoryError{Column: e.Column, Value: v}
	}
	return c, nil
}

// Decode returns the original value of a code.
func (e *Encoding) Decode(code int) (string, error) {
	if code < 0 || code >= len(e.Values) {
		return "", &UnknownCategoryError{Column: e.Column, Value: fmt.Sprint(code)}
	}
	return e.Values[code], nil
}

// EncodeAll maps every cell of col to its code.
func (e *Encoding) EncodeAll(col []string) ([]float64, error) {
	out := make([]float64, len(col))
	for i, v := range col {
		c, err := e.Encode(v)
		if err != nil {
			return nil, err
		}
		out[i] = float64(c)
	}
	return out, nil
}
