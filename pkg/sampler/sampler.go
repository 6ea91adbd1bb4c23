// Package sampler draws synthetic condition vectors for point inference.
//
// Every feature is drawn independently and uniformly from a fixed range.
// Categorical features are drawn as a valid integer code of the fitted
// encoding. A Sampler keeps no state between draws: two sequences built from
// the same seed yield the same vectors. Each schema draws from its own
// stream derived from the seed and the schema name.
package sampler

import (
	"hash/fnv"
	"iter"
	"math/rand"
	"time"

	"github.com/rotisserie/eris"

	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/schema"
)

// Range is a closed interval [Min, Max].
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// DefaultRanges are the rover operating ranges. Categorical entries bound
// the code when no encoding size is known.
var DefaultRanges = map[string]Range{
	schema.Temperature:   {15, 35},
	schema.Precipitation: {0, 100},
	schema.Sunlight:      {3, 12},
	schema.SoilQuality:   {3, 10},

	schema.CropType:         {0, 4},
	schema.SoilCondition:    {0, 4},
	schema.WeatherCondition: {0, 4},

	schema.WaterQuality:   {30, 100},
	schema.NutrientLevels: {0, 100},
	schema.OxygenContent:  {20, 100},
	schema.WaterLevel:     {0, 100},
}

// Condition is one raw feature vector in schema order. Categorical entries
// hold integer codes.
type Condition struct {
	Schema schema.FeatureSchema
	Values []float64
}

// Get returns the value of a named column.
func (c Condition) Get(name string) (float64, bool) {
	i := c.Schema.Index(name)
	if i < 0 {
		return 0, false
	}
	return c.Values[i], true
}

// Sampler draws Conditions. Levels maps a categorical column to the number
// of codes of its fitted encoding.
type Sampler struct {
	Seed   int64
	Ranges map[string]Range
}

// New returns a sampler over DefaultRanges. Seed 0 picks a time-based seed.
func New(seed int64) *Sampler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Sampler{Seed: seed, Ranges: DefaultRanges}
}

// check verifies every column of s can be drawn.
func (s *Sampler) check(fs schema.FeatureSchema, levels map[string]int) error {
	var missing []string
	for _, f := range fs.Fields {
		if f.Kind == schema.Categorical && levels[f.Name] > 0 {
			continue
		}
		r, ok := s.Ranges[f.Name]
		if !ok {
			missing = append(missing, f.Name)
			continue
		}
		if r.Max < r.Min {
			return eris.Errorf("sampler: %s: empty range [%v, %v]", f.Name, r.Min, r.Max)
		}
	}
	if len(missing) > 0 {
		return eris.Errorf("sampler: %s: no range for %v", fs.Name, missing)
	}
	return nil
}

// source returns the random source of fs.
func (s *Sampler) source(fs schema.FeatureSchema) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(fs.Name))
	return rand.New(rand.NewSource(s.Seed ^ int64(h.Sum64())))
}

func (s *Sampler) draw(rnd *rand.Rand, fs schema.FeatureSchema, levels map[string]int) Condition {
	c := Condition{Schema: fs, Values: make([]float64, fs.Width())}
	for j, f := range fs.Fields {
		if f.Kind == schema.Categorical {
			if n := levels[f.Name]; n > 0 {
				c.Values[j] = float64(rnd.Intn(n))
				continue
			}
			r := s.Ranges[f.Name]
			c.Values[j] = r.Min + float64(rnd.Intn(int(r.Max-r.Min)+1))
			continue
		}
		r := s.Ranges[f.Name]
		c.Values[j] = r.Min + rnd.Float64()*(r.Max-r.Min)
	}
	return c
}

// Sample draws a single Condition for fs.
func (s *Sampler) Sample(fs schema.FeatureSchema, levels map[string]int) (Condition, error) {
	if err := s.check(fs, levels); err != nil {
		return Condition{}, err
	}
	return s.draw(s.source(fs), fs, levels), nil
}

// Seq returns an unbounded sequence of Conditions for fs. Each iteration
// starts over from the beginning of the schema's stream.
func (s *Sampler) Seq(fs schema.FeatureSchema, levels map[string]int) (iter.Seq[Condition], error) {
	if err := s.check(fs, levels); err != nil {
		return nil, err
	}
	levels = cloneLevels(levels)
	return func(yield func(Condition) bool) {
		rnd := s.source(fs)
		for {
			if !yield(s.draw(rnd, fs, levels)) {
				return
			}
		}
	}, nil
}

// Take collects the first n Conditions of seq.
func Take(seq iter.Seq[Condition], n int) []Condition {
	out := make([]Condition, 0, n)
	if n <= 0 {
		return out
	}
	for c := range seq {
		out = append(out, c)
		if len(out) == n {
			break
		}
	}
	return out
}

func cloneLevels(levels map[string]int) map[string]int {
	out := make(map[string]int, len(levels))
	for k, v := range levels {
		out[k] = v
	}
	return out
}
