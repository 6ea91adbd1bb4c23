package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/schema"
)

func TestSampleWithinRanges(t *testing.T) {
	s := New(7)
	seq, err := s.Seq(schema.Farming, map[string]int{schema.CropType: 3})
	require.NoError(t, err)

	for _, c := range Take(seq, 500) {
		require.Len(t, c.Values, schema.Farming.Width())
		for j, f := range schema.Farming.Fields {
			v := c.Values[j]
			if f.Name == schema.CropType {
				assert.Contains(t, []float64{0, 1, 2}, v)
				continue
			}
			r := DefaultRanges[f.Name]
			assert.GreaterOrEqual(t, v, r.Min, f.Name)
			assert.LessOrEqual(t, v, r.Max, f.Name)
			if f.Kind == schema.Categorical {
				assert.Equal(t, float64(int(v)), v, f.Name)
			}
		}
	}
}

func TestSeqIsRestartable(t *testing.T) {
	s := New(11)
	seq, err := s.Seq(schema.Recycling, nil)
	require.NoError(t, err)

	first := Take(seq, 5)
	again := Take(seq, 5)
	assert.Equal(t, first, again)
	assert.NotEqual(t, first[0].Values, first[1].Values)

	one, err := s.Sample(schema.Recycling, nil)
	require.NoError(t, err)
	assert.Equal(t, first[0], one)
}

func TestSchemasDrawIndependentStreams(t *testing.T) {
	s := New(11)
	twin := schema.Recycling
	twin.Name = "recycling_backup"

	a, err := s.Sample(schema.Recycling, nil)
	require.NoError(t, err)
	b, err := s.Sample(twin, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.Values, b.Values)

	again, err := New(11).Sample(schema.Recycling, nil)
	require.NoError(t, err)
	assert.Equal(t, a.Values, again.Values)
	assert.NotEqual(t, s.source(schema.Farming).Int63(), s.source(schema.Recycling).Int63())
}

func TestSampleUnknownColumn(t *testing.T) {
	_, err := New(1).Sample(schema.Habitat, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), schema.OxygenPercentage)
}

func TestConditionGet(t *testing.T) {
	c, err := New(3).Sample(schema.Recycling, nil)
	require.NoError(t, err)
	v, ok := c.Get(schema.WaterQuality)
	assert.True(t, ok)
	assert.Equal(t, c.Values[0], v)
	_, ok = c.Get(schema.CropHealth)
	assert.False(t, ok)
	assert.Empty(t, Take(nil, 0))
}
