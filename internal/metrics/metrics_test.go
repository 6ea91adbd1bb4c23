package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	m := New()
	m.SourceLoaded("Helios Ridge", 48)
	m.SourceLoaded("Helios Ridge", 48)
	m.SourceSkipped("Nowhere", "load")
	m.ModelTrained("habitat", "forest", 0.93, 1500*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SourcesLoaded.WithLabelValues("Helios Ridge")))
	assert.Equal(t, 96.0, testutil.ToFloat64(m.RowsLoaded.WithLabelValues("Helios Ridge")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourcesSkipped.WithLabelValues("Nowhere", "load")))
	assert.InDelta(t, 0.93, testutil.ToFloat64(m.HeldOutScore.WithLabelValues("habitat", "forest")), 1e-12)
	assert.Equal(t, 1, testutil.CollectAndCount(m.TrainDuration))
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.SourceSkipped("x", "schema")
	assert.Equal(t, 0, testutil.CollectAndCount(b.SourcesSkipped))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.SourceSkipped("Broken", "schema")
	m.ModelTrained("farming", "forest", 0.4, time.Second)

	require.NoError(t, m.WriteTextfile(""))

	path := filepath.Join(t.TempDir(), "stellar.prom")
	require.NoError(t, m.WriteTextfile(path))
	body, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, name := range []string{
		"stellar_sources_skipped_total",
		"stellar_model_heldout_score",
		"stellar_model_train_duration_seconds",
	} {
		assert.True(t, strings.Contains(string(body), name), name)
	}

	assert.Error(t, m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")))
}
