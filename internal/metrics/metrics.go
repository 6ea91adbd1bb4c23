package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
)

// Metrics records the events of one pipeline session in its own registry.
// It satisfies pipeline.Recorder.
type Metrics struct {
	Registry *prometheus.Registry

	SourcesLoaded  *prometheus.CounterVec
	RowsLoaded     *prometheus.CounterVec
	SourcesSkipped *prometheus.CounterVec
	HeldOutScore   *prometheus.GaugeVec
	TrainDuration  *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		SourcesLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stellar_sources_loaded_total",
			Help: "Sources loaded and validated",
		}, []string{"source"}),
		RowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stellar_rows_loaded_total",
			Help: "Records read per source",
		}, []string{"source"}),
		SourcesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stellar_sources_skipped_total",
			Help: "Sources excluded from a run",
		}, []string{"source", "reason"}),
		HeldOutScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stellar_model_heldout_score",
			Help: "Held-out accuracy (classification) or R² (regression) of the last trained model",
		}, []string{"schema", "algorithm"}),
		TrainDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stellar_model_train_duration_seconds",
			Help:    "Model fitting duration seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"schema"}),
	}
	m.Registry.MustRegister(m.SourcesLoaded, m.RowsLoaded, m.SourcesSkipped, m.HeldOutScore, m.TrainDuration)
	return m
}

func (m *Metrics) SourceLoaded(source string, rows int) {
	m.SourcesLoaded.WithLabelValues(source).Inc()
	m.RowsLoaded.WithLabelValues(source).Add(float64(rows))
}

func (m *Metrics) SourceSkipped(source, reason string) {
	m.SourcesSkipped.WithLabelValues(source, reason).Inc()
}

func (m *Metrics) ModelTrained(schemaName, algorithm string, score float64, elapsed time.Duration) {
	m.HeldOutScore.WithLabelValues(schemaName, algorithm).Set(score)
	m.TrainDuration.WithLabelValues(schemaName).Observe(elapsed.Seconds())
}

// WriteTextfile writes the registry in the node exporter textfile format.
// An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return eris.Wrapf(err, "metrics: write %s", path)
	}
	return nil
}
