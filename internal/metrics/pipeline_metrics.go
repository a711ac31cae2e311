package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics is the production Recorder, backed by Prometheus
// collectors registered against a caller-supplied registry.
type PipelineMetrics struct {
	operationsTotal *prometheus.CounterVec
	durationSeconds *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec

	queueDepth    *prometheus.GaugeVec
	chunksDropped *prometheus.CounterVec
}

// NewPipelineMetrics registers the pipeline's Prometheus collectors on
// registry and returns a Recorder backed by them.
func NewPipelineMetrics(registry prometheus.Registerer) (*PipelineMetrics, error) {
	m := &PipelineMetrics{
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "micasr",
			Subsystem: "pipeline",
			Name:      "operations_total",
			Help:      "Count of pipeline operations by stage and status.",
		}, []string{"operation", "status"}),

		durationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "micasr",
			Subsystem: "pipeline",
			Name:      "operation_duration_seconds",
			Help:      "Duration of pipeline operations in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "micasr",
			Subsystem: "pipeline",
			Name:      "errors_total",
			Help:      "Count of pipeline errors by stage and kind.",
		}, []string{"operation", "kind"}),

		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "micasr",
			Subsystem: "pipeline",
			Name:      "queue_depth",
			Help:      "Current depth of a pipeline stage's bounded queue.",
		}, []string{"stage"}),

		chunksDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "micasr",
			Subsystem: "pipeline",
			Name:      "chunks_dropped_total",
			Help:      "Count of audio chunks dropped due to backpressure.",
		}, []string{"stage"}),
	}

	collectors := []prometheus.Collector{
		m.operationsTotal,
		m.durationSeconds,
		m.errorsTotal,
		m.queueDepth,
		m.chunksDropped,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering pipeline metric: %w", err)
		}
	}

	return m, nil
}

func (m *PipelineMetrics) RecordOperation(op, status string) {
	m.operationsTotal.WithLabelValues(op, status).Inc()
}

func (m *PipelineMetrics) RecordDuration(op string, seconds float64) {
	m.durationSeconds.WithLabelValues(op).Observe(seconds)
}

func (m *PipelineMetrics) RecordError(op, kind string) {
	m.errorsTotal.WithLabelValues(op, kind).Inc()
}

// SetQueueDepth reports the current depth of a named pipeline stage queue.
func (m *PipelineMetrics) SetQueueDepth(stage string, depth int) {
	m.queueDepth.WithLabelValues(stage).Set(float64(depth))
}

// RecordChunkDropped counts a chunk dropped by stage due to backpressure.
func (m *PipelineMetrics) RecordChunkDropped(stage string) {
	m.chunksDropped.WithLabelValues(stage).Inc()
}
