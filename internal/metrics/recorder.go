// Package metrics exposes a small Recorder interface so pipeline components
// depend on metric-recording behavior rather than a concrete Prometheus type,
// mirroring the collector-as-interface pattern used elsewhere in the stack.
package metrics

// Recorder is implemented by anything that can record pipeline operation
// outcomes, durations, and errors. PipelineMetrics (Prometheus-backed) and
// TestRecorder (in-memory, for tests) both satisfy it.
type Recorder interface {
	// RecordOperation counts one occurrence of op with the given status
	// (e.g. "success", "error", "dropped").
	RecordOperation(op, status string)
	// RecordDuration records a duration in seconds for op.
	RecordDuration(op string, seconds float64)
	// RecordError counts one error of kind for op.
	RecordError(op, kind string)
}
