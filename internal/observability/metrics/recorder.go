// Package metrics provides custom Prometheus metrics for sheriff.
package metrics

// Recorder defines a minimal interface for recording metrics.
// Components depend on it instead of a concrete metric set so tests can
// pass a no-op.
type Recorder interface {
	// RecordOperation records an operation with its status.
	RecordOperation(operation, status string)

	// RecordDuration records the duration of an operation in seconds.
	RecordDuration(operation string, seconds float64)

	// RecordError records an error occurrence with its type.
	RecordError(operation, errorType string)
}

// NopRecorder discards everything
type NopRecorder struct{}

func (NopRecorder) RecordOperation(string, string) {}
func (NopRecorder) RecordDuration(string, float64) {}
func (NopRecorder) RecordError(string, string) {}
