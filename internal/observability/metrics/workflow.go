package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics tracks the annotation workflow of a session
type WorkflowMetrics struct {
	registry *prometheus.Registry

	stagedEditsTotal    prometheus.Counter
	submissionsTotal    *prometheus.CounterVec
	deletionsTotal      *prometheus.CounterVec
	pendingEdits        prometheus.Gauge
	operationsTotal     *prometheus.CounterVec
	operationDuration   *prometheus.HistogramVec
	operationErrorTotal *prometheus.CounterVec
}

// NewWorkflowMetrics creates and registers workflow metrics
func NewWorkflowMetrics(registry *prometheus.Registry) (*WorkflowMetrics, error) {
	m := &WorkflowMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *WorkflowMetrics) initMetrics() {
	m.stagedEditsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "workflow_staged_edits_total",
		Help: "Total number of label edits staged for submission",
	})
	m.submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_submissions_total",
			Help: "Total number of annotations submitted",
		},
		[]string{"mode", "status"}, // mode: single, bulk; status: success, error, skipped
	)
	m.deletionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_asset_deletions_total",
			Help: "Total number of asset delete attempts",
		},
		[]string{"status"},
	)
	m.pendingEdits = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "workflow_pending_edits",
		Help: "Number of staged edits awaiting submission",
	})
	m.operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_operations_total",
			Help: "Total number of session operations",
		},
		[]string{"operation", "status"},
	)
	m.operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workflow_operation_duration_seconds",
			Help:    "Time taken for session operations",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount15),
		},
		[]string{"operation"},
	)
	m.operationErrorTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_operation_errors_total",
			Help: "Total number of session operation errors",
		},
		[]string{"operation", "error_type"},
	)
}

func (m *WorkflowMetrics) getCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.stagedEditsTotal,
		m.submissionsTotal,
		m.deletionsTotal,
		m.pendingEdits,
		m.operationsTotal,
		m.operationDuration,
		m.operationErrorTotal,
	}
}

// Describe implements the Collector interface
func (m *WorkflowMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.getCollectors() {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *WorkflowMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.getCollectors() {
		collector.Collect(ch)
	}
}

// RecordStagedEdit counts one staged label change
func (m *WorkflowMetrics) RecordStagedEdit() {
	m.stagedEditsTotal.Inc()
}

// RecordSubmission counts submitted annotations by mode and outcome
func (m *WorkflowMetrics) RecordSubmission(mode, status string, count int) {
	m.submissionsTotal.WithLabelValues(mode, status).Add(float64(count))
}

// RecordDeletion counts asset delete attempts by outcome
func (m *WorkflowMetrics) RecordDeletion(status string, count int) {
	m.deletionsTotal.WithLabelValues(status).Add(float64(count))
}

// SetPendingEdits reports the current pending map size
func (m *WorkflowMetrics) SetPendingEdits(n int) {
	m.pendingEdits.Set(float64(n))
}

// RecordOperation implements Recorder
func (m *WorkflowMetrics) RecordOperation(operation, status string) {
	m.operationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDuration implements Recorder
func (m *WorkflowMetrics) RecordDuration(operation string, seconds float64) {
	m.operationDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordError implements Recorder
func (m *WorkflowMetrics) RecordError(operation, errorType string) {
	m.operationErrorTotal.WithLabelValues(operation, errorType).Inc()
}
