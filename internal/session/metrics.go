package session

import "github.com/sheriffhq/sheriff/internal/observability/metrics"

// WorkflowRecorder receives workflow events. *metrics.WorkflowMetrics implements it.
type WorkflowRecorder interface {
	metrics.Recorder
	RecordStagedEdit()
	RecordSubmission(mode, status string, count int)
	RecordDeletion(status string, count int)
	SetPendingEdits(n int)
}

type nopWorkflow struct{ metrics.NopRecorder }

func (nopWorkflow) RecordStagedEdit()                   {}
func (nopWorkflow) RecordSubmission(string, string, int) {}
func (nopWorkflow) RecordDeletion(string, int)           {}
func (nopWorkflow) SetPendingEdits(int)                  {}

var _ WorkflowRecorder = (*metrics.WorkflowMetrics)(nil)
