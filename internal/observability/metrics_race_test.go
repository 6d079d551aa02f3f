package observability

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheriffhq/sheriff/internal/observability/metrics"
)

// TestNewMetricsConcurrency verifies that NewMetrics can be called concurrently
func TestNewMetricsConcurrency(t *testing.T) {
	t.Parallel()

	const numGoroutines = 50

	var wg sync.WaitGroup
	for range numGoroutines {
		wg.Go(func() {
			m, err := NewMetrics()
			if !assert.NoError(t, err) {
				return
			}
			assert.NotNil(t, m.registry)
			assert.NotNil(t, m.HTTP)
			assert.NotNil(t, m.Workflow)
			assert.NotNil(t, m.Datastore)
		})
	}
	wg.Wait()
}

// TestWorkflowMetricsConcurrentRecording records from many goroutines on one set
func TestWorkflowMetricsConcurrentRecording(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Go(func() {
			m.Workflow.RecordStagedEdit()
			m.Workflow.RecordSubmission(metrics.ModeBulk, metrics.StatusSuccess, 2)
			m.Workflow.SetPendingEdits(i)
			m.Datastore.RecordDbOperation("create", "assets", metrics.StatusSuccess)
		})
	}
	wg.Wait()

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				values[f.GetName()] += c.GetValue()
			}
		}
	}
	assert.InDelta(t, 20, values["workflow_staged_edits_total"], 0)
	assert.InDelta(t, 40, values["workflow_submissions_total"], 0)
	assert.InDelta(t, 20, values["datastore_db_operations_total"], 0)
}
