package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersAccumulate(t *testing.T) {
	m := New()

	m.TestAssembled("quick", "dynamic")
	m.TestAssembled("quick", "dynamic")
	m.SubmissionGraded("persisted", 70)
	m.AnalyticsFailed()
	m.QuestionStatFailed()
	m.ObserveRequest("POST", "/api/tests/:id/submit", 200, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TestsGenerated.WithLabelValues("quick", "dynamic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("persisted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalyticsFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QuestionStatFailures))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.TestAssembled("mock", "persisted")
		m.SubmissionGraded("dynamic", 10)
		m.AnalyticsFailed()
		m.AnalyticsConflict()
		m.QuestionStatFailed()
		m.ObserveRequest("GET", "/", 200, time.Millisecond)
	})
}

func TestInstancesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
