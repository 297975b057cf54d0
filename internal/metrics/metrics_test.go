package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/ppiankov/factcheck/internal/model"
)

func TestMetrics_ObserveRun(t *testing.T) {
	m := New(prometheus.NewRegistry())

	start := time.Now()
	m.ObserveRun(&model.Run{
		Status:     model.RunCompleted,
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
		Results: []model.FactCheckResult{
			{Verdict: model.VerdictTrue},
			{Verdict: model.VerdictTrue},
			{Verdict: model.VerdictInconclusive},
		},
	})
	m.ObserveRun(&model.Run{Status: model.RunFailed})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("failed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.claims))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.verdicts.WithLabelValues("True")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.verdicts.WithLabelValues("Inconclusive")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.runDuration))
}

func TestMetrics_EvidenceAndStages(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveEvidence(model.UsableEvidence("42"))
	m.ObserveEvidence(model.StatusErrorEvidence(500))
	m.ObserveEvidence(model.StatusErrorEvidence(502))
	m.ObserveStage("lookup", 200*time.Millisecond)
	m.ArchiveFailed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.evidence.WithLabelValues("usable")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.evidence.WithLabelValues("service_error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.stageDuration))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.archiveFailures))
}

func TestMetrics_HTTP(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRequest("/api/fact-check", 200)
	m.ObserveRequest("/api/fact-check", 400)
	m.ObserveRequest("/api/fact-check", 404)
	m.RateLimited()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/fact-check", "2xx")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/fact-check", "4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimited))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRun(&model.Run{Status: model.RunCompleted})
		m.ObserveEvidence(model.NoPodEvidence())
		m.ObserveStage("extract", time.Second)
		m.ArchiveFailed()
		m.ObserveRequest("/", 200)
		m.RateLimited()
	})
}
