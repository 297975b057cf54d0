package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ppiankov/factcheck/internal/model"
)

const namespace = "factcheck"

// Metrics holds the pipeline and server collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	runs            *prometheus.CounterVec
	runDuration     prometheus.Histogram
	claims          prometheus.Counter
	verdicts        *prometheus.CounterVec
	evidence        *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	archiveFailures prometheus.Counter
	httpRequests    *prometheus.CounterVec
	rateLimited     prometheus.Counter
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		// Labels: status (completed, failed)
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by terminal status",
		}, []string{"status"}),

		runDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a pipeline run",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
		}),

		claims: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claims_total",
			Help:      "Claims extracted across all runs",
		}),

		// Labels: verdict
		verdicts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verdicts_total",
			Help:      "Verdicts issued by value",
		}, []string{"verdict"}),

		// Labels: kind (usable, no_pod, no_plaintext, service_error)
		evidence: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evidence_total",
			Help:      "Knowledge lookups by outcome",
		}, []string{"kind"}),

		// Labels: stage (extract, normalize, lookup, synthesize)
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Latency of each external call by pipeline stage",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"stage"}),

		archiveFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_failures_total",
			Help:      "Runs whose results could not be archived",
		}),

		// Labels: route, code
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern and status code",
		}, []string{"route", "code"}),

		rateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client rate limit",
		}),
	}
}

// ObserveRun records a finished run
func (m *Metrics) ObserveRun(run *model.Run) {
	if m == nil || run == nil {
		return
	}
	m.runs.WithLabelValues(string(run.Status)).Inc()
	if !run.StartedAt.IsZero() && !run.FinishedAt.IsZero() {
		m.runDuration.Observe(run.FinishedAt.Sub(run.StartedAt).Seconds())
	}
	m.claims.Add(float64(len(run.Results)))
	for _, r := range run.Results {
		m.verdicts.WithLabelValues(string(r.Verdict)).Inc()
	}
}

// ObserveEvidence records one knowledge lookup outcome
func (m *Metrics) ObserveEvidence(ev model.Evidence) {
	if m == nil {
		return
	}
	m.evidence.WithLabelValues(string(ev.Kind)).Inc()
}

// ObserveStage records the latency of one stage call
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ArchiveFailed counts a failed archive write
func (m *Metrics) ArchiveFailed() {
	if m == nil {
		return
	}
	m.archiveFailures.Inc()
}

// ObserveRequest counts an HTTP request
func (m *Metrics) ObserveRequest(route string, code int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, statusText(code)).Inc()
}

// RateLimited counts a rejected request
func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

func statusText(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
