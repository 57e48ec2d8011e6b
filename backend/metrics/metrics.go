package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the exam pipeline collectors. All methods are no-ops on a
// nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	RequestDuration      *prometheus.HistogramVec
	TestsGenerated       *prometheus.CounterVec
	Submissions          *prometheus.CounterVec
	SubmissionScore      prometheus.Histogram
	AnalyticsFailures    prometheus.Counter
	AnalyticsConflicts   prometheus.Counter
	QuestionStatFailures prometheus.Counter
}

// New registers every collector on its own registry so several instances can
// coexist in one process.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "exam",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		TestsGenerated: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "exam",
				Name:      "tests_assembled_total",
				Help:      "Tests assembled from the question pool",
			},
			[]string{"type", "kind"},
		),
		Submissions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "exam",
				Name:      "submissions_total",
				Help:      "Graded test submissions",
			},
			[]string{"kind"},
		),
		SubmissionScore: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "exam",
				Name:      "submission_percentage",
				Help:      "Distribution of submission percentages",
				Buckets:   prometheus.LinearBuckets(0, 10, 11),
			},
		),
		AnalyticsFailures: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: "exam",
				Name:      "analytics_update_failures_total",
				Help:      "Submissions whose analytics update failed",
			},
		),
		AnalyticsConflicts: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: "exam",
				Name:      "analytics_version_conflicts_total",
				Help:      "Optimistic analytics writes that lost a version race and retried",
			},
		),
		QuestionStatFailures: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: "exam",
				Name:      "question_stat_failures_total",
				Help:      "Question usage counter increments that failed",
			},
		),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

func (m *Metrics) TestAssembled(testType, kind string) {
	if m == nil {
		return
	}
	m.TestsGenerated.WithLabelValues(testType, kind).Inc()
}

func (m *Metrics) SubmissionGraded(kind string, percentage int) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(kind).Inc()
	m.SubmissionScore.Observe(float64(percentage))
}

func (m *Metrics) AnalyticsFailed() {
	if m == nil {
		return
	}
	m.AnalyticsFailures.Inc()
}

func (m *Metrics) AnalyticsConflict() {
	if m == nil {
		return
	}
	m.AnalyticsConflicts.Inc()
}

func (m *Metrics) QuestionStatFailed() {
	if m == nil {
		return
	}
	m.QuestionStatFailures.Inc()
}
