package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for generated quotes
const (
	OutcomeFinal    = "final"
	OutcomeBlocked  = "blocked"
	OutcomeRejected = "rejected"
)

// Metrics holds the pipeline and HTTP collectors. A nil *Metrics records nothing.
type Metrics struct {
	quotes        *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	corrections   prometheus.Counter
	merges        *prometheus.CounterVec
	autoFixes     *prometheus.CounterVec
	draftWarnings prometheus.Counter
	httpRequests  *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors; a nil registerer uses the default one
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quote_pipeline_quotes_total",
			Help: "Quotes produced by category and outcome.",
		}, []string{"category", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quote_pipeline_run_duration_seconds",
			Help:    "Pipeline run latency by category.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}, []string{"category"}),
		corrections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quote_pipeline_math_corrections_total",
			Help: "Values overwritten by the math guard.",
		}),
		merges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quote_pipeline_merge_events_total",
			Help: "Merge engine events by kind.",
		}, []string{"kind"}),
		autoFixes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quote_pipeline_autofix_total",
			Help: "Auto-fix attempts by family and result.",
		}, []string{"family", "result"}),
		draftWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quote_pipeline_draft_warnings_total",
			Help: "Repairs applied to malformed drafts.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quote_pipeline_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}

	registerer.MustRegister(
		m.quotes,
		m.duration,
		m.corrections,
		m.merges,
		m.autoFixes,
		m.draftWarnings,
		m.httpRequests,
	)
	return m
}

// ObserveQuote records one finished pipeline run
func (m *Metrics) ObserveQuote(category string, blocking bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeFinal
	if blocking {
		outcome = OutcomeBlocked
	}
	m.quotes.WithLabelValues(category, outcome).Inc()
	m.duration.WithLabelValues(category).Observe(elapsed.Seconds())
}

// ObserveRejected records a request refused before the pipeline ran
func (m *Metrics) ObserveRejected() {
	if m == nil {
		return
	}
	m.quotes.WithLabelValues("unknown", OutcomeRejected).Inc()
}

// AddCorrections records math guard overwrites
func (m *Metrics) AddCorrections(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.corrections.Add(float64(n))
}

// AddMergeEvent records one merge engine event
func (m *Metrics) AddMergeEvent(kind string) {
	if m == nil {
		return
	}
	m.merges.WithLabelValues(kind).Inc()
}

// ObserveAutoFix records an auto-fix attempt
func (m *Metrics) ObserveAutoFix(family string, succeeded bool) {
	if m == nil {
		return
	}
	result := "failed"
	if succeeded {
		result = "succeeded"
	}
	m.autoFixes.WithLabelValues(family, result).Inc()
}

// AddDraftWarnings records draft repairs
func (m *Metrics) AddDraftWarnings(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.draftWarnings.Add(float64(n))
}

// ObserveHTTP records one served request
func (m *Metrics) ObserveHTTP(route string, code int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, statusLabel(code)).Inc()
}

func statusLabel(code int) string {
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
