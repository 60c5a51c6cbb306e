package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveQuote("bathroom", false, 2*time.Millisecond)
	m.ObserveQuote("bathroom", true, time.Millisecond)
	m.ObserveQuote("painting", false, time.Millisecond)
	m.ObserveRejected()
	m.AddCorrections(3)
	m.AddCorrections(0)
	m.AddMergeEvent("merged")
	m.AddMergeEvent("clamped")
	m.AddMergeEvent("merged")
	m.ObserveAutoFix("bathroom", true)
	m.AddDraftWarnings(2)
	m.ObserveHTTP("POST /quotes", 201)
	m.ObserveHTTP("POST /quotes", 400)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.quotes.WithLabelValues("bathroom", OutcomeFinal)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quotes.WithLabelValues("bathroom", OutcomeBlocked)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quotes.WithLabelValues("unknown", OutcomeRejected)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.corrections))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.merges.WithLabelValues("merged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.autoFixes.WithLabelValues("bathroom", "succeeded")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.draftWarnings))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST /quotes", "4xx")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveQuote("bathroom", false, time.Millisecond)
		m.ObserveRejected()
		m.AddCorrections(1)
		m.AddMergeEvent("merged")
		m.ObserveAutoFix("bathroom", false)
		m.AddDraftWarnings(1)
		m.ObserveHTTP("GET /health", 200)
	})
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "2xx", statusLabel(200))
	assert.Equal(t, "3xx", statusLabel(304))
	assert.Equal(t, "4xx", statusLabel(429))
	assert.Equal(t, "5xx", statusLabel(503))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug", "console")
	assert.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger("loud", "json")
	assert.Error(t, err)

	assert.Equal(t, "json", normalizeFormat(""))
	assert.Equal(t, "console", normalizeFormat("Text"))
}
