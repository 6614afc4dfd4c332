package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.ReconcileResult("ok")
	m.ReconcileResult("ok")
	m.ReconcileResult("conflict")
	m.ConflictRetry()
	m.FulfillmentResult("rejected")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reconcileTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conflictRetries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fulfillmentTotal.WithLabelValues("rejected")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ReconcileResult("ok")
		m.ConflictRetry()
		m.FulfillmentResult("ok")
		m.ObserveHTTP("GET", "/health", "200", 0.1)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ConflictRetry()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "menahub_order_version_conflict_retries_total 1"))
}
