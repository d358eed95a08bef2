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

func TestGate_ObserveRun(t *testing.T) {
	g := NewGate()

	g.ObserveRun(true, 6)

	assert.Equal(t, 1.0, testutil.ToFloat64(g.enforced))
	assert.Equal(t, 6.0, testutil.ToFloat64(g.checks))
	assert.Equal(t, 1.0, testutil.ToFloat64(g.runs))

	g.ObserveRun(false, 4)

	assert.Equal(t, 0.0, testutil.ToFloat64(g.enforced))
	assert.Equal(t, 4.0, testutil.ToFloat64(g.checks))
	assert.Equal(t, 2.0, testutil.ToFloat64(g.runs))
}

func TestGate_ObserveViolation(t *testing.T) {
	g := NewGate()

	g.ObserveViolation("file_descriptors")
	g.ObserveViolation("file_descriptors")
	g.ObserveViolation("memory_lock")

	assert.Equal(t, 2.0, testutil.ToFloat64(g.violations.WithLabelValues("file_descriptors")))
	assert.Equal(t, 1.0, testutil.ToFloat64(g.violations.WithLabelValues("memory_lock")))
}

func TestGate_Handler(t *testing.T) {
	g := NewGate()
	g.ObserveRun(true, 6)
	g.ObserveViolation("heap_size")

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "nodeguard_bootstrap_enforced 1"))
	assert.Contains(t, body, `nodeguard_bootstrap_check_violations_total{check="heap_size"} 1`)
}
