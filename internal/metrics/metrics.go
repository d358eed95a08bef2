// Package metrics exposes bootstrap gate observations as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nodeguard"

// Gate records bootstrap gate runs. It implements bootstrap.Recorder.
type Gate struct {
	registry   *prometheus.Registry
	enforced   prometheus.Gauge
	checks     prometheus.Gauge
	runs       prometheus.Counter
	violations *prometheus.CounterVec
}

// NewGate creates gate metrics registered on a fresh registry alongside the
// Go runtime and process collectors.
func NewGate() *Gate {
	g := &Gate{
		registry: prometheus.NewRegistry(),
		enforced: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "bootstrap",
			Name:      "enforced",
			Help:      "1 if bootstrap check failures abort startup, 0 if they only warn.",
		}),
		checks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "bootstrap",
			Name:      "checks",
			Help:      "Number of checks in the bootstrap catalog.",
		}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bootstrap",
			Name:      "runs_total",
			Help:      "Number of bootstrap gate runs.",
		}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bootstrap",
			Name:      "check_violations_total",
			Help:      "Number of bootstrap check violations by check.",
		}, []string{"check"}),
	}
	g.registry.MustRegister(g.enforced, g.checks, g.runs, g.violations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}))
	return g
}

// ObserveRun records the enforcement decision and catalog size of a run.
func (g *Gate) ObserveRun(enforced bool, checks int) {
	g.runs.Inc()
	if enforced {
		g.enforced.Set(1)
	} else {
		g.enforced.Set(0)
	}
	g.checks.Set(float64(checks))
}

// ObserveViolation records one failed check.
func (g *Gate) ObserveViolation(check string) {
	g.violations.WithLabelValues(check).Inc()
}

// Registry returns the registry holding the gate metrics.
func (g *Gate) Registry() *prometheus.Registry {
	return g.registry
}

// Handler returns an HTTP handler serving the registry in the Prometheus text format.
func (g *Gate) Handler() http.Handler {
	return promhttp.HandlerFor(g.registry, promhttp.HandlerOpts{})
}
