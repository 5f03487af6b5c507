// Package metrics collects per-case and per-step counters for a run and
// writes them in the Prometheus text format.
package metrics

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"

	"github.com/mj1618/stepwright/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// Collector captures metrics for test runs.
type Collector struct {
	registry     *prometheus.Registry
	casesTotal   *prometheus.CounterVec
	stepsTotal   *prometheus.CounterVec
	retriesTotal *prometheus.CounterVec
	caseDuration *prometheus.HistogramVec
	stepDuration *prometheus.HistogramVec
}

// NewCollector initializes a new metrics registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	c := &Collector{
		registry: registry,
		casesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "stepwright_cases_total", Help: "Total number of test cases"},
			[]string{"status"},
		),
		stepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "stepwright_steps_total", Help: "Total number of executed steps"},
			[]string{"action", "status", "error_kind"},
		),
		retriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "stepwright_step_retries_total", Help: "Extra attempts spent on retryable step failures"},
			[]string{"action"},
		),
		caseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stepwright_case_duration_seconds",
				Help:    "Test case duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stepwright_step_duration_seconds",
				Help:    "Step duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"action", "status"},
		),
	}

	registry.MustRegister(c.casesTotal, c.stepsTotal, c.retriesTotal, c.caseDuration, c.stepDuration)
	return c
}

// ObserveCase records a case outcome.
func (c *Collector) ObserveCase(res model.CaseResult) {
	status := string(res.Status)
	c.casesTotal.WithLabelValues(status).Inc()
	c.caseDuration.WithLabelValues(status).Observe(res.Duration.Seconds())
}

// ObserveStep records a step outcome.
func (c *Collector) ObserveStep(res model.StepResult) {
	action := string(res.Action)
	if action == "" {
		action = "unresolved"
	}
	c.stepsTotal.WithLabelValues(action, string(res.Status), string(res.ErrorKind)).Inc()
	c.stepDuration.WithLabelValues(action, string(res.Status)).Observe(res.Elapsed.Seconds())
	if res.Attempts > 1 {
		c.retriesTotal.WithLabelValues(action).Add(float64(res.Attempts - 1))
	}
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the collected metrics for scraping.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Write writes all metrics to a Prometheus text file.
func (c *Collector) Write(path string) error {
	metricFamilies, err := c.registry.Gather()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range metricFamilies {
		if err := enc.Encode(family); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
