// Package metrics exposes GA progress as Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests and parallel sweeps do not
// collide on the global one.
type Collector struct {
	registry *prometheus.Registry

	generations   *prometheus.CounterVec
	runs          *prometheus.CounterVec
	bestObjective *prometheus.GaugeVec
	generationDur prometheus.Histogram
	runDur        prometheus.Histogram
	graphBuild    *prometheus.HistogramVec
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "galp_generations_total",
			Help: "Completed GA generations.",
		}, []string{"problem"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "galp_runs_total",
			Help: "Finished GA runs by outcome.",
		}, []string{"problem", "outcome"}),
		bestObjective: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "galp_best_objective",
			Help: "Best objective of the latest generation.",
		}, []string{"run_id"}),
		generationDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "galp_generation_duration_seconds",
			Help:    "Wall time of one NextGeneration call.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		runDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "galp_run_duration_seconds",
			Help:    "Wall time of a complete run.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
		graphBuild: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "galp_graph_build_seconds",
			Help:    "Time spent generating the search graph.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"graph_type"}),
	}
	c.registry.MustRegister(c.generations, c.runs, c.bestObjective, c.generationDur, c.runDur, c.graphBuild)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's registry in the exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveGeneration(problem, runID string, best float64, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.generations.WithLabelValues(problem).Inc()
	c.bestObjective.WithLabelValues(runID).Set(best)
	c.generationDur.Observe(elapsed.Seconds())
}

// ObserveRun records a finished run. outcome is "converged", "limit" or
// "error".
func (c *Collector) ObserveRun(problem, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.runs.WithLabelValues(problem, outcome).Inc()
	c.runDur.Observe(elapsed.Seconds())
}

func (c *Collector) ObserveGraphBuild(graphType string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.graphBuild.WithLabelValues(graphType).Observe(elapsed.Seconds())
}
