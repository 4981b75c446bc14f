// Package metrics exports search and cache counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"elite-trader/internal/engine"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CacheSource is anything that can report cache counters.
type CacheSource interface {
	Stats() engine.CacheStats
}

// Metrics owns a private registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	searchDuration prometheus.Histogram
	searchResults  prometheus.Histogram
	searchesTotal  *prometheus.CounterVec
	adjustments    *prometheus.CounterVec
}

func New(cache CacheSource) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		searchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "trader_search_duration_seconds",
			Help:    "Route search duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}),
		searchResults: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "trader_search_results",
			Help:    "Routes returned per search",
			Buckets: []float64{0, 1, 2, 4, 6, 10, 20},
		}),
		searchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trader_searches_total",
			Help: "Route searches by outcome",
		}, []string{"outcome"}),
		adjustments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trader_adjustments_total",
			Help: "Applied corrections by kind",
		}, []string{"kind"}),
	}

	f.NewCounterFunc(prometheus.CounterOpts{
		Name: "trader_cache_hits_total",
		Help: "One-hop candidate cache hits",
	}, func() float64 { return float64(cache.Stats().Hits) })
	f.NewCounterFunc(prometheus.CounterOpts{
		Name: "trader_cache_misses_total",
		Help: "One-hop candidate cache misses",
	}, func() float64 { return float64(cache.Stats().Misses) })
	f.NewCounterFunc(prometheus.CounterOpts{
		Name: "trader_cache_invalidations_total",
		Help: "Station invalidations after price corrections",
	}, func() float64 { return float64(cache.Stats().Invalidations) })
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "trader_cache_entries",
		Help: "Cached one-hop candidate lists",
	}, func() float64 { return float64(cache.Stats().Entries) })

	return m
}

// ObserveSearch implements engine.SearchObserver.
func (m *Metrics) ObserveSearch(d time.Duration, results int) {
	m.searchDuration.Observe(d.Seconds())
	m.searchResults.Observe(float64(results))
	outcome := "routes"
	if results == 0 {
		outcome = "empty"
	}
	m.searchesTotal.WithLabelValues(outcome).Inc()
}

// ObserveAdjustment counts a price or time correction.
func (m *Metrics) ObserveAdjustment(kind string) {
	m.adjustments.WithLabelValues(kind).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
