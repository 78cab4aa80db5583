// Package metrics exposes Prometheus metrics for scrape runs and the cache.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors on a private registry. A nil *Metrics is valid
// and records nothing, so components can be built without instrumentation.
type Metrics struct {
	registry *prometheus.Registry

	ScrapesTotal      *prometheus.CounterVec
	ScrapeDuration    *prometheus.HistogramVec
	PageFailures      *prometheus.CounterVec
	MatchesExtracted  *prometheus.GaugeVec
	CacheRequests     *prometheus.CounterVec
	BestConversionPct *prometheus.GaugeVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		ScrapesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "odds_scrapes_total",
				Help: "Scrape runs by source and final status",
			},
			[]string{"source", "status"},
		),
		ScrapeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "odds_scrape_duration_seconds",
				Help:    "Wall time of a full scrape run over all pages of a source",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~4m
			},
			[]string{"source"},
		),
		PageFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "odds_page_failures_total",
				Help: "Pages the fetcher could not render",
			},
			[]string{"source", "page"},
		),
		MatchesExtracted: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "odds_matches_extracted",
				Help: "Matches in the latest assembled result",
			},
			[]string{"source", "market"},
		),
		CacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "odds_cache_requests_total",
				Help: "Fetch requests answered from cache (hit) or by a scrape (miss)",
			},
			[]string{"source", "result"},
		),
		BestConversionPct: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "odds_best_conversion_rate_percent",
				Help: "Best conversion rate in the latest assembled result",
			},
			[]string{"source"},
		),
	}

	registry.MustRegister(
		m.ScrapesTotal,
		m.ScrapeDuration,
		m.PageFailures,
		m.MatchesExtracted,
		m.CacheRequests,
		m.BestConversionPct,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordScrape(source, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.ScrapesTotal.WithLabelValues(source, status).Inc()
	m.ScrapeDuration.WithLabelValues(source).Observe(d.Seconds())
}

func (m *Metrics) RecordPageFailure(source, page string) {
	if m == nil {
		return
	}
	m.PageFailures.WithLabelValues(source, page).Inc()
}

func (m *Metrics) RecordCache(source string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheRequests.WithLabelValues(source, result).Inc()
}

// SetMatches records the per-market counts and best conversion rate of the
// result currently served for source.
func (m *Metrics) SetMatches(source string, twoOutcome, threeOutcome int, bestRate float64) {
	if m == nil {
		return
	}
	m.MatchesExtracted.WithLabelValues(source, "two_outcome").Set(float64(twoOutcome))
	m.MatchesExtracted.WithLabelValues(source, "three_outcome").Set(float64(threeOutcome))
	m.BestConversionPct.WithLabelValues(source).Set(bestRate)
}
