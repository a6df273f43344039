package banner

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the scraper.
type Metrics struct {
	Registry             *prometheus.Registry
	RequestsTotal        *prometheus.CounterVec
	RequestDuration      prometheus.Histogram
	SectionsScrapedTotal prometheus.Counter
	AuthRetriesTotal     prometheus.Counter
	ErrorsTotal          *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bannerwatch_requests_total",
			Help: "Total HTTP requests issued, by pipeline phase.",
		},
		[]string{"phase"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bannerwatch_request_duration_seconds",
			Help:    "HTTP request latency against the registration service.",
			Buckets: prometheus.DefBuckets,
		},
	)
	sectionsScraped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bannerwatch_sections_scraped_total",
			Help: "Total number of course sections emitted.",
		},
	)
	authRetries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bannerwatch_auth_retries_total",
			Help: "Total number of term authorization retry attempts.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bannerwatch_errors_total",
			Help: "Total number of scraper errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(requests, requestDuration, sectionsScraped, authRetries, errorsTotal)

	return &Metrics{
		Registry:             registry,
		RequestsTotal:        requests,
		RequestDuration:      requestDuration,
		SectionsScrapedTotal: sectionsScraped,
		AuthRetriesTotal:     authRetries,
		ErrorsTotal:          errorsTotal,
	}
}

// IncRequest increments the requests total counter for a phase.
func (m *Metrics) IncRequest(phase string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(phase).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// IncSections increments the emitted sections counter.
func (m *Metrics) IncSections() {
	if m == nil {
		return
	}
	m.SectionsScrapedTotal.Inc()
}

// IncAuthRetries increments the authorization retries counter.
func (m *Metrics) IncAuthRetries() {
	if m == nil {
		return
	}
	m.AuthRetriesTotal.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
