package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	FetchesTotal   *prometheus.CounterVec
	FetchDuration  *prometheus.HistogramVec
	SitesProcessed prometheus.Counter
	EmailsFound    *prometheus.CounterVec
}

// NewMetrics registers the application metrics with reg. Tests pass a fresh
// registry so repeated construction does not collide.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "emailfinder_fetches_total",
			Help: "The total number of HTTP fetches attempted",
		}, []string{"outcome"}), // 'success', 'bad_request', 'transport', 'timeout', 'status'
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "emailfinder_fetch_duration_seconds",
			Help:    "Duration of HTTP fetches",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		SitesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "emailfinder_sites_processed_total",
			Help: "The total number of unique homepages processed",
		}),
		EmailsFound: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "emailfinder_emails_found_total",
			Help: "The total number of emails found, by extraction stage",
		}, []string{"stage"}), // 'direct', 'mailto', 'link_token', 'contact_page'
	}
}

func (m *Metrics) ObserveFetch(outcome string, seconds float64) {
	m.FetchesTotal.WithLabelValues(outcome).Inc()
	m.FetchDuration.WithLabelValues(outcome).Observe(seconds)
}

func (m *Metrics) IncSitesProcessed() {
	m.SitesProcessed.Inc()
}

func (m *Metrics) IncEmailsFound(stage string) {
	m.EmailsFound.WithLabelValues(stage).Inc()
}
