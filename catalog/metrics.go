package catalog

import (
	"net/http"
	"time"

	"github.com/airbusgeo/s2search/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics of the catalog queries. A nil *Metrics records nothing.
type Metrics struct {
	reg      *prometheus.Registry
	queries  *prometheus.CounterVec
	products *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics creates the metrics in a new registry, with the go and process collectors
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		reg: reg,
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "s2search_queries_total",
			Help: "Number of queries sent to the catalog, by status.",
		}, []string{"status"}),
		products: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "s2search_products_total",
			Help: "Number of products returned by the catalog, by outcome (accepted or skipped).",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "s2search_query_duration_seconds",
			Help:    "Duration of the catalog queries.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.queries, m.products, m.duration)
	return m
}

// Handler exposes the metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) observeQuery(status common.SearchStatus, d time.Duration) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(status.String()).Inc()
	m.duration.Observe(d.Seconds())
}

func (m *Metrics) observeProducts(accepted, skipped int) {
	if m == nil {
		return
	}
	m.products.WithLabelValues("accepted").Add(float64(accepted))
	m.products.WithLabelValues("skipped").Add(float64(skipped))
}
