package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	UsageAvailable   = "available"
	UsageUnavailable = "unavailable"
)

// Recorder exposes the service's own Prometheus metrics. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	collectionDuration *prometheus.HistogramVec
	collectionsTotal   *prometheus.CounterVec
	usageLookupsTotal  *prometheus.CounterVec
	httpRequestsTotal  *prometheus.CounterVec
}

// NewRecorder registers all collectors on a private registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		collectionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cluster_health_collection_duration_seconds",
			Help:    "Time taken to collect a complete node or pod listing",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30},
		}, []string{"collector"}),
		collectionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cluster_health_collections_total",
			Help: "Total number of collection attempts",
		}, []string{"collector", "status"}),
		usageLookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cluster_health_usage_lookups_total",
			Help: "Per-entity metrics API lookups by outcome",
		}, []string{"collector", "result"}),
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cluster_health_http_requests_total",
			Help: "HTTP requests served by route and status code",
		}, []string{"route", "code"}),
	}
}

func (r *Recorder) ObserveCollection(collector string, started time.Time, err error) {
	if r == nil {
		return
	}

	status := StatusSuccess
	if err != nil {
		status = StatusError
	}

	r.collectionDuration.WithLabelValues(collector).Observe(time.Since(started).Seconds())
	r.collectionsTotal.WithLabelValues(collector, status).Inc()
}

func (r *Recorder) ObserveUsageLookup(collector string, available bool) {
	if r == nil {
		return
	}

	result := UsageAvailable
	if !available {
		result = UsageUnavailable
	}

	r.usageLookupsTotal.WithLabelValues(collector, result).Inc()
}

func (r *Recorder) ObserveRequest(route string, code int) {
	if r == nil {
		return
	}
	r.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Handler serves the recorder's registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
