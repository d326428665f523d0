package providers

import (
	"fcd/internal/models"
	"fcd/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncSyncsTotal(result string)
	ObserveSyncDuration(duration time.Duration)
	IncTornRequests(selection string, result string)
	IncTornRetries()
	AddFeedEvents(kind string, count int)
	ObservePersistenceDuration(duration time.Duration)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	syncsTotal          *prometheus.CounterVec
	syncDuration        prometheus.Histogram
	tornRequestsTotal   *prometheus.CounterVec
	tornRetriesTotal    prometheus.Counter
	feedEventsTotal     *prometheus.CounterVec
	persistenceDuration prometheus.Histogram
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncSyncsTotal(result string) {
	m.syncsTotal.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) ObserveSyncDuration(duration time.Duration) {
	m.syncDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncTornRequests(selection string, result string) {
	m.tornRequestsTotal.WithLabelValues(selection, result).Inc()
}

func (m *MetricsProvider) IncTornRetries() {
	m.tornRetriesTotal.Inc()
}

func (m *MetricsProvider) AddFeedEvents(kind string, count int) {
	m.feedEventsTotal.WithLabelValues(kind).Add(float64(count))
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, store *models.ChainStore) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fcd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fcd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fcd_cache_hits_total",
			Help: "Total number of response cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fcd_cache_misses_total",
			Help: "Total number of response cache misses",
		}),

		syncsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fcd_syncs_total",
			Help: "Total number of chain sync attempts by result",
		}, []string{"result"}),

		syncDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fcd_sync_duration_seconds",
			Help:    "Chain sync duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		tornRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fcd_torn_requests_total",
			Help: "Total number of Torn API requests by selection and result",
		}, []string{"selection", "result"}),

		tornRetriesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fcd_torn_retries_total",
			Help: "Total number of throttling retries against the Torn API",
		}),

		feedEventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fcd_feed_events_total",
			Help: "Total number of consumption events parsed from the feed",
		}, []string{"kind"}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fcd_persistence_duration_seconds",
			Help:    "Duration of persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "fcd_chains_total",
		Help: "Number of chain records in the hot store",
	}, func() float64 {
		return float64(store.ChainCount())
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "fcd_processed_events_total",
		Help: "Number of feed item ids in the dedup sequences",
	}, func() float64 {
		return float64(store.ProcessedEventCount())
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncSyncsTotal(_ string)                           {}
func (n *noopMetrics) ObserveSyncDuration(_ time.Duration)              {}
func (n *noopMetrics) IncTornRequests(_ string, _ string)               {}
func (n *noopMetrics) IncTornRetries()                                  {}
func (n *noopMetrics) AddFeedEvents(_ string, _ int)                    {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
