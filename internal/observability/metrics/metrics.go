package metrics

import (
	"database/sql"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"monitoring-console/internal/store"
)

const metricPrefix = "console_"

// Result labels shared by export and refresh metrics.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	sliceTransitions *prometheus.CounterVec
	sliceStale       *prometheus.CounterVec
	sliceInflight    *prometheus.GaugeVec

	remoteRequests *prometheus.CounterVec
	remoteLatency  *prometheus.HistogramVec
	cacheLookups   *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	chartDroppedPoints *prometheus.CounterVec
	refreshRuns        *prometheus.CounterVec
)

// Init registers console metrics. db may be nil when audit storage is disabled.
func Init(db *sql.DB, logger zerolog.Logger) {
	registerOnce.Do(func() {
		sliceTransitions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "slice_transitions_total",
				Help: "Total slice track transitions by slice, track and kind",
			},
			[]string{"slice", "track", "kind"},
		)
		sliceStale = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "slice_stale_total",
				Help: "Resolutions discarded because a newer request was issued",
			},
			[]string{"slice", "track"},
		)
		sliceInflight = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "slice_loading",
				Help: "1 while a slice track has a request in flight",
			},
			[]string{"slice", "track"},
		)

		remoteRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "remote_requests_total",
				Help: "Total backend requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		)
		remoteLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "remote_latency_seconds",
				Help:    "Backend request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		)
		cacheLookups = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "summary_cache_lookups_total",
				Help: "Summary cache lookups by result",
			},
			[]string{"result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		chartDroppedPoints = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "chart_dropped_points_total",
				Help: "Sensor points dropped during chart derivation (unparseable timestamp)",
			},
			[]string{"widget"},
		)
		refreshRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "refresh_runs_total",
				Help: "Scheduled slice refresh runs by job and result",
			},
			[]string{"job", "result"},
		)

		prometheus.MustRegister(
			sliceTransitions,
			sliceStale,
			sliceInflight,
			remoteRequests,
			remoteLatency,
			cacheLookups,
			exportTotal,
			exportLatency,
			chartDroppedPoints,
			refreshRuns,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// SliceObserver feeds slice transitions into the registry.
type SliceObserver struct{}

// Observe implements store.Observer.
func (SliceObserver) Observe(t store.Transition) {
	if sliceTransitions != nil {
		sliceTransitions.WithLabelValues(t.Slice, t.Track, string(t.Kind)).Inc()
	}
	switch t.Kind {
	case store.KindStale:
		if sliceStale != nil {
			sliceStale.WithLabelValues(t.Slice, t.Track).Inc()
		}
	case store.KindPending:
		if sliceInflight != nil {
			sliceInflight.WithLabelValues(t.Slice, t.Track).Set(1)
		}
	case store.KindFulfilled, store.KindRejected:
		if sliceInflight != nil {
			sliceInflight.WithLabelValues(t.Slice, t.Track).Set(0)
		}
	}
}

// ObserveRemote records one backend round trip. status 0 means transport failure.
func ObserveRemote(route, method string, status int, duration time.Duration) {
	if route == "" {
		route = "unknown"
	}
	code := "transport_error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	if remoteRequests != nil {
		remoteRequests.WithLabelValues(route, method, code).Inc()
	}
	if remoteLatency != nil {
		remoteLatency.WithLabelValues(route, method).Observe(duration.Seconds())
	}
}

// IncCacheLookup counts a summary cache hit or miss.
func IncCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	if cacheLookups != nil {
		cacheLookups.WithLabelValues(result).Inc()
	}
}

// ObserveExport records report export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// AddDroppedPoints counts points discarded by chart derivation.
func AddDroppedPoints(widget string, count int) {
	if count <= 0 {
		return
	}
	if widget == "" {
		widget = "unknown"
	}
	if chartDroppedPoints != nil {
		chartDroppedPoints.WithLabelValues(widget).Add(float64(count))
	}
}

// IncRefreshRun counts a scheduled refresh.
func IncRefreshRun(job, result string) {
	if job == "" {
		job = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if refreshRuns != nil {
		refreshRuns.WithLabelValues(job, result).Inc()
	}
}
