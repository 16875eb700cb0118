package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests            *prometheus.CounterVec
	CounterWeeklyRuns          *prometheus.CounterVec
	CounterRecordsSubmitted    prometheus.Counter
	CounterRecordsFailed       prometheus.Counter
	CounterTriggersProcessed   prometheus.Counter
	CounterHandleRequestPanic  prometheus.Counter
	CounterRateLimitedRequests prometheus.Counter

	// gauges
	GaugeRequests        prometheus.Gauge
	GaugeLifeSignal      prometheus.Gauge
	GaugePendingSessions prometheus.Gauge

	// histograms
	HistBatchRunDuration     prometheus.Histogram
	HistogramRequestDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("gitfit", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("gitfit", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterWeeklyRuns := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "weekly_runs",
		Help:      "The total number of weekly batch runs, per outcome",
	}, []string{"outcome"})
	counterRecordsSubmitted := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "records_submitted",
		Help:      "The total number of weekly batch records confirmed stored",
	})
	counterRecordsFailed := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "records_failed",
		Help:      "The total number of weekly batch records that failed submission",
	})
	counterTriggersProcessed := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "triggers_processed",
		Help:      "The total number of pending weekly triggers processed",
	})
	counterHandleRequestPanic := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic",
		Help:      "The total number of serve request panics",
	})
	counterRateLimitedRequests := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rate_limited_requests",
		Help:      "The total number of rate limited requests",
	})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})
	gaugeLifeSignal := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "life_signal",
		Help:      "Shows whether the service is alive",
	})
	gaugePendingSessions := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "pending_sessions",
		Help:      "Number of workout sessions buffered locally, awaiting sync",
	})

	histBatchRunDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "batch_run_duration_seconds",
		Help:      "Duration of one weekly batch run",
		Buckets:   prometheus.DefBuckets,
	})
	histogramRequestDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Duration of handled HTTP requests",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	return &Manager{
		CounterRequests:            counterRequests,
		CounterWeeklyRuns:          counterWeeklyRuns,
		CounterRecordsSubmitted:    counterRecordsSubmitted,
		CounterRecordsFailed:       counterRecordsFailed,
		CounterTriggersProcessed:   counterTriggersProcessed,
		CounterHandleRequestPanic:  counterHandleRequestPanic,
		CounterRateLimitedRequests: counterRateLimitedRequests,
		GaugeRequests:              gaugeRequests,
		GaugeLifeSignal:            gaugeLifeSignal,
		GaugePendingSessions:       gaugePendingSessions,
		HistBatchRunDuration:       histBatchRunDuration,
		HistogramRequestDuration:   histogramRequestDuration,
	}
}
