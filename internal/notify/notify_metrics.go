package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for the notification subsystem. A nil
// *Metrics is valid and records nothing, which keeps tests quiet.
type Metrics struct {
	RunsTotal          *prometheus.CounterVec
	RunDuration        prometheus.Histogram
	RecordsTotal       prometheus.Counter
	OutcomesTotal      *prometheus.CounterVec
	SkipsTotal         *prometheus.CounterVec
	GenerationsTotal   *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
}

// NewMetrics registers and returns notification metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stormnotify_runs_total",
			Help: "Notification runs by terminal status.",
		}, []string{"status"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stormnotify_run_duration_seconds",
			Help:    "Wall time of a full notification run.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		RecordsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stormnotify_records_total",
			Help: "Joined customer/alert records processed.",
		}),
		OutcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stormnotify_record_outcomes_total",
			Help: "Per-record outcomes by disposition.",
		}, []string{"disposition"}),
		SkipsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stormnotify_skips_total",
			Help: "Skipped records by reason.",
		}, []string{"reason"}),
		GenerationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stormnotify_generations_total",
			Help: "Generative text service calls by outcome.",
		}, []string{"outcome"}),
		GenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stormnotify_generation_duration_seconds",
			Help:    "Duration of individual generation calls.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.RecordsTotal,
		m.OutcomesTotal,
		m.SkipsTotal,
		m.GenerationsTotal,
		m.GenerationDuration,
	)
	return m
}

func (m *Metrics) observeRun(status Status, dur time.Duration, records int) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(string(status)).Inc()
	m.RunDuration.Observe(dur.Seconds())
	m.RecordsTotal.Add(float64(records))
}

func (m *Metrics) observeOutcome(d Disposition) {
	if m == nil {
		return
	}
	m.OutcomesTotal.WithLabelValues(string(d)).Inc()
}

func (m *Metrics) observeSkip(reason SkipReason) {
	if m == nil {
		return
	}
	m.SkipsTotal.WithLabelValues(string(reason)).Inc()
}

func (m *Metrics) observeGeneration(ok bool, dur time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "error"
	}
	m.GenerationsTotal.WithLabelValues(outcome).Inc()
	m.GenerationDuration.Observe(dur.Seconds())
}
