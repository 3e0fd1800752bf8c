package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the trace pipeline.
type Metrics struct {
	// Sink metrics
	TracesSubmitted prometheus.Counter
	TracesDropped   prometheus.Counter
	QueueDepth      prometheus.Gauge

	// Export metrics
	TracesExported prometheus.Counter
	ExportBatches  prometheus.Counter
	ExportErrors   prometheus.Counter
	ExportBytes    prometheus.Counter

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	reg prometheus.Registerer

	// Snapshot for the JSON status API
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current counter values for the JSON status API.
type Snapshot struct {
	TracesSubmitted int64   `json:"traces_submitted"`
	TracesDropped   int64   `json:"traces_dropped"`
	TracesExported  int64   `json:"traces_exported"`
	ExportBatches   int64   `json:"export_batches"`
	ExportErrors    int64   `json:"export_errors"`
	ExportBytes     int64   `json:"export_bytes"`
	UptimeSeconds   float64 `json:"uptime_seconds"`
}

// New creates a metrics collector registered on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in
// tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		startTime: time.Now(),
		reg:       reg,

		TracesSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "traceforge_traces_submitted_total",
			Help: "Completed trace trees handed to the sink",
		}),
		TracesDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "traceforge_traces_dropped_total",
			Help: "Trace trees dropped because the sink queue was full",
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "traceforge_sink_queue_depth",
			Help: "Trace trees waiting in the sink queue",
		}),
		TracesExported: factory.NewCounter(prometheus.CounterOpts{
			Name: "traceforge_traces_exported_total",
			Help: "Trace trees shipped by the exporter",
		}),
		ExportBatches: factory.NewCounter(prometheus.CounterOpts{
			Name: "traceforge_export_batches_total",
			Help: "Export batches shipped",
		}),
		ExportErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "traceforge_export_errors_total",
			Help: "Export batches that failed to ship",
		}),
		ExportBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "traceforge_export_bytes_total",
			Help: "Encoded payload bytes shipped",
		}),
		Uptime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "traceforge_uptime_seconds",
			Help: "Agent uptime in seconds",
		}),
	}
}

// TrackProtocolErrors exposes the builder diagnostics counter as a
// Prometheus counter without putting a metrics dependency on the hot
// path; fn is sampled at scrape time.
func (m *Metrics) TrackProtocolErrors(fn func() float64) {
	m.reg.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "traceforge_protocol_errors_total",
		Help: "Malformed tracer events logged and ignored by the builder",
	}, fn))
}

// RecordSubmitted counts one trace handed to the sink.
func (m *Metrics) RecordSubmitted() {
	m.TracesSubmitted.Inc()
	m.mu.Lock()
	m.snapshot.TracesSubmitted++
	m.mu.Unlock()
}

// RecordDropped counts one trace dropped at the sink boundary.
func (m *Metrics) RecordDropped() {
	m.TracesDropped.Inc()
	m.mu.Lock()
	m.snapshot.TracesDropped++
	m.mu.Unlock()
}

// RecordExported counts traces shipped in a successful batch.
func (m *Metrics) RecordExported(traces int, bytes int) {
	m.TracesExported.Add(float64(traces))
	m.ExportBatches.Inc()
	m.ExportBytes.Add(float64(bytes))
	m.mu.Lock()
	m.snapshot.TracesExported += int64(traces)
	m.snapshot.ExportBatches++
	m.snapshot.ExportBytes += int64(bytes)
	m.mu.Unlock()
}

// RecordExportError counts one failed batch ship.
func (m *Metrics) RecordExportError() {
	m.ExportErrors.Inc()
	m.mu.Lock()
	m.snapshot.ExportErrors++
	m.mu.Unlock()
}

// SetQueueDepth updates the sink queue gauge.
func (m *Metrics) SetQueueDepth(depth int) {
	m.QueueDepth.Set(float64(depth))
}

// GetSnapshot returns current values for the JSON status API.
func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	snap := m.snapshot
	m.mu.RUnlock()

	uptime := time.Since(m.startTime).Seconds()
	m.Uptime.Set(uptime)
	snap.UptimeSeconds = uptime
	return snap
}
