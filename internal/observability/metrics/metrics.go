package metrics

import "github.com/prometheus/client_golang/prometheus"

// HubMetrics exposes counters/gauges/histograms for the notification hub.
type HubMetrics struct {
	connections    prometheus.Gauge
	handshakeTotal *prometheus.CounterVec
	emitTotal      *prometheus.CounterVec
	emitLatency    *prometheus.HistogramVec
	droppedTotal   prometheus.Counter
}

func NewHubMetrics(reg prometheus.Registerer) *HubMetrics {
	m := &HubMetrics{
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "notifyhub",
			Subsystem: "hub",
			Name:      "connections",
			Help:      "Currently registered sessions",
		}),
		handshakeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notifyhub",
			Subsystem: "hub",
			Name:      "handshake_total",
			Help:      "Total connection handshakes",
		}, []string{"outcome"}),
		emitTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notifyhub",
			Subsystem: "hub",
			Name:      "emit_total",
			Help:      "Total event emissions",
		}, []string{"event", "outcome"}),
		emitLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "notifyhub",
			Subsystem: "hub",
			Name:      "emit_latency_seconds",
			Help:      "Latency of event emission",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event"}),
		droppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "notifyhub",
			Subsystem: "hub",
			Name:      "dropped_total",
			Help:      "Directed events dropped because the target was not connected",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.connections, m.handshakeTotal, m.emitTotal, m.emitLatency, m.droppedTotal)
	return m
}

func (m *HubMetrics) SetConnections(n int) {
	if m == nil {
		return
	}
	m.connections.Set(float64(n))
}

func (m *HubMetrics) ObserveHandshake(outcome string) {
	if m == nil {
		return
	}
	m.handshakeTotal.WithLabelValues(outcome).Inc()
}

func (m *HubMetrics) ObserveEmit(event, outcome string) {
	if m == nil {
		return
	}
	m.emitTotal.WithLabelValues(event, outcome).Inc()
}

func (m *HubMetrics) ObserveEmitLatency(event string, seconds float64) {
	if m == nil {
		return
	}
	m.emitLatency.WithLabelValues(event).Observe(seconds)
}

func (m *HubMetrics) ObserveDropped() {
	if m == nil {
		return
	}
	m.droppedTotal.Inc()
}
