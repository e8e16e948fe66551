// Package metrics 暴露 Prometheus 指标
// 所有方法对 nil 接收者安全，未启用指标时调用方直接传 nil
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "harmony"

// Metrics 进程内指标集合，使用独立的 Registry
type Metrics struct {
	registry *prometheus.Registry

	onlineConnections prometheus.Gauge
	handshakes        *prometheus.CounterVec
	requestsCreated   *prometheus.CounterVec
	requestsResolved  *prometheus.CounterVec
	requestConflicts  *prometheus.CounterVec
	notifications     *prometheus.CounterVec
}

// New 创建并注册全部指标
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		onlineConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_connections",
			Help:      "Number of identities currently present in the directory.",
		}),
		handshakes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handshakes_total",
			Help:      "Connection handshakes by result.",
		}, []string{"result"}),
		requestsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_created_total",
			Help:      "Relationship requests created by kind.",
		}, []string{"kind"}),
		requestsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_resolved_total",
			Help:      "Relationship requests resolved by kind and status.",
		}, []string{"kind", "status"}),
		requestConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_conflicts_total",
			Help:      "Rejected relationship requests by conflict code.",
		}, []string{"reason"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification attempts by event and outcome.",
		}, []string{"event", "outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.onlineConnections,
		m.handshakes,
		m.requestsCreated,
		m.requestsResolved,
		m.requestConflicts,
		m.notifications,
	)
	return m
}

// Handler 返回 /metrics 的 HTTP 处理器
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.onlineConnections.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.onlineConnections.Dec()
}

// Handshake result: ok / missing / invalid / unknown / error
func (m *Metrics) Handshake(result string) {
	if m == nil {
		return
	}
	m.handshakes.WithLabelValues(result).Inc()
}

func (m *Metrics) RequestCreated(kind string) {
	if m == nil {
		return
	}
	m.requestsCreated.WithLabelValues(kind).Inc()
}

func (m *Metrics) RequestResolved(kind, status string) {
	if m == nil {
		return
	}
	m.requestsResolved.WithLabelValues(kind, status).Inc()
}

func (m *Metrics) RequestConflict(reason string) {
	if m == nil {
		return
	}
	m.requestConflicts.WithLabelValues(reason).Inc()
}

// Notification outcome: delivered / absent / dropped
func (m *Metrics) Notification(event, outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(event, outcome).Inc()
}
