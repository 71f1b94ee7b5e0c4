package metrics

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mclanproxy"

// ============================================================================
//                              Prometheus 实现
// ============================================================================

// Prometheus 基于 Prometheus 的 Reporter 实现
type Prometheus struct {
	registry *prometheus.Registry

	announcements   *prometheus.CounterVec
	serverKnown     prometheus.Gauge
	listenersOpened prometheus.Counter
	accepted        prometheus.Counter
	connectFailures *prometheus.CounterVec
	relaysActive    prometheus.Gauge
	relaysFinished  *prometheus.CounterVec
	relayDuration   prometheus.Histogram
	relayBytes      *prometheus.CounterVec

	throughput *RateMeter
}

var _ Reporter = (*Prometheus)(nil)

// NewPrometheus 创建 Prometheus Reporter，指标注册在独立的 Registry 上
func NewPrometheus(clk clock.Clock) *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		announcements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "announcements_total",
			Help:      "Announcement datagrams received, by parse result.",
		}, []string{"result"}),
		serverKnown: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "server_known",
			Help:      "1 while a LAN server is known and the public listener is open.",
		}),
		listenersOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listeners_opened_total",
			Help:      "Public listening sockets opened.",
		}),
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_accepted_total",
			Help:      "Client connections accepted on the public listener.",
		}),
		connectFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connect_failures_total",
			Help:      "Failed connections to the LAN server, by kind.",
		}, []string{"kind"}),
		relaysActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "relays_active",
			Help:      "Relay units currently running.",
		}),
		relaysFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relays_finished_total",
			Help:      "Relay units finished, by outcome.",
		}, []string{"outcome"}),
		relayDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "relay_duration_seconds",
			Help:      "Relay session duration.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		relayBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_bytes_total",
			Help:      "Bytes written by relay units, by direction.",
		}, []string{"direction"}),
		throughput: NewRateMeter(clk),
	}

	p.registry.MustRegister(
		p.announcements,
		p.serverKnown,
		p.listenersOpened,
		p.accepted,
		p.connectFailures,
		p.relaysActive,
		p.relaysFinished,
		p.relayDuration,
		p.relayBytes,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "relay_throughput_bytes_per_second",
			Help:      "Average relayed bytes per second over the last minute, both directions.",
		}, p.throughput.Rate),
	)
	return p
}

// Registry 返回指标注册表
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Throughput 返回转发速率计算器
func (p *Prometheus) Throughput() *RateMeter {
	return p.throughput
}

// AnnouncementReceived 实现 Reporter
func (p *Prometheus) AnnouncementReceived(valid bool) {
	if valid {
		p.announcements.WithLabelValues("valid").Inc()
		return
	}
	p.announcements.WithLabelValues("ignored").Inc()
}

// ServerState 实现 Reporter
func (p *Prometheus) ServerState(known bool) {
	if known {
		p.serverKnown.Set(1)
		return
	}
	p.serverKnown.Set(0)
}

// ListenerOpened 实现 Reporter
func (p *Prometheus) ListenerOpened() {
	p.listenersOpened.Inc()
}

// ConnectionAccepted 实现 Reporter
func (p *Prometheus) ConnectionAccepted() {
	p.accepted.Inc()
}

// ConnectFailed 实现 Reporter
func (p *Prometheus) ConnectFailed(transient bool) {
	if transient {
		p.connectFailures.WithLabelValues("transient").Inc()
		return
	}
	p.connectFailures.WithLabelValues("fatal").Inc()
}

// RelayStarted 实现 Reporter
func (p *Prometheus) RelayStarted() {
	p.relaysActive.Inc()
}

// RelayBytes 实现 Reporter
func (p *Prometheus) RelayBytes(dir Direction, n int) {
	if n <= 0 {
		return
	}
	p.relayBytes.WithLabelValues(string(dir)).Add(float64(n))
	p.throughput.Add(int64(n))
}

// RelayFinished 实现 Reporter
func (p *Prometheus) RelayFinished(ok bool, d time.Duration) {
	p.relaysActive.Dec()
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	p.relaysFinished.WithLabelValues(outcome).Inc()
	p.relayDuration.Observe(d.Seconds())
}
