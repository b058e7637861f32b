// Package metrics 实现升级管线的 Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
)

// 确保实现了接口
var _ pkgif.Metrics = (*Metrics)(nil)

// Metrics Prometheus 指标实现
type Metrics struct {
	maConns         prometheus.Counter
	protocolStreams *prometheus.CounterVec
	dialerEvents    *prometheus.CounterVec
}

// New 创建指标实现并注册到 reg
//
// reg 为 nil 时使用默认注册表。
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		maConns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "p2p",
			Subsystem: "transport",
			Name:      "connections_total",
			Help:      "原始传输连接总数",
		}),
		protocolStreams: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "p2p",
			Subsystem: "upgrader",
			Name:      "protocol_streams_total",
			Help:      "协商完成的协议流总数",
		}, []string{"protocol", "direction"}),
		dialerEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "p2p",
			Subsystem: "dialer",
			Name:      "events_total",
			Help:      "拨号器事件总数（connect/error/timeout/abort）",
		}, []string{"event"}),
	}
}

// TrackMultiaddrConn 记录一条原始连接
func (m *Metrics) TrackMultiaddrConn(_ pkgif.MultiaddrConn) {
	m.maConns.Inc()
}

// TrackProtocolStream 记录一条协商完成的协议流
func (m *Metrics) TrackProtocolStream(stream pkgif.Stream) {
	m.protocolStreams.WithLabelValues(
		string(stream.Protocol()),
		stream.Direction().String(),
	).Inc()
}

// DialerEvent 记录拨号器事件
func (m *Metrics) DialerEvent(event string) {
	m.dialerEvents.WithLabelValues(event).Inc()
}
