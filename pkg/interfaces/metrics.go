// Package interfaces 定义 go-p2p 公共接口
//
// 本文件定义指标接口。
package interfaces

// 拨号器事件名（DialerEvent 的取值）
const (
	DialerEventConnect = "connect"
	DialerEventError   = "error"
	DialerEventTimeout = "timeout"
	DialerEventAbort   = "abort"
)

// Metrics 定义指标接口（可选协作方）
//
// 所有方法都必须可安全地并发调用；实现不存在时各调用方跳过。
type Metrics interface {
	// TrackMultiaddrConn 记录一条原始连接
	TrackMultiaddrConn(maConn MultiaddrConn)

	// TrackProtocolStream 记录一条协商完成的协议流
	TrackProtocolStream(stream Stream)

	// DialerEvent 记录拨号器事件（connect/error/timeout/abort）
	DialerEvent(event string)
}
