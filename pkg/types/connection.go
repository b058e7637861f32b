// Package types 定义 go-p2p 的基础类型
//
// 本文件定义连接生命周期相关类型。
package types

import "time"

// ============================================================================
//                              Timeline - 生命周期时间戳
// ============================================================================

// Timeline 连接/流的生命周期时间戳
//
// 零值时间表示"尚未发生"。字段由所属对象的持有者写入：
// Open 由传输层在建立时写入，Upgraded 由升级器写入，
// Close 由关闭路径写入（首次写入触发 close 回调，见 MultiaddrConn）。
type Timeline struct {
	// Open 连接建立时间
	Open time.Time

	// Upgraded 升级完成时间（仅连接，流无此字段含义）
	Upgraded time.Time

	// Close 关闭时间
	Close time.Time
}

// ============================================================================
//                              ConnLimits - 受限连接限额
// ============================================================================

// ConnLimits 受限连接的外部限额
//
// 非 nil 的 ConnLimits 表示连接由上游（如中继）施加了字节/时长上限。
// 受限连接只路由选择加入（RunOnLimitedConnection）的协议处理器。
type ConnLimits struct {
	// Bytes 剩余可传输字节数（0 表示不限）
	Bytes uint64

	// Duration 剩余可用时长（0 表示不限）
	Duration time.Duration
}

// ============================================================================
//                              ProgressEvent - 升级进度事件
// ============================================================================

// ProgressEvent 升级过程进度事件名
//
// 通过 UpgradeOpts.OnProgress 回调逐段上报，传输层事件
// （如 tcp:open-connection）原样透传。
type ProgressEvent string

const (
	// ProgressEncryptInbound 入站加密阶段开始
	ProgressEncryptInbound ProgressEvent = "upgrader:encrypt-inbound-connection"
	// ProgressEncryptOutbound 出站加密阶段开始
	ProgressEncryptOutbound ProgressEvent = "upgrader:encrypt-outbound-connection"
	// ProgressMultiplexInbound 入站多路复用阶段开始
	ProgressMultiplexInbound ProgressEvent = "upgrader:multiplex-inbound-connection"
	// ProgressMultiplexOutbound 出站多路复用阶段开始
	ProgressMultiplexOutbound ProgressEvent = "upgrader:multiplex-outbound-connection"
	// ProgressTCPOpenConnection TCP 连接建立
	ProgressTCPOpenConnection ProgressEvent = "tcp:open-connection"
)
