// Package upgrader 实现连接升级器
package upgrader

import (
	"time"

	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
)

const (
	// DefaultInboundUpgradeTimeout 入站升级默认超时
	//
	// 单个计时器约束整个入站升级（保护、协商、握手、复用安装）。
	DefaultInboundUpgradeTimeout = 30 * time.Second

	// DefaultProtocolSelectTimeout 流协议协商默认超时
	//
	// 仅约束 multistream-select 阶段，不影响流的后续使用。
	DefaultProtocolSelectTimeout = 30 * time.Second

	// DefaultMaxInboundStreams 每连接每协议的默认入站流上限
	DefaultMaxInboundStreams = 32

	// DefaultMaxOutboundStreams 每连接每协议的默认出站流上限
	DefaultMaxOutboundStreams = 32
)

// Config 升级器配置
type Config struct {
	// SecurityTransports 安全传输列表（按优先级排序）
	//
	// 客户端按顺序提议，服务器从中选择。
	SecurityTransports []pkgif.SecureTransport

	// StreamMuxers 流多路复用器列表（按优先级排序）
	//
	// 为空时升级出的连接不带多路复用器，无法开流。
	StreamMuxers []pkgif.StreamMuxerFactory

	// InboundUpgradeTimeout 入站升级超时（默认 30s）
	InboundUpgradeTimeout time.Duration

	// ConnManager 入站准入管理（可选，nil 表示全部放行）
	ConnManager pkgif.ConnManager

	// Gater 连接门控（可选，nil 表示全部放行）
	Gater pkgif.ConnGater

	// Registrar 协议处理器注册表（必需）
	Registrar pkgif.Registrar

	// PeerStore 节点协议记录（可选）
	PeerStore pkgif.PeerStore

	// Bus 事件总线（可选；nil 时不派发连接事件）
	Bus pkgif.EventBus

	// Metrics 指标（可选）
	Metrics pkgif.Metrics

	// Protector 预共享密钥保护器（可选）
	Protector pkgif.Protector
}

// NewConfig 创建默认配置
func NewConfig() Config {
	return Config{
		InboundUpgradeTimeout: DefaultInboundUpgradeTimeout,
	}
}
