// Package interfaces 定义 go-p2p 公共接口
//
// 本文件定义升级后的连接与流接口。
package interfaces

import (
	"context"

	"github.com/twiss/go-p2p/pkg/types"
)

// Connection 升级后的连接句柄
//
// 由 Upgrader 创建，承载多条按协议协商的流。
type Connection interface {
	// LocalPeer 返回本地节点 ID
	LocalPeer() types.PeerID

	// RemotePeer 返回已验证的远端节点 ID
	RemotePeer() types.PeerID

	// RemoteMultiaddr 返回远端多地址
	RemoteMultiaddr() types.Multiaddr

	// Direction 返回连接方向
	Direction() types.Direction

	// Status 返回连接状态
	Status() types.ConnStatus

	// Timeline 返回生命周期时间戳
	Timeline() types.Timeline

	// Security 返回协商的安全协议（跳过加密时为 "native"）
	Security() types.ProtocolID

	// Muxer 返回协商的多路复用协议
	//
	// 未安装多路复用器时为空；此时 NewStream 返回 ErrMuxerUnavailable。
	Muxer() types.ProtocolID

	// Limits 返回外部施加的限额（nil 表示非受限连接）
	Limits() *types.ConnLimits

	// NewStream 打开出站流并协商协议
	//
	// protocols 按偏好顺序提供，非空。ctx 无截止时间时，
	// 协议协商阶段应用默认超时（不影响后续流使用）。
	NewStream(ctx context.Context, protocols []types.ProtocolID, opts NewStreamOpts) (Stream, error)

	// GetStreams 返回当前已协商的流集合
	GetStreams() []Stream

	// Close 优雅关闭：先关闭多路复用器，再关闭底层传输；幂等
	Close() error

	// Abort 立即关闭底层传输，随后关闭多路复用器
	Abort(cause error)
}

// NewStreamOpts 出站流选项
type NewStreamOpts struct {
	// MaxOutboundStreams 覆盖该协议的出站流上限
	//
	// 注册表中处理器自带的上限优先于此值；0 表示使用默认值。
	MaxOutboundStreams int
}

// Stream 协商完成的应用流
type Stream interface {
	MuxedStream

	// ID 返回连接内稳定的流标识
	ID() string

	// Protocol 返回协商出的应用协议
	Protocol() types.ProtocolID

	// Direction 返回流方向
	Direction() types.Direction

	// Conn 返回所属连接
	Conn() Connection

	// Timeline 返回生命周期时间戳
	Timeline() types.Timeline
}
