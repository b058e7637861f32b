// Package interfaces 定义 go-p2p 公共接口
//
// 本文件定义传输层接口：MultiaddrConn 是贯穿升级各阶段的连接类型。
package interfaces

import (
	"context"
	"net"
	"time"

	"github.com/twiss/go-p2p/pkg/types"
)

// MultiaddrConn 带 multiaddr 标注的原始字节连接
//
// 由传输层创建（Accept/Dial），升级期间归升级器所有：
// 升级失败时由升级器关闭；成功后所有权转移给 Connection。
//
// Timeline 的 Close 字段首次写入时，注册的 close 回调恰好触发一次，
// 且在底层传输关闭完成之后。这是 connection:close 事件的唯一来源。
type MultiaddrConn interface {
	net.Conn

	// LocalMultiaddr 返回本地多地址
	LocalMultiaddr() types.Multiaddr

	// RemoteMultiaddr 返回远端多地址
	RemoteMultiaddr() types.Multiaddr

	// Timeline 返回生命周期时间戳
	Timeline() *types.Timeline

	// MarkUpgraded 记录升级完成时间
	MarkUpgraded()

	// Abort 立即关闭连接并记录失败原因
	//
	// 与 Close 走同一条关闭路径，区别只在于记录 cause（实现经
	// AbortCause 读出）；后续 IO 返回的仍是底层连接的关闭错误。
	// 对已关闭连接调用是 no-op，已记录的原因不被覆盖。
	Abort(cause error) error

	// SetOnClose 注册关闭观察回调
	//
	// 回调在连接首次关闭完成后（Close 或 Abort 任一路径）
	// 恰好调用一次，参数为关闭时间。
	SetOnClose(fn func(closedAt time.Time))
}

// DialOpts 拨号选项
type DialOpts struct {
	// OnProgress 进度事件回调（可为 nil）
	OnProgress func(types.ProgressEvent)
}

// Transport 定义传输层接口
//
// Transport 负责建立原始连接；升级由 Upgrader 完成。
type Transport interface {
	// Dial 拨号连接到指定地址
	Dial(ctx context.Context, raddr types.Multiaddr, opts DialOpts) (MultiaddrConn, error)

	// CanDial 检查是否支持拨号到指定地址
	CanDial(addr types.Multiaddr) bool

	// Listen 在指定地址监听
	Listen(laddr types.Multiaddr) (Listener, error)

	// Close 关闭传输
	Close() error
}

// Listener 定义监听器接口
type Listener interface {
	// Accept 接受新连接
	Accept() (MultiaddrConn, error)

	// Close 关闭监听器
	Close() error

	// Multiaddr 返回监听多地址
	Multiaddr() types.Multiaddr
}
