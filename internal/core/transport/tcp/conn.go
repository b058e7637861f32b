// Package tcp 提供基于 TCP 的传输层实现
package tcp

import (
	"net"
	"sync"
	"time"

	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
	"github.com/twiss/go-p2p/pkg/types"
)

// 确保实现了接口
var _ pkgif.MultiaddrConn = (*Conn)(nil)

// Conn TCP MultiaddrConn
//
// 包装 net.Conn 并补充升级管线需要的语义：
// 多地址标注、timeline、中止原因、一次性的 close 观察回调。
type Conn struct {
	net.Conn

	local  types.Multiaddr
	remote types.Multiaddr

	mu       sync.Mutex
	timeline types.Timeline
	onClose  func(time.Time)
	closed   bool
	cause    error
}

// newConn 包装已建立的 TCP 连接
//
// remote 为空时从 socket 地址推导。
func newConn(nc net.Conn, remote types.Multiaddr) *Conn {
	if remote.IsEmpty() {
		remote = types.FromTCPAddr(nc.RemoteAddr())
	}
	return &Conn{
		Conn:     nc,
		local:    types.FromTCPAddr(nc.LocalAddr()),
		remote:   remote,
		timeline: types.Timeline{Open: time.Now()},
	}
}

// LocalMultiaddr 返回本地多地址
func (c *Conn) LocalMultiaddr() types.Multiaddr {
	return c.local
}

// RemoteMultiaddr 返回远端多地址
func (c *Conn) RemoteMultiaddr() types.Multiaddr {
	return c.remote
}

// Timeline 返回生命周期时间戳
func (c *Conn) Timeline() *types.Timeline {
	return &c.timeline
}

// MarkUpgraded 记录升级完成时间
func (c *Conn) MarkUpgraded() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeline.Upgraded = time.Now()
}

// SetOnClose 注册关闭观察回调
func (c *Conn) SetOnClose(fn func(time.Time)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onClose = fn
}

// Close 关闭连接
func (c *Conn) Close() error {
	return c.doClose(nil)
}

// Abort 立即关闭连接并记录失败原因
func (c *Conn) Abort(cause error) error {
	return c.doClose(cause)
}

// AbortCause 返回记录的中止原因
func (c *Conn) AbortCause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cause
}

// doClose 关闭底层连接并触发一次 close 回调
//
// timeline.Close 在底层关闭完成后写入；
// 回调恰好触发一次，Close 与 Abort 共用同一条路径。
func (c *Conn) doClose(cause error) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.cause = cause
	c.mu.Unlock()

	err := c.Conn.Close()

	c.mu.Lock()
	closedAt := time.Now()
	c.timeline.Close = closedAt
	fn := c.onClose
	c.mu.Unlock()

	if fn != nil {
		fn(closedAt)
	}
	return err
}
