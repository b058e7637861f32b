// Package upgrader 实现连接升级器
package upgrader

import (
	"net"
	"sync"
	"time"

	"github.com/twiss/go-p2p/internal/core/identity"
	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
	"github.com/twiss/go-p2p/pkg/types"
)

// testIdentity 创建测试用身份
func testIdentity() (*identity.Identity, error) {
	return identity.Generate()
}

// 确保实现了接口
var _ pkgif.MultiaddrConn = (*testMaConn)(nil)

// testMaConn 测试用 MultiaddrConn（net.Pipe 底座）
//
// 语义与 tcp 传输的连接一致：timeline、中止原因、
// 首次关闭完成后恰好触发一次 close 回调。
type testMaConn struct {
	net.Conn

	local  types.Multiaddr
	remote types.Multiaddr

	mu       sync.Mutex
	timeline types.Timeline
	onClose  func(time.Time)
	closed   bool
	cause    error
}

// newTestMaConnPair 创建一对相互连接的测试 MultiaddrConn
func newTestMaConnPair(serverAddr, clientAddr types.Multiaddr) (server, client *testMaConn) {
	sc, cc := net.Pipe()
	now := time.Now()
	server = &testMaConn{
		Conn:     sc,
		local:    serverAddr,
		remote:   clientAddr,
		timeline: types.Timeline{Open: now},
	}
	client = &testMaConn{
		Conn:     cc,
		local:    clientAddr,
		remote:   serverAddr,
		timeline: types.Timeline{Open: now},
	}
	return server, client
}

// LocalMultiaddr 返回本地多地址
func (c *testMaConn) LocalMultiaddr() types.Multiaddr {
	return c.local
}

// RemoteMultiaddr 返回远端多地址
func (c *testMaConn) RemoteMultiaddr() types.Multiaddr {
	return c.remote
}

// Timeline 返回生命周期时间戳
func (c *testMaConn) Timeline() *types.Timeline {
	return &c.timeline
}

// MarkUpgraded 记录升级完成时间
func (c *testMaConn) MarkUpgraded() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeline.Upgraded = time.Now()
}

// SetOnClose 注册关闭观察回调
func (c *testMaConn) SetOnClose(fn func(time.Time)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onClose = fn
}

// Close 关闭连接
func (c *testMaConn) Close() error {
	return c.doClose(nil)
}

// Abort 立即关闭连接并记录失败原因
func (c *testMaConn) Abort(cause error) error {
	return c.doClose(cause)
}

// doClose 关闭底层连接并触发一次 close 回调
func (c *testMaConn) doClose(cause error) error {
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

// AbortCause 返回记录的中止原因（测试断言用）
func (c *testMaConn) AbortCause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cause
}
