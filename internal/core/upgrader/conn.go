// Package upgrader 实现连接升级器
package upgrader

import (
	"sync"
	"sync/atomic"

	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
	"github.com/twiss/go-p2p/pkg/lib/log"
	"github.com/twiss/go-p2p/pkg/types"
)

// 确保实现了接口
var _ pkgif.Connection = (*transportConn)(nil)

// transportConn 升级后的连接
//
// 组合底层传输连接（timeline、close 回调）、加密连接与
// 可选的多路复用连接。流集合记录所有协商完成的流，
// 配额检查与安装在同一临界区内完成。
type transportConn struct {
	maConn  pkgif.MultiaddrConn
	secured pkgif.SecureConn
	muxed   pkgif.MuxedConn // nil 表示未安装多路复用器

	security types.ProtocolID
	muxerID  types.ProtocolID
	dir      types.Direction
	limits   *types.ConnLimits

	registrar pkgif.Registrar
	peerStore pkgif.PeerStore
	metrics   pkgif.Metrics

	mu      sync.Mutex
	status  types.ConnStatus
	streams map[string]*stream

	nextStreamID atomic.Uint64

	closeOnce sync.Once
	closeErr  error
}

// LocalPeer 返回本地节点 ID
func (c *transportConn) LocalPeer() types.PeerID {
	return c.secured.LocalPeer()
}

// RemotePeer 返回已验证的远端节点 ID
func (c *transportConn) RemotePeer() types.PeerID {
	return c.secured.RemotePeer()
}

// RemoteMultiaddr 返回远端多地址
func (c *transportConn) RemoteMultiaddr() types.Multiaddr {
	return c.maConn.RemoteMultiaddr()
}

// Direction 返回连接方向
func (c *transportConn) Direction() types.Direction {
	return c.dir
}

// Status 返回连接状态
func (c *transportConn) Status() types.ConnStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Timeline 返回生命周期时间戳
func (c *transportConn) Timeline() types.Timeline {
	return *c.maConn.Timeline()
}

// Security 返回协商的安全协议
func (c *transportConn) Security() types.ProtocolID {
	return c.security
}

// Muxer 返回协商的多路复用协议
func (c *transportConn) Muxer() types.ProtocolID {
	return c.muxerID
}

// Limits 返回外部施加的限额
func (c *transportConn) Limits() *types.ConnLimits {
	return c.limits
}

// GetStreams 返回当前已协商的流集合
func (c *transportConn) GetStreams() []pkgif.Stream {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]pkgif.Stream, 0, len(c.streams))
	for _, s := range c.streams {
		result = append(result, s)
	}
	return result
}

// Close 优雅关闭连接
//
// 先关闭多路复用器（传播到所有流），再关闭底层传输；幂等。
// connection:close 事件由底层传输的 close 回调派发，
// 并发关闭时也只派发一次。
func (c *transportConn) Close() error {
	c.closeOnce.Do(func() {
		c.setStatus(types.StatusClosing)

		if c.muxed != nil {
			c.closeErr = c.muxed.Close()
		}
		if err := c.maConn.Close(); err != nil && c.closeErr == nil {
			c.closeErr = err
		}

		c.setStatus(types.StatusClosed)
	})
	return c.closeErr
}

// Abort 立即关闭连接
//
// 先中止底层传输（记录失败原因），再关闭多路复用器。
func (c *transportConn) Abort(cause error) {
	c.setStatus(types.StatusClosed)

	c.maConn.Abort(cause)
	if c.muxed != nil {
		c.muxed.Close()
	}
}

// setStatus 更新连接状态
//
// 状态只向前推进（open → closing → closed）。
func (c *transportConn) setStatus(s types.ConnStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s > c.status {
		c.status = s
	}
}

// ============================================================================
//                              流集合
// ============================================================================

// countStreamsLocked 统计指定协议与方向的流数量
//
// 调用方必须持有 c.mu。
func (c *transportConn) countStreamsLocked(proto types.ProtocolID, dir types.Direction) int {
	count := 0
	for _, s := range c.streams {
		if s.protocol == proto && s.dir == dir {
			count++
		}
	}
	return count
}

// removeStream 从流集合移除
func (c *transportConn) removeStream(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.streams, id)
}

// acceptLoop 接受入站流并逐条路由
//
// 每条连接一个循环 goroutine，每条流一个路由 goroutine。
// 循环在连接组装完成后启动，因此路由可见的连接总是完整的。
// 接受失败意味着多路复用会话已终止，触发连接关闭。
func (c *transportConn) acceptLoop() {
	for {
		ms, err := c.muxed.AcceptStream()
		if err != nil {
			if c.Status() == types.StatusOpen {
				logger.Debug("多路复用会话终止",
					"remotePeer", log.TruncateID(string(c.RemotePeer()), 8),
					"error", err)
				c.Close()
			}
			return
		}

		go c.routeStream(ms)
	}
}
