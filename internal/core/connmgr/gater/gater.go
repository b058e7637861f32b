// Package gater 实现连接门控
package gater

import (
	"sync"

	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
	"github.com/twiss/go-p2p/pkg/types"
)

// 确保实现了接口
var _ pkgif.ConnGater = (*Gater)(nil)

// Gater 连接门控器
//
// 基于黑名单在升级管线的四个检查点做放行判断：
// 地址黑名单在握手前生效，节点黑名单在身份确定后生效。
type Gater struct {
	mu sync.RWMutex

	// blockedPeers 黑名单节点
	blockedPeers map[types.PeerID]struct{}

	// blockedAddrs 黑名单地址
	blockedAddrs map[types.Multiaddr]struct{}
}

// New 创建门控器
func New() *Gater {
	return &Gater{
		blockedPeers: make(map[types.PeerID]struct{}),
		blockedAddrs: make(map[types.Multiaddr]struct{}),
	}
}

// InterceptAccept 入站连接握手前检查
func (g *Gater) InterceptAccept(maConn pkgif.MultiaddrConn) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, blocked := g.blockedAddrs[maConn.RemoteMultiaddr()]
	return !blocked
}

// InterceptDial 出站连接握手前检查
func (g *Gater) InterceptDial(peer types.PeerID, maConn pkgif.MultiaddrConn) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, blocked := g.blockedAddrs[maConn.RemoteMultiaddr()]; blocked {
		return false
	}
	_, blocked := g.blockedPeers[peer]
	return !blocked
}

// InterceptSecured 握手完成后检查
func (g *Gater) InterceptSecured(_ types.Direction, peer types.PeerID, _ pkgif.MultiaddrConn) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, blocked := g.blockedPeers[peer]
	return !blocked
}

// InterceptUpgraded 多路复用安装后检查
func (g *Gater) InterceptUpgraded(_ types.Direction, peer types.PeerID, _ pkgif.MultiaddrConn) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, blocked := g.blockedPeers[peer]
	return !blocked
}

// BlockPeer 添加节点到黑名单
func (g *Gater) BlockPeer(peer types.PeerID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.blockedPeers[peer] = struct{}{}
}

// UnblockPeer 从黑名单移除节点
func (g *Gater) UnblockPeer(peer types.PeerID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.blockedPeers, peer)
}

// BlockAddr 添加地址到黑名单
func (g *Gater) BlockAddr(addr types.Multiaddr) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.blockedAddrs[addr] = struct{}{}
}

// UnblockAddr 从黑名单移除地址
func (g *Gater) UnblockAddr(addr types.Multiaddr) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.blockedAddrs, addr)
}
