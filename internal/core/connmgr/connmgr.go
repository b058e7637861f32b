// Package connmgr 实现连接准入管理
package connmgr

import (
	"sync"

	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
	"github.com/twiss/go-p2p/pkg/lib/log"
)

var logger = log.Logger("core/connmgr")

// DefaultMaxConcurrentInbound 默认同时进行的入站升级上限
const DefaultMaxConcurrentInbound = 16

// 确保实现了接口
var _ pkgif.ConnManager = (*Manager)(nil)

// Manager 连接准入管理器
//
// 以固定配额限制同时进行的入站升级数量：
// AcceptIncomingConnection 占用一个槽位，
// AfterUpgradeInbound 释放（升级成败都会调用）。
type Manager struct {
	mu      sync.Mutex
	pending int
	limit   int
}

// New 创建准入管理器
//
// limit <= 0 时使用 DefaultMaxConcurrentInbound。
func New(limit int) *Manager {
	if limit <= 0 {
		limit = DefaultMaxConcurrentInbound
	}
	return &Manager{limit: limit}
}

// AcceptIncomingConnection 申请入站升级配额
func (m *Manager) AcceptIncomingConnection(maConn pkgif.MultiaddrConn) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending >= m.limit {
		logger.Warn("入站升级配额已满",
			"pending", m.pending,
			"limit", m.limit,
			"remote", maConn.RemoteMultiaddr())
		return false
	}

	m.pending++
	return true
}

// AfterUpgradeInbound 释放入站升级配额
func (m *Manager) AfterUpgradeInbound() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending > 0 {
		m.pending--
	}
}

// Pending 返回当前进行中的入站升级数量
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// SetLimit 调整配额上限
func (m *Manager) SetLimit(limit int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > 0 {
		m.limit = limit
	}
}
