// Package registrar 实现协议处理器注册表
package registrar

import (
	"fmt"
	"sync"

	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
	"github.com/twiss/go-p2p/pkg/lib/log"
	"github.com/twiss/go-p2p/pkg/types"
)

var logger = log.Logger("core/registrar")

// 确保实现了接口
var _ pkgif.Registrar = (*Registrar)(nil)

// Registrar 协议处理器注册表
//
// 入站流路由器在每条流到达时读取当前注册状态，
// 因此注册/注销对已建立的连接立即生效。
type Registrar struct {
	mu sync.RWMutex

	// handlers 协议处理器映射
	handlers map[types.ProtocolID]pkgif.RegisteredHandler

	// order 注册顺序
	order []types.ProtocolID
}

// New 创建注册表
func New() *Registrar {
	return &Registrar{
		handlers: make(map[types.ProtocolID]pkgif.RegisteredHandler),
	}
}

// SetStreamHandler 为指定协议设置流处理器
//
// 重复注册覆盖处理器但保持原注册顺序。
func (r *Registrar) SetStreamHandler(proto types.ProtocolID, handler pkgif.StreamHandler, opts pkgif.HandlerOptions) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[proto]; !exists {
		r.order = append(r.order, proto)
	}
	r.handlers[proto] = pkgif.RegisteredHandler{
		Handler: handler,
		Options: opts,
	}

	logger.Debug("注册协议处理器", "protocol", proto)
}

// RemoveStreamHandler 移除指定协议的流处理器
func (r *Registrar) RemoveStreamHandler(proto types.ProtocolID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[proto]; !exists {
		return
	}
	delete(r.handlers, proto)
	for i, p := range r.order {
		if p == proto {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Protocols 返回当前注册的协议列表（注册顺序）
func (r *Registrar) Protocols() []types.ProtocolID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]types.ProtocolID, len(r.order))
	copy(result, r.order)
	return result
}

// Handler 返回协议对应的注册条目
func (r *Registrar) Handler(proto types.ProtocolID) (pkgif.RegisteredHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[proto]
	if !ok {
		return pkgif.RegisteredHandler{}, fmt.Errorf("%w: %s", pkgif.ErrUnhandledProtocol, proto)
	}
	return h, nil
}
