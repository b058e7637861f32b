// Package tcp 提供基于 TCP 的传输层实现
package tcp

import (
	"net"
	"sync/atomic"

	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
	"github.com/twiss/go-p2p/pkg/types"
)

// 确保实现了接口
var _ pkgif.Listener = (*Listener)(nil)

// Listener TCP 监听器
type Listener struct {
	listener  net.Listener
	addr      types.Multiaddr
	transport *Transport
	closed    atomic.Bool
}

// Accept 接受新连接
func (l *Listener) Accept() (pkgif.MultiaddrConn, error) {
	nc, err := l.listener.Accept()
	if err != nil {
		if l.closed.Load() {
			return nil, ErrListenerClosed
		}
		return nil, err
	}

	conn := newConn(nc, "")
	if l.transport.metrics != nil {
		l.transport.metrics.TrackMultiaddrConn(conn)
	}
	return conn, nil
}

// Close 关闭监听器
func (l *Listener) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	l.transport.removeListener(l)
	return l.listener.Close()
}

// Multiaddr 返回监听多地址
func (l *Listener) Multiaddr() types.Multiaddr {
	return l.addr
}
