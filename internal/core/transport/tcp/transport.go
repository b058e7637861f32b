// Package tcp 提供基于 TCP 的传输层实现
package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
	"github.com/twiss/go-p2p/pkg/lib/log"
	"github.com/twiss/go-p2p/pkg/types"
)

var logger = log.Logger("core/transport/tcp")

// 确保实现了接口
var _ pkgif.Transport = (*Transport)(nil)

// Transport TCP 传输层实现
type Transport struct {
	metrics pkgif.Metrics

	listeners   map[*Listener]struct{}
	listenersMu sync.Mutex

	closed atomic.Bool
}

// NewTransport 创建 TCP 传输层
//
// metrics 可为 nil（不上报拨号事件）。
func NewTransport(metrics pkgif.Metrics) *Transport {
	return &Transport{
		metrics:   metrics,
		listeners: make(map[*Listener]struct{}),
	}
}

// CanDial 检查是否支持拨号到指定地址
func (t *Transport) CanDial(addr types.Multiaddr) bool {
	_, err := addr.TCPAddr()
	return err == nil
}

// Dial 建立出站连接
//
// ctx 在 connect 完成前失效时，进行中的 socket 被销毁，
// 拨号以 ctx 错误返回并上报 abort/timeout 事件。
func (t *Transport) Dial(ctx context.Context, raddr types.Multiaddr, opts pkgif.DialOpts) (pkgif.MultiaddrConn, error) {
	if t.closed.Load() {
		return nil, ErrTransportClosed
	}

	dialAddr, err := raddr.TCPAddr()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotTCPAddr, err)
	}

	dialer := &net.Dialer{
		KeepAlive: 15 * time.Second,
	}

	nc, err := dialer.DialContext(ctx, "tcp", dialAddr)
	if err != nil {
		t.dialerEvent(classifyDialError(ctx, err))
		logger.Warn("拨号失败", "addr", raddr, "error", err)
		return nil, fmt.Errorf("dial %s: %w", raddr, err)
	}

	t.dialerEvent(pkgif.DialerEventConnect)
	if opts.OnProgress != nil {
		opts.OnProgress(types.ProgressTCPOpenConnection)
	}

	conn := newConn(nc, raddr)
	if t.metrics != nil {
		t.metrics.TrackMultiaddrConn(conn)
	}
	return conn, nil
}

// Listen 在指定地址监听
func (t *Transport) Listen(laddr types.Multiaddr) (pkgif.Listener, error) {
	if t.closed.Load() {
		return nil, ErrTransportClosed
	}

	listenAddr, err := laddr.TCPAddr()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotTCPAddr, err)
	}

	nl, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", laddr, err)
	}

	l := &Listener{
		listener:  nl,
		addr:      types.FromTCPAddr(nl.Addr()),
		transport: t,
	}

	t.listenersMu.Lock()
	t.listeners[l] = struct{}{}
	t.listenersMu.Unlock()

	logger.Info("开始监听", "addr", l.addr)
	return l, nil
}

// Close 关闭传输及其所有监听器
func (t *Transport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}

	t.listenersMu.Lock()
	listeners := make([]*Listener, 0, len(t.listeners))
	for l := range t.listeners {
		listeners = append(listeners, l)
	}
	t.listeners = make(map[*Listener]struct{})
	t.listenersMu.Unlock()

	for _, l := range listeners {
		l.Close()
	}

	return nil
}

// removeListener 从监听器集合移除
func (t *Transport) removeListener(l *Listener) {
	t.listenersMu.Lock()
	delete(t.listeners, l)
	t.listenersMu.Unlock()
}

// dialerEvent 上报拨号器事件
func (t *Transport) dialerEvent(event string) {
	if t.metrics != nil {
		t.metrics.DialerEvent(event)
	}
}

// classifyDialError 将拨号错误归类为指标事件
func classifyDialError(ctx context.Context, err error) string {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return pkgif.DialerEventAbort
	case errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded):
		return pkgif.DialerEventTimeout
	default:
		return pkgif.DialerEventError
	}
}
