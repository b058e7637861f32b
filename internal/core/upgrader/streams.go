// Package upgrader 实现连接升级器
package upgrader

import (
	"context"
	"errors"
	"io"
	"strconv"
	"sync"
	"time"

	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
	"github.com/twiss/go-p2p/pkg/lib/log"
	"github.com/twiss/go-p2p/pkg/types"
)

// 确保实现了接口
var _ pkgif.Stream = (*stream)(nil)

// stream 协商完成的应用流
//
// rw 是协商返回的规范读写端：乐观选择可能缓冲了早期数据，
// 因此 Read/Write/Close 必须走 rw 而不是底层流。
// Reset、半关闭与截止时间仍由底层多路复用流提供。
type stream struct {
	pkgif.MuxedStream

	rw io.ReadWriteCloser

	id       string
	protocol types.ProtocolID
	dir      types.Direction
	conn     *transportConn

	mu       sync.Mutex
	timeline types.Timeline
}

// Read 从流中读取数据
func (s *stream) Read(p []byte) (int, error) {
	return s.rw.Read(p)
}

// Write 向流中写入数据
func (s *stream) Write(p []byte) (int, error) {
	return s.rw.Write(p)
}

// Close 关闭流（正常关闭）
func (s *stream) Close() error {
	err := s.rw.Close()
	s.markClosed()
	return err
}

// Reset 重置流（异常关闭）
func (s *stream) Reset() error {
	err := s.MuxedStream.Reset()
	s.markClosed()
	return err
}

// markClosed 记录关闭时间并从连接的流集合移除
func (s *stream) markClosed() {
	s.mu.Lock()
	if s.timeline.Close.IsZero() {
		s.timeline.Close = time.Now()
	}
	s.mu.Unlock()
	s.conn.removeStream(s.id)
}

// ID 返回连接内稳定的流标识
func (s *stream) ID() string {
	return s.id
}

// Protocol 返回协商出的应用协议
func (s *stream) Protocol() types.ProtocolID {
	return s.protocol
}

// Direction 返回流方向
func (s *stream) Direction() types.Direction {
	return s.dir
}

// Conn 返回所属连接
func (s *stream) Conn() pkgif.Connection {
	return s.conn
}

// Timeline 返回生命周期时间戳
func (s *stream) Timeline() types.Timeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline
}

// ============================================================================
//                              入站流路由
// ============================================================================

// routeStream 路由一条入站流
//
// 协议列表在流到达时读取（而非建连时），因此注册变更对
// 已有连接立即生效。任何错误只终结这条流：记录日志并重置，
// 绝不影响连接或其他流。
func (c *transportConn) routeStream(ms pkgif.MuxedStream) {
	id := c.allocStreamID()

	if err := c.negotiateAndDispatch(id, ms); err != nil {
		logger.Warn("入站流路由失败",
			"stream", id,
			"remotePeer", log.TruncateID(string(c.RemotePeer()), 8),
			"error", err)
		ms.Reset()
	}
}

// negotiateAndDispatch 协商、检查配额并投递处理器
func (c *transportConn) negotiateAndDispatch(id string, ms pkgif.MuxedStream) error {
	// 协商阶段限时；流交付处理器后不再受此约束
	ms.SetDeadline(time.Now().Add(DefaultProtocolSelectTimeout))

	proto, err := handleInboundProtocol(ms, c.registrar.Protocols())
	if err != nil {
		return err
	}

	ms.SetDeadline(time.Time{})

	entry, err := c.registrar.Handler(proto)
	if err != nil {
		return err
	}

	limit, err := c.findIncomingStreamLimit(proto)
	if err != nil {
		return err
	}

	// 配额检查与安装必须在同一临界区内
	c.mu.Lock()
	if count := c.countStreamsLocked(proto, types.DirInbound); count >= limit {
		c.mu.Unlock()
		return &TooManyInboundStreamsError{Protocol: proto, Limit: limit}
	}

	s := &stream{
		MuxedStream: ms,
		rw:          ms,
		id:          id,
		protocol:    proto,
		dir:         types.DirInbound,
		conn:        c,
		timeline:    types.Timeline{Open: time.Now()},
	}
	c.streams[id] = s
	c.mu.Unlock()

	if c.peerStore != nil {
		c.peerStore.AddProtocols(c.RemotePeer(), proto)
	}
	if c.metrics != nil {
		c.metrics.TrackProtocolStream(s)
	}

	// 受限连接只路由选择加入的处理器；被拒的流关闭而非重置
	if c.limits != nil && !entry.Options.RunOnLimitedConnection {
		logger.Warn("受限连接拒绝路由",
			"stream", id,
			"protocol", proto,
			"error", ErrLimitedConnection)
		s.Close()
		return nil
	}

	entry.Handler(s)
	return nil
}

// allocStreamID 分配连接内唯一的流标识
func (c *transportConn) allocStreamID() string {
	return strconv.FormatUint(c.nextStreamID.Add(1), 10)
}

// findIncomingStreamLimit 解析协议的入站流上限
//
// 协议未注册时使用默认值（与出站共用同一常量取值 32）；
// 其他注册表错误原样上抛。
func (c *transportConn) findIncomingStreamLimit(proto types.ProtocolID) (int, error) {
	entry, err := c.registrar.Handler(proto)
	if err != nil {
		if errors.Is(err, pkgif.ErrUnhandledProtocol) {
			return DefaultMaxInboundStreams, nil
		}
		return 0, err
	}
	if entry.Options.MaxInboundStreams > 0 {
		return entry.Options.MaxInboundStreams, nil
	}
	return DefaultMaxInboundStreams, nil
}

// findOutgoingStreamLimit 解析协议的出站流上限
//
// 优先级：注册表处理器的 MaxOutboundStreams > 调用方选项 > 默认值。
func (c *transportConn) findOutgoingStreamLimit(proto types.ProtocolID, opts pkgif.NewStreamOpts) int {
	entry, err := c.registrar.Handler(proto)
	if err == nil && entry.Options.MaxOutboundStreams > 0 {
		return entry.Options.MaxOutboundStreams
	}
	if opts.MaxOutboundStreams > 0 {
		return opts.MaxOutboundStreams
	}
	return DefaultMaxOutboundStreams
}

// ============================================================================
//                              出站流工厂
// ============================================================================

// NewStream 打开出站流并协商协议
//
// ctx 没有截止时间时，协商阶段应用 DefaultProtocolSelectTimeout；
// 超时只约束协商，不影响返回后的流使用。流创建之后的任何失败
// 都会重置该流再返回错误。
func (c *transportConn) NewStream(ctx context.Context, protocols []types.ProtocolID, opts pkgif.NewStreamOpts) (pkgif.Stream, error) {
	if len(protocols) == 0 {
		return nil, ErrNoProtocols
	}
	if c.muxed == nil {
		return nil, ErrMuxerUnavailable
	}
	if c.Status() != types.StatusOpen {
		return nil, ErrConnectionClosed
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultProtocolSelectTimeout)
		defer cancel()
	}

	ms, err := c.muxed.OpenStream(ctx)
	if err != nil {
		return nil, err
	}

	// 协商期间应用 ctx 截止时间；取消立即打断阻塞 IO
	if d, ok := ctx.Deadline(); ok {
		ms.SetDeadline(d)
	}
	stop := context.AfterFunc(ctx, func() {
		ms.SetDeadline(aLongTimeAgo)
	})

	proto, rw, err := selectOutboundProtocol(ms, protocols)

	stop()
	ms.SetDeadline(time.Time{})

	if err != nil {
		ms.Reset()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	limit := c.findOutgoingStreamLimit(proto, opts)

	// 配额检查与安装必须在同一临界区内
	c.mu.Lock()
	if count := c.countStreamsLocked(proto, types.DirOutbound); count >= limit {
		c.mu.Unlock()
		ms.Reset()
		return nil, &TooManyOutboundStreamsError{Protocol: proto, Count: count, Limit: limit}
	}

	s := &stream{
		MuxedStream: ms,
		rw:          rw,
		id:          c.allocStreamID(),
		protocol:    proto,
		dir:         types.DirOutbound,
		conn:        c,
		timeline:    types.Timeline{Open: time.Now()},
	}
	c.streams[s.id] = s
	c.mu.Unlock()

	if c.peerStore != nil {
		c.peerStore.AddProtocols(c.RemotePeer(), proto)
	}
	if c.metrics != nil {
		c.metrics.TrackProtocolStream(s)
	}

	return s, nil
}
