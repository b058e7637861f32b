// Package upgrader 实现连接升级器
package upgrader

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
	"github.com/twiss/go-p2p/pkg/lib/log"
	"github.com/twiss/go-p2p/pkg/types"
)

var logger = log.Logger("core/upgrader")

// 门控检查点名（ConnectionInterceptedError.Checkpoint 的取值）
const (
	checkpointAccept   = "InterceptAccept"
	checkpointDial     = "InterceptDial"
	checkpointSecured  = "InterceptSecured"
	checkpointUpgraded = "InterceptUpgraded"
)

// 确保实现了接口
var _ pkgif.Upgrader = (*Upgrader)(nil)

// Upgrader 连接升级器
type Upgrader struct {
	identity pkgif.Identity

	securityTransports []pkgif.SecureTransport
	streamMuxers       []pkgif.StreamMuxerFactory

	inboundUpgradeTimeout time.Duration

	connMgr   pkgif.ConnManager
	gater     pkgif.ConnGater
	registrar pkgif.Registrar
	peerStore pkgif.PeerStore
	metrics   pkgif.Metrics
	protector pkgif.Protector

	emitOpened pkgif.Emitter
	emitClosed pkgif.Emitter
}

// New 创建连接升级器
func New(id pkgif.Identity, cfg Config) (*Upgrader, error) {
	if id == nil {
		return nil, ErrNilIdentity
	}
	if cfg.Registrar == nil {
		return nil, ErrNilRegistrar
	}

	timeout := cfg.InboundUpgradeTimeout
	if timeout <= 0 {
		timeout = DefaultInboundUpgradeTimeout
	}

	u := &Upgrader{
		identity:              id,
		securityTransports:    cfg.SecurityTransports,
		streamMuxers:          cfg.StreamMuxers,
		inboundUpgradeTimeout: timeout,
		connMgr:               cfg.ConnManager,
		gater:                 cfg.Gater,
		registrar:             cfg.Registrar,
		peerStore:             cfg.PeerStore,
		metrics:               cfg.Metrics,
		protector:             cfg.Protector,
	}

	if cfg.Bus != nil {
		var err error
		u.emitOpened, err = cfg.Bus.Emitter(new(pkgif.EvtConnectionOpened))
		if err != nil {
			return nil, fmt.Errorf("create open emitter: %w", err)
		}
		u.emitClosed, err = cfg.Bus.Emitter(new(pkgif.EvtConnectionClosed))
		if err != nil {
			return nil, fmt.Errorf("create close emitter: %w", err)
		}
	}

	return u, nil
}

// UpgradeInbound 升级入站连接
//
// 升级流程：
//  1. 准入（ConnManager）与门控（InterceptAccept）
//  2. 可选 PSK 保护
//  3. 安全协议协商 + 握手
//  4. 门控（InterceptSecured）
//  5. 多路复用器协商与安装
//  6. 门控（InterceptUpgraded）、连接组装
//
// 单个计时器约束整个升级；超时中止底层连接，
// 进行中的阻塞操作随之解除并以超时错误返回。
// 无论成败，准入配额在返回前释放。
func (u *Upgrader) UpgradeInbound(ctx context.Context, maConn pkgif.MultiaddrConn, opts pkgif.UpgradeOpts) (pkgif.Connection, error) {
	if u.connMgr != nil {
		if !u.connMgr.AcceptIncomingConnection(maConn) {
			maConn.Close()
			return nil, ErrConnectionDenied
		}
		defer u.connMgr.AfterUpgradeInbound()
	}

	tctx, cancel := context.WithTimeout(ctx, u.inboundUpgradeTimeout)
	defer cancel()

	// 超时立即中止底层连接，解除所有阻塞中的协商/握手
	stop := context.AfterFunc(tctx, func() {
		maConn.Abort(ErrUpgradeTimeout)
	})
	defer stop()

	conn, err := u.upgrade(tctx, maConn, types.DirInbound, opts)
	if err != nil {
		maConn.Close()
		switch {
		case errors.Is(tctx.Err(), context.DeadlineExceeded):
			return nil, fmt.Errorf("%w: %v", ErrUpgradeTimeout, err)
		case ctx.Err() != nil:
			return nil, ctx.Err()
		}
		return nil, err
	}

	return conn, nil
}

// UpgradeOutbound 升级出站连接
//
// 超时依赖调用方的 ctx。失败时底层连接携带失败原因中止。
func (u *Upgrader) UpgradeOutbound(ctx context.Context, maConn pkgif.MultiaddrConn, opts pkgif.UpgradeOpts) (pkgif.Connection, error) {
	stop := context.AfterFunc(ctx, func() {
		maConn.Abort(ctx.Err())
	})
	defer stop()

	conn, err := u.upgrade(ctx, maConn, types.DirOutbound, opts)
	if err != nil {
		maConn.Abort(err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	return conn, nil
}

// upgrade 升级流程主体（两个方向共用）
func (u *Upgrader) upgrade(ctx context.Context, maConn pkgif.MultiaddrConn, dir types.Direction, opts pkgif.UpgradeOpts) (pkgif.Connection, error) {
	// 握手前门控
	if dir == types.DirInbound {
		if u.gater != nil && !u.gater.InterceptAccept(maConn) {
			return nil, &ConnectionInterceptedError{Checkpoint: checkpointAccept}
		}
	} else {
		remote := opts.RemotePeer
		if remote.IsEmpty() {
			remote = maConn.RemoteMultiaddr().PeerID()
		}
		if !remote.IsEmpty() && u.gater != nil && !u.gater.InterceptDial(remote, maConn) {
			return nil, &ConnectionInterceptedError{Checkpoint: checkpointDial}
		}
	}

	// 保护阶段
	conn := maConn
	if u.protector != nil && !opts.SkipProtection {
		protected, err := u.protector.Protect(conn)
		if err != nil {
			return nil, err
		}
		conn = protected
	}

	// 加密阶段
	if dir == types.DirInbound {
		progress(opts, types.ProgressEncryptInbound)
	} else {
		progress(opts, types.ProgressEncryptOutbound)
	}
	sec, secProto, err := u.encrypt(ctx, conn, dir, opts)
	if err != nil {
		return nil, err
	}
	logger.Debug("加密阶段完成",
		"direction", dir,
		"protocol", secProto,
		"remotePeer", log.TruncateID(string(sec.RemotePeer()), 8))

	// 握手后门控
	if u.gater != nil && !u.gater.InterceptSecured(dir, sec.RemotePeer(), maConn) {
		return nil, &ConnectionInterceptedError{Checkpoint: checkpointSecured}
	}

	// 多路复用阶段
	factory, err := u.selectMuxer(ctx, sec, dir, opts)
	if err != nil {
		return nil, err
	}

	// 升级后门控
	if u.gater != nil && !u.gater.InterceptUpgraded(dir, sec.RemotePeer(), maConn) {
		return nil, &ConnectionInterceptedError{Checkpoint: checkpointUpgraded}
	}

	return u.assembleConn(maConn, sec, secProto, factory, dir, opts)
}

// encrypt 加密阶段
//
// 跳过加密时对端身份取自多地址或调用方选项，
// 安全协议名记录为 "native"。
func (u *Upgrader) encrypt(ctx context.Context, conn pkgif.MultiaddrConn, dir types.Direction, opts pkgif.UpgradeOpts) (pkgif.SecureConn, types.ProtocolID, error) {
	if opts.SkipEncryption {
		var remote types.PeerID
		if dir == types.DirInbound {
			remote = conn.RemoteMultiaddr().PeerID()
			if remote.IsEmpty() {
				return nil, "", ErrInvalidMultiaddr
			}
		} else {
			remote = opts.RemotePeer
			if remote.IsEmpty() {
				remote = conn.RemoteMultiaddr().PeerID()
			}
			if remote.IsEmpty() {
				return nil, "", ErrInvalidPeerID
			}
		}
		return &nativeConn{
			MultiaddrConn: conn,
			localPeer:     u.identity.PeerID(),
			remotePeer:    remote,
		}, types.SecurityNative, nil
	}

	if len(u.securityTransports) == 0 {
		return nil, "", &EncryptionFailedError{Err: ErrNoEncrypters}
	}

	st, err := u.negotiateSecurity(ctx, conn, dir == types.DirInbound)
	if err != nil {
		return nil, "", &EncryptionFailedError{Err: err}
	}

	var sec pkgif.SecureConn
	if dir == types.DirInbound {
		sec, err = st.SecureInbound(ctx, conn, opts.RemotePeer)
	} else {
		sec, err = st.SecureOutbound(ctx, conn, opts.RemotePeer)
	}
	if err != nil {
		return nil, "", &EncryptionFailedError{Err: err}
	}

	return sec, st.ID(), nil
}

// selectMuxer 多路复用阶段
//
// 显式指定的工厂优先；未配置任何复用器时跳过
// （连接不带多路复用器，无法开流）。
func (u *Upgrader) selectMuxer(ctx context.Context, sec pkgif.SecureConn, dir types.Direction, opts pkgif.UpgradeOpts) (pkgif.StreamMuxerFactory, error) {
	if opts.MuxerFactory != nil {
		return opts.MuxerFactory, nil
	}
	if len(u.streamMuxers) == 0 {
		return nil, nil
	}

	if dir == types.DirInbound {
		progress(opts, types.ProgressMultiplexInbound)
	} else {
		progress(opts, types.ProgressMultiplexOutbound)
	}

	factory, err := u.negotiateMuxer(ctx, sec, dir == types.DirInbound)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMuxerUnavailable, err)
	}
	return factory, nil
}

// assembleConn 组装连接对象
//
// 顺序敏感：close 回调与 connection:open 事件在接受循环
// 启动之前就位，因此任何流交付时连接都已发布。
func (u *Upgrader) assembleConn(maConn pkgif.MultiaddrConn, sec pkgif.SecureConn, secProto types.ProtocolID, factory pkgif.StreamMuxerFactory, dir types.Direction, opts pkgif.UpgradeOpts) (pkgif.Connection, error) {
	var muxed pkgif.MuxedConn
	var muxerID types.ProtocolID

	if factory != nil {
		mc, err := factory.NewConn(sec, dir == types.DirInbound)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMuxerUnavailable, err)
		}
		muxed = mc
		muxerID = factory.ID()
	}

	maConn.MarkUpgraded()

	c := &transportConn{
		maConn:    maConn,
		secured:   sec,
		muxed:     muxed,
		security:  secProto,
		muxerID:   muxerID,
		dir:       dir,
		limits:    opts.Limits,
		registrar: u.registrar,
		peerStore: u.peerStore,
		metrics:   u.metrics,
		status:    types.StatusOpen,
		streams:   make(map[string]*stream),
	}

	// close 观察：底层传输首次关闭完成后恰好派发一次
	if u.emitClosed != nil {
		emit := u.emitClosed
		maConn.SetOnClose(func(time.Time) {
			emit.Emit(pkgif.EvtConnectionClosed{Conn: c})
		})
	}

	if u.emitOpened != nil {
		u.emitOpened.Emit(pkgif.EvtConnectionOpened{Conn: c})
	}

	if muxed != nil {
		go c.acceptLoop()
	}

	logger.Info("连接升级成功",
		"direction", dir,
		"remotePeer", log.TruncateID(string(sec.RemotePeer()), 8),
		"security", secProto,
		"muxer", muxerID)

	return c, nil
}

// progress 上报进度事件
func progress(opts pkgif.UpgradeOpts, evt types.ProgressEvent) {
	if opts.OnProgress != nil {
		opts.OnProgress(evt)
	}
}

// ============================================================================
//                              native 连接
// ============================================================================

// 确保实现了接口
var _ pkgif.SecureConn = (*nativeConn)(nil)

// nativeConn 跳过加密阶段的"安全"连接
//
// 不提供加密与认证：对端身份来自多地址或调用方声明。
type nativeConn struct {
	pkgif.MultiaddrConn

	localPeer  types.PeerID
	remotePeer types.PeerID
}

// LocalPeer 返回本地节点 ID
func (c *nativeConn) LocalPeer() types.PeerID {
	return c.localPeer
}

// RemotePeer 返回声明的远端节点 ID
func (c *nativeConn) RemotePeer() types.PeerID {
	return c.remotePeer
}

// RemotePublicKey 返回远端公钥（native 连接无公钥）
func (c *nativeConn) RemotePublicKey() []byte {
	return nil
}

// 确保 nativeConn 可作为 net.Conn 传给多路复用器
var _ net.Conn = (*nativeConn)(nil)
