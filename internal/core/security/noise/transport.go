// Package noise 实现 Noise 协议安全传输
package noise

import (
	"context"
	"crypto/rand"
	"fmt"
	"net"
	"time"

	"github.com/flynn/noise"

	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
	"github.com/twiss/go-p2p/pkg/lib/log"
	"github.com/twiss/go-p2p/pkg/types"
)

var logger = log.Logger("core/security/noise")

// ID 协议标识
const ID types.ProtocolID = "/noise"

// 确保实现了接口
var _ pkgif.SecureTransport = (*Transport)(nil)

// cipherSuite XX 握手使用的密码套件
var cipherSuite = noise.NewCipherSuite(noise.DH25519, noise.CipherChaChaPoly, noise.HashSHA256)

// Transport Noise 协议传输
type Transport struct {
	identity pkgif.Identity
	static   noise.DHKey
}

// New 创建 Noise 传输
//
// 静态 Curve25519 密钥对在此生成，并在握手 payload 中
// 由 Ed25519 身份密钥签名绑定。
func New(identity pkgif.Identity) (*Transport, error) {
	if identity == nil {
		return nil, ErrNilIdentity
	}

	static, err := cipherSuite.GenerateKeypair(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate static keypair: %w", err)
	}

	return &Transport{
		identity: identity,
		static:   static,
	}, nil
}

// ID 返回协议标识
func (t *Transport) ID() types.ProtocolID {
	return ID
}

// SecureInbound 保护入站连接
//
// remotePeer 可为空，由握手确定。
func (t *Transport) SecureInbound(ctx context.Context, conn net.Conn, remotePeer types.PeerID) (pkgif.SecureConn, error) {
	logger.Debug("Noise 入站握手", "remotePeer", log.TruncateID(string(remotePeer), 8))
	return t.handshake(ctx, conn, remotePeer, false)
}

// SecureOutbound 保护出站连接
//
// remotePeer 为期望的对端身份，不匹配时握手失败。
func (t *Transport) SecureOutbound(ctx context.Context, conn net.Conn, remotePeer types.PeerID) (pkgif.SecureConn, error) {
	logger.Debug("Noise 出站握手", "remotePeer", log.TruncateID(string(remotePeer), 8))
	return t.handshake(ctx, conn, remotePeer, true)
}

// handshake 带 ctx 取消/超时的握手包装
func (t *Transport) handshake(ctx context.Context, conn net.Conn, remotePeer types.PeerID, initiator bool) (pkgif.SecureConn, error) {
	// ctx 截止时间映射为连接截止时间；取消立即打断阻塞 IO
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, fmt.Errorf("set deadline: %w", err)
		}
		defer conn.SetDeadline(time.Time{})
	}
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(aLongTimeAgo)
	})
	defer stop()

	secConn, err := performHandshake(conn, t.identity, t.static, remotePeer, initiator)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Warn("Noise 握手失败", "remotePeer", log.TruncateID(string(remotePeer), 8), "error", err)
		return nil, err
	}

	logger.Debug("Noise 握手成功", "remotePeer", log.TruncateID(string(secConn.RemotePeer()), 8))
	return secConn, nil
}
