// Package noise 实现 Noise 协议安全传输
package noise

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/flynn/noise"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/twiss/go-p2p/internal/core/identity"
	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
	"github.com/twiss/go-p2p/pkg/types"
)

// payloadSigPrefix 静态密钥签名的前缀
const payloadSigPrefix = "noise-p2p-static-key:"

// maxFrameLen 单帧密文上限（2 字节长度前缀可表示的最大值）
const maxFrameLen = 65535

// aLongTimeAgo ctx 取消时用于打断阻塞 IO 的截止时间
var aLongTimeAgo = time.Unix(1, 0)

// ============================================================================
//                              Noise XX 握手
// ============================================================================

// performHandshake 执行 Noise XX 握手
//
// 参数：
//   - conn: 底层网络连接
//   - id: 本地身份（签名 payload）
//   - static: 本地静态 Curve25519 密钥对
//   - remotePeer: 期望的远程 PeerID（用于验证，可为空）
//   - initiator: true = 客户端，false = 服务器
func performHandshake(conn net.Conn, id pkgif.Identity, static noise.DHKey, remotePeer types.PeerID, initiator bool) (*secureConn, error) {
	hs, err := noise.NewHandshakeState(noise.Config{
		CipherSuite:   cipherSuite,
		Pattern:       noise.HandshakeXX,
		Initiator:     initiator,
		StaticKeypair: static,
	})
	if err != nil {
		return nil, fmt.Errorf("create handshake state: %w", err)
	}

	localPayload, err := generatePayload(id, static.Public)
	if err != nil {
		return nil, fmt.Errorf("generate handshake payload: %w", err)
	}

	var sendCS, recvCS *noise.CipherState
	var remotePayload []byte

	if initiator {
		sendCS, recvCS, remotePayload, err = initiatorHandshake(conn, hs, localPayload)
	} else {
		sendCS, recvCS, remotePayload, err = responderHandshake(conn, hs, localPayload)
	}
	if err != nil {
		return nil, fmt.Errorf("handshake: %w", err)
	}

	// 验证远程 payload：静态密钥必须由身份密钥签名绑定
	remotePub, actualRemotePeer, err := verifyPayload(remotePayload, hs.PeerStatic())
	if err != nil {
		return nil, err
	}

	// 出站时验证对端身份与期望一致
	if !remotePeer.IsEmpty() && actualRemotePeer != remotePeer {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrPeerIDMismatch,
			remotePeer.ShortString(), actualRemotePeer.ShortString())
	}

	return &secureConn{
		conn:       conn,
		sendCS:     sendCS,
		recvCS:     recvCS,
		localPeer:  id.PeerID(),
		remotePeer: actualRemotePeer,
		remotePub:  remotePub,
	}, nil
}

// initiatorHandshake 客户端握手序列
//
//	-> e
//	<- e, ee, s, es, payload
//	-> s, se, payload
func initiatorHandshake(conn net.Conn, hs *noise.HandshakeState, payload []byte) (send, recv *noise.CipherState, remotePayload []byte, err error) {
	msg, _, _, err := hs.WriteMessage(nil, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("write message 1: %w", err)
	}
	if err := writeFrame(conn, msg); err != nil {
		return nil, nil, nil, err
	}

	frame, err := readFrame(conn)
	if err != nil {
		return nil, nil, nil, err
	}
	remotePayload, _, _, err = hs.ReadMessage(nil, frame)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read message 2: %w", err)
	}

	msg, cs0, cs1, err := hs.WriteMessage(nil, payload)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("write message 3: %w", err)
	}
	if err := writeFrame(conn, msg); err != nil {
		return nil, nil, nil, err
	}

	// 发起者：cs0 发送，cs1 接收
	return cs0, cs1, remotePayload, nil
}

// responderHandshake 服务器握手序列
func responderHandshake(conn net.Conn, hs *noise.HandshakeState, payload []byte) (send, recv *noise.CipherState, remotePayload []byte, err error) {
	frame, err := readFrame(conn)
	if err != nil {
		return nil, nil, nil, err
	}
	if _, _, _, err := hs.ReadMessage(nil, frame); err != nil {
		return nil, nil, nil, fmt.Errorf("read message 1: %w", err)
	}

	msg, _, _, err := hs.WriteMessage(nil, payload)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("write message 2: %w", err)
	}
	if err := writeFrame(conn, msg); err != nil {
		return nil, nil, nil, err
	}

	frame, err = readFrame(conn)
	if err != nil {
		return nil, nil, nil, err
	}
	remotePayload, cs0, cs1, err := hs.ReadMessage(nil, frame)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read message 3: %w", err)
	}

	// 响应者：cs1 发送，cs0 接收
	return cs1, cs0, remotePayload, nil
}

// ============================================================================
//                              Payload 编解码
// ============================================================================

// payload 字段号（与 libp2p-noise 的 NoiseHandshakePayload 对齐）
const (
	payloadFieldIdentityKey = 1
	payloadFieldIdentitySig = 2
)

// generatePayload 生成握手 payload
//
// payload = { identity_key, Sign(prefix + static_pubkey) }
func generatePayload(id pkgif.Identity, staticPub []byte) ([]byte, error) {
	toSign := append([]byte(payloadSigPrefix), staticPub...)
	sig, err := id.Sign(toSign)
	if err != nil {
		return nil, fmt.Errorf("sign static key: %w", err)
	}

	var buf []byte
	buf = protowire.AppendTag(buf, payloadFieldIdentityKey, protowire.BytesType)
	buf = protowire.AppendBytes(buf, id.PublicKey())
	buf = protowire.AppendTag(buf, payloadFieldIdentitySig, protowire.BytesType)
	buf = protowire.AppendBytes(buf, sig)
	return buf, nil
}

// verifyPayload 验证远程 payload 并提取身份
//
// 返回远程身份公钥和由它派生的 PeerID。
func verifyPayload(payload, remoteStatic []byte) ([]byte, types.PeerID, error) {
	var identityKey, identitySig []byte

	for len(payload) > 0 {
		num, typ, n := protowire.ConsumeTag(payload)
		if n < 0 {
			return nil, "", ErrInvalidPayload
		}
		payload = payload[n:]

		if typ != protowire.BytesType {
			return nil, "", ErrInvalidPayload
		}
		val, n := protowire.ConsumeBytes(payload)
		if n < 0 {
			return nil, "", ErrInvalidPayload
		}
		payload = payload[n:]

		switch num {
		case payloadFieldIdentityKey:
			identityKey = val
		case payloadFieldIdentitySig:
			identitySig = val
		}
	}

	if len(identityKey) == 0 || len(identitySig) == 0 {
		return nil, "", ErrInvalidPayload
	}

	signed := append([]byte(payloadSigPrefix), remoteStatic...)
	if !identity.Verify(identityKey, signed, identitySig) {
		return nil, "", ErrInvalidSignature
	}

	return identityKey, types.DerivePeerID(identityKey), nil
}

// ============================================================================
//                              分帧
// ============================================================================

// writeFrame 写入 2 字节大端长度前缀的帧
func writeFrame(w io.Writer, msg []byte) error {
	if len(msg) > maxFrameLen {
		return ErrMsgTooLarge
	}
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(msg)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("write frame length: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// readFrame 读取 2 字节大端长度前缀的帧
func readFrame(r io.Reader) ([]byte, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("read frame length: %w", err)
	}
	frame := make([]byte, binary.BigEndian.Uint16(lenBuf[:]))
	if _, err := io.ReadFull(r, frame); err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	return frame, nil
}
