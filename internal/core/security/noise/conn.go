// Package noise 实现 Noise 协议安全传输
package noise

import (
	"net"
	"sync"
	"time"

	"github.com/flynn/noise"

	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
	"github.com/twiss/go-p2p/pkg/types"
)

// maxPlaintextLen 单帧明文上限（预留 AEAD tag 空间）
const maxPlaintextLen = maxFrameLen - 16

// 确保实现了接口
var _ pkgif.SecureConn = (*secureConn)(nil)

// secureConn 握手完成后的加密连接
//
// 读写各持一把锁；明文按帧切分，读端缓存解密后未消费的剩余明文。
type secureConn struct {
	conn net.Conn

	readMu  sync.Mutex
	writeMu sync.Mutex

	sendCS *noise.CipherState
	recvCS *noise.CipherState

	localPeer  types.PeerID
	remotePeer types.PeerID
	remotePub  []byte

	// readBuf 上一帧尚未消费的明文
	readBuf []byte
}

// Read 从流中读取解密数据
func (c *secureConn) Read(p []byte) (int, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	if len(c.readBuf) > 0 {
		n := copy(p, c.readBuf)
		c.readBuf = c.readBuf[n:]
		return n, nil
	}

	frame, err := readFrame(c.conn)
	if err != nil {
		return 0, err
	}

	plain, err := c.recvCS.Decrypt(nil, nil, frame)
	if err != nil {
		return 0, err
	}

	n := copy(p, plain)
	if n < len(plain) {
		c.readBuf = plain[n:]
	}
	return n, nil
}

// Write 加密并写入数据
func (c *secureConn) Write(p []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	var written int
	for len(p) > 0 {
		chunk := p
		if len(chunk) > maxPlaintextLen {
			chunk = chunk[:maxPlaintextLen]
		}

		ct, err := c.sendCS.Encrypt(nil, nil, chunk)
		if err != nil {
			return written, err
		}
		if err := writeFrame(c.conn, ct); err != nil {
			return written, err
		}

		written += len(chunk)
		p = p[len(chunk):]
	}
	return written, nil
}

// Close 关闭底层连接
func (c *secureConn) Close() error {
	return c.conn.Close()
}

// LocalPeer 返回本地节点 ID
func (c *secureConn) LocalPeer() types.PeerID {
	return c.localPeer
}

// RemotePeer 返回已验证的远端节点 ID
func (c *secureConn) RemotePeer() types.PeerID {
	return c.remotePeer
}

// RemotePublicKey 返回远端身份公钥
func (c *secureConn) RemotePublicKey() []byte {
	return c.remotePub
}

// LocalAddr 返回本地网络地址
func (c *secureConn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// RemoteAddr 返回远端网络地址
func (c *secureConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// SetDeadline 设置读写截止时间
func (c *secureConn) SetDeadline(t time.Time) error {
	return c.conn.SetDeadline(t)
}

// SetReadDeadline 设置读截止时间
func (c *secureConn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

// SetWriteDeadline 设置写截止时间
func (c *secureConn) SetWriteDeadline(t time.Time) error {
	return c.conn.SetWriteDeadline(t)
}
