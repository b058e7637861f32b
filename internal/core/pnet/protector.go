// Package pnet 实现预共享密钥连接保护
package pnet

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"

	salsa20 "github.com/davidlazar/go-crypto/salsa20"

	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
	"github.com/twiss/go-p2p/pkg/lib/log"
)

var logger = log.Logger("core/pnet")

// nonceLen 每个方向的流 nonce 长度
const nonceLen = 24

var (
	// ErrShortNonce 对端 nonce 不完整
	ErrShortNonce = errors.New("pnet: could not read full nonce")
)

// 确保实现了接口
var _ pkgif.Protector = (*Protector)(nil)

// Protector 预共享密钥连接保护器
type Protector struct {
	psk [32]byte
}

// New 创建保护器
func New(psk [32]byte) *Protector {
	return &Protector{psk: psk}
}

// Protect 将原始连接包装为 PSK 隧道
//
// 双方交换 24 字节随机 nonce 后，两个方向各自派生独立的流密码。
func (p *Protector) Protect(maConn pkgif.MultiaddrConn) (pkgif.MultiaddrConn, error) {
	localNonce := make([]byte, nonceLen)
	if _, err := rand.Read(localNonce); err != nil {
		return nil, fmt.Errorf("pnet: generate nonce: %w", err)
	}

	// nonce 交换并发进行：双方都先写后读，串行会相互等待
	writeErr := make(chan error, 1)
	go func() {
		_, err := maConn.Write(localNonce)
		writeErr <- err
	}()

	remoteNonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(maConn, remoteNonce); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShortNonce, err)
	}
	if err := <-writeErr; err != nil {
		return nil, fmt.Errorf("pnet: write nonce: %w", err)
	}

	logger.Debug("连接保护已建立", "remote", maConn.RemoteMultiaddr())

	psk := p.psk
	return &protectedConn{
		MultiaddrConn: maConn,
		writeS20:      salsa20.New(&psk, localNonce),
		readS20:       salsa20.New(&psk, remoteNonce),
	}, nil
}

// protectedConn PSK 隧道连接
//
// 嵌入原始 MultiaddrConn：multiaddr、timeline、close 回调
// 等语义原样透传，只拦截 Read/Write。
type protectedConn struct {
	pkgif.MultiaddrConn

	readMu  sync.Mutex
	writeMu sync.Mutex

	writeS20 cipher.Stream
	readS20  cipher.Stream
}

// Read 读取并解密
func (c *protectedConn) Read(p []byte) (int, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	n, err := c.MultiaddrConn.Read(p)
	if n > 0 {
		c.readS20.XORKeyStream(p[:n], p[:n])
	}
	return n, err
}

// Write 加密并写入
func (c *protectedConn) Write(p []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	out := make([]byte, len(p))
	c.writeS20.XORKeyStream(out, p)
	return c.MultiaddrConn.Write(out)
}
