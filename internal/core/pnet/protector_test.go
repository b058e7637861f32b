package pnet

import (
	"crypto/rand"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
	"github.com/twiss/go-p2p/pkg/types"
)

// pipeMaConn 测试用 MultiaddrConn
type pipeMaConn struct {
	net.Conn

	remote   types.Multiaddr
	mu       sync.Mutex
	timeline types.Timeline
	onClose  func(time.Time)
}

var _ pkgif.MultiaddrConn = (*pipeMaConn)(nil)

func (c *pipeMaConn) LocalMultiaddr() types.Multiaddr  { return "/ip4/127.0.0.1/tcp/1" }
func (c *pipeMaConn) RemoteMultiaddr() types.Multiaddr { return c.remote }
func (c *pipeMaConn) Timeline() *types.Timeline        { return &c.timeline }
func (c *pipeMaConn) MarkUpgraded()                    {}
func (c *pipeMaConn) Abort(error) error                { return c.Conn.Close() }
func (c *pipeMaConn) SetOnClose(fn func(time.Time)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onClose = fn
}

func newPipePair() (*pipeMaConn, *pipeMaConn) {
	a, b := net.Pipe()
	return &pipeMaConn{Conn: a, remote: "/ip4/127.0.0.1/tcp/2"},
		&pipeMaConn{Conn: b, remote: "/ip4/127.0.0.1/tcp/1"}
}

func testPSK(t *testing.T) [32]byte {
	t.Helper()
	var psk [32]byte
	_, err := rand.Read(psk[:])
	require.NoError(t, err)
	return psk
}

type protectResult struct {
	conn pkgif.MultiaddrConn
	err  error
}

// protectPair 并发保护一对连接
func protectPair(t *testing.T, a, b *Protector) (pkgif.MultiaddrConn, pkgif.MultiaddrConn) {
	t.Helper()

	ca, cb := newPipePair()

	aCh := make(chan protectResult, 1)
	go func() {
		conn, err := a.Protect(ca)
		aCh <- protectResult{conn, err}
	}()

	pb, err := b.Protect(cb)
	require.NoError(t, err)

	ar := <-aCh
	require.NoError(t, ar.err)

	t.Cleanup(func() {
		ar.conn.Close()
		pb.Close()
	})
	return ar.conn, pb
}

// TestProtector_RoundTrip 测试相同 PSK 下的双向透明传输
func TestProtector_RoundTrip(t *testing.T) {
	psk := testPSK(t)
	pa, pb := protectPair(t, New(psk), New(psk))

	msg := []byte("secret payload")
	go func() {
		pa.Write(msg)
	}()

	buf := make([]byte, len(msg))
	pb.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, err := io.ReadFull(pb, buf)
	require.NoError(t, err)
	assert.Equal(t, msg, buf)

	// 反方向
	go func() {
		pb.Write(msg)
	}()
	buf2 := make([]byte, len(msg))
	pa.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, err = io.ReadFull(pa, buf2)
	require.NoError(t, err)
	assert.Equal(t, msg, buf2)
}

// TestProtector_WrongPSK 测试 PSK 不一致时数据无法还原
func TestProtector_WrongPSK(t *testing.T) {
	pa, pb := protectPair(t, New(testPSK(t)), New(testPSK(t)))

	msg := []byte("secret payload")
	go func() {
		pa.Write(msg)
	}()

	buf := make([]byte, len(msg))
	pb.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, err := io.ReadFull(pb, buf)
	require.NoError(t, err)
	assert.NotEqual(t, msg, buf)
}

// TestProtector_PreservesMultiaddrSemantics 验证包装透传多地址语义
func TestProtector_PreservesMultiaddrSemantics(t *testing.T) {
	psk := testPSK(t)
	pa, _ := protectPair(t, New(psk), New(psk))

	assert.Equal(t, types.Multiaddr("/ip4/127.0.0.1/tcp/2"), pa.RemoteMultiaddr())
	assert.NotNil(t, pa.Timeline())
}
