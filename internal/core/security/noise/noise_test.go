package noise

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiss/go-p2p/internal/core/identity"
	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
)

type secureResult struct {
	conn pkgif.SecureConn
	err  error
}

// TestNoise_New 测试创建传输
func TestNoise_New(t *testing.T) {
	id, err := identity.Generate()
	require.NoError(t, err)

	tr, err := New(id)
	require.NoError(t, err)
	assert.Equal(t, ID, tr.ID())

	_, err = New(nil)
	assert.ErrorIs(t, err, ErrNilIdentity)
}

// TestNoise_Handshake 测试双向握手与数据传输
func TestNoise_Handshake(t *testing.T) {
	serverID, err := identity.Generate()
	require.NoError(t, err)
	clientID, err := identity.Generate()
	require.NoError(t, err)

	serverTr, err := New(serverID)
	require.NoError(t, err)
	clientTr, err := New(clientID)
	require.NoError(t, err)

	sc, cc := net.Pipe()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	serverCh := make(chan secureResult, 1)
	clientCh := make(chan secureResult, 1)

	go func() {
		conn, err := serverTr.SecureInbound(ctx, sc, "")
		serverCh <- secureResult{conn, err}
	}()
	go func() {
		conn, err := clientTr.SecureOutbound(ctx, cc, serverID.PeerID())
		clientCh <- secureResult{conn, err}
	}()

	sr := <-serverCh
	cr := <-clientCh
	require.NoError(t, sr.err)
	require.NoError(t, cr.err)

	// 双方身份已验证
	assert.Equal(t, clientID.PeerID(), sr.conn.RemotePeer())
	assert.Equal(t, serverID.PeerID(), cr.conn.RemotePeer())
	assert.Equal(t, serverID.PeerID(), sr.conn.LocalPeer())
	assert.Equal(t, clientID.PublicKey(), sr.conn.RemotePublicKey())

	// 双向数据
	msg := []byte("hello noise")
	go func() {
		cr.conn.Write(msg)
	}()
	buf := make([]byte, len(msg))
	_, err = sr.conn.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, msg, buf)

	go func() {
		sr.conn.Write(msg)
	}()
	buf2 := make([]byte, len(msg))
	_, err = cr.conn.Read(buf2)
	require.NoError(t, err)
	assert.Equal(t, msg, buf2)
}

// TestNoise_LargeWrite 测试超过单帧上限的写入
func TestNoise_LargeWrite(t *testing.T) {
	serverID, _ := identity.Generate()
	clientID, _ := identity.Generate()
	serverTr, _ := New(serverID)
	clientTr, _ := New(clientID)

	sc, cc := net.Pipe()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	serverCh := make(chan secureResult, 1)
	go func() {
		conn, err := serverTr.SecureInbound(ctx, sc, "")
		serverCh <- secureResult{conn, err}
	}()
	cconn, err := clientTr.SecureOutbound(ctx, cc, "")
	require.NoError(t, err)
	sr := <-serverCh
	require.NoError(t, sr.err)

	// 2.5 帧的载荷被切分重组
	payload := bytes.Repeat([]byte{0xAB}, maxPlaintextLen*2+maxPlaintextLen/2)
	go func() {
		n, werr := cconn.Write(payload)
		assert.NoError(t, werr)
		assert.Equal(t, len(payload), n)
	}()

	got := make([]byte, len(payload))
	deadline := time.Now().Add(5 * time.Second)
	read := 0
	for read < len(payload) && time.Now().Before(deadline) {
		n, rerr := sr.conn.Read(got[read:])
		require.NoError(t, rerr)
		read += n
	}
	assert.Equal(t, len(payload), read)
	assert.Equal(t, payload, got)
}

// TestNoise_PeerIDMismatch 测试期望身份不符时握手失败
func TestNoise_PeerIDMismatch(t *testing.T) {
	serverID, _ := identity.Generate()
	clientID, _ := identity.Generate()
	otherID, _ := identity.Generate()

	serverTr, _ := New(serverID)
	clientTr, _ := New(clientID)

	sc, cc := net.Pipe()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go func() {
		serverTr.SecureInbound(ctx, sc, "")
	}()

	// 期望的是 otherID，实际对端是 serverID
	_, err := clientTr.SecureOutbound(ctx, cc, otherID.PeerID())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPeerIDMismatch)
}

// TestNoise_ContextCancel 测试 ctx 取消打断握手
func TestNoise_ContextCancel(t *testing.T) {
	serverID, _ := identity.Generate()
	serverTr, _ := New(serverID)

	sc, _ := net.Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	// 对端沉默，握手阻塞在读；取消后立即返回
	_, err := serverTr.SecureInbound(ctx, sc, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
