package tcp

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
	"github.com/twiss/go-p2p/pkg/types"
)

// recordingMetrics 记录指标调用
type recordingMetrics struct {
	mu      sync.Mutex
	conns   int
	dialer  []string
	streams int
}

var _ pkgif.Metrics = (*recordingMetrics)(nil)

func (m *recordingMetrics) TrackMultiaddrConn(pkgif.MultiaddrConn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns++
}

func (m *recordingMetrics) TrackProtocolStream(pkgif.Stream) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streams++
}

func (m *recordingMetrics) DialerEvent(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dialer = append(m.dialer, event)
}

func (m *recordingMetrics) snapshot() (int, []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conns, append([]string(nil), m.dialer...)
}

// TestTransport_ListenDial 测试监听与拨号
func TestTransport_ListenDial(t *testing.T) {
	metrics := &recordingMetrics{}
	tr := NewTransport(metrics)
	defer tr.Close()

	l, err := tr.Listen(types.MustParseMultiaddr("/ip4/127.0.0.1/tcp/0"))
	require.NoError(t, err)
	defer l.Close()

	assert.False(t, l.Multiaddr().IsEmpty())

	acceptCh := make(chan pkgif.MultiaddrConn, 1)
	go func() {
		conn, err := l.Accept()
		if err == nil {
			acceptCh <- conn
		}
	}()

	var progress []types.ProgressEvent
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	dialed, err := tr.Dial(ctx, l.Multiaddr(), pkgif.DialOpts{
		OnProgress: func(evt types.ProgressEvent) {
			progress = append(progress, evt)
		},
	})
	require.NoError(t, err)
	defer dialed.Close()

	var accepted pkgif.MultiaddrConn
	select {
	case accepted = <-acceptCh:
	case <-time.After(5 * time.Second):
		t.Fatal("accept timed out")
	}
	defer accepted.Close()

	// timeline 与地址标注
	assert.False(t, dialed.Timeline().Open.IsZero())
	assert.Equal(t, l.Multiaddr(), dialed.RemoteMultiaddr())
	assert.False(t, accepted.RemoteMultiaddr().IsEmpty())

	// 进度与指标事件
	assert.Equal(t, []types.ProgressEvent{types.ProgressTCPOpenConnection}, progress)
	conns, dialer := metrics.snapshot()
	assert.Equal(t, 2, conns)
	assert.Equal(t, []string{pkgif.DialerEventConnect}, dialer)

	// 数据往返
	go dialed.Write([]byte("ping"))
	buf := make([]byte, 4)
	accepted.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, err = io.ReadFull(accepted, buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf))
}

// TestTransport_DialError 测试拨号失败的指标事件
func TestTransport_DialError(t *testing.T) {
	metrics := &recordingMetrics{}
	tr := NewTransport(metrics)
	defer tr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// 未监听的端口：连接被拒绝
	_, err := tr.Dial(ctx, types.MustParseMultiaddr("/ip4/127.0.0.1/tcp/1"), pkgif.DialOpts{})
	require.Error(t, err)

	_, dialer := metrics.snapshot()
	require.Len(t, dialer, 1)
	assert.Contains(t, []string{pkgif.DialerEventError, pkgif.DialerEventTimeout}, dialer[0])
}

// TestTransport_DialCancelled 测试 ctx 取消销毁进行中的拨号
func TestTransport_DialCancelled(t *testing.T) {
	metrics := &recordingMetrics{}
	tr := NewTransport(metrics)
	defer tr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.Dial(ctx, types.MustParseMultiaddr("/ip4/127.0.0.1/tcp/1"), pkgif.DialOpts{})
	require.Error(t, err)

	_, dialer := metrics.snapshot()
	require.Len(t, dialer, 1)
	assert.Equal(t, pkgif.DialerEventAbort, dialer[0])
}

// TestTransport_CanDial 测试地址支持判断
func TestTransport_CanDial(t *testing.T) {
	tr := NewTransport(nil)
	defer tr.Close()

	assert.True(t, tr.CanDial("/ip4/127.0.0.1/tcp/4001"))
	assert.False(t, tr.CanDial("/ip4/127.0.0.1/udp/4001"))
}

// TestTransport_Closed 测试关闭后的行为
func TestTransport_Closed(t *testing.T) {
	tr := NewTransport(nil)

	l, err := tr.Listen(types.MustParseMultiaddr("/ip4/127.0.0.1/tcp/0"))
	require.NoError(t, err)

	require.NoError(t, tr.Close())

	// 监听器随传输关闭
	_, err = l.Accept()
	assert.Error(t, err)

	_, err = tr.Dial(context.Background(), l.Multiaddr(), pkgif.DialOpts{})
	assert.ErrorIs(t, err, ErrTransportClosed)

	_, err = tr.Listen(types.MustParseMultiaddr("/ip4/127.0.0.1/tcp/0"))
	assert.ErrorIs(t, err, ErrTransportClosed)
}

// TestConn_OnCloseOnce 验证 close 回调恰好触发一次
func TestConn_OnCloseOnce(t *testing.T) {
	tr := NewTransport(nil)
	defer tr.Close()

	l, err := tr.Listen(types.MustParseMultiaddr("/ip4/127.0.0.1/tcp/0"))
	require.NoError(t, err)
	defer l.Close()

	go func() {
		conn, err := l.Accept()
		if err == nil {
			defer conn.Close()
			io.Copy(io.Discard, conn)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	dialed, err := tr.Dial(ctx, l.Multiaddr(), pkgif.DialOpts{})
	require.NoError(t, err)

	var calls int
	dialed.SetOnClose(func(closedAt time.Time) {
		calls++
		assert.False(t, closedAt.IsZero())
	})

	require.NoError(t, dialed.Close())
	assert.NoError(t, dialed.Close())
	dialed.(*Conn).Abort(errors.New("too late"))

	assert.Equal(t, 1, calls)
	assert.False(t, dialed.Timeline().Close.IsZero())
	assert.NoError(t, dialed.(*Conn).AbortCause())
}

// TestConn_AbortCause 验证中止原因的记录
func TestConn_AbortCause(t *testing.T) {
	tr := NewTransport(nil)
	defer tr.Close()

	l, err := tr.Listen(types.MustParseMultiaddr("/ip4/127.0.0.1/tcp/0"))
	require.NoError(t, err)
	defer l.Close()

	go l.Accept()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	dialed, err := tr.Dial(ctx, l.Multiaddr(), pkgif.DialOpts{})
	require.NoError(t, err)

	cause := errors.New("policy violation")
	require.NoError(t, dialed.Abort(cause))
	assert.ErrorIs(t, dialed.(*Conn).AbortCause(), cause)
}
