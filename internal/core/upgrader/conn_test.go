package upgrader

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
	"github.com/twiss/go-p2p/pkg/types"
)

// TestConn_CloseIdempotent 验证关闭的幂等性
func TestConn_CloseIdempotent(t *testing.T) {
	server := newTestPeer(t, nil)
	client := newTestPeer(t, nil)

	pair := upgradePair(t, server, client,
		pkgif.UpgradeOpts{},
		pkgif.UpgradeOpts{RemotePeer: server.id.PeerID()})

	require.NoError(t, pair.sconn.Close())
	assert.Equal(t, types.StatusClosed, pair.sconn.Status())

	// 重复关闭是成功的 no-op
	assert.NoError(t, pair.sconn.Close())

	// 关闭后中止也是 no-op
	pair.sconn.Abort(errors.New("too late"))
	assert.NoError(t, pair.sma.AbortCause())
}

// TestConn_ConcurrentClose 验证并发关闭只派发一次 close 事件
func TestConn_ConcurrentClose(t *testing.T) {
	server := newTestPeer(t, nil)
	client := newTestPeer(t, nil)

	closed, err := server.bus.Subscribe(new(pkgif.EvtConnectionClosed))
	require.NoError(t, err)

	pair := upgradePair(t, server, client,
		pkgif.UpgradeOpts{},
		pkgif.UpgradeOpts{RemotePeer: server.id.PeerID()})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, pair.sconn.Close())
		}()
	}
	wg.Wait()

	events := 0
	deadline := time.After(300 * time.Millisecond)
	for done := false; !done; {
		select {
		case <-closed.Out():
			events++
		case <-deadline:
			done = true
		}
	}
	assert.Equal(t, 1, events)
}

// TestConn_Abort 验证中止记录失败原因并关闭连接
func TestConn_Abort(t *testing.T) {
	server := newTestPeer(t, nil)
	client := newTestPeer(t, nil)

	pair := upgradePair(t, server, client,
		pkgif.UpgradeOpts{},
		pkgif.UpgradeOpts{RemotePeer: server.id.PeerID()})

	cause := errors.New("remote misbehaved")
	pair.cconn.Abort(cause)

	assert.Equal(t, types.StatusClosed, pair.cconn.Status())
	assert.ErrorIs(t, pair.cma.AbortCause(), cause)
	assert.False(t, pair.cconn.Timeline().Close.IsZero())
}

// TestConn_RemoteCloseTriggersLocalClose 验证对端关闭的传播
//
// 对端整体关闭后，本端接受循环观察到会话终止并关闭连接，
// close 事件照常派发一次。
func TestConn_RemoteCloseTriggersLocalClose(t *testing.T) {
	server := newTestPeer(t, nil)
	client := newTestPeer(t, nil)

	closed, err := server.bus.Subscribe(new(pkgif.EvtConnectionClosed))
	require.NoError(t, err)

	pair := upgradePair(t, server, client,
		pkgif.UpgradeOpts{},
		pkgif.UpgradeOpts{RemotePeer: server.id.PeerID()})

	require.NoError(t, pair.cconn.Close())

	select {
	case <-closed.Out():
	case <-time.After(5 * time.Second):
		t.Fatal("server connection did not observe remote close")
	}
	assert.Equal(t, types.StatusClosed, pair.sconn.Status())
}

// TestConn_Limits 验证限额字段的透传
func TestConn_Limits(t *testing.T) {
	server := newTestPeer(t, nil)
	client := newTestPeer(t, nil)

	limits := &types.ConnLimits{Bytes: 1024}
	pair := upgradePair(t, server, client,
		pkgif.UpgradeOpts{Limits: limits},
		pkgif.UpgradeOpts{RemotePeer: server.id.PeerID()})

	assert.Equal(t, limits, pair.sconn.Limits())
	assert.Nil(t, pair.cconn.Limits())
}
