package connmgr

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
	"github.com/twiss/go-p2p/pkg/types"
)

// fakeMaConn 测试连接
type fakeMaConn struct {
	net.Conn
}

var _ pkgif.MultiaddrConn = (*fakeMaConn)(nil)

func (c *fakeMaConn) LocalMultiaddr() types.Multiaddr  { return "/ip4/127.0.0.1/tcp/1" }
func (c *fakeMaConn) RemoteMultiaddr() types.Multiaddr { return "/ip4/127.0.0.1/tcp/2" }
func (c *fakeMaConn) Timeline() *types.Timeline        { return &types.Timeline{} }
func (c *fakeMaConn) MarkUpgraded()                    {}
func (c *fakeMaConn) Abort(error) error                { return nil }
func (c *fakeMaConn) SetOnClose(func(time.Time))       {}
func (c *fakeMaConn) Close() error                     { return nil }

// TestManager_Quota 测试配额占用与释放
func TestManager_Quota(t *testing.T) {
	m := New(2)
	conn := &fakeMaConn{}

	assert.True(t, m.AcceptIncomingConnection(conn))
	assert.True(t, m.AcceptIncomingConnection(conn))
	assert.Equal(t, 2, m.Pending())

	// 配额已满
	assert.False(t, m.AcceptIncomingConnection(conn))

	m.AfterUpgradeInbound()
	assert.Equal(t, 1, m.Pending())
	assert.True(t, m.AcceptIncomingConnection(conn))
}

// TestManager_ReleaseUnderflow 验证多余释放不会下溢
func TestManager_ReleaseUnderflow(t *testing.T) {
	m := New(1)

	m.AfterUpgradeInbound()
	assert.Equal(t, 0, m.Pending())
}

// TestManager_DefaultLimit 验证默认配额
func TestManager_DefaultLimit(t *testing.T) {
	m := New(0)
	conn := &fakeMaConn{}

	for i := 0; i < DefaultMaxConcurrentInbound; i++ {
		assert.True(t, m.AcceptIncomingConnection(conn))
	}
	assert.False(t, m.AcceptIncomingConnection(conn))
}

// TestManager_SetLimit 测试运行时调整配额
func TestManager_SetLimit(t *testing.T) {
	m := New(1)
	conn := &fakeMaConn{}

	assert.True(t, m.AcceptIncomingConnection(conn))
	assert.False(t, m.AcceptIncomingConnection(conn))

	m.SetLimit(2)
	assert.True(t, m.AcceptIncomingConnection(conn))
}
