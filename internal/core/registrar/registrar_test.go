package registrar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
	"github.com/twiss/go-p2p/pkg/types"
)

func noopHandler(pkgif.Stream) {}

// TestRegistrar_SetAndGet 测试注册与查询
func TestRegistrar_SetAndGet(t *testing.T) {
	r := New()

	r.SetStreamHandler("/echo/1.0.0", noopHandler, pkgif.HandlerOptions{
		MaxInboundStreams: 4,
	})

	entry, err := r.Handler("/echo/1.0.0")
	require.NoError(t, err)
	assert.NotNil(t, entry.Handler)
	assert.Equal(t, 4, entry.Options.MaxInboundStreams)
}

// TestRegistrar_UnhandledProtocol 验证未注册协议的错误
func TestRegistrar_UnhandledProtocol(t *testing.T) {
	r := New()

	_, err := r.Handler("/nope/1.0.0")
	assert.ErrorIs(t, err, pkgif.ErrUnhandledProtocol)
}

// TestRegistrar_ProtocolOrder 验证协议列表保持注册顺序
func TestRegistrar_ProtocolOrder(t *testing.T) {
	r := New()

	r.SetStreamHandler("/c/1.0.0", noopHandler, pkgif.HandlerOptions{})
	r.SetStreamHandler("/a/1.0.0", noopHandler, pkgif.HandlerOptions{})
	r.SetStreamHandler("/b/1.0.0", noopHandler, pkgif.HandlerOptions{})

	assert.Equal(t, []types.ProtocolID{"/c/1.0.0", "/a/1.0.0", "/b/1.0.0"}, r.Protocols())

	// 重复注册覆盖但不改变顺序
	r.SetStreamHandler("/a/1.0.0", noopHandler, pkgif.HandlerOptions{MaxInboundStreams: 9})
	assert.Equal(t, []types.ProtocolID{"/c/1.0.0", "/a/1.0.0", "/b/1.0.0"}, r.Protocols())

	entry, err := r.Handler("/a/1.0.0")
	require.NoError(t, err)
	assert.Equal(t, 9, entry.Options.MaxInboundStreams)
}

// TestRegistrar_Remove 测试注销
func TestRegistrar_Remove(t *testing.T) {
	r := New()

	r.SetStreamHandler("/a/1.0.0", noopHandler, pkgif.HandlerOptions{})
	r.SetStreamHandler("/b/1.0.0", noopHandler, pkgif.HandlerOptions{})

	r.RemoveStreamHandler("/a/1.0.0")
	assert.Equal(t, []types.ProtocolID{"/b/1.0.0"}, r.Protocols())

	_, err := r.Handler("/a/1.0.0")
	assert.ErrorIs(t, err, pkgif.ErrUnhandledProtocol)

	// 注销不存在的协议是 no-op
	r.RemoveStreamHandler("/a/1.0.0")
}
