package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
)

type testEvent struct {
	Seq int
}

// TestBus_ImplementsInterface 验证 Bus 实现接口
func TestBus_ImplementsInterface(t *testing.T) {
	var _ pkgif.EventBus = (*Bus)(nil)
}

// TestBus_SubscribeEmit 测试订阅与发射
func TestBus_SubscribeEmit(t *testing.T) {
	bus := NewBus()

	sub, err := bus.Subscribe(new(testEvent))
	require.NoError(t, err)
	defer sub.Close()

	em, err := bus.Emitter(new(testEvent))
	require.NoError(t, err)
	defer em.Close()

	require.NoError(t, em.Emit(testEvent{Seq: 1}))

	select {
	case evt := <-sub.Out():
		assert.Equal(t, 1, evt.(testEvent).Seq)
	case <-time.After(time.Second):
		t.Fatal("event not received")
	}
}

// TestBus_NonPointerType 验证非指针类型报错
func TestBus_NonPointerType(t *testing.T) {
	bus := NewBus()

	_, err := bus.Subscribe(testEvent{})
	assert.ErrorIs(t, err, ErrNonPointerType)

	_, err = bus.Emitter(testEvent{})
	assert.ErrorIs(t, err, ErrNonPointerType)

	_, err = bus.Subscribe(nil)
	assert.ErrorIs(t, err, ErrInvalidEventType)
}

// TestBus_MultipleSubscribers 测试多订阅者
func TestBus_MultipleSubscribers(t *testing.T) {
	bus := NewBus()

	sub1, err := bus.Subscribe(new(testEvent))
	require.NoError(t, err)
	defer sub1.Close()
	sub2, err := bus.Subscribe(new(testEvent))
	require.NoError(t, err)
	defer sub2.Close()

	em, err := bus.Emitter(new(testEvent))
	require.NoError(t, err)
	defer em.Close()

	require.NoError(t, em.Emit(testEvent{Seq: 7}))

	for _, sub := range []pkgif.Subscription{sub1, sub2} {
		select {
		case evt := <-sub.Out():
			assert.Equal(t, 7, evt.(testEvent).Seq)
		case <-time.After(time.Second):
			t.Fatal("subscriber missed event")
		}
	}
}

// TestBus_Stateful 测试有状态发射器
//
// 新订阅者立即收到最后一个事件的补发。
func TestBus_Stateful(t *testing.T) {
	bus := NewBus()

	em, err := bus.Emitter(new(testEvent), pkgif.Stateful())
	require.NoError(t, err)
	defer em.Close()

	require.NoError(t, em.Emit(testEvent{Seq: 42}))

	sub, err := bus.Subscribe(new(testEvent))
	require.NoError(t, err)
	defer sub.Close()

	select {
	case evt := <-sub.Out():
		assert.Equal(t, 42, evt.(testEvent).Seq)
	case <-time.After(time.Second):
		t.Fatal("stateful replay not received")
	}
}

// TestBus_BufSize 测试缓冲区选项与慢消费者丢弃
func TestBus_BufSize(t *testing.T) {
	bus := NewBus()

	sub, err := bus.Subscribe(new(testEvent), pkgif.BufSize(1))
	require.NoError(t, err)
	defer sub.Close()

	em, err := bus.Emitter(new(testEvent))
	require.NoError(t, err)
	defer em.Close()

	// 第二个事件被丢弃而不是阻塞
	require.NoError(t, em.Emit(testEvent{Seq: 1}))
	require.NoError(t, em.Emit(testEvent{Seq: 2}))

	evt := <-sub.Out()
	assert.Equal(t, 1, evt.(testEvent).Seq)

	select {
	case <-sub.Out():
		t.Fatal("dropped event should not arrive")
	case <-time.After(50 * time.Millisecond):
	}
}

// TestSubscription_CloseIdempotent 验证订阅关闭的幂等性
func TestSubscription_CloseIdempotent(t *testing.T) {
	bus := NewBus()

	sub, err := bus.Subscribe(new(testEvent))
	require.NoError(t, err)

	assert.NoError(t, sub.Close())
	assert.NoError(t, sub.Close())
}

// TestEmitter_EmitAfterClose 验证关闭后发射报错
func TestEmitter_EmitAfterClose(t *testing.T) {
	bus := NewBus()

	em, err := bus.Emitter(new(testEvent))
	require.NoError(t, err)

	require.NoError(t, em.Close())
	assert.Error(t, em.Emit(testEvent{}))
}
