// Package interfaces 定义 go-p2p 公共接口
//
// 本文件定义事件总线接口与连接生命周期事件。
package interfaces

// EventBus 定义事件总线接口
//
// 按事件类型（指针类型的元素类型）分发，订阅者各持有缓冲通道。
type EventBus interface {
	// Subscribe 订阅事件
	//
	// eventType 传入事件类型的指针零值，如 new(EvtConnectionOpened)。
	Subscribe(eventType interface{}, opts ...SubscriptionOpt) (Subscription, error)

	// Emitter 获取事件发射器
	Emitter(eventType interface{}, opts ...EmitterOpt) (Emitter, error)
}

// Subscription 事件订阅
type Subscription interface {
	// Out 返回事件通道
	Out() <-chan interface{}

	// Close 取消订阅
	Close() error
}

// Emitter 事件发射器
type Emitter interface {
	// Emit 发射事件（按值传入）
	Emit(evt interface{}) error

	// Close 关闭发射器
	Close() error
}

// SubscriptionOpt 订阅选项
type SubscriptionOpt func(interface{}) error

// EmitterOpt 发射选项
type EmitterOpt func(interface{}) error

// SubscriptionSettings 订阅设置
type SubscriptionSettings struct {
	// Buffer 订阅通道缓冲区大小
	Buffer int
}

// EmitterSettings 发射器设置
type EmitterSettings struct {
	// Stateful 有状态模式：新订阅者立即收到最后一个事件
	Stateful bool
}

// BufSize 设置订阅缓冲区大小
func BufSize(size int) SubscriptionOpt {
	return func(s interface{}) error {
		s.(*SubscriptionSettings).Buffer = size
		return nil
	}
}

// Stateful 设置发射器为有状态模式
func Stateful() EmitterOpt {
	return func(s interface{}) error {
		s.(*EmitterSettings).Stateful = true
		return nil
	}
}

// ============================================================================
//                              连接事件
// ============================================================================

// EvtConnectionOpened 连接升级成功事件
//
// 每条成功升级的连接恰好派发一次，先于该连接上任何流的交付。
type EvtConnectionOpened struct {
	// Conn 升级完成的连接
	Conn Connection
}

// EvtConnectionClosed 连接关闭事件
//
// 每条连接至多派发一次，且在底层传输关闭完成之后。
type EvtConnectionClosed struct {
	// Conn 已关闭的连接
	Conn Connection
}
