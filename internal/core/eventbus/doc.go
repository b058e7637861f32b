// Package eventbus 实现事件总线
//
// # 概述
//
// 按事件类型分发的进程内事件总线。订阅者各持有缓冲通道，
// 发射永不阻塞：缓冲区满时丢弃事件并累计慢消费者计数。
//
// 升级管线通过它派发连接生命周期事件：
//
//	sub, _ := bus.Subscribe(new(pkgif.EvtConnectionOpened))
//	for evt := range sub.Out() {
//	    conn := evt.(pkgif.EvtConnectionOpened).Conn
//	    ...
//	}
//
// # 有状态模式
//
// 用 pkgif.Stateful() 创建的发射器保留最后一个事件，
// 新订阅者立即收到一次补发。
package eventbus
