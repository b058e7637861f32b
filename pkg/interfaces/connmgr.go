// Package interfaces 定义 go-p2p 公共接口
//
// 本文件定义连接准入与门控接口。
package interfaces

import "github.com/twiss/go-p2p/pkg/types"

// ConnManager 定义连接准入接口
//
// 升级器在入站升级开始时申请配额，结束时（无论成败）释放。
type ConnManager interface {
	// AcceptIncomingConnection 申请入站升级配额
	//
	// 返回 false 表示拒绝，升级以 ErrConnectionDenied 失败。
	AcceptIncomingConnection(maConn MultiaddrConn) bool

	// AfterUpgradeInbound 释放入站升级配额
	//
	// 每次 AcceptIncomingConnection 返回 true 后，
	// 无论升级成败都必须恰好调用一次。
	AfterUpgradeInbound()
}

// ConnGater 定义连接门控接口
//
// 四个检查点按升级顺序调用；返回 false 表示拒绝，
// 升级以 ConnectionInterceptedError 失败且不再调用后续检查点。
// nil 门控器等价于全部放行。
type ConnGater interface {
	// InterceptAccept 入站连接握手前检查
	InterceptAccept(maConn MultiaddrConn) bool

	// InterceptDial 出站连接握手前检查（仅当对端 ID 已知）
	InterceptDial(peer types.PeerID, maConn MultiaddrConn) bool

	// InterceptSecured 握手完成后检查
	InterceptSecured(dir types.Direction, peer types.PeerID, maConn MultiaddrConn) bool

	// InterceptUpgraded 多路复用安装后检查
	InterceptUpgraded(dir types.Direction, peer types.PeerID, maConn MultiaddrConn) bool
}
