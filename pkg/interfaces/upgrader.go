// Package interfaces 定义 go-p2p 公共接口
//
// 本文件定义升级器接口。
package interfaces

import (
	"context"

	"github.com/twiss/go-p2p/pkg/types"
)

// Upgrader 连接升级器接口
//
// Upgrader 将原始 MultiaddrConn 升级为认证、加密、多路复用的连接。
// 升级流程：
//  1. 准入（ConnManager / ConnGater）
//  2. 可选 PSK 保护（Protector）
//  3. 安全协议协商 + 握手（multistream-select + SecureTransport）
//  4. 门控（握手后）
//  5. 多路复用器协商与安装
//  6. 门控（升级后）、连接对象组装与事件派发
//
// 任一阶段失败都会关闭整条连接并将错误返回给调用方。
type Upgrader interface {
	// UpgradeInbound 升级入站连接
	//
	// 整个入站升级受 InboundUpgradeTimeout 约束；超时将中止底层连接。
	// 无论成败，ConnManager.AfterUpgradeInbound 在每条退出路径上
	// 恰好调用一次。
	UpgradeInbound(ctx context.Context, maConn MultiaddrConn, opts UpgradeOpts) (Connection, error)

	// UpgradeOutbound 升级出站连接
	//
	// 超时依赖调用方的 ctx；失败时底层连接携带失败原因中止。
	UpgradeOutbound(ctx context.Context, maConn MultiaddrConn, opts UpgradeOpts) (Connection, error)
}

// UpgradeOpts 单次升级选项
type UpgradeOpts struct {
	// RemotePeer 期望的远端节点 ID（出站已知时提供）
	RemotePeer types.PeerID

	// SkipEncryption 跳过加密阶段
	//
	// 此时对端身份取自多地址的 /p2p/ 组件（入站）或
	// RemotePeer/多地址（出站），安全协议名记录为 "native"。
	SkipEncryption bool

	// SkipProtection 跳过 PSK 保护阶段
	SkipProtection bool

	// MuxerFactory 显式指定多路复用器，跳过协商
	MuxerFactory StreamMuxerFactory

	// Limits 标记为受限连接的限额
	Limits *types.ConnLimits

	// OnProgress 进度事件回调（可为 nil）
	OnProgress func(types.ProgressEvent)
}

// Protector 预共享密钥连接保护器
//
// 配置后（且未 SkipProtection），升级器在所有协商之前
// 用它包装原始连接。
type Protector interface {
	// Protect 将原始连接包装为 PSK 隧道
	Protect(maConn MultiaddrConn) (MultiaddrConn, error)
}
