// Package interfaces 定义 go-p2p 公共接口
//
// 本包只含接口与小型选项结构，不含实现。实现位于 internal/core/*。
// 依赖方向：interfaces → types，实现包 → interfaces。
//
// 升级管线涉及的接口：
//
//	Transport ──► MultiaddrConn ──► Upgrader ──► Connection ──► Stream
//	                                  │
//	                ConnManager / ConnGater / Protector
//	                SecureTransport / StreamMuxerFactory
//	                Registrar / PeerStore / EventBus / Metrics
package interfaces
