// Package tcp 提供基于 TCP 的传输层实现
//
// # 概述
//
// TCP 传输只负责建立/接受原始连接并包装为 MultiaddrConn；
// 认证、加密与多路复用由升级器完成。
//
// 拨号支持 ctx 取消：ctx 在 connect 完成前失效时，
// 进行中的 socket 被销毁，拨号以 ctx 错误返回。
// 拨号事件（connect/error/timeout/abort）上报给指标协作方。
//
// # 地址格式
//
//	/ip4/<host>/tcp/<port>[/p2p/<peerID>]
//	/ip6/<host>/tcp/<port>[/p2p/<peerID>]
package tcp
