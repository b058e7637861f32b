// Package tcp 提供基于 TCP 的传输层实现
package tcp

import "errors"

var (
	// ErrTransportClosed 传输已关闭
	ErrTransportClosed = errors.New("tcp: transport closed")

	// ErrListenerClosed 监听器已关闭
	ErrListenerClosed = errors.New("tcp: listener closed")

	// ErrNotTCPAddr 地址不是 TCP multiaddr
	ErrNotTCPAddr = errors.New("tcp: not a tcp multiaddr")
)
