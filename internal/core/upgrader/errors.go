// Package upgrader 实现连接升级器
package upgrader

import (
	"errors"
	"fmt"

	"github.com/twiss/go-p2p/pkg/types"
)

var (
	// ErrNilIdentity 身份为空
	ErrNilIdentity = errors.New("upgrader: identity is nil")

	// ErrNilRegistrar 注册表为空
	ErrNilRegistrar = errors.New("upgrader: registrar is nil")

	// ErrConnectionDenied 准入管理器拒绝入站连接
	ErrConnectionDenied = errors.New("upgrader: connection denied by connection manager")

	// ErrInvalidMultiaddr 跳过加密的入站连接多地址缺少 /p2p/ 组件
	ErrInvalidMultiaddr = errors.New("upgrader: multiaddr does not carry a peer id")

	// ErrInvalidPeerID 跳过加密的出站连接未提供对端身份
	ErrInvalidPeerID = errors.New("upgrader: remote peer id required when skipping encryption")

	// ErrNoEncrypters 未配置任何安全传输
	ErrNoEncrypters = errors.New("no connection encrypters configured")

	// ErrMuxerUnavailable 多路复用器协商失败，或在未复用连接上开流
	ErrMuxerUnavailable = errors.New("upgrader: stream muxer unavailable")

	// ErrLimitedConnection 处理器未选择加入受限连接
	ErrLimitedConnection = errors.New("upgrader: handler does not run on limited connections")

	// ErrUpgradeTimeout 入站升级超时
	ErrUpgradeTimeout = errors.New("upgrader: inbound upgrade timed out")

	// ErrConnectionClosed 连接已不处于打开状态
	ErrConnectionClosed = errors.New("upgrader: connection is not open")

	// ErrNoProtocols 未提供协议列表
	ErrNoProtocols = errors.New("upgrader: no protocols provided")
)

// ConnectionInterceptedError 门控器在某检查点拒绝了连接
type ConnectionInterceptedError struct {
	// Checkpoint 拒绝连接的门控方法名
	Checkpoint string
}

// Error 实现 error 接口
func (e *ConnectionInterceptedError) Error() string {
	return fmt.Sprintf("upgrader: connection intercepted by gater (%s)", e.Checkpoint)
}

// EncryptionFailedError 加密阶段失败
type EncryptionFailedError struct {
	// Err 底层错误
	Err error
}

// Error 实现 error 接口
func (e *EncryptionFailedError) Error() string {
	return fmt.Sprintf("upgrader: encryption failed: %v", e.Err)
}

// Unwrap 返回底层错误
func (e *EncryptionFailedError) Unwrap() error {
	return e.Err
}

// TooManyInboundStreamsError 协议入站流超出上限
type TooManyInboundStreamsError struct {
	// Protocol 触发上限的协议
	Protocol types.ProtocolID

	// Limit 该协议的入站流上限
	Limit int
}

// Error 实现 error 接口
func (e *TooManyInboundStreamsError) Error() string {
	return fmt.Sprintf("upgrader: too many inbound streams for protocol %s (limit %d)", e.Protocol, e.Limit)
}

// TooManyOutboundStreamsError 协议出站流超出上限
type TooManyOutboundStreamsError struct {
	// Protocol 触发上限的协议
	Protocol types.ProtocolID

	// Count 当前出站流数量
	Count int

	// Limit 该协议的出站流上限
	Limit int
}

// Error 实现 error 接口
func (e *TooManyOutboundStreamsError) Error() string {
	return fmt.Sprintf("upgrader: too many outbound streams for protocol %s (%d >= %d)", e.Protocol, e.Count, e.Limit)
}
