// Package noise 实现 Noise 协议安全传输
package noise

import "errors"

var (
	// ErrNilIdentity 身份为空
	ErrNilIdentity = errors.New("noise: identity is nil")

	// ErrPeerIDMismatch 握手结果与期望的 PeerID 不符
	ErrPeerIDMismatch = errors.New("noise: peer id mismatch")

	// ErrInvalidPayload 握手 payload 非法
	ErrInvalidPayload = errors.New("noise: invalid handshake payload")

	// ErrInvalidSignature 静态密钥签名验证失败
	ErrInvalidSignature = errors.New("noise: static key signature verification failed")

	// ErrMsgTooLarge 消息超出单帧上限
	ErrMsgTooLarge = errors.New("noise: message exceeds maximum frame size")
)
