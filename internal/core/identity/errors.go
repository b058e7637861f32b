// Package identity 实现 Ed25519 节点身份
package identity

import "errors"

var (
	// ErrInvalidSeed 种子长度错误
	ErrInvalidSeed = errors.New("identity: seed must be 32 bytes")
)
