package muxer

import (
	"errors"

	"github.com/libp2p/go-yamux/v5"
)

var (
	// ErrStreamReset 流被重置错误
	ErrStreamReset = errors.New("stream reset")

	// ErrConnClosed 连接已关闭错误
	ErrConnClosed = errors.New("connection closed")
)

// parseError 转换 yamux 错误为标准错误
func parseError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, yamux.ErrStreamReset) {
		return ErrStreamReset
	}

	if errors.Is(err, yamux.ErrSessionShutdown) {
		return ErrConnClosed
	}

	return err
}
