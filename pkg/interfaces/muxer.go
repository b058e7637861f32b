// Package interfaces 定义 go-p2p 公共接口
//
// 本文件定义流多路复用接口。
package interfaces

import (
	"context"
	"net"
	"time"

	"github.com/twiss/go-p2p/pkg/types"
)

// StreamMuxerFactory 定义流多路复用器工厂接口
//
// 每条连接通过工厂创建一个 MuxedConn。
type StreamMuxerFactory interface {
	// ID 返回多路复用协议标识
	ID() types.ProtocolID

	// NewConn 在网络连接上创建多路复用连接
	NewConn(conn net.Conn, isServer bool) (MuxedConn, error)
}

// MuxedConn 定义多路复用连接接口
//
// MuxedConn 允许单个 net.Conn 连接承载多个逻辑独立的双向字节流。
type MuxedConn interface {
	// OpenStream 打开新流
	OpenStream(ctx context.Context) (MuxedStream, error)

	// AcceptStream 接受对端打开的流
	//
	// 连接关闭后返回错误。
	AcceptStream() (MuxedStream, error)

	// Close 关闭连接及其所有流
	Close() error

	// IsClosed 检查连接是否已关闭
	IsClosed() bool
}

// MuxedStream 定义多路复用流接口
type MuxedStream interface {
	// Read 从流中读取数据
	Read(p []byte) (n int, err error)

	// Write 向流中写入数据
	Write(p []byte) (n int, err error)

	// Close 关闭流（正常关闭，等同于 CloseRead + CloseWrite）
	Close() error

	// CloseWrite 关闭写端，读端保持打开
	CloseWrite() error

	// CloseRead 关闭读端，写端保持打开
	CloseRead() error

	// Reset 重置流（异常关闭，通知对端放弃）
	Reset() error

	// SetDeadline 设置读写截止时间
	SetDeadline(t time.Time) error

	// SetReadDeadline 设置读截止时间
	SetReadDeadline(t time.Time) error

	// SetWriteDeadline 设置写截止时间
	SetWriteDeadline(t time.Time) error
}
