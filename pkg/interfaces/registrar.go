// Package interfaces 定义 go-p2p 公共接口
//
// 本文件定义协议处理器注册表接口。
package interfaces

import (
	"errors"

	"github.com/twiss/go-p2p/pkg/types"
)

// ErrUnhandledProtocol 协议未注册
//
// Registrar.Handler 对未注册协议返回此错误；
// 升级器的流上限解析将其与其他错误区分对待。
var ErrUnhandledProtocol = errors.New("protocol not registered")

// StreamHandler 协议流处理器
//
// 入站流完成协议协商与上限检查后投递到这里。
// 处理器内部的错误由处理器自行负责。
type StreamHandler func(stream Stream)

// HandlerOptions 处理器注册选项
type HandlerOptions struct {
	// MaxInboundStreams 每连接该协议的入站流上限（0 表示默认值）
	MaxInboundStreams int

	// MaxOutboundStreams 每连接该协议的出站流上限（0 表示默认值）
	MaxOutboundStreams int

	// RunOnLimitedConnection 允许在受限连接上路由
	RunOnLimitedConnection bool
}

// RegisteredHandler 注册表条目
type RegisteredHandler struct {
	// Handler 流处理器
	Handler StreamHandler

	// Options 注册选项
	Options HandlerOptions
}

// Registrar 定义协议处理器注册表接口
type Registrar interface {
	// Protocols 返回当前注册的协议列表（注册顺序）
	Protocols() []types.ProtocolID

	// Handler 返回协议对应的注册条目
	//
	// 未注册时返回 ErrUnhandledProtocol。
	Handler(proto types.ProtocolID) (RegisteredHandler, error)
}
