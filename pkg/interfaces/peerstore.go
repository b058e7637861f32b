// Package interfaces 定义 go-p2p 公共接口
//
// 本文件定义节点信息存储接口。
package interfaces

import "github.com/twiss/go-p2p/pkg/types"

// PeerStore 定义节点信息存储接口
//
// 升级器只使用协议记录：每次流协商成功后合并对端支持的协议。
type PeerStore interface {
	// AddProtocols 合并节点支持的协议（幂等、只增）
	AddProtocols(peer types.PeerID, protocols ...types.ProtocolID) error

	// GetProtocols 返回节点已知支持的协议
	GetProtocols(peer types.PeerID) ([]types.ProtocolID, error)
}
