// Package peerstore 实现节点协议簿
package peerstore

import (
	"sync"

	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
	"github.com/twiss/go-p2p/pkg/types"
)

// 确保实现了接口
var _ pkgif.PeerStore = (*ProtoBook)(nil)

// ProtoBook 协议簿
//
// 记录各节点支持的协议。合并只增不减且幂等：
// 重复协商同一协议不会产生重复条目。
type ProtoBook struct {
	mu sync.RWMutex

	// protocols 协议映射
	protocols map[types.PeerID][]types.ProtocolID
}

// New 创建协议簿
func New() *ProtoBook {
	return &ProtoBook{
		protocols: make(map[types.PeerID][]types.ProtocolID),
	}
}

// GetProtocols 获取节点支持的协议
func (pb *ProtoBook) GetProtocols(peer types.PeerID) ([]types.ProtocolID, error) {
	pb.mu.RLock()
	defer pb.mu.RUnlock()

	protocols := pb.protocols[peer]
	if protocols == nil {
		return nil, nil
	}

	// 返回副本
	result := make([]types.ProtocolID, len(protocols))
	copy(result, protocols)

	return result, nil
}

// AddProtocols 合并节点支持的协议
func (pb *ProtoBook) AddProtocols(peer types.PeerID, protocols ...types.ProtocolID) error {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	existing := pb.protocols[peer]

	// 避免重复
	for _, proto := range protocols {
		found := false
		for _, ep := range existing {
			if ep == proto {
				found = true
				break
			}
		}
		if !found {
			existing = append(existing, proto)
		}
	}

	pb.protocols[peer] = existing

	return nil
}

// RemoveProtocols 移除节点协议记录
func (pb *ProtoBook) RemoveProtocols(peer types.PeerID, protocols ...types.ProtocolID) error {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	existing := pb.protocols[peer]
	if existing == nil {
		return nil
	}

	toRemove := make(map[types.ProtocolID]struct{})
	for _, proto := range protocols {
		toRemove[proto] = struct{}{}
	}

	filtered := make([]types.ProtocolID, 0, len(existing))
	for _, proto := range existing {
		if _, ok := toRemove[proto]; !ok {
			filtered = append(filtered, proto)
		}
	}

	pb.protocols[peer] = filtered

	return nil
}
