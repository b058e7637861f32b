// Package interfaces 定义 go-p2p 公共接口
//
// 本文件定义安全传输接口。
package interfaces

import (
	"context"
	"net"

	"github.com/twiss/go-p2p/pkg/types"
)

// SecureTransport 定义安全传输接口
//
// SecureTransport 提供连接加密和身份验证功能。
// 升级器按配置顺序通过 multistream-select 协商出其中一个，
// 再将控制权交给对应方向的握手方法。
type SecureTransport interface {
	// ID 返回安全协议标识
	ID() types.ProtocolID

	// SecureInbound 保护入站连接
	//
	// remotePeer 可为空（握手后确定）。
	SecureInbound(ctx context.Context, conn net.Conn, remotePeer types.PeerID) (SecureConn, error)

	// SecureOutbound 保护出站连接
	//
	// remotePeer 为期望的对端身份；握手结果不匹配时必须返回错误。
	SecureOutbound(ctx context.Context, conn net.Conn, remotePeer types.PeerID) (SecureConn, error)
}

// SecureConn 定义安全连接接口
type SecureConn interface {
	net.Conn

	// LocalPeer 返回本地节点 ID
	LocalPeer() types.PeerID

	// RemotePeer 返回已验证的远端节点 ID
	RemotePeer() types.PeerID

	// RemotePublicKey 返回远端身份公钥
	RemotePublicKey() []byte
}
