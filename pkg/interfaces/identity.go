// Package interfaces 定义 go-p2p 公共接口
//
// 本文件定义本地身份接口。
package interfaces

import "github.com/twiss/go-p2p/pkg/types"

// Identity 定义本地节点身份接口
//
// 身份是一对 Ed25519 密钥；PeerID 由公钥派生。
// 安全传输用它签名握手载荷，向对端证明静态密钥归属。
type Identity interface {
	// PeerID 返回本地节点 ID
	PeerID() types.PeerID

	// PublicKey 返回身份公钥（Ed25519，32 字节）
	PublicKey() []byte

	// Sign 用身份私钥签名
	Sign(msg []byte) ([]byte, error)
}
