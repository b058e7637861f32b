// Package identity 实现 Ed25519 节点身份
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
	"github.com/twiss/go-p2p/pkg/types"
)

// 确保实现了接口
var _ pkgif.Identity = (*Identity)(nil)

// Identity Ed25519 节点身份
//
// PeerID 由公钥派生（Base58(SHA-256(pubkey))），
// 安全传输用私钥签名握手载荷。
type Identity struct {
	priv   ed25519.PrivateKey
	pub    ed25519.PublicKey
	peerID types.PeerID
}

// Generate 生成新身份
func Generate() (*Identity, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}
	return &Identity{
		priv:   priv,
		pub:    pub,
		peerID: types.DerivePeerID(pub),
	}, nil
}

// FromSeed 从 32 字节种子恢复身份
//
// 用于从持久化的密钥材料重建确定性身份。
func FromSeed(seed []byte) (*Identity, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, ErrInvalidSeed
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return &Identity{
		priv:   priv,
		pub:    pub,
		peerID: types.DerivePeerID(pub),
	}, nil
}

// PeerID 返回本地节点 ID
func (id *Identity) PeerID() types.PeerID {
	return id.peerID
}

// PublicKey 返回身份公钥
func (id *Identity) PublicKey() []byte {
	out := make([]byte, len(id.pub))
	copy(out, id.pub)
	return out
}

// Sign 用身份私钥签名
func (id *Identity) Sign(msg []byte) ([]byte, error) {
	return ed25519.Sign(id.priv, msg), nil
}

// Verify 验证 Ed25519 签名
//
// pubKey 为 32 字节公钥；签名非法或公钥长度错误时返回 false。
func Verify(pubKey, msg, sig []byte) bool {
	if len(pubKey) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pubKey), msg, sig)
}
