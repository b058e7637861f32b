// Package identity 实现 Ed25519 节点身份
//
// 身份是一对 Ed25519 密钥。PeerID 由公钥派生：
//
//	PeerID = Base58(SHA-256(pubkey))
//
// 安全传输（noise）用身份私钥签名握手载荷，
// 将临时的 Curve25519 静态密钥绑定到长期身份上。
package identity
