// Package noise 实现 Noise 协议安全传输
//
// # 概述
//
// 基于 Noise XX 模式提供相互认证和前向保密：
//
//	-> e                          (发起者发送临时公钥)
//	<- e, ee, s, es, payload      (响应者发送临时公钥、静态公钥、payload)
//	-> s, se, payload             (发起者发送静态公钥、payload)
//
// 静态密钥是传输构造时生成的 Curve25519 密钥对，
// payload 将它绑定到 Ed25519 身份：
//
//   - identity_key: Ed25519 身份公钥
//   - identity_sig: Sign("noise-p2p-static-key:" + curve25519_static_pubkey)
//
// 对端身份（PeerID）由 payload 中的身份公钥派生并验证；
// 出站时与期望的 PeerID 不符则握手失败。
//
// # 传输格式
//
// 握手消息与传输消息都采用 2 字节大端长度前缀分帧，
// 单条消息密文不超过 65535 字节。
//
// # 依赖
//
// 外部库：
//   - flynn/noise: Noise 协议框架
//   - protobuf/encoding/protowire: payload 编码
package noise
