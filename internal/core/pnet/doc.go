// Package pnet 实现预共享密钥连接保护
//
// # 概述
//
// 持有相同 32 字节 PSK 的节点才能互联：连接建立后双方各自发送
// 24 字节随机 nonce，之后两个方向分别用 Salsa20(PSK, nonce) 流
// 加密全部字节。不持有 PSK 的对端读到的只是噪声，任何后续协商
// （multistream-select、安全握手）都无法进行。
//
// 保护层不提供认证与完整性，只做网络隔离；
// 身份与加密仍由升级器的安全阶段负责。
package pnet
