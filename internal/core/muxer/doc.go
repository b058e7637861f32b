// Package muxer 实现 yamux 流多路复用
//
// # 概述
//
// 在单条加密连接上叠加多条独立的双向流。工厂按连接方向创建
// yamux 会话（入站 = Server，出站 = Client），会话自带字节泵：
// 收发循环直接驱动底层连接，无需额外的拷贝任务。
//
// # 配置
//
//   - 16MiB 流窗口：100ms 延迟下可达 160MB/s 吞吐量
//   - 入站流数量不设上限（由升级器按协议配额控制）
//
// # 依赖
//
// 外部库：
//   - libp2p/go-yamux: 多路复用协议实现
package muxer
