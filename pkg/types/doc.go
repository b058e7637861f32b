// Package types 定义 go-p2p 的基础类型
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据：
//
//   - PeerID: 节点标识（公钥哈希的 Base58 编码）
//   - Multiaddr: 统一地址类型
//   - ProtocolID: 协议标识符
//   - Direction / ConnStatus: 连接方向与状态枚举
//   - Timeline: 连接/流的生命周期时间戳
//   - ConnLimits: 受限连接的外部限额
//   - ProgressEvent: 升级过程进度事件名
package types
