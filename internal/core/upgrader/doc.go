// Package upgrader 实现连接升级器
//
// # 概述
//
// upgrader 将原始传输连接升级为认证、加密、多路复用、
// 可按协议协商流的对等连接，并在全程执行准入与门控策略。
//
// # 升级流程
//
// 入站连接：
//
//	准入（ConnManager）
//	  → 门控 InterceptAccept
//	  → PSK 保护（可选）
//	  → 安全协议协商 + 握手（multistream-select + Noise 等）
//	  → 门控 InterceptSecured
//	  → 多路复用器协商与安装（yamux 等）
//	  → 门控 InterceptUpgraded
//	  → 连接组装、connection 事件、接受循环
//
// 出站连接对应为 InterceptDial（对端已知时）→ 保护 → 加密 →
// InterceptSecured → 复用 → InterceptUpgraded → 组装。
//
// 任一阶段失败都会关闭整条连接：入站直接关闭，
// 出站携带失败原因中止。入站升级受单个计时器约束
// （默认 30s），准入配额在每条退出路径上释放。
//
// # 流路由
//
// 连接组装后，接受循环逐条接收入站流，为每条流协商应用协议、
// 检查每协议配额（默认每方向 32）、合并节点协议记录，
// 再投递到注册表中的处理器。单条流的错误只终结该流。
//
// 出站流由 NewStream 打开：发起者协商（单协议时乐观选择）、
// 配额检查、安装并返回。
//
// # 使用示例
//
//	id, _ := identity.Generate()
//	noiseTransport, _ := noise.New(id)
//
//	cfg := upgrader.NewConfig()
//	cfg.SecurityTransports = []pkgif.SecureTransport{noiseTransport}
//	cfg.StreamMuxers = []pkgif.StreamMuxerFactory{muxer.NewFactory()}
//	cfg.Registrar = reg
//
//	u, err := upgrader.New(id, cfg)
//	conn, err := u.UpgradeInbound(ctx, maConn, pkgif.UpgradeOpts{})
//
// # 依赖
//
// 内部模块依赖：
//   - internal/core/security/noise: Noise 安全传输
//   - internal/core/muxer: yamux 流复用器
//   - internal/core/registrar: 协议处理器注册表
//
// 外部库：
//   - go-multistream: 协议协商
package upgrader
