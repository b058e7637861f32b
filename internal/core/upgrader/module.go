// Package upgrader 实现连接升级器
package upgrader

import (
	"go.uber.org/fx"

	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
)

// Params Upgrader 依赖参数
type Params struct {
	fx.In

	Identity  pkgif.Identity
	Security  pkgif.SecureTransport
	Muxer     pkgif.StreamMuxerFactory
	Registrar pkgif.Registrar

	ConnManager pkgif.ConnManager `optional:"true"`
	Gater       pkgif.ConnGater   `optional:"true"`
	PeerStore   pkgif.PeerStore   `optional:"true"`
	Bus         pkgif.EventBus    `optional:"true"`
	Metrics     pkgif.Metrics     `optional:"true"`
	Protector   pkgif.Protector   `optional:"true"`
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("upgrader",
		fx.Provide(
			ProvideUpgrader,
		),
	)
}

// ProvideUpgrader 提供 Upgrader（依赖注入）
func ProvideUpgrader(params Params) (pkgif.Upgrader, error) {
	cfg := NewConfig()
	cfg.SecurityTransports = []pkgif.SecureTransport{params.Security}
	cfg.StreamMuxers = []pkgif.StreamMuxerFactory{params.Muxer}
	cfg.Registrar = params.Registrar
	cfg.ConnManager = params.ConnManager
	cfg.Gater = params.Gater
	cfg.PeerStore = params.PeerStore
	cfg.Bus = params.Bus
	cfg.Metrics = params.Metrics
	cfg.Protector = params.Protector

	return New(params.Identity, cfg)
}
