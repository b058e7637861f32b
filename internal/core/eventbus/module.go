// Package eventbus 实现事件总线
package eventbus

import (
	"go.uber.org/fx"

	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
)

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("eventbus",
		fx.Provide(
			ProvideBus,
		),
	)
}

// ProvideBus 提供事件总线（依赖注入）
func ProvideBus() pkgif.EventBus {
	return NewBus()
}
