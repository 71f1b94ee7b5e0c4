package relay

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-mclanproxy/internal/core/metrics"
)

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Clock    clock.Clock      `optional:"true"`
	Reporter metrics.Reporter `optional:"true"`
}

// ProvideSupervisor 提供转发监督器
func ProvideSupervisor(input ModuleInput) *Supervisor {
	return NewSupervisor(input.Clock, input.Reporter)
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("relay",
		fx.Provide(ProvideSupervisor),
	)
}
