package acceptor

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-mclanproxy/config"
	"github.com/dep2p/go-mclanproxy/internal/core/metrics"
	"github.com/dep2p/go-mclanproxy/internal/core/transport/tcp"
)

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Config    *config.Config
	Transport *tcp.Transport
	Clock     clock.Clock      `optional:"true"`
	Reporter  metrics.Reporter `optional:"true"`
}

// ProvideAcceptor 提供连接接受器
func ProvideAcceptor(input ModuleInput) *Acceptor {
	return New(input.Transport, input.Config.Relay.BufferSize, input.Clock, input.Reporter)
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("acceptor",
		fx.Provide(ProvideAcceptor),
	)
}
