package tcp

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-mclanproxy/config"
)

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Config *config.Config
}

// ProvideTransport 提供 TCP 传输
func ProvideTransport(input ModuleInput) *Transport {
	return NewTransport(input.Config.Transport)
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("transport/tcp",
		fx.Provide(ProvideTransport),
	)
}
