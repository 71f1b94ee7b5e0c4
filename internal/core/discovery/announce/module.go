package announce

import (
	"context"
	"net"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-mclanproxy/config"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	// Config 配置
	Config *config.Config

	// Clock 时钟
	Clock clock.Clock

	// Conn 预先打开的套接字（可选，测试时替代组播套接字）
	Conn net.PacketConn `name:"announce_conn" optional:"true"`
}

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	// Source 公告来源
	Source Source
}

// ProvideSource 打开公告监听器
//
// 组播套接字在构造阶段打开，绑定失败会使应用启动失败。
func ProvideSource(input ModuleInput) (ModuleOutput, error) {
	if input.Conn != nil {
		return ModuleOutput{Source: NewListener(input.Conn, input.Clock)}, nil
	}

	l, err := Listen(context.Background(), input.Config.Discovery, input.Clock)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Source: l}, nil
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("discovery/announce",
		fx.Provide(ProvideSource),
		fx.Invoke(registerLifecycle),
	)
}

// registerLifecycle 注册生命周期
func registerLifecycle(lc fx.Lifecycle, src Source) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return src.Close()
		},
	})
}
