package metrics

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-mclanproxy/config"
)

// Params Metrics 依赖参数
type Params struct {
	fx.In

	Config *config.Config `optional:"true"`
	Clock  clock.Clock    `optional:"true"`
}

// Result Metrics 输出
type Result struct {
	fx.Out

	Reporter   Reporter
	Prometheus *Prometheus
}

// Module 是 metrics 的 Fx 模块
var Module = fx.Module("metrics",
	fx.Provide(NewFromParams),
	fx.Invoke(registerLifecycle),
)

// NewFromParams 从参数创建 Reporter
func NewFromParams(p Params) Result {
	prom := NewPrometheus(p.Clock)
	return Result{Reporter: prom, Prometheus: prom}
}

// serverInput 生命周期输入参数
type serverInput struct {
	fx.In

	LC         fx.Lifecycle
	Config     *config.Config `optional:"true"`
	Prometheus *Prometheus
}

// registerLifecycle 配置了指标地址时启动 HTTP 服务
func registerLifecycle(input serverInput) {
	if input.Config == nil || !input.Config.Diagnostics.MetricsEnabled() {
		return
	}

	srv := NewServer(input.Config.Diagnostics.MetricsAddr, input.Prometheus.Registry())
	input.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return srv.Start()
		},
		OnStop: func(ctx context.Context) error {
			return srv.Stop(ctx)
		},
	})
}
