package mclanproxy

import (
	"fmt"
	"net"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-mclanproxy/config"
	"github.com/dep2p/go-mclanproxy/internal/core/acceptor"
	"github.com/dep2p/go-mclanproxy/internal/core/discovery/announce"
	"github.com/dep2p/go-mclanproxy/internal/core/metrics"
	"github.com/dep2p/go-mclanproxy/internal/core/relay"
	"github.com/dep2p/go-mclanproxy/internal/core/supervisor"
	"github.com/dep2p/go-mclanproxy/internal/core/transport/tcp"
)

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. 配置和时钟
//  2. metrics → discovery/announce → transport/tcp
//  3. acceptor → relay → supervisor
//  4. 用户扩展
func buildFxApp(o *options, p *Proxy) (*fx.App, error) {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置验证（前置）
	// ════════════════════════════════════════════════════════════════════════
	if err := config.ValidateAll(o.config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 配置和时钟注入
	// ════════════════════════════════════════════════════════════════════════
	clk := o.clock
	if clk == nil {
		clk = clock.New()
	}
	modules := []fx.Option{
		fx.Supply(o.config),
		fx.Provide(func() clock.Clock { return clk }),
	}

	if o.announceConn != nil {
		conn := o.announceConn
		modules = append(modules, fx.Provide(fx.Annotate(
			func() net.PacketConn { return conn },
			fx.ResultTags(`name:"announce_conn"`),
		)))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 3. 核心模块
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		metrics.Module,      // 计数器和可选的 /metrics 服务
		announce.Module(),   // 组播公告监听
		tcp.Module(),        // 公网监听和上游拨号
		acceptor.Module(),   // 接受连接并拨号上游
		relay.Module(),      // 转发单元
		supervisor.Module(), // 服务器状态机
	)

	// ════════════════════════════════════════════════════════════════════════
	// 4. 用户扩展（Fx Options）
	// ════════════════════════════════════════════════════════════════════════
	if len(o.userFxOptions) > 0 {
		modules = append(modules, o.userFxOptions...)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 5. Proxy 组件注入
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, fx.Populate(&p.supervisor, &p.runner, &p.prometheus))

	// ════════════════════════════════════════════════════════════════════════
	// 6. Fx 配置
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, fx.WithLogger(fxEventLogger(o.config.Log.Verbosity)))

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return app, nil
}

// fxEventLogger 选择 Fx 事件日志
//
// 只有最详细的级别输出 Fx 的装配过程，其余情况静默。
func fxEventLogger(v config.Verbosity) func() fxevent.Logger {
	return func() fxevent.Logger {
		if v >= config.VerbosityExtra {
			if l, err := zap.NewDevelopment(); err == nil {
				return &fxevent.ZapLogger{Logger: l.Named("fx")}
			}
		}
		return &fxevent.ZapLogger{Logger: zap.NewNop()}
	}
}
