package supervisor

import (
	"context"
	"sync"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-mclanproxy/config"
	"github.com/dep2p/go-mclanproxy/internal/core/acceptor"
	"github.com/dep2p/go-mclanproxy/internal/core/discovery/announce"
	"github.com/dep2p/go-mclanproxy/internal/core/metrics"
	"github.com/dep2p/go-mclanproxy/internal/core/relay"
	"github.com/dep2p/go-mclanproxy/internal/core/transport/tcp"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Config    *config.Config
	Source    announce.Source
	Transport *tcp.Transport
	Acceptor  *acceptor.Acceptor
	Relays    *relay.Supervisor
	Clock     clock.Clock      `optional:"true"`
	Reporter  metrics.Reporter `optional:"true"`
}

// ProvideSupervisor 提供监督器
func ProvideSupervisor(input ModuleInput) *Supervisor {
	return New(Params{
		Config:    input.Config.Discovery,
		Source:    input.Source,
		Listeners: input.Transport,
		Acceptor:  input.Acceptor,
		Relays:    input.Relays,
		Clock:     input.Clock,
		Reporter:  input.Reporter,
	})
}

// ============================================================================
//                              Runner - 后台运行
// ============================================================================

// Runner 在应用生命周期内运行监督循环
//
// 循环因致命错误退出时通过 Shutdowner 以退出码 1 关闭应用。
type Runner struct {
	supervisor *Supervisor
	shutdowner fx.Shutdowner

	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// Err 返回导致监督循环退出的致命错误
func (r *Runner) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Done 监督循环退出后关闭
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

func (r *Runner) start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	go func() {
		defer close(r.done)
		if err := r.supervisor.Run(ctx); err != nil {
			r.mu.Lock()
			r.err = err
			r.mu.Unlock()
			if r.shutdowner != nil {
				_ = r.shutdowner.Shutdown(fx.ExitCode(1))
			}
		}
	}()
}

func (r *Runner) stop(ctx context.Context) error {
	r.cancel()
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runnerInput 生命周期输入参数
type runnerInput struct {
	fx.In

	LC         fx.Lifecycle
	Shutdowner fx.Shutdowner
	Supervisor *Supervisor
}

// ProvideRunner 提供 Runner 并注册生命周期
func ProvideRunner(input runnerInput) *Runner {
	r := &Runner{
		supervisor: input.Supervisor,
		shutdowner: input.Shutdowner,
		done:       make(chan struct{}),
	}
	input.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			r.start()
			return nil
		},
		OnStop: r.stop,
	})
	return r
}

// ============================================================================
//                              模块定义
// ============================================================================

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("supervisor",
		fx.Provide(
			ProvideSupervisor,
			ProvideRunner,
		),
		// Runner 必须被构造才能注册生命周期
		fx.Invoke(func(*Runner) {}),
	)
}
