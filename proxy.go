package mclanproxy

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-mclanproxy/config"
	"github.com/dep2p/go-mclanproxy/internal/core/metrics"
	"github.com/dep2p/go-mclanproxy/internal/core/supervisor"
	"github.com/dep2p/go-mclanproxy/internal/util/logger"
)

var log = logger.Logger("proxy")

// Snapshot 代理当前状态
type Snapshot = supervisor.Snapshot

// Proxy 局域网服务器代理
//
// 一个 Proxy 只能运行一次；Run 返回后需要重新 New。
type Proxy struct {
	config *config.Config
	app    *fx.App

	// 由 Fx 注入
	supervisor *supervisor.Supervisor
	runner     *supervisor.Runner
	prometheus *metrics.Prometheus

	running atomic.Bool
	used    atomic.Bool
}

// New 创建代理
//
// 应用所有选项、验证配置并装配组件。组播套接字在这一步打开，
// 绑定失败直接返回错误。
//
// 示例：
//
//	p, err := mclanproxy.New(mclanproxy.WithPublicPort(25565))
func New(opts ...Option) (*Proxy, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	logger.SetGlobalLevel(o.config.Log.Verbosity.Level())
	logger.SetFormat(logger.ParseFormat(o.config.Log.Format))

	p := &Proxy{config: o.config}

	app, err := buildFxApp(o, p)
	if err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	p.app = app

	return p, nil
}

// Run 运行代理直到 ctx 取消或发生致命错误
//
// ctx 取消时正常关闭并返回 nil；致命错误（监听失败、接受失败、
// 上游不可达、公告套接字失败）时返回该错误。
func (p *Proxy) Run(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer p.running.Store(false)

	if !p.used.CompareAndSwap(false, true) {
		return ErrProxyClosed
	}

	// 启动阶段不受 ctx 取消影响，保证 Stop 总能对称执行
	startCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.app.StartTimeout())
	defer cancel()
	if err := p.app.Start(startCtx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	log.Info("代理已启动",
		"publicPort", p.config.Transport.ListenPort,
		"group", p.config.Discovery.Group,
		"announcePort", p.config.Discovery.Port)

	select {
	case <-ctx.Done():
		log.Info("收到停止信号，正在关闭")
	case sig := <-p.app.Wait():
		log.Debug("应用请求关闭", "exitCode", sig.ExitCode)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), p.app.StopTimeout())
	defer stopCancel()
	stopErr := p.app.Stop(stopCtx)

	runErr := p.runner.Err()
	if runErr != nil {
		log.Error("代理因致命错误退出", "error", runErr)
	} else {
		log.Info("代理已停止")
	}
	return multierr.Append(runErr, stopErr)
}

// Snapshot 返回当前状态
func (p *Proxy) Snapshot() Snapshot {
	return p.supervisor.Snapshot()
}

// Config 返回配置副本
func (p *Proxy) Config() *config.Config {
	return config.CloneConfig(p.config)
}

// Gatherer 返回指标收集器
func (p *Proxy) Gatherer() prometheus.Gatherer {
	return p.prometheus.Registry()
}
