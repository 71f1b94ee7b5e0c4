package relay

import (
	"context"
	"log/slog"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/dep2p/go-mclanproxy/internal/core/metrics"
	"github.com/dep2p/go-mclanproxy/internal/util/logger"
	"github.com/dep2p/go-mclanproxy/pkg/types"
)

var log = logger.Logger("relay")

// doneQueueSize 完成通道的缓冲大小
const doneQueueSize = 64

// ============================================================================
//                              Supervisor - 转发单元监督
// ============================================================================

// Supervisor 以独立 goroutine 运行转发单元并收集完成报告
//
// Spawn 和 Observe 只能由监督循环调用；Done 通道可在任意 goroutine 读取。
type Supervisor struct {
	clock    clock.Clock
	reporter metrics.Reporter

	done   chan Result
	active map[string]types.Endpoint
	wg     sync.WaitGroup
}

// NewSupervisor 创建转发监督器
func NewSupervisor(clk clock.Clock, reporter metrics.Reporter) *Supervisor {
	if clk == nil {
		clk = clock.New()
	}
	if reporter == nil {
		reporter = metrics.Nop{}
	}
	return &Supervisor{
		clock:    clk,
		reporter: reporter,
		done:     make(chan Result, doneQueueSize),
		active:   make(map[string]types.Endpoint),
	}
}

// Spawn 为 cc 启动一个转发单元，返回单元标识
//
// ctx 取消时单元的连接被关闭，单元随之结束。
// 单元结束后其 Result 发送到 Done 通道；ctx 已取消且无人接收时丢弃。
func (s *Supervisor) Spawn(ctx context.Context, cc *ConnectionContext) string {
	id := uuid.NewString()
	s.active[id] = cc.Endpoint
	s.reporter.RelayStarted()

	l := log
	if log.Enabled(ctx, slog.LevelDebug) {
		l = log.With("unit", id)
	}
	l.Info("转发开始", "endpoint", cc.Endpoint)

	r := New(id, cc, s.clock, l, s.reporter)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		stop := context.AfterFunc(ctx, func() { _ = cc.Close() })
		res := r.Run()
		stop()

		select {
		case s.done <- res:
		case <-ctx.Done():
		}
	}()
	return id
}

// Done 返回完成报告通道
func (s *Supervisor) Done() <-chan Result {
	return s.done
}

// Observe 处理一个完成报告：记录日志、更新指标、移出活动集合
func (s *Supervisor) Observe(res Result) {
	delete(s.active, res.ID)
	s.reporter.RelayFinished(res.Outcome == OutcomeOK, res.Duration)

	l := log
	if log.Enabled(context.Background(), slog.LevelDebug) {
		l = log.With("unit", res.ID)
	}
	if res.Outcome == OutcomeOK {
		l.Info("转发结束", "endpoint", res.Endpoint, "outcome", res.Outcome)
		return
	}
	l.Info("转发结束", "endpoint", res.Endpoint, "outcome", res.Outcome, "error", res.Err)
}

// Active 返回正在运行的单元数
func (s *Supervisor) Active() int {
	return len(s.active)
}

// Wait 等待所有单元结束
func (s *Supervisor) Wait() {
	s.wg.Wait()
}
