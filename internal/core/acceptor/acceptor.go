package acceptor

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-mclanproxy/internal/core/metrics"
	"github.com/dep2p/go-mclanproxy/internal/core/relay"
	"github.com/dep2p/go-mclanproxy/internal/core/transport/tcp"
	"github.com/dep2p/go-mclanproxy/internal/util/logger"
	"github.com/dep2p/go-mclanproxy/pkg/types"
)

var log = logger.Logger("acceptor")

// eventQueueSize 事件通道缓冲大小
const eventQueueSize = 16

// ============================================================================
//                              事件
// ============================================================================

// Accepted 监听套接字上的一个接受事件
type Accepted struct {
	// Generation 产生该事件的监听套接字代数
	Generation uint64

	// Conn 客户端连接，Err 非空时为 nil
	Conn net.Conn

	// At 接受时间
	At time.Time

	// Err 非"监听器已关闭"的接受错误
	Err error
}

// Handoff 一次上游拨号的结果
type Handoff struct {
	// Context 成功时的转发上下文
	Context *relay.ConnectionContext

	// Endpoint 拨号的上游端点
	Endpoint types.Endpoint

	// Err 拨号错误
	Err error

	// Transient 错误是否为暂时性错误
	Transient bool
}

// Dialer 上游拨号器
type Dialer interface {
	Dial(ctx context.Context, ep types.Endpoint) (net.Conn, error)
}

// ============================================================================
//                              Acceptor
// ============================================================================

// Acceptor 连接接受器
type Acceptor struct {
	dialer     Dialer
	clock      clock.Clock
	reporter   metrics.Reporter
	bufferSize int

	accepted chan Accepted
	results  chan Handoff
	wg       sync.WaitGroup
}

// New 创建连接接受器
func New(dialer Dialer, bufferSize int, clk clock.Clock, reporter metrics.Reporter) *Acceptor {
	if clk == nil {
		clk = clock.New()
	}
	if reporter == nil {
		reporter = metrics.Nop{}
	}
	return &Acceptor{
		dialer:     dialer,
		clock:      clk,
		reporter:   reporter,
		bufferSize: bufferSize,
		accepted:   make(chan Accepted, eventQueueSize),
		results:    make(chan Handoff, eventQueueSize),
	}
}

// Accepted 返回接受事件通道
func (a *Acceptor) Accepted() <-chan Accepted {
	return a.accepted
}

// Results 返回拨号结果通道
func (a *Acceptor) Results() <-chan Handoff {
	return a.results
}

// Serve 启动 goroutine 在 ln 上循环接受连接，直到 ln 关闭或 ctx 取消
func (a *Acceptor) Serve(ctx context.Context, generation uint64, ln net.Listener) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.serve(ctx, generation, ln)
	}()
}

func (a *Acceptor) serve(ctx context.Context, generation uint64, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if isListenerClosed(err) || ctx.Err() != nil {
				log.Debug("accept 循环已停止", "generation", generation)
				return
			}
			a.post(ctx, Accepted{Generation: generation, At: a.clock.Now(), Err: err})
			return
		}

		ev := Accepted{Generation: generation, Conn: conn, At: a.clock.Now()}
		if !a.post(ctx, ev) {
			_ = conn.Close()
			return
		}
	}
}

func (a *Acceptor) post(ctx context.Context, ev Accepted) bool {
	select {
	case a.accepted <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// Connect 启动 goroutine 为 client 拨号上游 ep
//
// 拨号失败时 client 被关闭；成功时 client 和上游连接一起移交给 Handoff.Context。
func (a *Acceptor) Connect(ctx context.Context, client net.Conn, ep types.Endpoint, acceptedAt time.Time) {
	a.reporter.ConnectionAccepted()
	log.Info("接受客户端连接", "remote", client.RemoteAddr().String(), "endpoint", ep)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.connect(ctx, client, ep, acceptedAt)
	}()
}

func (a *Acceptor) connect(ctx context.Context, client net.Conn, ep types.Endpoint, acceptedAt time.Time) {
	upstream, err := a.dialer.Dial(ctx, ep)
	if err != nil {
		_ = client.Close()
		transient := tcp.IsTransientDialError(err)
		a.reporter.ConnectFailed(transient)
		if transient {
			log.Info("连接服务器失败", "endpoint", ep, "error", err)
		}
		a.deliver(ctx, Handoff{Endpoint: ep, Err: err, Transient: transient})
		return
	}

	log.Info("已连接服务器", "endpoint", ep, "local", upstream.LocalAddr().String())
	cc := relay.NewConnectionContext(client, upstream, ep, acceptedAt, a.bufferSize)
	if !a.deliver(ctx, Handoff{Context: cc, Endpoint: ep}) {
		_ = cc.Close()
	}
}

func (a *Acceptor) deliver(ctx context.Context, h Handoff) bool {
	select {
	case a.results <- h:
		return true
	case <-ctx.Done():
		return false
	}
}

// Wait 等待所有 goroutine 退出
func (a *Acceptor) Wait() {
	a.wg.Wait()
}

func isListenerClosed(err error) bool {
	return errors.Is(err, tcp.ErrListenerClosed) || errors.Is(err, net.ErrClosed)
}
