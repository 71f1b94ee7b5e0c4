package relay

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-mclanproxy/internal/core/metrics"
	"github.com/dep2p/go-mclanproxy/pkg/types"
)

// ============================================================================
//                              Outcome / Result
// ============================================================================

// Outcome 转发结果
type Outcome int

const (
	// OutcomeOK 某一方正常关闭连接
	OutcomeOK Outcome = iota
	// OutcomeError 读写出错
	OutcomeError
)

// String 返回结果名称
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeError:
		return "error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result 一个转发单元的完成报告
type Result struct {
	// ID 转发单元标识
	ID string

	// Endpoint 上游服务器端点
	Endpoint types.Endpoint

	// Outcome 结果
	Outcome Outcome

	// Err 导致结束的错误，OutcomeOK 时为 nil
	Err error

	// ClientToUpstream 客户端到上游写出的字节数
	ClientToUpstream uint64

	// UpstreamToClient 上游到客户端写出的字节数
	UpstreamToClient uint64

	// Duration 会话时长
	Duration time.Duration
}

// ============================================================================
//                              Relay - 双向转发
// ============================================================================

const (
	peerClient   = "client"
	peerUpstream = "upstream"
)

// Relay 在一对连接之间双向转发字节
type Relay struct {
	id       string
	cc       *ConnectionContext
	clock    clock.Clock
	log      *slog.Logger
	reporter metrics.Reporter

	once    sync.Once
	outcome Outcome
	err     error
}

// New 创建转发单元，Relay 接管 cc 的所有权
func New(id string, cc *ConnectionContext, clk clock.Clock, l *slog.Logger, reporter metrics.Reporter) *Relay {
	if clk == nil {
		clk = clock.New()
	}
	if l == nil {
		l = log
	}
	if reporter == nil {
		reporter = metrics.Nop{}
	}
	return &Relay{
		id:       id,
		cc:       cc,
		clock:    clk,
		log:      l,
		reporter: reporter,
	}
}

// Run 转发直到任一方向结束，返回完成报告
//
// Run 返回时两个连接都已关闭。
func (r *Relay) Run() Result {
	start := r.clock.Now()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.pump(r.cc.Client, r.cc.Upstream, r.cc.ToUpstream(), peerClient, peerUpstream, metrics.DirectionClientToUpstream)
	}()
	go func() {
		defer wg.Done()
		r.pump(r.cc.Upstream, r.cc.Client, r.cc.ToClient(), peerUpstream, peerClient, metrics.DirectionUpstreamToClient)
	}()
	wg.Wait()

	d := r.clock.Since(start)
	res := Result{
		ID:               r.id,
		Endpoint:         r.cc.Endpoint,
		Outcome:          r.outcome,
		Err:              r.err,
		ClientToUpstream: r.cc.ToUpstream().Total(),
		UpstreamToClient: r.cc.ToClient().Total(),
		Duration:         d,
	}

	r.log.Info("会话时长 "+FormatDuration(d)+" h:m:s",
		"client-to-upstream", FormatThroughput(res.ClientToUpstream, d),
		"upstream-to-client", FormatThroughput(res.UpstreamToClient, d))
	return res
}

// pump 单方向转发：缓冲区为空时读取，排空后再读取下一批
func (r *Relay) pump(src, dst net.Conn, buf *Buffer, srcName, dstName string, dir metrics.Direction) {
	for {
		_, rerr := buf.Fill(src)
		if rerr == nil && buf.Empty() {
			// 零长度读取视为对端关闭
			rerr = io.EOF
		}

		for !buf.Empty() {
			n, werr := buf.Drain(dst)
			r.reporter.RelayBytes(dir, n)
			if werr != nil {
				r.finish(OutcomeError, fmt.Errorf("write %s: %w", dstName, werr))
				return
			}
		}

		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				if r.finish(OutcomeOK, nil) {
					r.log.Info(srcName + " 端收到 EOF")
				}
				return
			}
			r.finish(OutcomeError, fmt.Errorf("read %s: %w", srcName, rerr))
			return
		}
	}
}

// finish 记录第一个结束事件并关闭两个连接，返回是否为第一个
func (r *Relay) finish(outcome Outcome, err error) bool {
	first := false
	r.once.Do(func() {
		first = true
		r.outcome = outcome
		r.err = err
		if err != nil {
			r.log.Info("转发因错误终止", "error", err)
		}
		if cerr := r.cc.Close(); cerr != nil {
			r.log.Debug("关闭连接失败", "error", cerr)
		}
	})
	return first
}
