package supervisor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-mclanproxy/config"
	"github.com/dep2p/go-mclanproxy/internal/core/acceptor"
	"github.com/dep2p/go-mclanproxy/internal/core/discovery/announce"
	"github.com/dep2p/go-mclanproxy/internal/core/metrics"
	"github.com/dep2p/go-mclanproxy/internal/core/relay"
	"github.com/dep2p/go-mclanproxy/internal/core/transport/tcp"
	"github.com/dep2p/go-mclanproxy/internal/util/logger"
	"github.com/dep2p/go-mclanproxy/pkg/types"
)

var log = logger.Logger("supervisor")

// ListenerFactory 打开公网监听套接字
type ListenerFactory interface {
	Listen() (*tcp.Listener, error)
}

// ============================================================================
//                              Supervisor
// ============================================================================

// Supervisor 局域网服务器监督器
type Supervisor struct {
	cfg       config.DiscoveryConfig
	source    announce.Source
	listeners ListenerFactory
	acceptor  *acceptor.Acceptor
	relays    *relay.Supervisor
	clock     clock.Clock
	reporter  metrics.Reporter

	running  atomic.Bool
	snapshot atomic.Pointer[Snapshot]

	// 以下字段只由监督循环访问
	state  serverState
	ticker *clock.Ticker
}

// Params 构造参数
type Params struct {
	Config    config.DiscoveryConfig
	Source    announce.Source
	Listeners ListenerFactory
	Acceptor  *acceptor.Acceptor
	Relays    *relay.Supervisor
	Clock     clock.Clock
	Reporter  metrics.Reporter
}

// New 创建监督器
func New(p Params) *Supervisor {
	if p.Clock == nil {
		p.Clock = clock.New()
	}
	if p.Reporter == nil {
		p.Reporter = metrics.Nop{}
	}
	s := &Supervisor{
		cfg:       p.Config,
		source:    p.Source,
		listeners: p.Listeners,
		acceptor:  p.Acceptor,
		relays:    p.Relays,
		clock:     p.Clock,
		reporter:  p.Reporter,
	}
	s.snapshot.Store(&Snapshot{})
	return s
}

// Snapshot 返回最近一次发布的状态副本，可在任意 goroutine 调用
func (s *Supervisor) Snapshot() Snapshot {
	return *s.snapshot.Load()
}

// Run 运行监督循环，直到 ctx 取消或出现致命错误
//
// ctx 取消时返回 nil。返回前关闭监听套接字并等待所有转发单元结束。
func (s *Supervisor) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	announcements := make(chan announce.Message)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.receive(gctx, announcements)
	})
	g.Go(func() error {
		return s.loop(gctx, announcements)
	})
	err := g.Wait()

	cancel()
	s.relays.Wait()
	s.acceptor.Wait()
	return err
}

// receive 从公告来源读取数据报并交给监督循环
func (s *Supervisor) receive(ctx context.Context, out chan<- announce.Message) error {
	for {
		msg, err := s.source.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("%w: %w", ErrDiscoveryFailed, err)
		}
		select {
		case out <- msg:
		case <-ctx.Done():
			return nil
		}
	}
}

// loop 监督循环
func (s *Supervisor) loop(ctx context.Context, announcements <-chan announce.Message) error {
	defer s.shutdown()
	s.publish()

	for {
		var tick <-chan time.Time
		if s.ticker != nil {
			tick = s.ticker.C
		}

		var err error
		select {
		case <-ctx.Done():
			return nil

		case msg := <-announcements:
			err = s.handleAnnouncement(ctx, msg)

		case <-tick:
			s.checkLiveness()

		case ev := <-s.acceptor.Accepted():
			err = s.handleAccepted(ctx, ev)

		case h := <-s.acceptor.Results():
			err = s.handleHandoff(ctx, h)

		case res := <-s.relays.Done():
			s.relays.Observe(res)
		}

		if err != nil {
			log.Error("致命错误，监督循环退出", "error", err)
			return err
		}
		s.publish()
	}
}

// handleAnnouncement 处理一个公告数据报
func (s *Supervisor) handleAnnouncement(ctx context.Context, msg announce.Message) error {
	ep, err := announce.Parse(msg.Payload, msg.Sender)
	if err != nil {
		s.reporter.AnnouncementReceived(false)
		log.Debug("忽略无效公告", "sender", msg.Sender, "reason", err)
		return nil
	}
	s.reporter.AnnouncementReceived(true)

	now := msg.ReceivedAt
	if now.IsZero() {
		now = s.clock.Now()
	}

	switch {
	case !s.state.known:
		log.Info("发现局域网服务器", "endpoint", ep)
		if err := s.open(ctx); err != nil {
			return err
		}
		s.state.known = true
		s.state.endpoint = ep
		s.state.lastSeen = now
		s.startTicker()
		s.reporter.ServerState(true)

	case ep == s.state.endpoint:
		s.state.lastSeen = now

	default:
		log.Info("局域网服务器端点变化", "from", s.state.endpoint, "to", ep)
		s.closeListener()
		s.state.endpoint = ep
		s.state.lastSeen = now
		if err := s.open(ctx); err != nil {
			return err
		}
	}
	return nil
}

// checkLiveness 超过存活超时未收到公告时关闭监听
func (s *Supervisor) checkLiveness() {
	now := s.clock.Now()
	if !s.state.expired(now, s.cfg.LivenessTimeout.Duration()) {
		return
	}

	log.Info("局域网服务器已消失", "endpoint", s.state.endpoint, "last_seen", s.state.lastSeen)
	s.closeListener()
	s.stopTicker()
	s.state.known = false
	s.state.endpoint = types.Endpoint{}
	s.reporter.ServerState(false)
}

// handleAccepted 处理接受事件：当前代数的连接交给 acceptor 拨号，其余关闭
func (s *Supervisor) handleAccepted(ctx context.Context, ev acceptor.Accepted) error {
	current := s.state.listener != nil && ev.Generation == s.state.generation

	if ev.Err != nil {
		if !current {
			log.Debug("已关闭监听器的 accept 错误", "generation", ev.Generation, "error", ev.Err)
			return nil
		}
		return fmt.Errorf("%w: %w", ErrAcceptFailed, ev.Err)
	}

	if !current || !s.state.known {
		log.Debug("丢弃已关闭监听器上的连接", "generation", ev.Generation)
		_ = ev.Conn.Close()
		return nil
	}

	s.acceptor.Connect(ctx, ev.Conn, s.state.endpoint, ev.At)
	return nil
}

// handleHandoff 处理拨号结果：成功则启动转发单元
func (s *Supervisor) handleHandoff(ctx context.Context, h acceptor.Handoff) error {
	if h.Err != nil {
		if h.Transient {
			return nil
		}
		return fmt.Errorf("%w: %s: %w", ErrConnectFailed, h.Endpoint, h.Err)
	}
	// 拨号期间服务器消失或移动，旧端点上的连接不再转发
	if !s.state.known || h.Endpoint != s.state.endpoint {
		log.Info("服务器已变化，丢弃拨号完成的连接", "endpoint", h.Endpoint, "current", s.state.endpoint)
		_ = h.Context.Close()
		return nil
	}
	s.relays.Spawn(ctx, h.Context)
	return nil
}

// open 打开公网监听套接字并启动 accept 循环
func (s *Supervisor) open(ctx context.Context) error {
	ln, err := s.listeners.Listen()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrListenFailed, err)
	}

	s.state.generation++
	s.state.listener = ln
	s.acceptor.Serve(ctx, s.state.generation, ln)
	s.reporter.ListenerOpened()
	log.Info("开始接受连接", "port", ln.AddrPort().Port(), "generation", s.state.generation)
	return nil
}

// closeListener 关闭当前监听套接字
func (s *Supervisor) closeListener() {
	if s.state.listener == nil {
		return
	}
	if err := s.state.listener.Close(); err != nil && !errors.Is(err, tcp.ErrListenerClosed) {
		log.Debug("关闭监听器失败", "error", err)
	}
	s.state.listener = nil
}

func (s *Supervisor) startTicker() {
	if s.ticker == nil {
		s.ticker = s.clock.Ticker(s.cfg.PollInterval.Duration())
	}
}

func (s *Supervisor) stopTicker() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
}

// shutdown 循环退出时释放资源
func (s *Supervisor) shutdown() {
	s.closeListener()
	s.stopTicker()
	s.publish()
}

// publish 发布状态副本
func (s *Supervisor) publish() {
	snap := &Snapshot{
		Known:        s.state.known,
		Endpoint:     s.state.endpoint,
		LastSeen:     s.state.lastSeen,
		Generation:   s.state.generation,
		ActiveRelays: s.relays.Active(),
	}
	if s.state.listener != nil {
		snap.ListenAddr = s.state.listener.AddrPort()
	}
	s.snapshot.Store(snap)
}
