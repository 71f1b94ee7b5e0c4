package tcp

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"github.com/dep2p/go-mclanproxy/config"
	"github.com/dep2p/go-mclanproxy/internal/util/logger"
	"github.com/dep2p/go-mclanproxy/pkg/types"
)

var log = logger.Logger("transport/tcp")

// ============================================================================
//                              Transport 实现
// ============================================================================

// Transport 公网监听和上游拨号
type Transport struct {
	config config.TransportConfig
	dialer net.Dialer
}

// NewTransport 创建 TCP 传输
func NewTransport(cfg config.TransportConfig) *Transport {
	return &Transport{
		config: cfg,
		dialer: net.Dialer{Timeout: cfg.DialTimeout.Duration()},
	}
}

// Listen 打开公网监听套接字
func (t *Transport) Listen() (*Listener, error) {
	addr, err := t.config.ListenAddr()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListen, err)
	}
	if t.config.ListenPort < 0 || t.config.ListenPort > 65535 {
		return nil, fmt.Errorf("%w: port %d out of range", ErrListen, t.config.ListenPort)
	}

	backlog := t.config.Backlog
	if backlog < 1 {
		backlog = config.DefaultBacklog
	}

	ln, err := listenSocket(netip.AddrPortFrom(addr, uint16(t.config.ListenPort)), backlog)
	if err != nil {
		return nil, err
	}

	l := newListener(ln)
	log.Debug("监听器已打开", "addr", l.AddrPort(), "backlog", backlog)
	return l, nil
}

// Dial 连接上游服务器
//
// 返回的错误包装 ErrDial，可用 IsTransientDialError 分类。
func (t *Transport) Dial(ctx context.Context, ep types.Endpoint) (net.Conn, error) {
	if !ep.IsValid() {
		return nil, ErrInvalidEndpoint
	}
	conn, err := t.dialer.DialContext(ctx, "tcp", ep.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDial, ep, err)
	}
	return conn, nil
}

// Config 返回传输配置
func (t *Transport) Config() config.TransportConfig {
	return t.config
}
