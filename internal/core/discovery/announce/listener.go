package announce

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/net/ipv4"

	"github.com/dep2p/go-mclanproxy/config"
	"github.com/dep2p/go-mclanproxy/internal/util/logger"
	"github.com/dep2p/go-mclanproxy/internal/util/sockopt"
)

var log = logger.Logger("discovery/announce")

// readBufferSize 读缓冲区大小，比 MaxPayloadSize 多一个字节用于 NUL
const readBufferSize = MaxPayloadSize + 1

// ============================================================================
//                              Message - 原始公告
// ============================================================================

// Message 一个收到的公告数据报
type Message struct {
	// Payload 数据报内容
	Payload []byte

	// Sender 发送方地址
	Sender netip.Addr

	// ReceivedAt 到达时间
	ReceivedAt time.Time
}

// Source 公告来源
type Source interface {
	// Receive 阻塞直到收到一个数据报或 ctx 被取消
	Receive(ctx context.Context) (Message, error)

	// Close 关闭来源
	Close() error
}

// ============================================================================
//                              Listener - 组播监听器
// ============================================================================

// Listener 在组播套接字上接收公告
type Listener struct {
	conn  net.PacketConn
	clock clock.Clock
	buf   []byte

	closeOnce sync.Once
	closeErr  error
}

var _ Source = (*Listener)(nil)

// Listen 绑定公告端口并加入组播组
//
// 套接字设置 SO_REUSEADDR，以便与同一主机上的游戏客户端共享端口。
func Listen(ctx context.Context, cfg config.DiscoveryConfig, clk clock.Clock) (*Listener, error) {
	group, err := cfg.GroupAddr()
	if err != nil {
		return nil, err
	}

	ifi, err := resolveInterface(cfg.Interface)
	if err != nil {
		return nil, err
	}

	lc := net.ListenConfig{Control: sockopt.ReuseAddr}
	bindAddr := net.JoinHostPort(group.String(), strconv.Itoa(cfg.Port))
	conn, err := lc.ListenPacket(ctx, "udp4", bindAddr)
	if err != nil {
		return nil, fmt.Errorf("announce: bind %s: %w", bindAddr, err)
	}

	pc := ipv4.NewPacketConn(conn)
	if err := pc.JoinGroup(ifi, &net.UDPAddr{IP: group.AsSlice()}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("announce: join group %s: %w", group, err)
	}

	if ifi != nil {
		log.Info("已加入公告组播组", "group", bindAddr, "interface", ifi.Name)
	} else {
		log.Info("已加入公告组播组", "group", bindAddr)
	}
	return NewListener(conn, clk), nil
}

// NewListener 包装一个已经打开的 PacketConn
func NewListener(conn net.PacketConn, clk clock.Clock) *Listener {
	if clk == nil {
		clk = clock.New()
	}
	return &Listener{
		conn:  conn,
		clock: clk,
		buf:   make([]byte, readBufferSize),
	}
}

// Receive 阻塞直到收到一个数据报
//
// ctx 取消时返回 ctx.Err()；监听器关闭时返回 ErrListenerClosed；
// 其他套接字错误原样返回。
func (l *Listener) Receive(ctx context.Context) (Message, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, err
	}
	// 清除上一次取消留下的截止时间
	_ = l.conn.SetReadDeadline(time.Time{})

	stop := context.AfterFunc(ctx, func() {
		_ = l.conn.SetReadDeadline(time.Unix(1, 0))
	})
	defer stop()

	n, from, err := l.conn.ReadFrom(l.buf)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Message{}, ctxErr
		}
		if errors.Is(err, net.ErrClosed) {
			return Message{}, ErrListenerClosed
		}
		return Message{}, fmt.Errorf("announce: receive: %w", err)
	}

	msg := Message{
		Payload:    append([]byte(nil), l.buf[:n]...),
		Sender:     senderAddr(from),
		ReceivedAt: l.clock.Now(),
	}
	log.Debug("收到公告", "payload", string(msg.Payload), "sender", msg.Sender)
	return msg, nil
}

// LocalAddr 返回本地绑定地址
func (l *Listener) LocalAddr() net.Addr {
	return l.conn.LocalAddr()
}

// Close 关闭套接字，可重复调用
func (l *Listener) Close() error {
	l.closeOnce.Do(func() {
		l.closeErr = l.conn.Close()
	})
	return l.closeErr
}

// senderAddr 提取发送方 IP
func senderAddr(addr net.Addr) netip.Addr {
	switch a := addr.(type) {
	case *net.UDPAddr:
		return a.AddrPort().Addr().Unmap()
	case nil:
		return netip.Addr{}
	default:
		ap, err := netip.ParseAddrPort(a.String())
		if err != nil {
			return netip.Addr{}
		}
		return ap.Addr().Unmap()
	}
}

// resolveInterface 按名称或本地 IPv4 地址查找网络接口
//
// 空字符串返回 nil，表示由系统选择默认接口。
func resolveInterface(name string) (*net.Interface, error) {
	if name == "" {
		return nil, nil
	}

	ip, err := netip.ParseAddr(name)
	if err != nil {
		ifi, err := net.InterfaceByName(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInterfaceNotFound, name, err)
		}
		return ifi, nil
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("announce: list interfaces: %w", err)
	}
	for i := range ifaces {
		addrs, err := ifaces[i].Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			if candidate, ok := netip.AddrFromSlice(ipnet.IP); ok && candidate.Unmap() == ip.Unmap() {
				return &ifaces[i], nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no interface has address %s", ErrInterfaceNotFound, name)
}
