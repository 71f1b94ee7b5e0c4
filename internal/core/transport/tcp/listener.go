package tcp

import (
	"errors"
	"net"
	"net/netip"
	"sync/atomic"
)

// ============================================================================
//                              Listener 实现
// ============================================================================

// Listener 公网 TCP 监听器
type Listener struct {
	listener net.Listener
	addr     netip.AddrPort
	closed   atomic.Bool
}

var _ net.Listener = (*Listener)(nil)

func newListener(ln net.Listener) *Listener {
	l := &Listener{listener: ln}
	if tcpAddr, ok := ln.Addr().(*net.TCPAddr); ok {
		ap := tcpAddr.AddrPort()
		l.addr = netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())
	}
	return l
}

// Accept 接受一个客户端连接
//
// 监听器关闭后返回 ErrListenerClosed。
func (l *Listener) Accept() (net.Conn, error) {
	conn, err := l.listener.Accept()
	if err != nil {
		if l.closed.Load() || errors.Is(err, net.ErrClosed) {
			return nil, ErrListenerClosed
		}
		return nil, err
	}
	return conn, nil
}

// Close 关闭监听器，可重复调用
func (l *Listener) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	return l.listener.Close()
}

// Addr 返回监听地址
func (l *Listener) Addr() net.Addr {
	return l.listener.Addr()
}

// AddrPort 返回实际监听的地址和端口（端口 0 时为系统分配的端口）
func (l *Listener) AddrPort() netip.AddrPort {
	return l.addr
}

// IsClosed 检查是否已关闭
func (l *Listener) IsClosed() bool {
	return l.closed.Load()
}
