//go:build unix

package tcp

import (
	"fmt"
	"net"
	"net/netip"
	"os"

	"golang.org/x/sys/unix"
)

// listenSocket 创建并绑定 IPv4 监听套接字
//
// 直接使用 socket/bind/listen 以便控制 backlog，
// 之后通过 net.FileListener 交给 Go 运行时的 netpoller。
func listenSocket(addr netip.AddrPort, backlog int) (net.Listener, error) {
	if !addr.Addr().Is4() {
		return nil, fmt.Errorf("%w: %s is not IPv4", ErrListen, addr)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListen, os.NewSyscallError("socket", err))
	}
	unix.CloseOnExec(fd)

	fail := func(call string, err error) (net.Listener, error) {
		unix.Close(fd)
		return nil, fmt.Errorf("%w: %s: %w", ErrListen, addr, os.NewSyscallError(call, err))
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return fail("setsockopt", err)
	}
	sa := &unix.SockaddrInet4{Port: int(addr.Port()), Addr: addr.Addr().As4()}
	if err := unix.Bind(fd, sa); err != nil {
		return fail("bind", err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		return fail("listen", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		return fail("setnonblock", err)
	}

	f := os.NewFile(uintptr(fd), "tcp:"+addr.String())
	// FileListener 复制了描述符，原文件需要关闭
	defer f.Close()

	ln, err := net.FileListener(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrListen, addr, err)
	}
	return ln, nil
}
