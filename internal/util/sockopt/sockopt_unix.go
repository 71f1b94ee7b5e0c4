//go:build unix

package sockopt

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// ReuseAddr 在 bind 之前设置 SO_REUSEADDR
//
// 允许多个进程同时接收同一组播端口的数据报，
// 也允许监听套接字在 TIME_WAIT 期间重新绑定。
func ReuseAddr(_, _ string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
