//go:build !unix

package sockopt

import "syscall"

// ReuseAddr 在非 unix 平台上不设置任何选项
func ReuseAddr(_, _ string, _ syscall.RawConn) error {
	return nil
}
