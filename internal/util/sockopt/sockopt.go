// Package sockopt 提供套接字选项辅助函数
//
// 用于 net.ListenConfig.Control，在 bind 之前设置套接字选项。
package sockopt

import "syscall"

// ControlFunc 与 net.ListenConfig.Control 签名一致
type ControlFunc func(network, address string, c syscall.RawConn) error
