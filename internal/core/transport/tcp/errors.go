package tcp

import (
	"context"
	"errors"
	"net"
	"os"
)

var (
	// ErrListenerClosed 监听器已关闭
	ErrListenerClosed = errors.New("tcp: listener closed")

	// ErrListen 打开监听套接字失败
	ErrListen = errors.New("tcp: listen failed")

	// ErrDial 连接上游失败
	ErrDial = errors.New("tcp: dial failed")

	// ErrInvalidEndpoint 端点无效
	ErrInvalidEndpoint = errors.New("tcp: invalid endpoint")
)

// IsTransientDialError 判断拨号错误是否为暂时性错误
//
// 暂时性错误只导致丢弃当前客户端连接：
// ETIMEDOUT, ECONNRESET, ECONNREFUSED, EHOSTDOWN, EHOSTUNREACH, ENETUNREACH，
// 拨号超时，以及 ctx 取消。
func IsTransientDialError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	for _, errno := range transientErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
