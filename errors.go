package mclanproxy

import "errors"

// 公共错误定义
var (
	// ErrAlreadyRunning 代理已在运行
	ErrAlreadyRunning = errors.New("proxy already running")

	// ErrProxyClosed 代理已结束运行
	ErrProxyClosed = errors.New("proxy closed")

	// ErrInvalidOption 选项参数无效
	ErrInvalidOption = errors.New("invalid option")
)
