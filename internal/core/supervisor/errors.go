package supervisor

import "errors"

var (
	// ErrListenFailed 打开公网监听套接字失败
	ErrListenFailed = errors.New("supervisor: listen failed")

	// ErrAcceptFailed 接受连接失败
	ErrAcceptFailed = errors.New("supervisor: accept failed")

	// ErrConnectFailed 连接上游出现非暂时性错误
	ErrConnectFailed = errors.New("supervisor: connect failed")

	// ErrDiscoveryFailed 公告套接字出错
	ErrDiscoveryFailed = errors.New("supervisor: discovery failed")

	// ErrAlreadyRunning Run 被重复调用
	ErrAlreadyRunning = errors.New("supervisor: already running")
)
