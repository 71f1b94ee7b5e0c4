package metrics

import (
	"time"
)

// Direction 转发方向
type Direction string

const (
	// DirectionClientToUpstream 客户端到上游服务器
	DirectionClientToUpstream Direction = "client_to_upstream"
	// DirectionUpstreamToClient 上游服务器到客户端
	DirectionUpstreamToClient Direction = "upstream_to_client"
)

// Reporter 记录代理运行指标
//
// 所有方法必须并发安全，RelayBytes 会在转发 goroutine 中被频繁调用。
type Reporter interface {
	// AnnouncementReceived 记录收到的公告，valid 表示是否解析出端点
	AnnouncementReceived(valid bool)

	// ServerState 记录是否已知局域网服务器
	ServerState(known bool)

	// ListenerOpened 记录打开了一个公网监听套接字
	ListenerOpened()

	// ConnectionAccepted 记录接受了一个客户端连接
	ConnectionAccepted()

	// ConnectFailed 记录连接上游失败
	ConnectFailed(transient bool)

	// RelayStarted 记录启动了一个转发单元
	RelayStarted()

	// RelayBytes 记录一个方向写出的字节数
	RelayBytes(dir Direction, n int)

	// RelayFinished 记录转发单元结束
	RelayFinished(ok bool, d time.Duration)
}

// ============================================================================
//                              Nop - 空实现
// ============================================================================

// Nop 不记录任何指标
type Nop struct{}

var _ Reporter = Nop{}

func (Nop) AnnouncementReceived(bool)         {}
func (Nop) ServerState(bool)                  {}
func (Nop) ListenerOpened()                   {}
func (Nop) ConnectionAccepted()               {}
func (Nop) ConnectFailed(bool)                {}
func (Nop) RelayStarted()                     {}
func (Nop) RelayBytes(Direction, int)         {}
func (Nop) RelayFinished(bool, time.Duration) {}
