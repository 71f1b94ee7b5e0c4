package supervisor

import (
	"net/netip"
	"time"

	"github.com/dep2p/go-mclanproxy/internal/core/transport/tcp"
	"github.com/dep2p/go-mclanproxy/pkg/types"
)

// serverState 监督循环独占的服务器状态
type serverState struct {
	known      bool
	endpoint   types.Endpoint
	lastSeen   time.Time
	listener   *tcp.Listener
	generation uint64
}

// expired 判断 now 时刻是否已超过存活超时
func (s *serverState) expired(now time.Time, timeout time.Duration) bool {
	return s.known && now.Sub(s.lastSeen) >= timeout
}

// Snapshot 服务器状态的只读副本
type Snapshot struct {
	// Known 是否已知服务器
	Known bool

	// Endpoint 当前服务器端点，未知时为零值
	Endpoint types.Endpoint

	// LastSeen 最近一次收到有效公告的时间
	LastSeen time.Time

	// ListenAddr 公网监听地址，未监听时为零值
	ListenAddr netip.AddrPort

	// Generation 已打开的监听套接字数量
	Generation uint64

	// ActiveRelays 正在运行的转发单元数
	ActiveRelays int
}

// Listening 是否正在监听
func (s Snapshot) Listening() bool {
	return s.ListenAddr.IsValid()
}
