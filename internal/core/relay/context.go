package relay

import (
	"net"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/dep2p/go-mclanproxy/pkg/types"
)

// ConnectionContext 一个客户端连接的完整转发上下文
//
// 由 acceptor 创建后整体移交给转发单元，创建方不再持有引用。
type ConnectionContext struct {
	// Client 公网客户端连接
	Client net.Conn

	// Upstream 到局域网服务器的连接
	Upstream net.Conn

	// Endpoint 上游服务器端点
	Endpoint types.Endpoint

	// AcceptedAt 客户端连接被接受的时间
	AcceptedAt time.Time

	toUpstream *Buffer
	toClient   *Buffer

	closeOnce sync.Once
	closeErr  error
}

// NewConnectionContext 创建转发上下文，两个方向各分配一个 bufferSize 大小的缓冲区
func NewConnectionContext(client, upstream net.Conn, ep types.Endpoint, acceptedAt time.Time, bufferSize int) *ConnectionContext {
	return &ConnectionContext{
		Client:     client,
		Upstream:   upstream,
		Endpoint:   ep,
		AcceptedAt: acceptedAt,
		toUpstream: NewBuffer(bufferSize),
		toClient:   NewBuffer(bufferSize),
	}
}

// ToUpstream 返回客户端到上游方向的缓冲区
func (c *ConnectionContext) ToUpstream() *Buffer {
	return c.toUpstream
}

// ToClient 返回上游到客户端方向的缓冲区
func (c *ConnectionContext) ToClient() *Buffer {
	return c.toClient
}

// Close 关闭两个连接，只执行一次
func (c *ConnectionContext) Close() error {
	c.closeOnce.Do(func() {
		var errs error
		if c.Client != nil {
			errs = multierr.Append(errs, c.Client.Close())
		}
		if c.Upstream != nil {
			errs = multierr.Append(errs, c.Upstream.Close())
		}
		c.closeErr = errs
	})
	return c.closeErr
}
