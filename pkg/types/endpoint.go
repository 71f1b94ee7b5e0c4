package types

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
)

// ============================================================================
//                              Endpoint - 服务器端点
// ============================================================================

// Endpoint 一个可达的服务器地址（address, port）
//
// Endpoint 是不可变的值类型，可以直接用 == 比较。
type Endpoint struct {
	addr netip.Addr
	port uint16
}

// NewEndpoint 创建 Endpoint
//
// IPv4-mapped IPv6 地址会被还原为 IPv4，保证相同地址比较相等。
func NewEndpoint(addr netip.Addr, port uint16) Endpoint {
	return Endpoint{addr: addr.Unmap(), port: port}
}

// EndpointFromAddrPort 从 netip.AddrPort 创建 Endpoint
func EndpointFromAddrPort(ap netip.AddrPort) Endpoint {
	return NewEndpoint(ap.Addr(), ap.Port())
}

// ParseEndpoint 解析 "ip:port" 格式的端点
func ParseEndpoint(s string) (Endpoint, error) {
	ap, err := netip.ParseAddrPort(s)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	return EndpointFromAddrPort(ap), nil
}

// Addr 返回地址
func (e Endpoint) Addr() netip.Addr {
	return e.addr
}

// Port 返回端口
func (e Endpoint) Port() uint16 {
	return e.port
}

// IsValid 是否为有效端点（地址已设置）
func (e Endpoint) IsValid() bool {
	return e.addr.IsValid()
}

// AddrPort 返回 netip.AddrPort 形式
func (e Endpoint) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(e.addr, e.port)
}

// TCPAddr 返回 *net.TCPAddr 形式，用于拨号
func (e Endpoint) TCPAddr() *net.TCPAddr {
	return net.TCPAddrFromAddrPort(e.AddrPort())
}

// String 返回 "addr:port"
func (e Endpoint) String() string {
	if !e.addr.IsValid() {
		return "<none>"
	}
	return net.JoinHostPort(e.addr.String(), strconv.Itoa(int(e.port)))
}
