package config

import (
	"errors"
	"fmt"
	"net/netip"
	"time"
)

// 公网监听默认值
const (
	// DefaultListenPort 默认公网端口
	DefaultListenPort = 4446

	// DefaultBacklog 监听队列长度
	DefaultBacklog = 5
)

// TransportConfig 传输层配置
//
// 公网侧是一个 TCP 监听套接字（所有接口，SO_REUSEADDR），
// 上游侧是到已发现服务器的普通 TCP 连接。
type TransportConfig struct {
	// ListenAddress 监听地址（IPv4），默认所有接口
	ListenAddress string `json:"listen_address"`

	// ListenPort 公网监听端口（0 表示随机端口，仅用于测试）
	ListenPort int `json:"listen_port"`

	// Backlog 未完成连接请求队列长度
	Backlog int `json:"backlog"`

	// DialTimeout 上游拨号超时
	DialTimeout Duration `json:"dial_timeout"`
}

// DefaultTransportConfig 返回默认传输配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		ListenAddress: "0.0.0.0",
		ListenPort:    DefaultListenPort,
		Backlog:       DefaultBacklog,
		DialTimeout:   Duration(30 * time.Second),
	}
}

// ListenAddr 解析监听地址
func (c TransportConfig) ListenAddr() (netip.Addr, error) {
	addr, err := netip.ParseAddr(c.ListenAddress)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("invalid listen address %q: %w", c.ListenAddress, err)
	}
	return addr.Unmap(), nil
}

// Validate 验证传输配置
func (c TransportConfig) Validate() error {
	addr, err := c.ListenAddr()
	if err != nil {
		return err
	}
	if !addr.Is4() {
		return fmt.Errorf("listen address %s must be IPv4", addr)
	}
	if c.ListenPort < 0 || c.ListenPort > 65535 {
		return errors.New("listen port must be in range 0-65535")
	}
	if c.Backlog < 1 {
		return errors.New("listen backlog must be at least 1")
	}
	if c.DialTimeout <= 0 {
		return errors.New("dial timeout must be positive")
	}
	return nil
}

// WithListenPort 设置公网端口
func (c TransportConfig) WithListenPort(port int) TransportConfig {
	c.ListenPort = port
	return c
}
