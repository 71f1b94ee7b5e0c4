package config

import (
	"errors"
	"fmt"
	"net/netip"
	"time"
)

// 公告发现默认值
const (
	// DefaultAnnounceGroup 局域网世界公告的组播地址
	DefaultAnnounceGroup = "224.0.2.60"

	// DefaultAnnouncePort 局域网世界公告的 UDP 端口
	DefaultAnnouncePort = 4445
)

// DiscoveryConfig 公告发现配置
//
// 游戏服务器周期性地向组播组广播 "[AD]port[/AD]" 形式的公告，
// 代理据此得知服务器的地址和端口，并监督其存活状态。
type DiscoveryConfig struct {
	// Group 组播组地址（IPv4）
	Group string `json:"group"`

	// Port 公告 UDP 端口
	Port int `json:"port"`

	// Interface 加入组播组使用的网络接口
	// 可以是接口名（如 "eth0"）或该接口上的 IPv4 地址；空表示由系统选择
	Interface string `json:"interface,omitempty"`

	// PollInterval 服务器已知时的轮询间隔，用于评估存活超时
	PollInterval Duration `json:"poll_interval"`

	// LivenessTimeout 超过该时间没有收到公告则认为服务器已消失
	LivenessTimeout Duration `json:"liveness_timeout"`
}

// DefaultDiscoveryConfig 返回默认发现配置
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		Group:           DefaultAnnounceGroup,
		Port:            DefaultAnnouncePort,
		Interface:       "",
		PollInterval:    Duration(2 * time.Second),
		LivenessTimeout: Duration(5 * time.Second),
	}
}

// GroupAddr 解析组播组地址
func (c DiscoveryConfig) GroupAddr() (netip.Addr, error) {
	addr, err := netip.ParseAddr(c.Group)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("invalid discovery group %q: %w", c.Group, err)
	}
	return addr.Unmap(), nil
}

// Validate 验证发现配置
func (c DiscoveryConfig) Validate() error {
	group, err := c.GroupAddr()
	if err != nil {
		return err
	}
	if !group.Is4() || !group.IsMulticast() {
		return fmt.Errorf("discovery group %s must be an IPv4 multicast address", group)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("discovery port must be in range 1-65535")
	}
	if c.PollInterval <= 0 {
		return errors.New("discovery poll interval must be positive")
	}
	if c.LivenessTimeout <= 0 {
		return errors.New("discovery liveness timeout must be positive")
	}
	return nil
}

// WithInterface 设置组播接口
func (c DiscoveryConfig) WithInterface(iface string) DiscoveryConfig {
	c.Interface = iface
	return c
}
