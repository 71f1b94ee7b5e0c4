package config

import (
	"fmt"
	"net"
)

// DiagnosticsConfig 诊断服务配置
type DiagnosticsConfig struct {
	// MetricsAddr Prometheus 指标 HTTP 监听地址
	// 空表示不导出指标，例如 "127.0.0.1:9464"
	MetricsAddr string `json:"metrics_addr,omitempty"`
}

// DefaultDiagnosticsConfig 返回默认诊断配置
func DefaultDiagnosticsConfig() DiagnosticsConfig {
	return DiagnosticsConfig{
		MetricsAddr: "", // 默认禁用
	}
}

// MetricsEnabled 是否导出指标
func (c DiagnosticsConfig) MetricsEnabled() bool {
	return c.MetricsAddr != ""
}

// Validate 验证诊断配置
func (c DiagnosticsConfig) Validate() error {
	if c.MetricsAddr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.MetricsAddr); err != nil {
		return fmt.Errorf("invalid metrics address %q: %w", c.MetricsAddr, err)
	}
	return nil
}
