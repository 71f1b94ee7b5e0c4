package config

import (
	"errors"
	"fmt"
)

// ValidateAll 验证整个配置的有效性
//
// 这是 Config.Validate() 的别名，额外处理 nil 配置。
func ValidateAll(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}

// ValidateAndFix 验证配置并尝试自动修复常见问题
//
// 可修复的问题：
//   - 缓冲区大小为 0 -> 使用默认值
//   - 轮询间隔不为正 -> 使用默认值
//   - 轮询间隔大于存活超时 -> 缩短为存活超时
//   - 监听队列长度为 0 -> 使用默认值
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	if c.Relay.BufferSize == 0 {
		c.Relay.BufferSize = DefaultBufferSize
	}
	if c.Discovery.PollInterval <= 0 {
		c.Discovery.PollInterval = DefaultDiscoveryConfig().PollInterval
	}
	if c.Discovery.LivenessTimeout > 0 && c.Discovery.PollInterval > c.Discovery.LivenessTimeout {
		c.Discovery.PollInterval = c.Discovery.LivenessTimeout
	}
	if c.Transport.Backlog == 0 {
		c.Transport.Backlog = DefaultBacklog
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed after fixes: %w", err)
	}

	return c, nil
}
