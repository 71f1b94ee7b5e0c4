package config

import "errors"

// DefaultBufferSize 每个方向的转发缓冲区大小
const DefaultBufferSize = 8192

// RelayConfig 连接转发配置
//
// 每个连接有两个单槽缓冲区（客户端→上游、上游→客户端），
// 缓冲区非空时不再从源端读取，形成自然的背压。
type RelayConfig struct {
	// BufferSize 单方向缓冲区大小（字节）
	BufferSize int `json:"buffer_size"`
}

// DefaultRelayConfig 返回默认转发配置
func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		BufferSize: DefaultBufferSize,
	}
}

// Validate 验证转发配置
func (c RelayConfig) Validate() error {
	if c.BufferSize < 512 {
		return errors.New("relay buffer size must be at least 512")
	}
	if c.BufferSize > 1<<20 {
		return errors.New("relay buffer size must be at most 1 MiB")
	}
	return nil
}
