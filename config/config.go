// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON 加载配置
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Transport.ListenPort = 12345
//	cfg.Log.Verbosity = config.VerbosityVerbose
//
//	// 从 JSON 加载
//	cfg, err := config.FromJSON(data)
package config

// Config 是 mclanproxy 的完整配置结构
//
// 配置按照功能模块组织：
//   - Discovery: 局域网服务器公告发现（组播）
//   - Transport: 公网监听套接字和上游拨号
//   - Relay: 连接转发
//   - Log: 日志详细程度
//   - Diagnostics: 指标导出
type Config struct {
	// Discovery 公告发现配置
	Discovery DiscoveryConfig `json:"discovery"`

	// Transport 传输层配置
	Transport TransportConfig `json:"transport"`

	// Relay 转发配置
	Relay RelayConfig `json:"relay"`

	// Log 日志配置
	Log LogConfig `json:"log"`

	// Diagnostics 诊断服务配置
	Diagnostics DiagnosticsConfig `json:"diagnostics"`
}

// NewConfig 创建默认配置
//
// 返回的配置使用所有组件的默认值，适用于大多数场景。
func NewConfig() *Config {
	return &Config{
		Discovery:   DefaultDiscoveryConfig(),
		Transport:   DefaultTransportConfig(),
		Relay:       DefaultRelayConfig(),
		Log:         DefaultLogConfig(),
		Diagnostics: DefaultDiagnosticsConfig(),
	}
}

// Validate 验证配置的有效性
//
// 检查所有子配置是否有效，如果发现无效配置则返回错误。
func (c *Config) Validate() error {
	if err := c.Discovery.Validate(); err != nil {
		return err
	}
	if err := c.Transport.Validate(); err != nil {
		return err
	}
	if err := c.Relay.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Diagnostics.Validate(); err != nil {
		return err
	}
	return nil
}
