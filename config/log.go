package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// ============================================================================
//                              Verbosity - 日志详细程度
// ============================================================================

// Verbosity 日志详细程度
type Verbosity int

const (
	// VerbositySilent 静默：只输出致命错误
	VerbositySilent Verbosity = iota
	// VerbosityVerbose 详细：状态迁移、连接和转发生命周期
	VerbosityVerbose
	// VerbosityExtra 更详细：额外输出原始公告内容和转发单元标识
	VerbosityExtra
)

// String 返回名称
func (v Verbosity) String() string {
	switch v {
	case VerbositySilent:
		return "silent"
	case VerbosityVerbose:
		return "verbose"
	case VerbosityExtra:
		return "extra"
	default:
		return fmt.Sprintf("verbosity(%d)", int(v))
	}
}

// Level 返回对应的 slog 级别
func (v Verbosity) Level() slog.Level {
	switch {
	case v >= VerbosityExtra:
		return slog.LevelDebug
	case v == VerbosityVerbose:
		return slog.LevelInfo
	default:
		return slog.LevelError
	}
}

// ParseVerbosity 解析详细程度名称
//
// 接受 "silent"/"verbose"/"extra"，以及 "0"/"1"/"2"。
func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent", "quiet", "0", "":
		return VerbositySilent, nil
	case "verbose", "v", "1":
		return VerbosityVerbose, nil
	case "extra", "vv", "2":
		return VerbosityExtra, nil
	default:
		return VerbositySilent, fmt.Errorf("unknown verbosity %q", s)
	}
}

// MarshalJSON 实现 json.Marshaler 接口
func (v Verbosity) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON 实现 json.Unmarshaler 接口
//
// 支持字符串名称或数字。
func (v *Verbosity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := ParseVerbosity(s)
		if err != nil {
			return err
		}
		*v = parsed
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Verbosity(n)
		return nil
	}

	return fmt.Errorf("verbosity must be a string (e.g., \"verbose\") or number")
}

// ============================================================================
//                              LogConfig - 日志配置
// ============================================================================

// LogConfig 日志配置
type LogConfig struct {
	// Verbosity 日志详细程度
	Verbosity Verbosity `json:"verbosity"`

	// Format 输出格式（text 或 json）
	Format string `json:"format,omitempty"`
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Verbosity: VerbositySilent,
		Format:    "text",
	}
}

// Validate 验证日志配置
func (c LogConfig) Validate() error {
	if c.Verbosity < VerbositySilent || c.Verbosity > VerbosityExtra {
		return fmt.Errorf("invalid verbosity %d", int(c.Verbosity))
	}
	switch strings.ToLower(c.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (want text or json)", c.Format)
	}
	return nil
}
