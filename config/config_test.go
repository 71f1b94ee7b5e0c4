package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewConfig 测试创建默认配置
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "224.0.2.60", cfg.Discovery.Group)
	assert.Equal(t, 4445, cfg.Discovery.Port)
	assert.Equal(t, 2*time.Second, cfg.Discovery.PollInterval.Duration())
	assert.Equal(t, 5*time.Second, cfg.Discovery.LivenessTimeout.Duration())
	assert.Equal(t, "0.0.0.0", cfg.Transport.ListenAddress)
	assert.Equal(t, 4446, cfg.Transport.ListenPort)
	assert.Equal(t, 5, cfg.Transport.Backlog)
	assert.Equal(t, 8192, cfg.Relay.BufferSize)
	assert.Equal(t, VerbositySilent, cfg.Log.Verbosity)
	assert.False(t, cfg.Diagnostics.MetricsEnabled())
}

// TestDiscoveryConfig_Validate 测试发现配置验证
func TestDiscoveryConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*DiscoveryConfig)
		wantErr bool
	}{
		{"default", func(*DiscoveryConfig) {}, false},
		{"unicast group", func(c *DiscoveryConfig) { c.Group = "10.0.0.1" }, true},
		{"ipv6 group", func(c *DiscoveryConfig) { c.Group = "ff02::1" }, true},
		{"garbage group", func(c *DiscoveryConfig) { c.Group = "nope" }, true},
		{"zero port", func(c *DiscoveryConfig) { c.Port = 0 }, true},
		{"huge port", func(c *DiscoveryConfig) { c.Port = 70000 }, true},
		{"zero poll", func(c *DiscoveryConfig) { c.PollInterval = 0 }, true},
		{"zero liveness", func(c *DiscoveryConfig) { c.LivenessTimeout = 0 }, true},
		{"interface", func(c *DiscoveryConfig) { *c = c.WithInterface("eth0") }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultDiscoveryConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestTransportConfig_Validate 测试传输配置验证
func TestTransportConfig_Validate(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		assert.NoError(t, DefaultTransportConfig().Validate())
	})

	t.Run("RandomPort", func(t *testing.T) {
		assert.NoError(t, DefaultTransportConfig().WithListenPort(0).Validate())
	})

	t.Run("IPv6Rejected", func(t *testing.T) {
		cfg := DefaultTransportConfig()
		cfg.ListenAddress = "::"
		assert.Error(t, cfg.Validate())
	})

	t.Run("BadBacklog", func(t *testing.T) {
		cfg := DefaultTransportConfig()
		cfg.Backlog = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("BadDialTimeout", func(t *testing.T) {
		cfg := DefaultTransportConfig()
		cfg.DialTimeout = 0
		assert.Error(t, cfg.Validate())
	})
}

// TestRelayConfig_Validate 测试转发配置验证
func TestRelayConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultRelayConfig().Validate())
	assert.Error(t, RelayConfig{BufferSize: 16}.Validate())
	assert.Error(t, RelayConfig{BufferSize: 4 << 20}.Validate())
}

// TestVerbosity 测试详细程度解析与级别映射
func TestVerbosity(t *testing.T) {
	for _, tt := range []struct {
		in    string
		want  Verbosity
		level slog.Level
	}{
		{"silent", VerbositySilent, slog.LevelError},
		{"verbose", VerbosityVerbose, slog.LevelInfo},
		{"extra", VerbosityExtra, slog.LevelDebug},
		{"2", VerbosityExtra, slog.LevelDebug},
	} {
		v, err := ParseVerbosity(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, v)
		assert.Equal(t, tt.level, v.Level())
	}

	_, err := ParseVerbosity("loud")
	assert.Error(t, err)

	data, err := json.Marshal(VerbosityVerbose)
	require.NoError(t, err)
	assert.JSONEq(t, `"verbose"`, string(data))

	var v Verbosity
	require.NoError(t, json.Unmarshal([]byte(`2`), &v))
	assert.Equal(t, VerbosityExtra, v)
}

// TestFromJSON 测试从 JSON 加载配置
func TestFromJSON(t *testing.T) {
	cfg, err := FromJSON([]byte(`{
		"transport": {"listen_port": 12345},
		"discovery": {"interface": "eth0", "liveness_timeout": "10s"},
		"log": {"verbosity": "extra"}
	}`))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 12345, cfg.Transport.ListenPort)
	assert.Equal(t, 5, cfg.Transport.Backlog, "未设置的字段保留默认值")
	assert.Equal(t, "eth0", cfg.Discovery.Interface)
	assert.Equal(t, 10*time.Second, cfg.Discovery.LivenessTimeout.Duration())
	assert.Equal(t, VerbosityExtra, cfg.Log.Verbosity)

	_, err = FromJSON([]byte(`{"discovery": {"poll_interval": "soon"}}`))
	assert.Error(t, err)
}

// TestLoadFile 测试从文件加载并回写
func TestLoadFile(t *testing.T) {
	cfg := NewConfig()
	cfg.Transport.ListenPort = 12345
	data, err := ToJSON(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

// TestValidateAndFix 测试自动修复
func TestValidateAndFix(t *testing.T) {
	cfg := NewConfig()
	cfg.Relay.BufferSize = 0
	cfg.Transport.Backlog = 0
	cfg.Discovery.PollInterval = Duration(time.Minute)

	fixed, err := ValidateAndFix(cfg)
	require.NoError(t, err)
	assert.Equal(t, DefaultBufferSize, fixed.Relay.BufferSize)
	assert.Equal(t, DefaultBacklog, fixed.Transport.Backlog)
	assert.Equal(t, fixed.Discovery.LivenessTimeout, fixed.Discovery.PollInterval)

	assert.Error(t, ValidateAll(nil))

	bad := NewConfig()
	bad.Discovery.Group = "bad"
	_, err = ValidateAndFix(bad)
	assert.Error(t, err)
}

// TestCloneConfig 测试克隆互不影响
func TestCloneConfig(t *testing.T) {
	cfg := NewConfig()
	cloned := CloneConfig(cfg)
	cloned.Transport.ListenPort = 1

	assert.Equal(t, DefaultListenPort, cfg.Transport.ListenPort)
	assert.Nil(t, CloneConfig(nil))
}

// TestDuration_JSON 测试时间间隔的 JSON 编解码
func TestDuration_JSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"1500ms"`), &d))
	assert.Equal(t, 1500*time.Millisecond, d.Duration())

	require.NoError(t, json.Unmarshal([]byte(`2000000000`), &d))
	assert.Equal(t, 2*time.Second, d.Duration())

	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))

	data, err := json.Marshal(Duration(5 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"5s"`, string(data))
}
