package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	t.Cleanup(func() { SetOutput(&bytes.Buffer{}) })

	SetGlobalLevel(slog.LevelInfo)
	log := Logger("test")
	log.Info("test message", "key", "value")

	output := buf.String()
	assert.Contains(t, output, "test message")
	assert.Contains(t, output, "key=value")
	assert.Contains(t, output, "subsystem=test")
	assert.Contains(t, output, "level=info")
}

func TestSetOutput_ExistingLogger(t *testing.T) {
	SetGlobalLevel(slog.LevelInfo)
	log := Logger("test2")

	buf := &bytes.Buffer{}
	SetOutput(buf)
	t.Cleanup(func() { SetOutput(&bytes.Buffer{}) })

	log.Info("after switch", "key", "value")
	assert.Contains(t, buf.String(), "after switch")
}

func TestSetGlobalLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	t.Cleanup(func() { SetOutput(&bytes.Buffer{}) })

	SetGlobalLevel(slog.LevelError)
	log := Logger("level-test")
	log.Info("hidden")
	assert.False(t, log.Enabled(context.Background(), slog.LevelInfo))
	assert.NotContains(t, buf.String(), "hidden")

	SetGlobalLevel(slog.LevelDebug)
	log.Debug("shown")
	assert.Contains(t, buf.String(), "shown")

	// 派生 Logger 共享级别
	derived := log.With("unit", "abc")
	SetGlobalLevel(slog.LevelError)
	assert.False(t, derived.Enabled(context.Background(), slog.LevelDebug))
}

func TestSetLevel_Subsystem(t *testing.T) {
	SetGlobalLevel(slog.LevelError)
	a := Logger("sub-a")
	b := Logger("sub-b")

	SetLevel("sub-a", slog.LevelDebug)
	assert.True(t, a.Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, b.Enabled(context.Background(), slog.LevelDebug))
}

func TestLogger_Cached(t *testing.T) {
	assert.Same(t, Logger("cached"), Logger("cached"))
}

func TestParseLevelConfig(t *testing.T) {
	cfg := &Config{SubsystemLevels: map[string]slog.Level{}}
	parseLevelConfig(cfg, "relay=debug, supervisor=warn ,info,bogus=nope")

	assert.Equal(t, slog.LevelInfo, cfg.DefaultLevel)
	assert.Equal(t, slog.LevelDebug, cfg.LevelForSubsystem("relay"))
	assert.Equal(t, slog.LevelWarn, cfg.LevelForSubsystem("supervisor"))
	assert.Equal(t, slog.LevelInfo, cfg.LevelForSubsystem("other"))
	_, ok := cfg.SubsystemLevels["bogus"]
	assert.False(t, ok)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvLogFormat, "json")
	ResetConfig()
	t.Cleanup(ResetConfig)

	cfg := ConfigFromEnv()
	require.NotNil(t, cfg)
	assert.Equal(t, slog.LevelDebug, cfg.DefaultLevel)
	assert.Equal(t, FormatJSON, cfg.Format)
}

func TestSetFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	SetGlobalLevel(slog.LevelInfo)
	t.Cleanup(func() {
		SetOutput(&bytes.Buffer{})
		SetFormat(FormatText)
	})

	log := Logger("format-test").With("n", 1)

	SetFormat(FormatJSON)
	log.Info("hello")
	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(line, "{"))
	assert.Contains(t, line, `"subsystem":"format-test"`)
	assert.Contains(t, line, `"ts":`)
	assert.Contains(t, line, `"n":1`)

	buf.Reset()
	SetFormat(FormatText)
	log.Info("hello")
	assert.Contains(t, buf.String(), "subsystem=format-test")
	assert.Contains(t, buf.String(), "n=1")
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatText, ParseFormat("bogus"))
}

func TestDiscard(t *testing.T) {
	log := Discard()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}
