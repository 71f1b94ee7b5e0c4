// Package logger 提供 mclanproxy 的统一日志系统
//
// 基于标准库 log/slog，支持：
//   - 按子系统配置日志级别
//   - 由详细程度（silent/verbose/extra）统一设置默认级别
//   - 环境变量配置（MCLANPROXY_LOG_LEVEL, MCLANPROXY_LOG_FORMAT）
//
// 使用示例:
//
//	package supervisor
//
//	import "github.com/dep2p/go-mclanproxy/internal/util/logger"
//
//	var log = logger.Logger("supervisor")
//
//	func foo() {
//	    log.Info("发现局域网服务器", "endpoint", ep)
//	    log.Debug("收到公告", "payload", payload)
//	}
package logger

import (
	"io"
	"log/slog"
	"sync"
)

var (
	// loggers 缓存各子系统的 Logger
	loggers sync.Map // map[string]*slog.Logger

	// handlers 缓存各子系统的 Handler（用于动态调整级别）
	handlers sync.Map // map[string]*subsystemHandler

	// globalLevel 通过 SetGlobalLevel 设置的默认级别（覆盖环境变量默认值）
	globalLevel   slog.Level
	globalLevelOK bool

	globalMu sync.RWMutex
)

func init() {
	globalFormat.Store(int32(ConfigFromEnv().Format))
}

// Logger 获取指定子系统的 Logger
//
// 同一子系统多次调用会返回相同的 Logger 实例。
func Logger(subsystem string) *slog.Logger {
	if l, ok := loggers.Load(subsystem); ok {
		return l.(*slog.Logger)
	}

	h := newHandler(subsystem, levelFor(subsystem), ConfigFromEnv().AddSource)
	logger := slog.New(h)

	actual, loaded := loggers.LoadOrStore(subsystem, logger)
	if !loaded {
		handlers.Store(subsystem, h)
	}
	return actual.(*slog.Logger)
}

// levelFor 计算子系统级别
//
// 环境变量中显式指定的子系统级别优先，其次是 SetGlobalLevel，最后是环境变量默认级别。
func levelFor(subsystem string) slog.Level {
	cfg := ConfigFromEnv()
	if level, ok := cfg.SubsystemLevels[subsystem]; ok {
		return level
	}
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLevelOK {
		return globalLevel
	}
	return cfg.DefaultLevel
}

// SetLevel 动态设置子系统的日志级别
func SetLevel(subsystem string, level slog.Level) {
	if h, ok := handlers.Load(subsystem); ok {
		h.(*subsystemHandler).SetLevel(level)
	}
}

// SetGlobalLevel 设置所有子系统的默认日志级别
//
// 对已创建和之后创建的 Logger 都生效；环境变量中显式指定的子系统级别不受影响。
func SetGlobalLevel(level slog.Level) {
	globalMu.Lock()
	globalLevel = level
	globalLevelOK = true
	globalMu.Unlock()

	explicit := ConfigFromEnv().SubsystemLevels
	handlers.Range(func(key, value any) bool {
		if _, ok := explicit[key.(string)]; !ok {
			value.(*subsystemHandler).SetLevel(level)
		}
		return true
	})
}

// SetFormat 设置所有 Logger 的输出格式，对已创建的 Logger 同样生效
func SetFormat(format LogFormat) {
	globalFormat.Store(int32(format))
}

// Discard 返回一个丢弃所有日志的 Logger
//
// 主要用于测试，避免日志输出干扰测试结果。
func Discard() *slog.Logger {
	return slog.New(DiscardHandler())
}

// With 创建带有预设属性的 Logger
func With(subsystem string, args ...any) *slog.Logger {
	return Logger(subsystem).With(args...)
}

// SetOutput 设置全局日志输出目标
//
// 由于使用了 dynamicWriter，已创建的 Logger 也会重定向到新的 writer。
func SetOutput(w io.Writer) {
	globalOutputMu.Lock()
	globalOutput = w
	globalOutputMu.Unlock()
}
