package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dep2p/go-mclanproxy/config"
)

// ============================================================================
//                              配置加载（CLI 专用）
// ============================================================================

// 环境变量名
const (
	envPort        = "MCLANPROXY_PORT"
	envVerbosity   = "MCLANPROXY_VERBOSITY"
	envInterface   = "MCLANPROXY_INTERFACE"
	envMetricsAddr = "MCLANPROXY_METRICS_ADDR"
)

// cliFlags 命令行参数
type cliFlags struct {
	port        int
	verbose     bool
	extra       bool
	iface       string
	configFile  string
	metricsAddr string
	showVersion bool
	printConfig bool

	// set 记录显式给出的参数
	set map[string]bool
}

// parseFlags 解析命令行参数
func parseFlags(args []string, output io.Writer) (*cliFlags, error) {
	fs := flag.NewFlagSet("mclanproxy", flag.ContinueOnError)
	fs.SetOutput(output)

	f := &cliFlags{set: make(map[string]bool)}
	fs.IntVar(&f.port, "p", config.DefaultListenPort, "公网监听端口")
	fs.BoolVar(&f.verbose, "v", false, "详细日志：状态迁移、连接和转发统计")
	fs.BoolVar(&f.extra, "V", false, "更详细日志：额外输出原始公告和转发单元标识")
	fs.StringVar(&f.iface, "i", "", "接收公告的网络接口（名称或本地 IPv4 地址）")
	fs.StringVar(&f.configFile, "config", "", "JSON 配置文件路径")
	fs.StringVar(&f.metricsAddr, "metrics", "", "Prometheus 指标监听地址（如 127.0.0.1:9464）")
	fs.BoolVar(&f.showVersion, "version", false, "显示版本信息")
	fs.BoolVar(&f.printConfig, "print-config", false, "输出合并后的 JSON 配置并退出")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

// buildConfig 组合配置
//
// 优先级：命令行参数 > 环境变量 > 配置文件 > 默认值。
func buildConfig(f *cliFlags, getenv func(string) string) (*config.Config, error) {
	cfg := config.NewConfig()
	if f.configFile != "" {
		loaded, err := config.LoadFile(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", f.configFile, err)
		}
		cfg = loaded
	}

	if err := applyEnvOverrides(cfg, getenv); err != nil {
		return nil, err
	}

	if f.set["p"] {
		cfg.Transport.ListenPort = f.port
	}
	if f.set["i"] {
		cfg.Discovery.Interface = f.iface
	}
	if f.set["metrics"] {
		cfg.Diagnostics.MetricsAddr = f.metricsAddr
	}
	switch {
	case f.extra:
		cfg.Log.Verbosity = config.VerbosityExtra
	case f.verbose:
		cfg.Log.Verbosity = config.VerbosityVerbose
	}

	return config.ValidateAndFix(cfg)
}

// writeConfig 以 JSON 输出生效配置
func writeConfig(w io.Writer, cfg *config.Config) error {
	data, err := config.ToJSON(cfg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// applyEnvOverrides 应用环境变量覆盖配置
//
// 支持的环境变量（均使用 MCLANPROXY_ 前缀）：
//   - MCLANPROXY_PORT: 公网监听端口
//   - MCLANPROXY_VERBOSITY: 日志详细程度（silent/verbose/extra）
//   - MCLANPROXY_INTERFACE: 组播接口
//   - MCLANPROXY_METRICS_ADDR: 指标监听地址
func applyEnvOverrides(cfg *config.Config, getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(envPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid port %q", envPort, v)
		}
		cfg.Transport.ListenPort = port
	}

	if v := getenv(envVerbosity); v != "" {
		verbosity, err := config.ParseVerbosity(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envVerbosity, err)
		}
		cfg.Log.Verbosity = verbosity
	}

	if v := getenv(envInterface); v != "" {
		cfg.Discovery.Interface = v
	}

	if v := getenv(envMetricsAddr); v != "" {
		cfg.Diagnostics.MetricsAddr = v
	}
	return nil
}
