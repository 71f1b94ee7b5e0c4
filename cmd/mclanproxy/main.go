// Package main 提供 mclanproxy 命令行入口
//
// 使用方法:
//
//	mclanproxy -p 25565 -v
//
// 代理监听局域网游戏服务器的组播公告，并在公网端口上转发 TCP 连接。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dep2p/go-mclanproxy"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	f, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	if f.showVersion {
		fmt.Println(mclanproxy.VersionInfo())
		return nil
	}

	cfg, err := buildConfig(f, os.Getenv)
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	if f.printConfig {
		return writeConfig(os.Stdout, cfg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := mclanproxy.New(mclanproxy.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	return p.Run(ctx)
}
