package mclanproxy

import (
	"fmt"
	"net"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-mclanproxy/config"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	config *config.Config

	// clock 时钟（测试时替换为 mock）
	clock clock.Clock

	// announceConn 预先打开的公告套接字（测试时替代组播套接字）
	announceConn net.PacketConn

	// userFxOptions 用户扩展的 fx 选项
	userFxOptions []fx.Option
}

func newOptions() *options {
	return &options{
		config: config.NewConfig(),
	}
}

// WithConfig 使用完整配置替换默认配置
//
// 之后的选项在此配置的基础上修改，因此 WithConfig 应放在最前。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("%w: nil config", ErrInvalidOption)
		}
		o.config = config.CloneConfig(cfg)
		return nil
	}
}

// WithPublicPort 设置公网监听端口
func WithPublicPort(port int) Option {
	return func(o *options) error {
		if port < 0 || port > 65535 {
			return fmt.Errorf("%w: public port %d out of range", ErrInvalidOption, port)
		}
		o.config.Transport = o.config.Transport.WithListenPort(port)
		return nil
	}
}

// WithListenAddress 设置公网监听地址（IPv4）
func WithListenAddress(addr string) Option {
	return func(o *options) error {
		o.config.Transport.ListenAddress = addr
		return nil
	}
}

// WithVerbosity 设置日志详细程度
func WithVerbosity(v config.Verbosity) Option {
	return func(o *options) error {
		o.config.Log.Verbosity = v
		return nil
	}
}

// WithInterface 设置接收公告的网络接口（名称或本地 IPv4 地址）
func WithInterface(iface string) Option {
	return func(o *options) error {
		o.config.Discovery = o.config.Discovery.WithInterface(iface)
		return nil
	}
}

// WithMetricsAddr 设置指标 HTTP 服务地址，空字符串表示不启用
func WithMetricsAddr(addr string) Option {
	return func(o *options) error {
		o.config.Diagnostics.MetricsAddr = addr
		return nil
	}
}

// WithClock 设置时钟
func WithClock(clk clock.Clock) Option {
	return func(o *options) error {
		o.clock = clk
		return nil
	}
}

// WithAnnounceConn 使用已打开的套接字接收公告，不加入组播组
func WithAnnounceConn(conn net.PacketConn) Option {
	return func(o *options) error {
		o.announceConn = conn
		return nil
	}
}

// WithFxOptions 追加 fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}
