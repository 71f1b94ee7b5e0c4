// Package mclanproxy 把只在局域网组播中公告自己的游戏服务器暴露给远程客户端
//
// 局域网服务器周期性地向 224.0.2.60:4445 发送 "[AD]ip:port[/AD]" 公告。
// 代理监听这些公告，发现服务器后在公网端口（默认 4446）上接受 TCP 连接，
// 并把每个连接双向转发到发现的服务器。服务器移动到新端点时重新打开监听；
// 超过 5 秒没有公告则关闭监听，直到服务器再次出现。
//
// # 快速开始
//
//	p, err := mclanproxy.New(
//	    mclanproxy.WithPublicPort(4446),
//	    mclanproxy.WithVerbosity(config.VerbosityVerbose),
//	)
//	if err != nil {
//	    return err
//	}
//	return p.Run(ctx)
//
// # 架构
//
//	announce.Listener → supervisor.Supervisor → acceptor.Acceptor → relay.Supervisor → relay.Relay
//
// 各组件由 fx 组装，见 fx.go。
package mclanproxy
