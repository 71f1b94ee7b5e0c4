// Package tcp 实现公网 TCP 传输
//
// 提供两个能力：
//
//   - Listen: 打开公网监听套接字（SO_REUSEADDR，backlog 默认 5）
//   - Dial: 连接局域网内发现的游戏服务器
//
// 拨号错误通过 IsTransientDialError 分类。暂时性错误（超时、拒绝、
// 主机或网络不可达等）只影响当前连接，其余错误被视为致命。
//
// # 使用示例
//
//	t := tcp.NewTransport(cfg.Transport)
//
//	ln, err := t.Listen()
//	client, err := ln.Accept()
//
//	upstream, err := t.Dial(ctx, endpoint)
package tcp
