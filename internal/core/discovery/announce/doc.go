// Package announce 实现局域网游戏服务器公告的接收与解析
//
// 局域网内的服务器周期性地向组播组 224.0.2.60:4445 发送公告数据报：
//
//	[AD]192.168.1.20:25565[/AD]
//	[AD]25565[/AD]
//
// 第二种形式只携带端口，地址取数据报的发送方地址。
//
// # 组件
//
//   - Parse: 纯函数，将一个数据报解析为 types.Endpoint
//   - Listener: 持有加入组播组的 UDP 套接字，Receive 返回原始数据报
//
// 解析失败的数据报返回包装了 ErrNoEndpoint 的错误，调用方统一忽略即可。
package announce
