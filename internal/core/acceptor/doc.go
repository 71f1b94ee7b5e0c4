// Package acceptor 接受公网客户端连接并连接到局域网服务器
//
// Acceptor 不持有任何监督状态，只在独立 goroutine 中执行两类阻塞操作：
//
//   - Serve: 在一个监听套接字上循环 Accept，把每个连接作为 Accepted 事件发出
//   - Connect: 为一个已接受的客户端连接拨号上游，把结果作为 Handoff 事件发出
//
// 事件通过通道交给监督循环处理。成功的 Handoff 携带新建的
// relay.ConnectionContext，所有权随之转移，Acceptor 不保留引用。
package acceptor
