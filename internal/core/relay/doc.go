// Package relay 实现单个客户端连接的双向转发
//
// # 组件
//
//   - Buffer: 单槽缓冲区，只有排空后才能再次填充
//   - ConnectionContext: 一对已建立的连接（客户端、上游）及其两个方向的缓冲区
//   - Relay: 在一对连接之间双向转发字节，直到任一方向结束
//   - Supervisor: 以独立 goroutine 启动每个 Relay，并通过通道上报完成结果
//
// # 转发模型
//
// 每个方向一个 pump goroutine：缓冲区为空时读取，非空时写出。
// 因此同一方向不会在写出完成前再次读取，背压自然传递到发送方。
//
// 任一方向遇到 EOF 即结束整个转发（不支持半关闭）；读写错误同样结束转发。
// 第一个结束事件决定结果，两个连接都被关闭，另一方向的 pump 随之退出，
// 缓冲区中未写出的字节被丢弃。
//
// 一个转发单元出错只产生一个 Result，不影响其他单元或监督循环。
package relay
