// Package supervisor 实现局域网服务器监督状态机
//
// Supervisor 是唯一拥有服务器状态的 goroutine，状态迁移：
//
//	NoServer  --有效公告-->            ServerKnown(e)   打开公网监听
//	ServerKnown(e) --相同端点-->       ServerKnown(e)   只刷新 lastSeen
//	ServerKnown(e) --不同端点 e'-->    ServerKnown(e')  关闭并重新打开监听
//	ServerKnown(e) --超时无公告-->      NoServer         关闭监听
//
// 监督循环在一个 select 中等待：公告、接受事件、拨号结果、转发完成，
// 以及仅在 ServerKnown 时存在的轮询定时器。定时器只触发存活检查。
//
// 不变量：公网监听套接字存在，当且仅当服务器已知且距 lastSeen 未超过存活超时。
// 每次打开监听套接字代数加一，来自已关闭套接字的接受事件按代数识别并丢弃。
//
// 打开监听失败、非暂时性的拨号错误、公告套接字错误以及非关闭导致的接受错误
// 都是致命错误，Run 返回该错误。
package supervisor
