// Package metrics 提供 mclanproxy 的监控指标
//
// 基于 Prometheus client_golang，所有指标注册在独立的 Registry 上：
//
//	mclanproxy_announcements_total{result="valid|ignored"}
//	mclanproxy_server_known
//	mclanproxy_listeners_opened_total
//	mclanproxy_connections_accepted_total
//	mclanproxy_connect_failures_total{kind="transient|fatal"}
//	mclanproxy_relays_active
//	mclanproxy_relays_finished_total{outcome="ok|error"}
//	mclanproxy_relay_duration_seconds
//	mclanproxy_relay_bytes_total{direction="client_to_upstream|upstream_to_client"}
//	mclanproxy_relay_throughput_bytes_per_second
//
// 配置了 Diagnostics.MetricsAddr 时，Server 在该地址上提供 GET /metrics。
//
// # 快速开始
//
//	p := metrics.NewPrometheus(clock.New())
//	p.AnnouncementReceived(true)
//	p.RelayBytes(metrics.DirectionClientToUpstream, 1024)
//
//	srv := metrics.NewServer("127.0.0.1:9100", p.Registry())
//	srv.Start()
//	defer srv.Stop(ctx)
//
// 不需要指标时使用 Nop。
package metrics
