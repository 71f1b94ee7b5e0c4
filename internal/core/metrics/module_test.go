package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-mclanproxy/config"
)

// TestModule_Provides 测试模块提供的类型
func TestModule_Provides(t *testing.T) {
	var reporter Reporter
	var prom *Prometheus

	app := fxtest.New(t,
		fx.Supply(config.NewConfig()),
		Module,
		fx.Populate(&reporter, &prom),
	)
	defer app.RequireStart().RequireStop()

	require.NotNil(t, reporter)
	assert.Same(t, prom, reporter)
}

// TestModule_WithoutConfig 测试无配置时也能加载
func TestModule_WithoutConfig(t *testing.T) {
	app := fxtest.New(t,
		Module,
		fx.Invoke(func(r Reporter) {
			assert.NotNil(t, r)
		}),
	)
	defer app.RequireStart().RequireStop()
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

// TestModule_ServesMetrics 测试配置了地址时提供 /metrics
func TestModule_ServesMetrics(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Diagnostics.MetricsAddr = freeAddr(t)

	var reporter Reporter
	app := fxtest.New(t,
		fx.Supply(cfg),
		fx.Provide(func() clock.Clock { return clock.NewMock() }),
		Module,
		fx.Populate(&reporter),
	)
	app.RequireStart()
	defer app.RequireStop()

	reporter.ConnectionAccepted()

	resp, err := http.Get("http://" + cfg.Diagnostics.MetricsAddr + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "mclanproxy_connections_accepted_total 1"))
}

func TestServer_StopBeforeStart(t *testing.T) {
	srv := NewServer("127.0.0.1:0", NewPrometheus(nil).Registry())
	assert.Nil(t, srv.Addr())
	assert.NoError(t, srv.Stop(context.Background()))
}
