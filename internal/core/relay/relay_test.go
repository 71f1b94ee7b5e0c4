package relay

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"io"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-mclanproxy/internal/core/metrics"
	"github.com/dep2p/go-mclanproxy/pkg/types"
)

var testEndpoint = types.NewEndpoint(netip.MustParseAddr("192.168.1.20"), 25565)

// relayPair 构造 client <-> relay <-> upstream 两对管道
//
// 返回测试侧的 clientApp、upstreamApp 和交给转发单元的上下文。
func relayPair(t *testing.T) (clientApp, upstreamApp net.Conn, cc *ConnectionContext) {
	t.Helper()
	clientApp, clientRelay := net.Pipe()
	upstreamRelay, upstreamApp := net.Pipe()
	t.Cleanup(func() {
		clientApp.Close()
		upstreamApp.Close()
	})
	cc = NewConnectionContext(clientRelay, upstreamRelay, testEndpoint, time.Now(), DefaultBufferSize)
	return clientApp, upstreamApp, cc
}

func runAsync(r *Relay) <-chan Result {
	ch := make(chan Result, 1)
	go func() { ch <- r.Run() }()
	return ch
}

func waitResult(t *testing.T, ch <-chan Result) Result {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not finish")
		return Result{}
	}
}

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

func TestRelay_TransfersLargePayload(t *testing.T) {
	clientApp, upstreamApp, cc := relayPair(t)
	prom := metrics.NewPrometheus(clock.NewMock())
	done := runAsync(New("unit-1", cc, clock.NewMock(), nil, prom))

	payload := randomBytes(t, 20000)
	go func() {
		_, _ = clientApp.Write(payload)
	}()

	got := make([]byte, len(payload))
	_, err := io.ReadFull(upstreamApp, got)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(payload, got))

	// 上游关闭连接，整个转发结束
	require.NoError(t, upstreamApp.Close())

	res := waitResult(t, done)
	assert.Equal(t, OutcomeOK, res.Outcome)
	assert.NoError(t, res.Err)
	assert.Equal(t, "unit-1", res.ID)
	assert.Equal(t, testEndpoint, res.Endpoint)
	assert.Equal(t, uint64(20000), res.ClientToUpstream)
	assert.Equal(t, uint64(0), res.UpstreamToClient)
	assert.Equal(t, int64(20000), prom.Throughput().Total())

	// 客户端连接也随之关闭
	_, err = clientApp.Read(make([]byte, 1))
	assert.Error(t, err)
}

func TestRelay_Bidirectional(t *testing.T) {
	clientApp, upstreamApp, cc := relayPair(t)
	done := runAsync(New("unit-2", cc, nil, nil, nil))

	request := randomBytes(t, 3000)
	response := randomBytes(t, 9000)

	go func() {
		_, _ = clientApp.Write(request)
	}()
	gotReq := make([]byte, len(request))
	_, err := io.ReadFull(upstreamApp, gotReq)
	require.NoError(t, err)
	assert.Equal(t, request, gotReq)

	go func() {
		_, _ = upstreamApp.Write(response)
	}()
	gotResp := make([]byte, len(response))
	_, err = io.ReadFull(clientApp, gotResp)
	require.NoError(t, err)
	assert.Equal(t, response, gotResp)

	require.NoError(t, clientApp.Close())

	res := waitResult(t, done)
	assert.Equal(t, OutcomeOK, res.Outcome)
	assert.Equal(t, uint64(3000), res.ClientToUpstream)
	assert.Equal(t, uint64(9000), res.UpstreamToClient)
}

func TestRelay_ImmediateEOF(t *testing.T) {
	clientApp, upstreamApp, cc := relayPair(t)
	done := runAsync(New("unit-3", cc, nil, nil, nil))

	require.NoError(t, clientApp.Close())

	res := waitResult(t, done)
	assert.Equal(t, OutcomeOK, res.Outcome)
	assert.Zero(t, res.ClientToUpstream)
	assert.Zero(t, res.UpstreamToClient)

	// 不支持半关闭：上游一侧也被关闭
	_, err := upstreamApp.Read(make([]byte, 1))
	assert.Error(t, err)
}

// failingConn 写操作总是失败
type failingConn struct {
	net.Conn
}

func (c failingConn) Write([]byte) (int, error) {
	return 0, errors.New("connection reset by peer")
}

func TestRelay_WriteErrorTerminates(t *testing.T) {
	clientApp, clientRelay := net.Pipe()
	upstreamRelay, upstreamApp := net.Pipe()
	defer clientApp.Close()
	defer upstreamApp.Close()

	cc := NewConnectionContext(clientRelay, failingConn{upstreamRelay}, testEndpoint, time.Now(), DefaultBufferSize)
	done := runAsync(New("unit-4", cc, nil, nil, nil))

	go func() {
		_, _ = clientApp.Write([]byte("hello"))
	}()

	res := waitResult(t, done)
	assert.Equal(t, OutcomeError, res.Outcome)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "write upstream")
	assert.Zero(t, res.ClientToUpstream)
}

func TestRelay_ClosedConnectionIsError(t *testing.T) {
	_, _, cc := relayPair(t)
	require.NoError(t, cc.Client.Close())

	res := New("unit-5", cc, nil, nil, nil).Run()
	assert.Equal(t, OutcomeError, res.Outcome)
	assert.ErrorIs(t, res.Err, io.ErrClosedPipe)
}

func TestConnectionContext_CloseOnce(t *testing.T) {
	_, _, cc := relayPair(t)
	require.NoError(t, cc.Close())
	require.NoError(t, cc.Close())
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "ok", OutcomeOK.String())
	assert.Equal(t, "error", OutcomeError.String())
	assert.Equal(t, "outcome(7)", Outcome(7).String())
}

func TestSupervisor_SpawnAndObserve(t *testing.T) {
	prom := metrics.NewPrometheus(clock.NewMock())
	s := NewSupervisor(clock.NewMock(), prom)
	ctx := context.Background()

	clientApp, _, cc := relayPair(t)
	id := s.Spawn(ctx, cc)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, s.Active())

	require.NoError(t, clientApp.Close())

	var res Result
	select {
	case res = <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("no completion report")
	}
	assert.Equal(t, id, res.ID)
	assert.Equal(t, OutcomeOK, res.Outcome)

	s.Observe(res)
	assert.Equal(t, 0, s.Active())
	s.Wait()
}

func TestSupervisor_UnitsAreIsolated(t *testing.T) {
	s := NewSupervisor(nil, nil)
	ctx := context.Background()

	clientA, upstreamA, ccA := relayPair(t)
	_, _, ccB := relayPair(t)
	require.NoError(t, ccB.Client.Close())

	idA := s.Spawn(ctx, ccA)
	idB := s.Spawn(ctx, ccB)
	assert.NotEqual(t, idA, idB)

	// B 出错结束
	res := <-s.Done()
	assert.Equal(t, idB, res.ID)
	assert.Equal(t, OutcomeError, res.Outcome)
	s.Observe(res)
	assert.Equal(t, 1, s.Active())

	// A 仍在正常转发
	go func() { _, _ = clientA.Write([]byte("still alive")) }()
	buf := make([]byte, len("still alive"))
	_, err := io.ReadFull(upstreamA, buf)
	require.NoError(t, err)
	assert.Equal(t, "still alive", string(buf))

	require.NoError(t, upstreamA.Close())
	res = <-s.Done()
	assert.Equal(t, idA, res.ID)
	s.Observe(res)
	assert.Equal(t, 0, s.Active())
	s.Wait()
}

func TestSupervisor_ContextCancelClosesUnits(t *testing.T) {
	s := NewSupervisor(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	_, upstreamApp, cc := relayPair(t)
	s.Spawn(ctx, cc)
	cancel()

	waited := make(chan struct{})
	go func() {
		s.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(5 * time.Second):
		t.Fatal("units did not stop after cancel")
	}

	_, err := upstreamApp.Read(make([]byte, 1))
	assert.Error(t, err)
}
