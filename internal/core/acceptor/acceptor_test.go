package acceptor

import (
	"context"
	"errors"
	"io"
	"net"
	"net/netip"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-mclanproxy/internal/core/relay"
	"github.com/dep2p/go-mclanproxy/pkg/types"
)

var testEndpoint = types.NewEndpoint(netip.MustParseAddr("127.0.0.1"), 25565)

// fakeDialer 返回预设的连接或错误
type fakeDialer struct {
	conn net.Conn
	err  error
	got  chan types.Endpoint
}

func (d *fakeDialer) Dial(_ context.Context, ep types.Endpoint) (net.Conn, error) {
	if d.got != nil {
		d.got <- ep
	}
	return d.conn, d.err
}

func recvAccepted(t *testing.T, a *Acceptor) Accepted {
	t.Helper()
	select {
	case ev := <-a.Accepted():
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("no accept event")
		return Accepted{}
	}
}

func recvHandoff(t *testing.T, a *Acceptor) Handoff {
	t.Helper()
	select {
	case h := <-a.Results():
		return h
	case <-time.After(5 * time.Second):
		t.Fatal("no handoff")
		return Handoff{}
	}
}

func TestAcceptor_ServeEmitsGeneration(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)

	mock := clock.NewMock()
	a := New(&fakeDialer{}, relay.DefaultBufferSize, mock, nil)
	ctx := context.Background()
	a.Serve(ctx, 7, ln)

	c, err := net.Dial("tcp4", ln.Addr().String())
	require.NoError(t, err)
	defer c.Close()

	ev := recvAccepted(t, a)
	require.NoError(t, ev.Err)
	require.NotNil(t, ev.Conn)
	defer ev.Conn.Close()
	assert.Equal(t, uint64(7), ev.Generation)
	assert.Equal(t, mock.Now(), ev.At)

	// 关闭监听器后 accept 循环静默退出
	require.NoError(t, ln.Close())
	a.Wait()
	select {
	case ev := <-a.Accepted():
		t.Fatalf("unexpected event after close: %+v", ev)
	default:
	}
}

// brokenListener Accept 返回非关闭错误
type brokenListener struct {
	net.Listener
}

func (brokenListener) Accept() (net.Conn, error) {
	return nil, os.NewSyscallError("accept", syscall.EMFILE)
}

func TestAcceptor_ServeReportsAcceptError(t *testing.T) {
	a := New(&fakeDialer{}, relay.DefaultBufferSize, nil, nil)
	a.Serve(context.Background(), 1, brokenListener{})

	ev := recvAccepted(t, a)
	require.Error(t, ev.Err)
	assert.ErrorIs(t, ev.Err, syscall.EMFILE)
	assert.Nil(t, ev.Conn)
	a.Wait()
}

func TestAcceptor_ConnectSuccess(t *testing.T) {
	upstreamRelay, upstreamApp := net.Pipe()
	defer upstreamApp.Close()
	clientApp, clientRelay := net.Pipe()
	defer clientApp.Close()

	d := &fakeDialer{conn: upstreamRelay, got: make(chan types.Endpoint, 1)}
	a := New(d, 1024, nil, nil)
	at := time.Unix(1000, 0)
	a.Connect(context.Background(), clientRelay, testEndpoint, at)

	h := recvHandoff(t, a)
	require.NoError(t, h.Err)
	require.NotNil(t, h.Context)
	assert.Equal(t, testEndpoint, <-d.got)
	assert.Equal(t, testEndpoint, h.Context.Endpoint)
	assert.Equal(t, at, h.Context.AcceptedAt)
	assert.Same(t, clientRelay, h.Context.Client)
	assert.Same(t, upstreamRelay, h.Context.Upstream)
	assert.Equal(t, 1024, h.Context.ToUpstream().Cap())
	require.NoError(t, h.Context.Close())
	a.Wait()
}

func TestAcceptor_ConnectTransientFailure(t *testing.T) {
	clientApp, clientRelay := net.Pipe()
	defer clientApp.Close()

	refused := &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}
	a := New(&fakeDialer{err: refused}, relay.DefaultBufferSize, nil, nil)
	a.Connect(context.Background(), clientRelay, testEndpoint, time.Now())

	h := recvHandoff(t, a)
	require.Error(t, h.Err)
	assert.True(t, h.Transient)
	assert.Nil(t, h.Context)

	// 客户端连接被关闭
	_, err := clientApp.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
	a.Wait()
}

func TestAcceptor_ConnectFatalFailure(t *testing.T) {
	clientApp, clientRelay := net.Pipe()
	defer clientApp.Close()

	a := New(&fakeDialer{err: errors.New("no buffer space")}, relay.DefaultBufferSize, nil, nil)
	a.Connect(context.Background(), clientRelay, testEndpoint, time.Now())

	h := recvHandoff(t, a)
	require.Error(t, h.Err)
	assert.False(t, h.Transient)
	a.Wait()
}

func TestAcceptor_ConnectCanceledContext(t *testing.T) {
	upstreamRelay, upstreamApp := net.Pipe()
	defer upstreamApp.Close()
	clientApp, clientRelay := net.Pipe()
	defer clientApp.Close()

	a := New(&fakeDialer{conn: upstreamRelay}, relay.DefaultBufferSize, nil, nil)
	// 填满结果通道，使投递只能等待 ctx
	for i := 0; i < eventQueueSize; i++ {
		a.results <- Handoff{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.Connect(ctx, clientRelay, testEndpoint, time.Now())
	cancel()
	a.Wait()

	// 未投递的上下文被关闭
	_, err := upstreamApp.Read(make([]byte, 1))
	assert.Error(t, err)
}
