package announce

import (
	"context"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoopbackListener(t *testing.T, clk clock.Clock) (*Listener, net.Conn) {
	t.Helper()

	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	l := NewListener(conn, clk)
	t.Cleanup(func() { l.Close() })

	sender, err := net.Dial("udp4", conn.LocalAddr().String())
	require.NoError(t, err)
	t.Cleanup(func() { sender.Close() })

	return l, sender
}

func TestListener_Receive(t *testing.T) {
	mock := clock.NewMock()
	l, sender := newLoopbackListener(t, mock)

	_, err := sender.Write([]byte("[AD]25565[/AD]"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msg, err := l.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "[AD]25565[/AD]", string(msg.Payload))
	assert.Equal(t, netip.MustParseAddr("127.0.0.1"), msg.Sender)
	assert.Equal(t, mock.Now(), msg.ReceivedAt)

	ep, err := Parse(msg.Payload, msg.Sender)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:25565", ep.String())
}

func TestListener_PayloadIsCopied(t *testing.T) {
	l, sender := newLoopbackListener(t, clock.NewMock())
	ctx := context.Background()

	_, err := sender.Write([]byte("first"))
	require.NoError(t, err)
	first, err := l.Receive(ctx)
	require.NoError(t, err)

	_, err = sender.Write([]byte("second"))
	require.NoError(t, err)
	_, err = l.Receive(ctx)
	require.NoError(t, err)

	assert.Equal(t, "first", string(first.Payload))
}

func TestListener_ContextCancel(t *testing.T) {
	l, sender := newLoopbackListener(t, clock.NewMock())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := l.Receive(ctx)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Receive did not return after cancel")
	}

	// 取消之后仍可继续接收
	_, err := sender.Write([]byte("again"))
	require.NoError(t, err)
	msg, err := l.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "again", string(msg.Payload))
}

func TestListener_Close(t *testing.T) {
	l, _ := newLoopbackListener(t, clock.NewMock())

	errCh := make(chan error, 1)
	go func() {
		_, err := l.Receive(context.Background())
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrListenerClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("Receive did not return after Close")
	}
}

func TestResolveInterface(t *testing.T) {
	ifi, err := resolveInterface("")
	require.NoError(t, err)
	assert.Nil(t, ifi)

	_, err = resolveInterface("no-such-interface0")
	assert.ErrorIs(t, err, ErrInterfaceNotFound)

	_, err = resolveInterface("203.0.113.254")
	assert.ErrorIs(t, err, ErrInterfaceNotFound)

	ifi, err = resolveInterface("127.0.0.1")
	require.NoError(t, err)
	assert.NotNil(t, ifi)
}
