//go:build !unix

package tcp

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"github.com/dep2p/go-mclanproxy/internal/util/sockopt"
)

// listenSocket 在非 unix 平台上使用系统默认 backlog
func listenSocket(addr netip.AddrPort, _ int) (net.Listener, error) {
	lc := net.ListenConfig{Control: sockopt.ReuseAddr}
	ln, err := lc.Listen(context.Background(), "tcp4", addr.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListen, err)
	}
	return ln, nil
}
