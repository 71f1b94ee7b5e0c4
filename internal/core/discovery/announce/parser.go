package announce

import (
	"bytes"
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/dep2p/go-mclanproxy/pkg/types"
)

const (
	// MaxPayloadSize 公告数据报的最大有效长度
	MaxPayloadSize = 255

	openTag  = "[AD]"
	closeTag = "[/AD]"
)

// Parse 将一个公告数据报解析为服务器端点
//
// payload 超过 MaxPayloadSize 的部分被丢弃，第一个 NUL 之后的内容也被丢弃。
// 标记之间的内容为 "ip:port" 时地址覆盖 sender；只有端口时使用 sender 地址。
func Parse(payload []byte, sender netip.Addr) (types.Endpoint, error) {
	if len(payload) > MaxPayloadSize {
		payload = payload[:MaxPayloadSize]
	}
	if i := bytes.IndexByte(payload, 0); i >= 0 {
		payload = payload[:i]
	}

	content, err := extract(string(payload))
	if err != nil {
		return types.Endpoint{}, err
	}

	addr := sender
	portText := content
	if i := strings.LastIndexByte(content, ':'); i >= 0 {
		portText = content[i+1:]
		if host := strings.TrimSpace(content[:i]); host != "" {
			parsed, err := netip.ParseAddr(strings.Trim(host, "[]"))
			if err != nil {
				return types.Endpoint{}, fmt.Errorf("%w: %q", ErrInvalidAddress, host)
			}
			addr = parsed
		}
	}
	if !addr.IsValid() {
		return types.Endpoint{}, fmt.Errorf("%w: no sender address", ErrInvalidAddress)
	}

	port, err := parsePort(portText)
	if err != nil {
		return types.Endpoint{}, err
	}
	return types.NewEndpoint(addr, port), nil
}

// extract 返回 [AD] 与其后第一个 [/AD] 之间的内容
func extract(s string) (string, error) {
	start := strings.Index(s, openTag)
	if start < 0 {
		return "", ErrNoAdvertisement
	}
	s = s[start+len(openTag):]
	end := strings.Index(s, closeTag)
	if end < 0 {
		return "", ErrUnterminatedAdvertisement
	}
	return s[:end], nil
}

// parsePort 解析十进制端口，允许前后空格
func parsePort(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidPort)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidPort, s)
		}
	}
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidPort, s)
	}
	return uint16(n), nil
}
