// Package types 定义 go-p2p 的基础类型
package types

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ============================================================================
//                              Multiaddr - 统一地址类型
// ============================================================================

// Multiaddr 统一地址类型（值对象）
//
// Multiaddr 是内部唯一的地址表示形式。
// 所有用于拨号/升级/门控的地址必须是 Multiaddr 类型。
//
// 约束：
//   - String() 必须始终返回 canonical multiaddr（以 "/" 开头）
//
// 格式示例：
//   - /ip4/192.168.1.1/tcp/4001
//   - /ip6/::1/tcp/4001
//   - /dns4/example.com/tcp/4001
//   - /ip4/1.2.3.4/tcp/4001/p2p/<PeerID>
type Multiaddr string

// Multiaddr 错误定义
var (
	// ErrInvalidMultiaddrFormat 无效的 multiaddr 格式
	ErrInvalidMultiaddrFormat = errors.New("invalid multiaddr format")

	// ErrEmptyMultiaddr 空 multiaddr
	ErrEmptyMultiaddr = errors.New("empty multiaddr")

	// ErrMissingTransport 缺少传输协议
	ErrMissingTransport = errors.New("missing transport protocol")
)

// ============================================================================
//                              解析/构建
// ============================================================================

// ParseMultiaddr 解析并规范化 multiaddr
//
// 仅接受 multiaddr 格式输入（以 "/" 开头）。
// host:port 格式应在边界层使用 FromTCPAddr 转换后再进入 core。
func ParseMultiaddr(s string) (Multiaddr, error) {
	if s == "" {
		return "", ErrEmptyMultiaddr
	}

	s = strings.TrimSpace(s)

	if !strings.HasPrefix(s, "/") {
		return "", fmt.Errorf("%w: must start with /", ErrInvalidMultiaddrFormat)
	}

	parts := strings.Split(s, "/")
	if len(parts) < 3 {
		return "", ErrInvalidMultiaddrFormat
	}

	switch parts[1] {
	case "ip4", "ip6", "dns4", "dns6", "dnsaddr", "p2p":
		// 有效的起始组件
	default:
		return "", fmt.Errorf("%w: unknown protocol %q", ErrInvalidMultiaddrFormat, parts[1])
	}

	return Multiaddr(s), nil
}

// MustParseMultiaddr 解析 multiaddr，失败时 panic
//
// 仅用于常量初始化或测试代码，生产代码应使用 ParseMultiaddr。
func MustParseMultiaddr(s string) Multiaddr {
	ma, err := ParseMultiaddr(s)
	if err != nil {
		panic(err)
	}
	return ma
}

// FromTCPAddr 从 net.Addr 构建 TCP multiaddr
func FromTCPAddr(addr net.Addr) Multiaddr {
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		return ""
	}
	if ip4 := tcpAddr.IP.To4(); ip4 != nil {
		return Multiaddr(fmt.Sprintf("/ip4/%s/tcp/%d", ip4.String(), tcpAddr.Port))
	}
	return Multiaddr(fmt.Sprintf("/ip6/%s/tcp/%d", tcpAddr.IP.String(), tcpAddr.Port))
}

// String 返回 canonical 字符串表示
func (m Multiaddr) String() string {
	return string(m)
}

// IsEmpty 检查是否为空地址
func (m Multiaddr) IsEmpty() bool {
	return m == ""
}

// ============================================================================
//                              组件访问
// ============================================================================

// PeerID 返回嵌入的节点 ID（如果有 /p2p/<peerID> 组件）
//
// 没有 /p2p/ 组件或组件非法时返回空 PeerID。
func (m Multiaddr) PeerID() PeerID {
	if m == "" {
		return ""
	}
	parts := strings.Split(string(m), "/")
	for i := len(parts) - 2; i >= 0; i-- {
		if parts[i] == "p2p" && i+1 < len(parts) {
			id, err := ParsePeerID(parts[i+1])
			if err != nil {
				return ""
			}
			return id
		}
	}
	return ""
}

// WithPeer 返回追加了 /p2p/<peerID> 组件的地址
//
// 已含 /p2p/ 组件时返回原地址。
func (m Multiaddr) WithPeer(id PeerID) Multiaddr {
	if id.IsEmpty() || !m.PeerID().IsEmpty() {
		return m
	}
	return m + Multiaddr("/p2p/"+string(id))
}

// Transport 返回传输协议组件
//
// 返回值: "tcp", "udp", ""
func (m Multiaddr) Transport() string {
	for _, p := range strings.Split(string(m), "/") {
		switch p {
		case "tcp", "udp":
			return p
		}
	}
	return ""
}

// TCPAddr 将 multiaddr 转换为 host:port 形式
//
// 取第二段为主机、第四段为端口，要求第三段为 tcp；
// 首段协议名（ip4/ip6/dns4/dns6 等）不做校验。
func (m Multiaddr) TCPAddr() (string, error) {
	parts := strings.Split(string(m), "/")
	if len(parts) < 5 {
		return "", ErrMissingTransport
	}
	if parts[3] != "tcp" {
		return "", fmt.Errorf("%w: not a tcp multiaddr", ErrMissingTransport)
	}
	host := parts[2]
	port, err := strconv.Atoi(parts[4])
	if err != nil || port < 0 || port > 65535 {
		return "", fmt.Errorf("%w: invalid port %q", ErrInvalidMultiaddrFormat, parts[4])
	}
	return net.JoinHostPort(host, parts[4]), nil
}
