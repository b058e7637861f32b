// Package upgrader 实现连接升级器
package upgrader

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	mss "github.com/multiformats/go-multistream"

	pkgif "github.com/twiss/go-p2p/pkg/interfaces"
	"github.com/twiss/go-p2p/pkg/types"
)

const (
	// defaultNegotiateTimeout 连接级协商（安全/复用器）默认超时
	defaultNegotiateTimeout = 60 * time.Second
)

// aLongTimeAgo ctx 取消时用于打断阻塞 IO 的截止时间
var aLongTimeAgo = time.Unix(1, 0)

// negotiateSecurity 协商安全协议
//
// 服务器端使用 MultistreamMuxer.Negotiate()（响应者），
// 客户端使用 SelectOneOf()（发起者），提议顺序即配置顺序。
func (u *Upgrader) negotiateSecurity(ctx context.Context, conn net.Conn, isServer bool) (pkgif.SecureTransport, error) {
	deadline := time.Now().Add(defaultNegotiateTimeout)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}
	defer conn.SetDeadline(time.Time{})

	var selectedProto string
	var err error

	if isServer {
		muxer := mss.NewMultistreamMuxer[string]()
		for _, st := range u.securityTransports {
			muxer.AddHandler(string(st.ID()), nil)
		}

		selectedProto, _, err = muxer.Negotiate(conn)
		if err != nil {
			return nil, fmt.Errorf("server security negotiation: %w", err)
		}
	} else {
		protocols := make([]string, len(u.securityTransports))
		for i, st := range u.securityTransports {
			protocols[i] = string(st.ID())
		}

		selectedProto, err = mss.SelectOneOf(protocols, conn)
		if err != nil {
			return nil, fmt.Errorf("client security negotiation: %w", err)
		}
	}

	for _, st := range u.securityTransports {
		if string(st.ID()) == selectedProto {
			return st, nil
		}
	}

	return nil, fmt.Errorf("negotiated protocol %s not found", selectedProto)
}

// negotiateMuxer 协商多路复用器
//
// 语义与安全协议协商一致：入站响应者，出站发起者。
func (u *Upgrader) negotiateMuxer(ctx context.Context, conn net.Conn, isServer bool) (pkgif.StreamMuxerFactory, error) {
	deadline := time.Now().Add(defaultNegotiateTimeout)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}
	defer conn.SetDeadline(time.Time{})

	var selectedProto string
	var err error

	if isServer {
		muxer := mss.NewMultistreamMuxer[string]()
		for _, sm := range u.streamMuxers {
			muxer.AddHandler(string(sm.ID()), nil)
		}

		selectedProto, _, err = muxer.Negotiate(conn)
		if err != nil {
			return nil, fmt.Errorf("server muxer negotiation: %w", err)
		}
	} else {
		protocols := make([]string, len(u.streamMuxers))
		for i, sm := range u.streamMuxers {
			protocols[i] = string(sm.ID())
		}

		selectedProto, err = mss.SelectOneOf(protocols, conn)
		if err != nil {
			return nil, fmt.Errorf("client muxer negotiation: %w", err)
		}
	}

	for _, sm := range u.streamMuxers {
		if string(sm.ID()) == selectedProto {
			return sm, nil
		}
	}

	return nil, fmt.Errorf("negotiated muxer %s not found", selectedProto)
}

// handleInboundProtocol 入站流的应用协议协商（响应者）
//
// protocols 是流到达时注册表的当前快照。
// 协商不发送乐观字节；返回后流上的下一个字节就是应用数据。
func handleInboundProtocol(stream pkgif.MuxedStream, protocols []types.ProtocolID) (types.ProtocolID, error) {
	muxer := mss.NewMultistreamMuxer[string]()
	for _, p := range protocols {
		muxer.AddHandler(string(p), nil)
	}

	selected, _, err := muxer.Negotiate(stream)
	if err != nil {
		return "", err
	}
	return types.ProtocolID(selected), nil
}

// selectOutboundProtocol 出站流的应用协议协商（发起者）
//
// 单协议时使用惰性选择：协商报文随首批应用数据一起发出
// （乐观协议选择），返回的读写端成为流的规范 IO。
// 多协议时逐个提议，返回第一个被接受的协议。
func selectOutboundProtocol(stream pkgif.MuxedStream, protocols []types.ProtocolID) (types.ProtocolID, io.ReadWriteCloser, error) {
	if len(protocols) == 1 {
		lazy := mss.NewMSSelect(stream, string(protocols[0]))
		return protocols[0], lazy, nil
	}

	offer := make([]string, len(protocols))
	for i, p := range protocols {
		offer[i] = string(p)
	}

	selected, err := mss.SelectOneOf(offer, stream)
	if err != nil {
		return "", nil, err
	}
	return types.ProtocolID(selected), stream, nil
}
