package http

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/http/httptrace"
	"sync"
	"time"

	"github.com/wesleyorama2/tracehttp/internal/diag"
)

// Sources attached to the diagnostic events the transport emits.
const (
	SourcePool        = "transport::pool"
	SourceResolver    = "resolver::lookup"
	SourceConnect     = "transport::connect::http"
	SourceTLS         = "tls::client"
	SourceFramedWrite = "proto::framed_write"
	SourceFramedRead  = "proto::framed_read"
)

// tracer turns httptrace callbacks into diagnostic events for one exchange.
type tracer struct {
	emit *diag.Emitter

	mu         sync.Mutex
	remoteAddr string

	onWritten func()
}

func newTracer(emit *diag.Emitter, onWritten func()) *tracer {
	return &tracer{emit: emit, onWritten: onWritten}
}

// RemoteAddr is the peer of the last connection handed to the exchange.
func (t *tracer) RemoteAddr() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remoteAddr
}

func (t *tracer) clientTrace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		GetConn: func(hostPort string) {
			t.emit.Emit(SourcePool, "checkout waiting for idle connection: "+hostPort)
		},
		DNSStart: func(info httptrace.DNSStartInfo) {
			t.emit.Emit(SourceResolver, "querying: "+info.Host)
		},
		// DNS done is inferred from "connecting to"; these two events only
		// show up under --trace-events, as does "handshake failed" below.
		DNSDone: func(info httptrace.DNSDoneInfo) {
			if info.Err != nil {
				t.emit.Emit(SourceResolver, fmt.Sprintf("lookup failed: %v", info.Err))
				return
			}
			t.emit.Emit(SourceResolver, fmt.Sprintf("resolved %d addresses", len(info.Addrs)))
		},
		ConnectStart: func(network, addr string) {
			t.emit.Emit(SourceConnect, "connecting to "+addr)
		},
		ConnectDone: func(network, addr string, err error) {
			if err != nil {
				t.emit.Emit(SourceConnect, fmt.Sprintf("connect error for %s: %v", addr, err))
				return
			}
			t.emit.Emit(SourceConnect, "connected to "+addr)
		},
		TLSHandshakeStart: func() {
			t.emit.Emit(SourceTLS, "Sending ClientHello Message")
		},
		TLSHandshakeDone: func(state tls.ConnectionState, err error) {
			if err != nil {
				t.emit.Emit(SourceTLS, fmt.Sprintf("handshake failed: %v", err))
				return
			}
			t.emit.Emit(SourceTLS, "Using ciphersuite "+tls.CipherSuiteName(state.CipherSuite))
			subject := "<none>"
			if len(state.PeerCertificates) > 0 {
				subject = state.PeerCertificates[0].Subject.String()
			}
			t.emit.Emit(SourceTLS, "Server cert is "+subject)
		},
		GotConn: func(info httptrace.GotConnInfo) {
			remote := ""
			if info.Conn != nil && info.Conn.RemoteAddr() != nil {
				remote = info.Conn.RemoteAddr().String()
			}
			t.mu.Lock()
			t.remoteAddr = remote
			t.mu.Unlock()
			t.emit.Emit(SourceConnect, fmt.Sprintf("connect; reused=%t remote=%s", info.Reused, remote))
		},
		WroteRequest: func(info httptrace.WroteRequestInfo) {
			t.emit.Emit(SourceFramedWrite, fmt.Sprintf("send request; err=%v", info.Err))
			if info.Err == nil && t.onWritten != nil {
				t.onWritten()
			}
		},
		GotFirstResponseByte: func() {
			t.emit.Emit(SourceFramedRead, "received first response byte")
		},
	}
}

// newTransport builds a transport with an empty pool so every exchange walks
// the full connection setup. tlsConfig is only attached for https targets.
func newTransport(tlsConfig *tls.Config, budget time.Duration) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   budget,
		KeepAlive: 30 * time.Second,
	}
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          1,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   budget,
		ExpectContinueTimeout: time.Second,
		// Content-Encoding is negotiated explicitly and decoded in readBody.
		DisableCompression: true,
	}
	if tlsConfig != nil {
		tr.TLSClientConfig = tlsConfig.Clone()
	}
	return tr
}
