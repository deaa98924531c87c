package mocks

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"testing"
	"time"
)

func TestConn(t *testing.T) {
	expected := errors.New("mocked error")
	addr := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 443}
	c := &Conn{
		MockRead:             func(b []byte) (int, error) { return 0, expected },
		MockWrite:            func(b []byte) (int, error) { return 0, expected },
		MockClose:            func() error { return expected },
		MockLocalAddr:        func() net.Addr { return addr },
		MockRemoteAddr:       func() net.Addr { return addr },
		MockSetDeadline:      func(t time.Time) error { return expected },
		MockSetReadDeadline:  func(t time.Time) error { return expected },
		MockSetWriteDeadline: func(t time.Time) error { return expected },
	}
	if _, err := c.Read(nil); !errors.Is(err, expected) {
		t.Fatal("Read")
	}
	if _, err := c.Write(nil); !errors.Is(err, expected) {
		t.Fatal("Write")
	}
	if err := c.Close(); !errors.Is(err, expected) {
		t.Fatal("Close")
	}
	if c.LocalAddr() != addr || c.RemoteAddr() != addr {
		t.Fatal("LocalAddr or RemoteAddr")
	}
	if err := c.SetDeadline(time.Time{}); !errors.Is(err, expected) {
		t.Fatal("SetDeadline")
	}
	if err := c.SetReadDeadline(time.Time{}); !errors.Is(err, expected) {
		t.Fatal("SetReadDeadline")
	}
	if err := c.SetWriteDeadline(time.Time{}); !errors.Is(err, expected) {
		t.Fatal("SetWriteDeadline")
	}
}

func TestTLSConn(t *testing.T) {
	expected := errors.New("mocked error")
	inner := &Conn{}
	c := &TLSConn{
		MockConnectionState: func() tls.ConnectionState {
			return tls.ConnectionState{Version: tls.VersionTLS13}
		},
		MockHandshakeContext: func(ctx context.Context) error { return expected },
		MockNetConn:          func() net.Conn { return inner },
	}
	if c.ConnectionState().Version != tls.VersionTLS13 {
		t.Fatal("ConnectionState")
	}
	if err := c.HandshakeContext(context.Background()); !errors.Is(err, expected) {
		t.Fatal("HandshakeContext")
	}
	if c.NetConn() != inner {
		t.Fatal("NetConn")
	}
}

func TestDialer(t *testing.T) {
	expected := errors.New("mocked error")
	d := &Dialer{
		MockDialContext: func(ctx context.Context, network, address string) (net.Conn, error) {
			return nil, expected
		},
	}
	if _, err := d.DialContext(context.Background(), "tcp", "1.1.1.1:443"); !errors.Is(err, expected) {
		t.Fatal("DialContext")
	}
}

func TestResolver(t *testing.T) {
	expected := errors.New("mocked error")
	r := &Resolver{
		MockLookupHost: func(ctx context.Context, domain string) ([]string, error) { return nil, expected },
		MockNetwork:    func() string { return "mocked" },
		MockAddress:    func() string { return "1.1.1.1:53" },
	}
	if _, err := r.LookupHost(context.Background(), "dns.google"); !errors.Is(err, expected) {
		t.Fatal("LookupHost")
	}
	if r.Network() != "mocked" || r.Address() != "1.1.1.1:53" {
		t.Fatal("Network or Address")
	}
}
