package netxlite

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/onedata/etls/internal/model"
)

// TLSHandshaker performs TLS handshakes.
type TLSHandshaker interface {
	// Handshake creates a new TLS connection from the given connection and
	// the given config. This function DOES NOT take ownership of the connection
	// and it's your responsibility to close it on failure.
	Handshake(ctx context.Context, conn net.Conn, config *tls.Config) (
		TLSConn, tls.ConnectionState, error)
}

// TLSRole is the role we play in a handshake.
type TLSRole int

const (
	// TLSRoleClient means we perform a client handshake.
	TLSRoleClient = TLSRole(iota)

	// TLSRoleServer means we perform a server handshake.
	TLSRoleServer
)

// String implements fmt.Stringer.
func (r TLSRole) String() string {
	if r == TLSRoleServer {
		return "server"
	}
	return "client"
}

// NewTLSHandshaker creates a new TLS handshaker for the given role using
// the go standard library to manage TLS.
//
// The handshaker guarantees:
//
// 1. logging
//
// 2. error wrapping
func NewTLSHandshaker(role TLSRole, logger model.DebugLogger) TLSHandshaker {
	return &tlsHandshakerLogger{
		TLSHandshaker: &tlsHandshakerErrWrapper{
			TLSHandshaker: &tlsHandshakerConfigurable{Role: role},
		},
		DebugLogger: logger,
	}
}

// tlsHandshakerConfigurable is a configurable TLS handshaker that
// uses by default the standard library's TLS implementation.
type tlsHandshakerConfigurable struct {
	// NewConn is the OPTIONAL factory for creating a new connection. If
	// this factory is not set, we'll use the stdlib.
	NewConn func(conn net.Conn, config *tls.Config) (TLSConn, error)

	// Role selects between tls.Client and tls.Server.
	Role TLSRole
}

var _ TLSHandshaker = &tlsHandshakerConfigurable{}

// Handshake implements TLSHandshaker.Handshake. There is no timeout
// here: callers bound the handshake by canceling ctx or by closing conn.
func (h *tlsHandshakerConfigurable) Handshake(
	ctx context.Context, conn net.Conn, config *tls.Config,
) (TLSConn, tls.ConnectionState, error) {
	tlsconn, err := h.newConn(conn, config)
	if err != nil {
		return nil, tls.ConnectionState{}, err
	}
	if err := tlsconn.HandshakeContext(ctx); err != nil {
		return nil, tls.ConnectionState{}, err
	}
	return tlsconn, tlsconn.ConnectionState(), nil
}

// newConn creates a new TLSConn.
func (h *tlsHandshakerConfigurable) newConn(conn net.Conn, config *tls.Config) (TLSConn, error) {
	if h.NewConn != nil {
		return h.NewConn(conn, config)
	}
	if h.Role == TLSRoleServer {
		return tls.Server(conn, config), nil
	}
	return tls.Client(conn, config), nil
}

// tlsHandshakerLogger is a TLSHandshaker with logging.
type tlsHandshakerLogger struct {
	TLSHandshaker TLSHandshaker
	DebugLogger   model.DebugLogger
}

var _ TLSHandshaker = &tlsHandshakerLogger{}

// Handshake implements Handshaker.Handshake
func (h *tlsHandshakerLogger) Handshake(
	ctx context.Context, conn net.Conn, config *tls.Config,
) (TLSConn, tls.ConnectionState, error) {
	remote := conn.RemoteAddr()
	h.DebugLogger.Debugf("tls {sni=%s peer=%s}...", config.ServerName, remote)
	start := time.Now()
	tlsconn, state, err := h.TLSHandshaker.Handshake(ctx, conn, config)
	elapsed := time.Since(start)
	if err != nil {
		h.DebugLogger.Debugf(
			"tls {sni=%s peer=%s}... %s in %s", config.ServerName, remote, err, elapsed)
		return nil, tls.ConnectionState{}, err
	}
	h.DebugLogger.Debugf(
		"tls {sni=%s peer=%s}... ok in %s {cipher=%s v=%s certs=%d}",
		config.ServerName, remote, elapsed,
		TLSCipherSuiteString(state.CipherSuite),
		TLSVersionString(state.Version), len(state.PeerCertificates))
	return tlsconn, state, nil
}

// tlsHandshakerErrWrapper wraps the returned error
type tlsHandshakerErrWrapper struct {
	TLSHandshaker TLSHandshaker
}

var _ TLSHandshaker = &tlsHandshakerErrWrapper{}

// Handshake implements TLSHandshaker.Handshake
func (h *tlsHandshakerErrWrapper) Handshake(
	ctx context.Context, conn net.Conn, config *tls.Config,
) (TLSConn, tls.ConnectionState, error) {
	tlsconn, state, err := h.TLSHandshaker.Handshake(ctx, conn, config)
	if err != nil {
		return nil, tls.ConnectionState{}, NewErrWrapper(
			classifyTLSHandshakeError, TLSHandshakeOperation, err)
	}
	return tlsconn, state, nil
}
