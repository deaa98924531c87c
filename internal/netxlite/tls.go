package netxlite

//
// TLS configuration
//

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
)

var (
	tlsVersionString = map[uint16]string{
		tls.VersionTLS10: "TLSv1",
		tls.VersionTLS11: "TLSv1.1",
		tls.VersionTLS12: "TLSv1.2",
		tls.VersionTLS13: "TLSv1.3",
		0:                "", // guarantee correct behaviour
	}

	tlsVersionByName = map[string]uint16{
		"TLSv1.3": tls.VersionTLS13,
		"TLSv1.2": tls.VersionTLS12,
		"TLSv1.1": tls.VersionTLS11,
		"TLSv1.0": tls.VersionTLS10,
		"TLSv1":   tls.VersionTLS10,
	}
)

// TLSVersionString returns a TLS version string. If value is zero, we
// return the empty string. If the value is unknown, we return
// `TLS_VERSION_UNKNOWN_ddd` where `ddd` is the numeric value passed
// to this function.
func TLSVersionString(value uint16) string {
	if str, found := tlsVersionString[value]; found {
		return str
	}
	return fmt.Sprintf("TLS_VERSION_UNKNOWN_%d", value)
}

// TLSCipherSuiteString returns the TLS cipher suite as a string. If value
// is zero, we return the empty string.
func TLSCipherSuiteString(value uint16) string {
	if value == 0 {
		return ""
	}
	return tls.CipherSuiteName(value)
}

// ErrInvalidTLSVersion indicates that you passed us a string
// that does not represent a valid TLS version.
var ErrInvalidTLSVersion = errors.New("invalid TLS version")

// ParseTLSVersion maps a version string to its numeric value. The empty
// string maps to zero, meaning "use the library default".
//
// Recognized strings: TLSv1.3, TLSv1.2, TLSv1.1, TLSv1.0, TLSv1.
func ParseTLSVersion(version string) (uint16, error) {
	if version == "" {
		return 0, nil
	}
	value, found := tlsVersionByName[version]
	if !found {
		return 0, ErrInvalidTLSVersion
	}
	return value, nil
}

// TLSConn is the kind of connection returned by a [TLSHandshaker].
// The stdlib's *tls.Conn implements this interface.
type TLSConn interface {
	net.Conn

	// ConnectionState returns the TLS connection state.
	ConnectionState() tls.ConnectionState

	// HandshakeContext runs the handshake if it has not run yet.
	HandshakeContext(ctx context.Context) error

	// NetConn returns the underlying connection.
	NetConn() net.Conn
}

var _ TLSConn = &tls.Conn{}

// NewObservingTLSConfig returns a clone of base (or a new config when
// base is nil) where certificate verification is disabled and the peer
// chain is reported to observer.
//
// For server configs we request, but neither require nor verify, a
// client certificate, so that we also capture the client's chain.
func NewObservingTLSConfig(base *tls.Config, observer ChainObserver) *tls.Config {
	config := &tls.Config{}
	if base != nil {
		config = base.Clone()
	}
	config.InsecureSkipVerify = true
	config.VerifyPeerCertificate = NewPeerCertificateHook(observer)
	if len(config.Certificates) > 0 || config.GetCertificate != nil {
		config.ClientAuth = tls.RequestClientCert
	}
	return config
}
