package netxlite

//
// Peer certificate chain capture
//

import (
	"crypto/x509"
	"sync"
)

// ChainObserver observes the certificates presented by the peer during
// a TLS handshake. The TLS layer calls ObserveCertificate once per
// certificate, in the order in which the peer presented them.
type ChainObserver interface {
	ObserveCertificate(der []byte)
}

// NewPeerCertificateHook returns a function suitable for the
// VerifyPeerCertificate field of a [tls.Config] that passes each raw
// certificate to the observer. The hook always accepts the chain: we
// are capturing it, not verifying it, so it never fails the handshake.
//
// Empty entries are skipped. The observer receives a copy of each
// entry because crypto/tls may reuse its buffers.
func NewPeerCertificateHook(observer ChainObserver) func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		for _, raw := range rawCerts {
			if len(raw) <= 0 {
				continue
			}
			der := make([]byte, len(raw))
			copy(der, raw)
			observer.ObserveCertificate(der)
		}
		return nil
	}
}

// CertificateCollector is a [ChainObserver] accumulating the DER bytes
// of each observed certificate. The zero value is ready to use.
type CertificateCollector struct {
	mu    sync.Mutex
	chain [][]byte
}

var _ ChainObserver = &CertificateCollector{}

// ObserveCertificate implements ChainObserver.
func (c *CertificateCollector) ObserveCertificate(der []byte) {
	c.mu.Lock()
	c.chain = append(c.chain, der)
	c.mu.Unlock()
}

// Reset forgets the certificates observed so far. Call it before starting
// a handshake so the chain reflects the most recent handshake only.
func (c *CertificateCollector) Reset() {
	c.mu.Lock()
	c.chain = nil
	c.mu.Unlock()
}

// Chain returns a copy of the observed chain. The returned slice is
// never nil, so an empty chain is distinguishable from a missing result.
func (c *CertificateCollector) Chain() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, 0, len(c.chain))
	for _, der := range c.chain {
		out = append(out, append([]byte(nil), der...))
	}
	return out
}

// Len returns the number of observed certificates.
func (c *CertificateCollector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.chain)
}
