package testingx

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/onedata/etls/internal/runtimex"
)

// CertChain is a certificate chain created for testing.
type CertChain struct {
	// Certificate is the leaf certificate, followed by the intermediates,
	// along with the leaf's private key, ready for a server TLS config.
	Certificate tls.Certificate

	// DER contains the certificates presented by a server using this
	// chain in presentation order, i.e., leaf first. The root is omitted.
	DER [][]byte

	// Root is the self-signed root that issued the chain.
	Root *x509.Certificate

	// CertPEM is the PEM encoding of DER.
	CertPEM []byte

	// KeyPEM is the PEM encoding of the leaf's private key.
	KeyPEM []byte
}

// MustNewCertChain creates a chain of depth certificates: a leaf valid
// for the given names (or 127.0.0.1 and localhost when none is given)
// followed by depth-1 intermediates. This function panics on failure
// or when depth is lower than one.
func MustNewCertChain(depth int, names ...string) *CertChain {
	runtimex.Assert(depth >= 1, "testingx: depth must be positive")
	if len(names) <= 0 {
		names = []string{"127.0.0.1", "localhost"}
	}

	rootKey := runtimex.Try1(ecdsa.GenerateKey(elliptic.P256(), rand.Reader))
	rootTemplate := certTemplate("etls test root", true)
	rootDER := runtimex.Try1(x509.CreateCertificate(
		rand.Reader, rootTemplate, rootTemplate, &rootKey.PublicKey, rootKey))
	root := runtimex.Try1(x509.ParseCertificate(rootDER))

	// issue the intermediates from the root downwards
	issuer, issuerKey := root, rootKey
	var intermediates [][]byte
	for idx := 1; idx < depth; idx++ {
		key := runtimex.Try1(ecdsa.GenerateKey(elliptic.P256(), rand.Reader))
		template := certTemplate(fmt.Sprintf("etls test intermediate #%d", idx), true)
		der := runtimex.Try1(x509.CreateCertificate(rand.Reader, template, issuer, &key.PublicKey, issuerKey))
		intermediates = append([][]byte{der}, intermediates...)
		issuer, issuerKey = runtimex.Try1(x509.ParseCertificate(der)), key
	}

	leafKey := runtimex.Try1(ecdsa.GenerateKey(elliptic.P256(), rand.Reader))
	leafTemplate := certTemplate(names[0], false)
	for _, name := range names {
		if ip := net.ParseIP(name); ip != nil {
			leafTemplate.IPAddresses = append(leafTemplate.IPAddresses, ip)
			continue
		}
		leafTemplate.DNSNames = append(leafTemplate.DNSNames, name)
	}
	leafDER := runtimex.Try1(x509.CreateCertificate(
		rand.Reader, leafTemplate, issuer, &leafKey.PublicKey, issuerKey))

	chain := &CertChain{
		DER:  append([][]byte{leafDER}, intermediates...),
		Root: root,
	}
	for _, der := range chain.DER {
		chain.CertPEM = append(chain.CertPEM, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})...)
	}
	keyDER := runtimex.Try1(x509.MarshalPKCS8PrivateKey(leafKey))
	chain.KeyPEM = pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})
	chain.Certificate = runtimex.Try1(tls.X509KeyPair(chain.CertPEM, chain.KeyPEM))
	return chain
}

// CertPool returns a pool containing the root.
func (c *CertChain) CertPool() *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AddCert(c.Root)
	return pool
}

// MustWriteFiles writes the PEM chain and key inside dir and returns the
// paths of the certificate file and of the key file.
func (c *CertChain) MustWriteFiles(dir string) (certPath, keyPath string) {
	certPath = filepath.Join(dir, "cert.pem")
	keyPath = filepath.Join(dir, "key.pem")
	runtimex.Try0(os.WriteFile(certPath, c.CertPEM, 0600))
	runtimex.Try0(os.WriteFile(keyPath, c.KeyPEM, 0600))
	return
}

var serialNumberLimit = new(big.Int).Lsh(big.NewInt(1), 128)

func certTemplate(commonName string, isCA bool) *x509.Certificate {
	template := &x509.Certificate{
		SerialNumber:          runtimex.Try1(rand.Int(rand.Reader, serialNumberLimit)),
		Subject:               pkix.Name{CommonName: commonName, Organization: []string{"etls testing"}},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		BasicConstraintsValid: true,
		IsCA:                  isCA,
	}
	if isCA {
		template.KeyUsage = x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature
		return template
	}
	template.KeyUsage = x509.KeyUsageDigitalSignature
	template.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth}
	return template
}
