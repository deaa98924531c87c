package testingx

import (
	"crypto/x509"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestMustNewCertChain(t *testing.T) {
	t.Run("panics with a zero depth", func(t *testing.T) {
		var recovered bool
		func() {
			defer func() { recovered = recover() != nil }()
			MustNewCertChain(0)
		}()
		if !recovered {
			t.Fatal("did not panic")
		}
	})

	t.Run("creates a verifiable chain", func(t *testing.T) {
		chain := MustNewCertChain(3)
		if len(chain.DER) != 3 {
			t.Fatal("unexpected chain length", len(chain.DER))
		}
		if diff := cmp.Diff(chain.DER, chain.Certificate.Certificate); diff != "" {
			t.Fatal(diff)
		}
		leaf, err := x509.ParseCertificate(chain.DER[0])
		if err != nil {
			t.Fatal(err)
		}
		intermediates := x509.NewCertPool()
		for _, der := range chain.DER[1:] {
			cert, err := x509.ParseCertificate(der)
			if err != nil {
				t.Fatal(err)
			}
			intermediates.AddCert(cert)
		}
		opts := x509.VerifyOptions{
			DNSName:       "localhost",
			Roots:         chain.CertPool(),
			Intermediates: intermediates,
			CurrentTime:   time.Now(),
		}
		if _, err := leaf.Verify(opts); err != nil {
			t.Fatal(err)
		}
		if len(leaf.IPAddresses) != 1 || leaf.IPAddresses[0].String() != "127.0.0.1" {
			t.Fatal("unexpected IP addresses", leaf.IPAddresses)
		}
	})

	t.Run("names the intermediates", func(t *testing.T) {
		chain := MustNewCertChain(2, "example.com")
		leaf, _ := x509.ParseCertificate(chain.DER[0])
		if leaf.Subject.CommonName != "example.com" {
			t.Fatal("unexpected leaf name", leaf.Subject.CommonName)
		}
		inter, _ := x509.ParseCertificate(chain.DER[1])
		if inter.Subject.CommonName != "etls test intermediate #1" {
			t.Fatal("unexpected intermediate name", inter.Subject.CommonName)
		}
	})
}

func TestCertChainMustWriteFiles(t *testing.T) {
	chain := MustNewCertChain(1)
	certPath, keyPath := chain.MustWriteFiles(t.TempDir())
	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(chain.CertPEM, certPEM); diff != "" {
		t.Fatal(diff)
	}
	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(chain.KeyPEM, keyPEM); diff != "" {
		t.Fatal(diff)
	}
}
