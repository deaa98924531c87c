package netxlite

import (
	"crypto/tls"
	"errors"
	"testing"

	"github.com/onedata/etls/internal/testingx"
)

func TestTLSVersionString(t *testing.T) {
	if TLSVersionString(tls.VersionTLS13) != "TLSv1.3" {
		t.Fatal("not working for existing version")
	}
	if TLSVersionString(1) != "TLS_VERSION_UNKNOWN_1" {
		t.Fatal("not working for nonexisting version")
	}
	if TLSVersionString(0) != "" {
		t.Fatal("not working for zero version")
	}
}

func TestTLSCipherSuiteString(t *testing.T) {
	if TLSCipherSuiteString(tls.TLS_AES_128_GCM_SHA256) != "TLS_AES_128_GCM_SHA256" {
		t.Fatal("not working for existing cipher suite")
	}
	if TLSCipherSuiteString(0) != "" {
		t.Fatal("not working for zero cipher suite")
	}
}

func TestParseTLSVersion(t *testing.T) {
	cases := []struct {
		input  string
		expect uint16
		err    error
	}{
		{"", 0, nil},
		{"TLSv1.3", tls.VersionTLS13, nil},
		{"TLSv1.2", tls.VersionTLS12, nil},
		{"TLSv1.1", tls.VersionTLS11, nil},
		{"TLSv1.0", tls.VersionTLS10, nil},
		{"TLSv1", tls.VersionTLS10, nil},
		{"SSLv3", 0, ErrInvalidTLSVersion},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			value, err := ParseTLSVersion(tc.input)
			if !errors.Is(err, tc.err) {
				t.Fatal("unexpected error", err)
			}
			if value != tc.expect {
				t.Fatal("unexpected value", value)
			}
		})
	}
}

func TestNewObservingTLSConfig(t *testing.T) {
	t.Run("with a nil base", func(t *testing.T) {
		var c CertificateCollector
		config := NewObservingTLSConfig(nil, &c)
		if !config.InsecureSkipVerify {
			t.Fatal("expected InsecureSkipVerify")
		}
		if config.VerifyPeerCertificate == nil {
			t.Fatal("expected a VerifyPeerCertificate hook")
		}
		if config.ClientAuth != tls.NoClientCert {
			t.Fatal("a client config should not request certificates")
		}
	})

	t.Run("with a server base", func(t *testing.T) {
		chain := testingx.MustNewCertChain(1)
		base := &tls.Config{
			Certificates: []tls.Certificate{chain.Certificate},
			MinVersion:   tls.VersionTLS12,
		}
		var c CertificateCollector
		config := NewObservingTLSConfig(base, &c)
		if config == base {
			t.Fatal("expected a clone")
		}
		if base.InsecureSkipVerify || base.VerifyPeerCertificate != nil {
			t.Fatal("modified the base config")
		}
		if config.ClientAuth != tls.RequestClientCert {
			t.Fatal("a server config should request certificates")
		}
		if config.MinVersion != tls.VersionTLS12 {
			t.Fatal("did not keep the base settings")
		}
	})

	t.Run("the hook feeds the observer", func(t *testing.T) {
		var c CertificateCollector
		config := NewObservingTLSConfig(nil, &c)
		if err := config.VerifyPeerCertificate([][]byte{[]byte("leaf")}, nil); err != nil {
			t.Fatal(err)
		}
		if c.Len() != 1 {
			t.Fatal("the observer did not see the certificate")
		}
	})
}
