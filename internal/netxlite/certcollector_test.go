package netxlite

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCertificateCollector(t *testing.T) {
	t.Run("the zero value has an empty non-nil chain", func(t *testing.T) {
		var c CertificateCollector
		chain := c.Chain()
		if chain == nil || len(chain) != 0 {
			t.Fatal("unexpected chain", chain)
		}
		if c.Len() != 0 {
			t.Fatal("unexpected length")
		}
	})

	t.Run("keeps the observation order", func(t *testing.T) {
		var c CertificateCollector
		c.ObserveCertificate([]byte("leaf"))
		c.ObserveCertificate([]byte("intermediate"))
		expect := [][]byte{[]byte("leaf"), []byte("intermediate")}
		if diff := cmp.Diff(expect, c.Chain()); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("Chain returns a copy", func(t *testing.T) {
		var c CertificateCollector
		c.ObserveCertificate([]byte("leaf"))
		chain := c.Chain()
		chain[0][0] = 'X'
		if string(c.Chain()[0]) != "leaf" {
			t.Fatal("modified the collector's chain")
		}
	})

	t.Run("Reset forgets the chain", func(t *testing.T) {
		var c CertificateCollector
		c.ObserveCertificate([]byte("leaf"))
		c.Reset()
		if c.Len() != 0 {
			t.Fatal("expected an empty chain")
		}
	})

	t.Run("is safe for concurrent use", func(t *testing.T) {
		var (
			c  CertificateCollector
			wg sync.WaitGroup
		)
		for idx := 0; idx < 16; idx++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.ObserveCertificate([]byte("cert"))
			}()
		}
		wg.Wait()
		if c.Len() != 16 {
			t.Fatal("unexpected length", c.Len())
		}
	})
}

func TestNewPeerCertificateHook(t *testing.T) {
	var c CertificateCollector
	hook := NewPeerCertificateHook(&c)
	raw := [][]byte{[]byte("leaf"), nil, []byte("intermediate")}
	if err := hook(raw, nil); err != nil {
		t.Fatal(err)
	}
	raw[0][0] = 'X'
	expect := [][]byte{[]byte("leaf"), []byte("intermediate")}
	if diff := cmp.Diff(expect, c.Chain()); diff != "" {
		t.Fatal(diff)
	}
}
