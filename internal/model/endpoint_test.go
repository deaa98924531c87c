package model

import (
	"net"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEndpoint(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		cases := []struct {
			ep     Endpoint
			expect string
		}{{
			ep:     Endpoint{Address: "127.0.0.1", Port: 443},
			expect: "127.0.0.1:443",
		}, {
			ep:     Endpoint{Address: "::1", Port: 5555},
			expect: "[::1]:5555",
		}}
		for _, tc := range cases {
			if got := tc.ep.String(); got != tc.expect {
				t.Fatal("expected", tc.expect, "got", got)
			}
		}
	})

	t.Run("NewEndpointFromAddr", func(t *testing.T) {
		t.Run("with a TCP address", func(t *testing.T) {
			addr := &net.TCPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 8080}
			ep, good := NewEndpointFromAddr(addr)
			if !good {
				t.Fatal("expected success")
			}
			expect := Endpoint{Address: "10.0.0.1", Port: 8080}
			if diff := cmp.Diff(expect, ep); diff != "" {
				t.Fatal(diff)
			}
		})

		t.Run("with a UDP address", func(t *testing.T) {
			addr := &net.UDPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 53}
			if _, good := NewEndpointFromAddr(addr); good {
				t.Fatal("expected failure")
			}
		})

		t.Run("with a nil TCP address", func(t *testing.T) {
			var addr *net.TCPAddr
			if _, good := NewEndpointFromAddr(addr); good {
				t.Fatal("expected failure")
			}
		})
	})

	t.Run("ParseEndpoint", func(t *testing.T) {
		t.Run("with valid input", func(t *testing.T) {
			ep, err := ParseEndpoint("[::1]:443")
			if err != nil {
				t.Fatal(err)
			}
			expect := Endpoint{Address: "::1", Port: 443}
			if diff := cmp.Diff(expect, ep); diff != "" {
				t.Fatal(diff)
			}
		})

		t.Run("with a domain name", func(t *testing.T) {
			if _, err := ParseEndpoint("example.com:443"); err == nil {
				t.Fatal("expected an error")
			}
		})
	})
}
