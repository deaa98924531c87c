package model

import (
	"net"
	"net/netip"
	"strconv"
)

// Endpoint is a resolved address and port. An endpoint is either a
// candidate for a TCP connect or the local or remote end of a socket.
type Endpoint struct {
	// Address is the IPv4 or IPv6 address in textual form.
	Address string

	// Port is the TCP port.
	Port uint16
}

// String returns the endpoint in the form accepted by [net.Dial].
func (e Endpoint) String() string {
	return net.JoinHostPort(e.Address, strconv.Itoa(int(e.Port)))
}

// NewEndpointFromAddr converts a [net.Addr] to an [Endpoint]. The
// second return value is false if addr is not a TCP address.
func NewEndpointFromAddr(addr net.Addr) (Endpoint, bool) {
	tcpAddr, good := addr.(*net.TCPAddr)
	if !good || tcpAddr == nil {
		return Endpoint{}, false
	}
	ap := tcpAddr.AddrPort()
	return Endpoint{
		Address: ap.Addr().Unmap().String(),
		Port:    ap.Port(),
	}, true
}

// ParseEndpoint parses an "address:port" string where the address
// is an IP literal. Domain names are rejected.
func ParseEndpoint(s string) (Endpoint, error) {
	ap, err := netip.ParseAddrPort(s)
	if err != nil {
		return Endpoint{}, err
	}
	return Endpoint{Address: ap.Addr().Unmap().String(), Port: ap.Port()}, nil
}
