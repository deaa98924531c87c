package netxlite

//
// DNS over UDP resolver
//

import (
	"context"

	"github.com/miekg/dns"
)

// resolverUDP resolves domain names by sending A and AAAA queries to
// a single DNS server using github.com/miekg/dns.
type resolverUDP struct {
	// address is the server address (e.g., "8.8.8.8:53").
	address string

	// exchange is the function performing the round trip.
	exchange func(ctx context.Context, query *dns.Msg, address string) (*dns.Msg, error)
}

var _ Resolver = &resolverUDP{}

func newResolverUDP(address string) *resolverUDP {
	client := &dns.Client{Net: "udp"}
	return &resolverUDP{
		address: address,
		exchange: func(ctx context.Context, query *dns.Msg, address string) (*dns.Msg, error) {
			reply, _, err := client.ExchangeContext(ctx, query, address)
			return reply, err
		},
	}
}

// LookupHost implements Resolver.LookupHost. We query A first and AAAA
// second; the lookup succeeds if either query returns addresses.
func (r *resolverUDP) LookupHost(ctx context.Context, hostname string) ([]string, error) {
	addrsA, errA := r.lookup(ctx, hostname, dns.TypeA)
	addrsAAAA, errAAAA := r.lookup(ctx, hostname, dns.TypeAAAA)
	addrs := append(addrsA, addrsAAAA...)
	if len(addrs) > 0 {
		return addrs, nil
	}
	if errA != nil {
		return nil, errA
	}
	if errAAAA != nil {
		return nil, errAAAA
	}
	return nil, ErrOODNSNoAnswer
}

func (r *resolverUDP) lookup(ctx context.Context, hostname string, qtype uint16) ([]string, error) {
	query := new(dns.Msg)
	query.SetQuestion(dns.Fqdn(hostname), qtype)
	query.RecursionDesired = true
	reply, err := r.exchange(ctx, query, r.address)
	if err != nil {
		return nil, err
	}
	return decodeLookupHostReply(reply, qtype)
}

// decodeLookupHostReply extracts the addresses of type qtype
// from the given reply.
func decodeLookupHostReply(reply *dns.Msg, qtype uint16) ([]string, error) {
	switch reply.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return nil, ErrOODNSNoSuchHost
	default:
		return nil, ErrOODNSMisbehaving
	}
	var addrs []string
	for _, answer := range reply.Answer {
		switch rr := answer.(type) {
		case *dns.A:
			if qtype == dns.TypeA && rr.A != nil {
				addrs = append(addrs, rr.A.String())
			}
		case *dns.AAAA:
			if qtype == dns.TypeAAAA && rr.AAAA != nil {
				addrs = append(addrs, rr.AAAA.String())
			}
		}
	}
	if len(addrs) <= 0 {
		return nil, ErrOODNSNoAnswer
	}
	return addrs, nil
}

func (r *resolverUDP) Network() string {
	return "udp"
}

func (r *resolverUDP) Address() string {
	return r.address
}
