package testingx

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"

	"github.com/miekg/dns"
	"github.com/onedata/etls/internal/runtimex"
)

// DNSRecords maps a domain name (with or without the trailing dot) to
// its IPv4 and IPv6 addresses. Names not in the map are NXDOMAIN.
type DNSRecords map[string][]string

// lookup returns the addresses of the given type for name.
func (r DNSRecords) lookup(name string, qtype uint16) ([]net.IP, bool) {
	addrs, found := r[strings.TrimSuffix(name, ".")]
	if !found {
		addrs, found = r[name]
	}
	if !found {
		return nil, false
	}
	var out []net.IP
	for _, addr := range addrs {
		ip := net.ParseIP(addr)
		switch {
		case ip == nil:
		case qtype == dns.TypeA && ip.To4() != nil:
			out = append(out, ip)
		case qtype == dns.TypeAAAA && ip.To4() == nil:
			out = append(out, ip)
		}
	}
	return out, true
}

// DNSOverUDPListener is a DNS-over-UDP server answering A and AAAA
// queries from static records. The zero value of this struct is
// invalid, please use [MustNewDNSOverUDPListener].
type DNSOverUDPListener struct {
	cancel    context.CancelFunc
	closeOnce sync.Once
	pconn     net.PacketConn
	records   DNSRecords
	wg        sync.WaitGroup
}

// MustNewDNSOverUDPListener creates a new [DNSOverUDPListener] listening
// on an ephemeral port on 127.0.0.1 and serving the given records.
func MustNewDNSOverUDPListener(records DNSRecords) *DNSOverUDPListener {
	pconn := runtimex.Try1(net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)}))
	ctx, cancel := context.WithCancel(context.Background())
	dl := &DNSOverUDPListener{
		cancel:  cancel,
		pconn:   pconn,
		records: records,
	}
	dl.wg.Add(1)
	go dl.mainloop(ctx)
	return dl
}

// Address returns the address where the server is listening.
func (dl *DNSOverUDPListener) Address() string {
	return dl.pconn.LocalAddr().String()
}

// Close implements io.Closer.
func (dl *DNSOverUDPListener) Close() (err error) {
	dl.closeOnce.Do(func() {
		// close the connection to interrupt ReadFrom or WriteTo
		err = dl.pconn.Close()
		dl.cancel()
		dl.wg.Wait()
	})
	return err
}

func (dl *DNSOverUDPListener) mainloop(ctx context.Context) {
	defer dl.wg.Done()
	for ctx.Err() == nil {
		buffer := make([]byte, 1<<17)
		count, addr, err := dl.pconn.ReadFrom(buffer)
		if errors.Is(err, net.ErrClosed) {
			return
		}
		if err != nil {
			continue
		}
		rawResp, err := dl.respond(buffer[:count])
		if err != nil {
			continue
		}
		// ignore errors: we'll notice ErrClosed at the next ReadFrom
		_, _ = dl.pconn.WriteTo(rawResp, addr)
	}
}

// respond builds the raw response for the given raw query.
func (dl *DNSOverUDPListener) respond(rawQuery []byte) ([]byte, error) {
	query := &dns.Msg{}
	if err := query.Unpack(rawQuery); err != nil {
		return nil, err
	}
	if len(query.Question) != 1 {
		return nil, errors.New("testingx: expected exactly one question")
	}
	question := query.Question[0]
	resp := &dns.Msg{}
	resp.SetReply(query)
	ips, found := dl.records.lookup(question.Name, question.Qtype)
	if !found {
		resp.Rcode = dns.RcodeNameError
		return resp.Pack()
	}
	for _, ip := range ips {
		header := dns.RR_Header{Name: question.Name, Rrtype: question.Qtype, Class: dns.ClassINET, Ttl: 60}
		switch question.Qtype {
		case dns.TypeA:
			resp.Answer = append(resp.Answer, &dns.A{Hdr: header, A: ip})
		case dns.TypeAAAA:
			resp.Answer = append(resp.Answer, &dns.AAAA{Hdr: header, AAAA: ip})
		}
	}
	return resp.Pack()
}
