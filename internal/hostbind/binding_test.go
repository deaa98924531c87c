package hostbind

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/onedata/etls/internal/etls"
	"github.com/onedata/etls/internal/eventloop"
	"github.com/onedata/etls/internal/model"
	"github.com/onedata/etls/internal/netxlite"
	"github.com/onedata/etls/internal/testingx"
)

// collect reads messages from mb until it has seen all the given refs.
func collect(t *testing.T, mb *ChanMailbox, refs ...Ref) map[Ref]Message {
	t.Helper()
	out := map[Ref]Message{}
	timer := time.NewTimer(10 * time.Second)
	defer timer.Stop()
	for len(out) < len(refs) {
		select {
		case msg := <-mb.C:
			if _, dup := out[msg.Ref]; dup {
				t.Fatal("duplicate message for", msg.Ref)
			}
			out[msg.Ref] = msg
		case <-timer.C:
			t.Fatal("timed out waiting for messages")
		}
	}
	for _, ref := range refs {
		if _, found := out[ref]; !found {
			t.Fatal("missing message for", ref)
		}
	}
	return out
}

// mustOK fails the test unless msg is successful.
func mustOK(t *testing.T, msg Message) Message {
	t.Helper()
	if !msg.OK() {
		t.Fatal(msg.Ref, msg.Reason)
	}
	return msg
}

func newBinding(t *testing.T, options ...Option) (*Binding, *ChanMailbox) {
	loop := eventloop.New(model.DiscardLogger)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		loop.Stop(ctx)
	})
	mb := NewChanMailbox(16)
	options = append([]Option{WithRecvDefaultSize(64)}, options...)
	return New(loop, mb, options...), mb
}

func TestBinding(t *testing.T) {
	t.Run("client and server exchange data", func(t *testing.T) {
		b, mb := newBinding(t)
		chain := testingx.MustNewCertChain(2)
		certPath, keyPath := chain.MustWriteFiles(t.TempDir())
		lh, err := b.Listen(0, certPath, keyPath)
		if err != nil {
			t.Fatal(err)
		}
		defer b.Release(lh)

		if err := b.AcceptorSockname("lname", lh); err != nil {
			t.Fatal(err)
		}
		lname := mustOK(t, collect(t, mb, "lname")["lname"])
		if lname.Address != "0.0.0.0" || lname.Port == 0 {
			t.Fatal("unexpected acceptor endpoint", lname)
		}

		if err := b.Accept("accept", lh); err != nil {
			t.Fatal(err)
		}
		connh, err := b.Connect("connect", "127.0.0.1", lname.Port)
		if err != nil {
			t.Fatal(err)
		}
		sh := mustOK(t, collect(t, mb, "accept")["accept"]).Handle
		if err := b.Handshake("handshake", sh); err != nil {
			t.Fatal(err)
		}
		msgs := collect(t, mb, "connect", "handshake")
		ch := mustOK(t, msgs["connect"]).Handle
		mustOK(t, msgs["handshake"])
		if ch == "" || ch != connh || ch == sh {
			t.Fatal("unexpected handles", ch, connh, sh)
		}

		clientChain, err := b.CertificateChain(ch)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(chain.DER, clientChain); diff != "" {
			t.Fatal(diff)
		}
		serverChain, err := b.CertificateChain(sh)
		if err != nil {
			t.Fatal(err)
		}
		if len(serverChain) != 0 {
			t.Fatal("expected an empty server chain")
		}

		if err := b.Send("send", ch, []byte("hello")); err != nil {
			t.Fatal(err)
		}
		if err := b.Recv("recv", sh, 5); err != nil {
			t.Fatal(err)
		}
		msgs = collect(t, mb, "send", "recv")
		mustOK(t, msgs["send"])
		if diff := cmp.Diff([]byte("hello"), mustOK(t, msgs["recv"]).Data); diff != "" {
			t.Fatal(diff)
		}

		if err := b.Send("send2", sh, []byte("x")); err != nil {
			t.Fatal(err)
		}
		if err := b.Recv("recvany", ch, 0); err != nil {
			t.Fatal(err)
		}
		msgs = collect(t, mb, "send2", "recvany")
		if diff := cmp.Diff([]byte("x"), mustOK(t, msgs["recvany"]).Data); diff != "" {
			t.Fatal(diff)
		}

		if err := b.Peername("peer", ch); err != nil {
			t.Fatal(err)
		}
		if err := b.Sockname("sock", sh); err != nil {
			t.Fatal(err)
		}
		msgs = collect(t, mb, "peer", "sock")
		if peer := mustOK(t, msgs["peer"]); peer.Address != "127.0.0.1" || peer.Port != lname.Port {
			t.Fatal("unexpected peer", peer)
		}
		if sock := mustOK(t, msgs["sock"]); sock.Port != lname.Port {
			t.Fatal("unexpected sockname", sock)
		}

		if err := b.Shutdown("bogus", ch, "sideways"); !errors.Is(err, ErrBadArgument) {
			t.Fatal("unexpected error", err)
		}
		if err := b.Shutdown("shutdown", ch, "write"); err != nil {
			t.Fatal(err)
		}
		if err := b.Recv("eof", sh, 0); err != nil {
			t.Fatal(err)
		}
		msgs = collect(t, mb, "shutdown", "eof")
		mustOK(t, msgs["shutdown"])
		if msgs["eof"].Reason != netxlite.FailureEOFError {
			t.Fatal("unexpected reason", msgs["eof"].Reason)
		}

		if err := b.Close("close1", ch); err != nil {
			t.Fatal(err)
		}
		if err := b.Close("close2", sh); err != nil {
			t.Fatal(err)
		}
		msgs = collect(t, mb, "close1", "close2")
		mustOK(t, msgs["close1"])
		mustOK(t, msgs["close2"])

		for _, h := range []Handle{ch, sh} {
			if err := b.Release(h); err != nil {
				t.Fatal(err)
			}
			if _, err := b.CertificateChain(h); !errors.Is(err, ErrUnknownHandle) {
				t.Fatal("unexpected error", err)
			}
		}

		// the rejected shutdown never produces a message
		select {
		case msg := <-mb.C:
			t.Fatal("unexpected message", msg.Ref)
		default:
		}
	})

	t.Run("Connect failures are reported through the mailbox", func(t *testing.T) {
		dnsServer := testingx.MustNewDNSOverUDPListener(testingx.DNSRecords{})
		defer dnsServer.Close()
		resolver := netxlite.NewResolverUDP(model.DiscardLogger, dnsServer.Address())
		b, mb := newBinding(t, WithSocketOptions(etls.WithResolver(resolver)))
		h, err := b.Connect("c", "example.invalid", 443)
		if err != nil {
			t.Fatal(err)
		}
		msg := collect(t, mb, "c")["c"]
		if msg.OK() || msg.Handle != "" {
			t.Fatal("expected a failure", msg)
		}
		if msg.Reason != netxlite.FailureDNSNXDOMAINError {
			t.Fatal("unexpected reason", msg.Reason)
		}
		if err := b.Release(h); !errors.Is(err, ErrUnknownHandle) {
			t.Fatal("the handle of a failed connect is still registered", err)
		}
	})

	t.Run("Close interrupts a pending Connect", func(t *testing.T) {
		listener, err := net.Listen("tcp4", "127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		defer listener.Close()
		accepted := make(chan net.Conn, 1)
		go func() {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			accepted <- conn
		}()

		b, mb := newBinding(t)
		h, err := b.Connect("c", "127.0.0.1", uint16(listener.Addr().(*net.TCPAddr).Port))
		if err != nil {
			t.Fatal(err)
		}
		// the peer accepts and never answers the client hello
		conn := <-accepted
		defer conn.Close()
		if err := b.Close("close", h); err != nil {
			t.Fatal(err)
		}
		msgs := collect(t, mb, "c", "close")
		mustOK(t, msgs["close"])
		if msgs["c"].OK() {
			t.Fatal("expected the connect to fail", msgs["c"])
		}
		select {
		case msg := <-mb.C:
			t.Fatal("unexpected message", msg)
		case <-time.After(100 * time.Millisecond):
		}
	})

	t.Run("New panics with a nil mailbox", func(t *testing.T) {
		loop := eventloop.New(model.DiscardLogger)
		defer loop.Stop(context.Background())
		defer func() {
			if recover() == nil {
				t.Fatal("expected a panic")
			}
		}()
		New(loop, nil)
	})

	t.Run("unknown handles are rejected", func(t *testing.T) {
		b, _ := newBinding(t)
		const h = Handle("nonexistent")
		checks := map[string]error{
			"Send":             b.Send("r", h, nil),
			"Recv":             b.Recv("r", h, 1),
			"Accept":           b.Accept("r", h),
			"Handshake":        b.Handshake("r", h),
			"Peername":         b.Peername("r", h),
			"Sockname":         b.Sockname("r", h),
			"AcceptorSockname": b.AcceptorSockname("r", h),
			"Shutdown":         b.Shutdown("r", h, "read"),
			"Close":            b.Close("r", h),
			"Release":          b.Release(h),
		}
		for name, err := range checks {
			if !errors.Is(err, ErrUnknownHandle) {
				t.Fatal(name, "unexpected error", err)
			}
		}
		if _, err := b.CertificateChain(h); !errors.Is(err, ErrUnknownHandle) {
			t.Fatal("unexpected error", err)
		}
	})

	t.Run("Recv rejects negative sizes", func(t *testing.T) {
		b, _ := newBinding(t)
		if err := b.Recv("r", "whatever", -1); !errors.Is(err, ErrBadArgument) {
			t.Fatal("unexpected error", err)
		}
	})

	t.Run("Listen fails synchronously", func(t *testing.T) {
		b, _ := newBinding(t)
		_, err := b.Listen(0, "/nonexistent/cert.pem", "/nonexistent/key.pem")
		var wrapper *netxlite.ErrWrapper
		if !errors.As(err, &wrapper) || wrapper.Operation != netxlite.ListenOperation {
			t.Fatal("unexpected error", err)
		}
	})
}

func TestNewWithTheProcessWideLoop(t *testing.T) {
	loop := eventloop.Init(model.DiscardLogger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		eventloop.Shutdown(ctx)
	}()
	mb := NewChanMailbox(1)
	b := New(nil, mb)
	if b.loop != loop {
		t.Fatal("did not use the process-wide loop")
	}
	if _, err := b.Connect("c", "127.0.0.1", 1); err != nil {
		t.Fatal(err)
	}
	msg := collect(t, mb, "c")["c"]
	if msg.OK() || msg.Reason != netxlite.FailureConnectionRefused {
		t.Fatal("unexpected message", msg)
	}
}
