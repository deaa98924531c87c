package etls

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/onedata/etls/internal/erroror"
	"github.com/onedata/etls/internal/eventloop"
	"github.com/onedata/etls/internal/model"
	"github.com/onedata/etls/internal/netxlite"
)

// Socket is a TLS-over-TCP connection. Construct using [NewSocket] for
// client sockets; server sockets come from [Acceptor.Accept].
//
// Every asynchronous method returns a non-nil error only when the
// operation could not be scheduled, in which case the handler is never
// called. Otherwise the handler runs exactly once on a loop worker.
//
// Concurrent Send calls, or concurrent Recv and RecvAny calls, on the
// same socket interleave in unspecified ways: serialize them.
type Socket struct {
	collector netxlite.CertificateCollector
	loop      *eventloop.Loop
	opts      *options

	// ctx is canceled by Close to interrupt a pending Connect or Handshake.
	ctx    context.Context
	cancel context.CancelFunc

	mu sync.Mutex

	// busy is true while Connect or Handshake is running.
	busy bool

	// closed is true once Close has been accepted.
	closed bool

	// conn is the TCP transport.
	conn net.Conn

	// serverConfig is the TLS config of an accepted socket.
	serverConfig *tls.Config

	// tlsconn is the TLS session, set after a successful handshake.
	tlsconn netxlite.TLSConn
}

// NewSocket creates a new, unconnected client [*Socket] using the given loop.
func NewSocket(loop *eventloop.Loop, options ...Option) *Socket {
	ctx, cancel := context.WithCancel(context.Background())
	return &Socket{
		loop:   loop,
		opts:   newOptions(options),
		ctx:    ctx,
		cancel: cancel,
	}
}

// newAcceptedSocket creates the socket for a connection accepted by a
// listener. The handshake has not happened yet.
func newAcceptedSocket(loop *eventloop.Loop, opts *options, conn net.Conn, base *tls.Config) *Socket {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Socket{
		loop:   loop,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		conn:   conn,
	}
	s.serverConfig = netxlite.NewObservingTLSConfig(base, &s.collector)
	return s
}

// Connect resolves host, shuffles the resulting addresses, connects to
// the first address accepting the connection on the given port, and
// performs the TLS client handshake. The handler receives the socket
// itself on success. A failing step prevents the following ones.
//
// Closing the socket while Connect is pending interrupts it.
func (s *Socket) Connect(host string, port uint16, handler func(erroror.Value[*Socket])) error {
	if err := s.begin(false); err != nil {
		return err
	}
	err := schedule(s.loop, "connect", func() (*Socket, error) {
		err := s.connect(host, port)
		s.end()
		if err != nil {
			return nil, err
		}
		return s, nil
	}, handler)
	if err != nil {
		s.end()
	}
	return err
}

// begin marks the socket busy with a connect (server == false) or
// handshake (server == true) after checking that it is allowed.
func (s *Socket) begin(server bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.busy || s.tlsconn != nil {
		return ErrAlreadyConnected
	}
	switch {
	case server && s.serverConfig == nil:
		return ErrNotAccepted
	case !server && s.conn != nil:
		return ErrAlreadyConnected
	}
	s.busy = true
	return nil
}

func (s *Socket) end() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

func (s *Socket) connect(host string, port uint16) error {
	logger := s.opts.logger
	addrs, err := s.opts.resolver.LookupHost(s.ctx, host)
	if err != nil {
		err = netxlite.NewErrWrapper(netxlite.ClassifyGenericError, netxlite.ResolveOperation, err)
		logResult(logger, "connect "+host, err)
		return err
	}
	endpoints := netxlite.ShuffleEndpoints(addrs, port)
	conn, err := netxlite.DialSequentially(s.ctx, s.opts.dialer, endpoints)
	if err != nil {
		logResult(logger, "connect "+host, err)
		return err
	}

	// publish the transport so that Close can abort the handshake
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		err := interrupted(netxlite.ConnectOperation)
		logResult(logger, "connect "+host, err)
		return err
	}
	s.conn = conn
	s.mu.Unlock()

	config := netxlite.NewObservingTLSConfig(s.opts.baseTLSConfig(), &s.collector)
	if net.ParseIP(host) == nil {
		config.ServerName = host
	}
	tlsconn, err := s.handshake(s.ctx, netxlite.TLSRoleClient, conn, config)
	s.mu.Lock()
	if err == nil && s.closed {
		err = interrupted(netxlite.TLSHandshakeOperation)
	}
	if err != nil {
		if s.conn == conn {
			s.conn = nil
		}
		s.mu.Unlock()
		conn.Close()
		logResult(logger, "connect "+host, err)
		return err
	}
	s.tlsconn = tlsconn
	s.mu.Unlock()
	logResult(logger, "connect "+net.JoinHostPort(host, strconv.Itoa(int(port))), nil)
	return nil
}

// interrupted is the error of a Connect or Handshake aborted by Close.
func interrupted(operation string) error {
	return netxlite.NewErrWrapper(netxlite.ClassifyGenericError, operation, context.Canceled)
}

// handshake resets the chain and runs a handshake with the given role.
func (s *Socket) handshake(ctx context.Context, role netxlite.TLSRole,
	conn net.Conn, config *tls.Config) (netxlite.TLSConn, error) {
	s.collector.Reset()
	handshaker := netxlite.NewTLSHandshaker(role, s.opts.logger)
	start := time.Now()
	tlsconn, _, err := handshaker.Handshake(ctx, conn, config)
	observeHandshake(role.String(), start, err)
	return tlsconn, err
}

// Handshake performs the TLS server handshake on a socket produced by
// an [*Acceptor]. Client sockets are rejected with ErrNotAccepted and
// sockets that already completed a handshake with ErrAlreadyConnected.
//
// A failed handshake leaves the transport open: call Close. Closing the
// socket while Handshake is pending interrupts it.
func (s *Socket) Handshake(handler func(error)) error {
	if err := s.begin(true); err != nil {
		return err
	}
	err := scheduleErr(s.loop, "handshake", func() error {
		defer s.end()
		s.mu.Lock()
		conn, config := s.conn, s.serverConfig
		s.mu.Unlock()
		if conn == nil {
			return interrupted(netxlite.TLSHandshakeOperation)
		}
		tlsconn, err := s.handshake(s.ctx, netxlite.TLSRoleServer, conn, config)
		s.mu.Lock()
		if err == nil && s.closed {
			err = interrupted(netxlite.TLSHandshakeOperation)
		}
		if err == nil {
			s.tlsconn = tlsconn
		}
		s.mu.Unlock()
		logResult(s.opts.logger, "server handshake", err)
		return err
	}, handler)
	if err != nil {
		s.end()
	}
	return err
}

// session returns the TLS session or ErrNotConnected.
func (s *Socket) session() (netxlite.TLSConn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tlsconn == nil {
		return nil, ErrNotConnected
	}
	return s.tlsconn, nil
}

// transport returns the TCP transport or ErrNotConnected.
func (s *Socket) transport() (net.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil, ErrNotConnected
	}
	return s.conn, nil
}

// Send writes the whole buf to the TLS session. The caller must not
// modify buf until the handler runs.
func (s *Socket) Send(buf []byte, handler func(error)) error {
	return scheduleErr(s.loop, "send", func() error {
		tlsconn, err := s.session()
		if err != nil {
			return err
		}
		_, err = tlsconn.Write(buf)
		return netxlite.MaybeNewErrWrapper(netxlite.ClassifyGenericError, netxlite.WriteOperation, err)
	}, handler)
}

// Recv reads exactly len(buf) bytes into buf and passes buf to the
// handler. A stream ending before buf is full is an error. The caller
// must not touch buf until the handler runs.
func (s *Socket) Recv(buf []byte, handler func(erroror.Value[[]byte])) error {
	return schedule(s.loop, "recv", func() ([]byte, error) {
		tlsconn, err := s.session()
		if err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(tlsconn, buf); err != nil {
			return nil, netxlite.NewErrWrapper(netxlite.ClassifyGenericError, netxlite.ReadOperation, err)
		}
		return buf, nil
	}, handler)
}

// RecvAny reads at least one and at most len(buf) bytes into buf and
// passes the filled prefix of buf to the handler. An empty buf is
// rejected with ErrEmptyBuffer.
func (s *Socket) RecvAny(buf []byte, handler func(erroror.Value[[]byte])) error {
	if len(buf) <= 0 {
		return ErrEmptyBuffer
	}
	return schedule(s.loop, "recv_any", func() ([]byte, error) {
		tlsconn, err := s.session()
		if err != nil {
			return nil, err
		}
		count, err := tlsconn.Read(buf)
		if count > 0 {
			// a read error following data shows up at the next read
			return buf[:count], nil
		}
		if err == nil {
			err = io.ErrNoProgress
		}
		return nil, netxlite.NewErrWrapper(netxlite.ClassifyGenericError, netxlite.ReadOperation, err)
	}, handler)
}

// Shutdown shuts down the given direction(s) of the TCP transport
// without releasing it. Invalid directions are rejected with
// ErrInvalidShutdownDirection.
func (s *Socket) Shutdown(direction ShutdownDirection, handler func(error)) error {
	if !direction.valid() {
		return ErrInvalidShutdownDirection
	}
	return scheduleErr(s.loop, "shutdown", func() error {
		conn, err := s.transport()
		if err != nil {
			return err
		}
		err = shutdownConn(conn, direction)
		return netxlite.MaybeNewErrWrapper(netxlite.ClassifyGenericError, netxlite.ShutdownOperation, err)
	}, handler)
}

// Close shuts down both directions, ignoring errors, and closes the TCP
// transport. We do not send a TLS close_notify alert. Close also works
// while Connect or Handshake is pending and interrupts them. Pending I/O
// fails once the transport is closed. Every later operation fails with
// ErrNotConnected except Close, which fails with the
// connection_already_closed failure.
func (s *Socket) Close(handler func(error)) error {
	return scheduleErr(s.loop, "close", func() error {
		conn, err := s.detach()
		if err != nil {
			return err
		}
		if conn != nil {
			_ = shutdownConn(conn, ShutdownBoth)
			err = conn.Close()
		}
		// after closing, since the handshake closes the conn on cancel
		s.cancel()
		logResult(s.opts.logger, "close", err)
		return netxlite.MaybeNewErrWrapper(netxlite.ClassifyGenericError, netxlite.CloseOperation, err)
	}, handler)
}

// detach marks the socket as closed and returns the transport to
// close, which is nil when Connect has not dialed yet.
func (s *Socket) detach() (net.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.closed:
		return nil, netxlite.NewErrWrapper(netxlite.ClassifyGenericError, netxlite.CloseOperation, net.ErrClosed)
	case s.conn == nil && !s.busy:
		return nil, ErrNotConnected
	}
	s.closed = true
	conn := s.conn
	s.conn, s.tlsconn = nil, nil
	return conn, nil
}

// LocalEndpoint passes the local endpoint of the transport to the handler.
func (s *Socket) LocalEndpoint(handler func(erroror.Value[model.Endpoint])) error {
	return schedule(s.loop, "sockname", func() (model.Endpoint, error) {
		return s.endpoint(netxlite.SocknameOperation, net.Conn.LocalAddr)
	}, handler)
}

// RemoteEndpoint passes the remote endpoint of the transport to the handler.
func (s *Socket) RemoteEndpoint(handler func(erroror.Value[model.Endpoint])) error {
	return schedule(s.loop, "peername", func() (model.Endpoint, error) {
		return s.endpoint(netxlite.PeernameOperation, net.Conn.RemoteAddr)
	}, handler)
}

func (s *Socket) endpoint(operation string, addr func(net.Conn) net.Addr) (model.Endpoint, error) {
	conn, err := s.transport()
	if err != nil {
		return model.Endpoint{}, err
	}
	return endpointFromAddr(operation, addr(conn))
}

// endpointFromAddr converts a TCP address to an endpoint.
func endpointFromAddr(operation string, addr net.Addr) (model.Endpoint, error) {
	endpoint, good := model.NewEndpointFromAddr(addr)
	if !good {
		network := "<nil>"
		if addr != nil {
			network = addr.Network()
		}
		return model.Endpoint{}, netxlite.NewErrWrapper(
			netxlite.ClassifyGenericError, operation, net.UnknownNetworkError(network))
	}
	return endpoint, nil
}

// CertificateChain returns a copy of the DER certificates presented by
// the peer during the most recent handshake, leaf first. The result is
// empty, never nil, when no handshake happened or the peer presented
// no certificates.
func (s *Socket) CertificateChain() [][]byte {
	return s.collector.Chain()
}
