package etls

import (
	"context"
	"crypto/tls"
	"net"

	"github.com/onedata/etls/internal/erroror"
	"github.com/onedata/etls/internal/eventloop"
	"github.com/onedata/etls/internal/model"
	"github.com/onedata/etls/internal/netxlite"
)

// Acceptor is a TLS listening socket. Construct using [Listen].
type Acceptor struct {
	config   *tls.Config
	listener net.Listener
	loop     *eventloop.Loop
	opts     *options
}

// Listen creates an [*Acceptor] listening on all the IPv4 interfaces on
// the given port (zero selects an ephemeral port) and serving the PEM
// certificate chain and private key read from certPath and keyPath.
// The key pair is loaded once: rotating the files requires a new Acceptor.
// Failing to load it is reported as an [*netxlite.ErrWrapper] for the
// listen operation, like a failure to bind.
func Listen(loop *eventloop.Loop, port uint16, certPath, keyPath string, options ...Option) (*Acceptor, error) {
	opts := newOptions(options)
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, netxlite.NewErrWrapper(netxlite.ClassifyGenericError, netxlite.ListenOperation, err)
	}
	listener, err := netxlite.ListenTCP4(context.Background(), opts.logger, port)
	if err != nil {
		return nil, err
	}
	config := opts.baseTLSConfig()
	config.Certificates = []tls.Certificate{cert}
	return &Acceptor{
		config:   config,
		listener: listener,
		loop:     loop,
		opts:     opts,
	}, nil
}

// Accept waits for the next connection and passes to the handler a
// [*Socket] for it. The socket has not completed the TLS handshake
// yet: call [Socket.Handshake] before exchanging data.
func (a *Acceptor) Accept(handler func(erroror.Value[*Socket])) error {
	return schedule(a.loop, "accept", func() (*Socket, error) {
		conn, err := a.listener.Accept()
		if err != nil {
			logResult(a.opts.logger, "accept", err)
			return nil, err
		}
		if err := netxlite.SetNoDelay(conn); err != nil {
			conn.Close()
			return nil, netxlite.NewErrWrapper(netxlite.ClassifyGenericError, netxlite.AcceptOperation, err)
		}
		a.opts.logger.Debugf("etls: accept... ok from %s", conn.RemoteAddr())
		return newAcceptedSocket(a.loop, a.opts, conn, a.config), nil
	}, handler)
}

// LocalEndpoint passes the endpoint the acceptor is bound to to the handler.
func (a *Acceptor) LocalEndpoint(handler func(erroror.Value[model.Endpoint])) error {
	return schedule(a.loop, "acceptor_sockname", func() (model.Endpoint, error) {
		return endpointFromAddr(netxlite.SocknameOperation, a.listener.Addr())
	}, handler)
}

// Addr returns the address the acceptor is bound to.
func (a *Acceptor) Addr() net.Addr {
	return a.listener.Addr()
}

// Close stops listening. Pending Accept calls fail with the
// connection_already_closed failure. Sockets already accepted
// are not affected.
func (a *Acceptor) Close() error {
	return a.listener.Close()
}
