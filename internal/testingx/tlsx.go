package testingx

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/apex/log"
	"github.com/onedata/etls/internal/runtimex"
)

// TLSHandler handles TLS connections. A handler first handles the TLS handshake
// in the GetCertificate method. If GetCertificate did not return an error, and the
// handler implements [TLSConnHandler], its HandleTLSConn method will be called after
// the handshake to handle the lifecycle of the TLS conn itself.
type TLSHandler interface {
	// GetCertificate handles the TLS handshake.
	GetCertificate(ctx context.Context, tcpConn net.Conn, chi *tls.ClientHelloInfo) (*tls.Certificate, error)
}

// TLSConn is the interface assumed by an established TLS conn.
type TLSConn interface {
	ConnectionState() tls.ConnectionState
	net.Conn
}

// TLSConnHandler is the interface implemented by handlers that want to handle
// and manage the established TLS connection after the handshake.
type TLSConnHandler interface {
	HandleTLSConn(conn TLSConn)
}

// TLSServer is a TLS server useful to implement test servers.
type TLSServer struct {
	// cancel unblocks background goroutines blocked on the context contolling their lifecycle.
	cancel context.CancelFunc

	// closeOnce provides "once" semantics when closing.
	closeOnce sync.Once

	// conns tracks the connections being handled.
	conns sync.WaitGroup

	// handler contains the TLSHandler.
	handler TLSHandler

	// listener is the listening socket controller.
	listener net.Listener

	// wg waits until the listening loop has finished running.
	wg sync.WaitGroup
}

// MustNewTLSServer creates and starts a new TLSServer listening on an
// ephemeral port on 127.0.0.1 that executes the given action during the
// TLS handshake.
func MustNewTLSServer(handler TLSHandler) *TLSServer {
	addr := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)}
	return MustNewTLSServerEx(addr, &TCPListenerStdlib{}, handler)
}

// MustNewTLSServerEx is like [MustNewTLSServer] with explicit address and listener.
func MustNewTLSServerEx(addr *net.TCPAddr, tcpListener TCPListener, handler TLSHandler) *TLSServer {
	listener := runtimex.Try1(tcpListener.ListenTCP("tcp", addr))
	ctx, cancel := context.WithCancel(context.Background())
	srv := &TLSServer{
		cancel:   cancel,
		handler:  handler,
		listener: listener,
	}
	srv.wg.Add(1)
	go srv.mainloop(ctx)
	return srv
}

// Endpoint returns the endpoint where the server is listening.
func (p *TLSServer) Endpoint() string {
	return p.listener.Addr().String()
}

// Port returns the port where the server is listening.
func (p *TLSServer) Port() uint16 {
	return uint16(p.listener.Addr().(*net.TCPAddr).Port)
}

// Close closes this server and waits for the background goroutines.
func (p *TLSServer) Close() (err error) {
	p.closeOnce.Do(func() {
		err = p.listener.Close()
		p.cancel()
		p.wg.Wait()
		p.conns.Wait()
	})
	return
}

func (p *TLSServer) mainloop(ctx context.Context) {
	defer p.wg.Done()
	for {
		conn, err := p.listener.Accept()
		if errors.Is(err, net.ErrClosed) {
			return
		}
		if err != nil {
			log.Warnf("TLSServer.mainloop: %s", err.Error())
			return
		}
		p.conns.Add(1)
		go p.handle(ctx, conn)
	}
}

func (p *TLSServer) handle(ctx context.Context, tcpConn net.Conn) {
	defer p.conns.Done()
	defer runtimex.CatchLogAndIgnorePanic(log.Log, "TLSServer.handle")
	defer tcpConn.Close()

	// closing the TCP conn unblocks a handler stuck in I/O when the server closes
	go func() {
		<-ctx.Done()
		tcpConn.Close()
	}()

	tlsConfig := &tls.Config{
		GetCertificate: func(chi *tls.ClientHelloInfo) (*tls.Certificate, error) {
			return p.handler.GetCertificate(ctx, tcpConn, chi)
		},
	}
	tlsConn := tls.Server(tcpConn, tlsConfig)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return
	}
	if h, good := p.handler.(TLSConnHandler); good {
		h.HandleTLSConn(tlsConn)
	}
}

const (
	// TLSAlertInternalError is the alert sent on internal errors
	TLSAlertInternalError = byte(80)

	// TLSAlertUnrecognizedName is the alert sent when the name is not recognized
	TLSAlertUnrecognizedName = byte(112)
)

// TLSHandlerSendAlert sends the alert given as argument to the client.
func TLSHandlerSendAlert(alert byte) TLSHandler {
	return &tlsHandlerSendAlert{alert}
}

type tlsHandlerSendAlert struct {
	alert byte
}

// GetCertificate implements TLSHandler.
func (thx *tlsHandlerSendAlert) GetCertificate(
	ctx context.Context, tcpConn net.Conn, chi *tls.ClientHelloInfo) (*tls.Certificate, error) {
	alertdata := []byte{
		21, // alert
		3,  // version[0]
		3,  // version[1]
		0,  // length[0]
		2,  // length[1]
		2,  // fatal
		thx.alert,
	}
	_, _ = tcpConn.Write(alertdata)
	_ = tcpConn.Close() // close connection to avoid the caller trying to send another alert
	return nil, errors.New("internal error")
}

// TLSHandlerEOF closes the connection during the handshake.
func TLSHandlerEOF() TLSHandler {
	return &tlsHandlerEOF{}
}

type tlsHandlerEOF struct{}

// GetCertificate implements TLSHandler.
func (*tlsHandlerEOF) GetCertificate(ctx context.Context, tcpConn net.Conn, chi *tls.ClientHelloInfo) (*tls.Certificate, error) {
	tcpConn.Close() // close the TCP connection to force EOF during the handshake
	return nil, errors.New("internal error")
}

// TLSHandlerReset resets the connection during the handshake.
func TLSHandlerReset() TLSHandler {
	return &tlsHandlerReset{}
}

type tlsHandlerReset struct{}

// GetCertificate implements TLSHandler.
func (*tlsHandlerReset) GetCertificate(ctx context.Context, tcpConn net.Conn, chi *tls.ClientHelloInfo) (*tls.Certificate, error) {
	tcpMaybeResetNetConn(tcpConn)
	return nil, errors.New("internal error")
}

// TLSHandlerEcho returns a [TLSHandler] that completes the handshake
// presenting the given chain and echoes back whatever it reads until
// the client closes the connection.
func TLSHandlerEcho(chain *CertChain) TLSHandler {
	return &tlsHandlerEcho{chain}
}

type tlsHandlerEcho struct {
	chain *CertChain
}

var _ TLSConnHandler = &tlsHandlerEcho{}

// GetCertificate implements TLSHandler.
func (thx *tlsHandlerEcho) GetCertificate(ctx context.Context, tcpConn net.Conn, chi *tls.ClientHelloInfo) (*tls.Certificate, error) {
	return &thx.chain.Certificate, nil
}

// HandleTLSConn implements TLSConnHandler.
func (thx *tlsHandlerEcho) HandleTLSConn(conn TLSConn) {
	_, _ = io.Copy(conn, conn)
}

// TLSHandlerWriteAndClose returns a [TLSHandler] that completes the
// handshake presenting the given chain, writes data, and closes the
// connection without sending a close_notify alert.
func TLSHandlerWriteAndClose(chain *CertChain, data []byte) TLSHandler {
	return &tlsHandlerWriteAndClose{chain, data}
}

type tlsHandlerWriteAndClose struct {
	chain *CertChain
	data  []byte
}

var _ TLSConnHandler = &tlsHandlerWriteAndClose{}

// GetCertificate implements TLSHandler.
func (thx *tlsHandlerWriteAndClose) GetCertificate(ctx context.Context, tcpConn net.Conn, chi *tls.ClientHelloInfo) (*tls.Certificate, error) {
	return &thx.chain.Certificate, nil
}

// HandleTLSConn implements TLSConnHandler.
func (thx *tlsHandlerWriteAndClose) HandleTLSConn(conn TLSConn) {
	_, _ = conn.Write(thx.data)
	// The caller closes the TCP conn for us, hence no close_notify
}
