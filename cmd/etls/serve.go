package main

//
// serve subcommand
//

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/onedata/etls/internal/erroror"
	"github.com/onedata/etls/internal/etls"
	"github.com/onedata/etls/internal/model"
	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// serveCommand is the configuration of the serve subcommand.
type serveCommand struct {
	cert    string
	g       *globalOptions
	key     string
	metrics string
	port    uint16
}

func serveSubcommand(g *globalOptions) *cobra.Command {
	c := &serveCommand{g: g}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Runs a TLS echo server logging the client certificate chains",
		Args:  cobra.NoArgs,
		RunE:  c.main,
	}
	cmd.Flags().Uint16Var(&c.port, "port", 9443, "port where to listen")
	cmd.Flags().StringVar(&c.cert, "cert", "server.pem", "PEM certificate chain")
	cmd.Flags().StringVar(&c.key, "key", "server.key", "PEM private key")
	cmd.Flags().StringVar(&c.metrics, "metrics", "", "where to serve prometheus metrics (e.g., 127.0.0.1:9091)")
	return cmd
}

func (c *serveCommand) main(cmd *cobra.Command, args []string) error {
	cfg, err := c.g.loadConfig()
	if err != nil {
		return err
	}
	loop, stop := startLoop(cfg)
	defer stop()

	acceptor, err := etls.Listen(loop, c.port, c.cert, c.key, cfg.EtlsOptions(log.Log)...)
	if err != nil {
		return pkgerrors.Wrap(err, "listen")
	}
	log.Infof("serving TLS echo at %s", acceptor.Addr())

	metricsAddress := c.metrics
	if metricsAddress == "" {
		metricsAddress = cfg.Metrics.Address
	}
	if metricsAddress != "" {
		promMux := http.NewServeMux()
		promMux.Handle("/metrics", promhttp.Handler())
		promSrv := &http.Server{Addr: metricsAddress, Handler: promMux}
		go promSrv.ListenAndServe()
		defer promSrv.Close()
		log.Infof("serving prometheus metrics at http://%s/metrics", metricsAddress)
	}

	srv := newEchoServer(acceptor, cfg.Recv.DefaultSize, log.Log)
	if err := srv.Start(); err != nil {
		return pkgerrors.Wrap(err, "accept")
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()
	log.Infof("interrupted: %s", context.Cause(ctx))
	srv.Stop()
	return nil
}

// echoServer echoes back what each client sends. Every client is served
// by a chain of handlers: Handshake, then RecvAny and Send in a loop,
// then Close once either fails.
type echoServer struct {
	acceptor *etls.Acceptor
	logger   model.Logger
	mu       sync.Mutex
	recvSize int
	sessions map[*etls.Socket]struct{}
	stopped  bool
	wg       sync.WaitGroup
}

func newEchoServer(acceptor *etls.Acceptor, recvSize int, logger model.Logger) *echoServer {
	return &echoServer{
		acceptor: acceptor,
		logger:   logger,
		recvSize: recvSize,
		sessions: map[*etls.Socket]struct{}{},
	}
}

// Start starts accepting clients.
func (s *echoServer) Start() error {
	return s.acceptor.Accept(s.onAccept)
}

// Stop stops accepting, closes the sessions and waits for them to terminate.
func (s *echoServer) Stop() {
	s.mu.Lock()
	s.stopped = true
	sessions := make([]*etls.Socket, 0, len(s.sessions))
	for sock := range s.sessions {
		sessions = append(sessions, sock)
	}
	s.mu.Unlock()
	s.acceptor.Close()
	for _, sock := range sessions {
		// the pending Handshake or RecvAny fails and ends the session
		_ = sock.Close(func(error) {})
	}
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.logger.Warn("echo: some sessions did not terminate")
	}
}

func (s *echoServer) onAccept(result erroror.Value[*etls.Socket]) {
	sock, err := result.Unwrap()
	s.mu.Lock()
	stopped := s.stopped
	if err == nil && !stopped {
		s.sessions[sock] = struct{}{}
		s.wg.Add(1)
	}
	s.mu.Unlock()
	if stopped {
		if err == nil {
			_ = sock.Close(func(error) {})
		}
		return
	}
	if errors.Is(err, net.ErrClosed) {
		return
	}
	if err != nil {
		s.logger.Warnf("echo: accept: %s", err.Error())
	} else {
		(&echoSession{server: s, sock: sock, buf: make([]byte, s.recvSize)}).start()
	}
	if err := s.acceptor.Accept(s.onAccept); err != nil {
		s.logger.Warnf("echo: cannot accept: %s", err.Error())
	}
}

// echoSession is the state of a single client.
type echoSession struct {
	buf    []byte
	server *echoServer
	sock   *etls.Socket
}

func (es *echoSession) start() {
	if err := es.sock.Handshake(es.onHandshake); err != nil {
		es.finish(err)
	}
}

func (es *echoSession) onHandshake(err error) {
	if err != nil {
		es.finish(err)
		return
	}
	es.server.logger.Infof("echo: client presented %d certificate(s)", len(es.sock.CertificateChain()))
	es.recv()
}

func (es *echoSession) recv() {
	if err := es.sock.RecvAny(es.buf, etls.Callbacks(es.onData, es.finish)); err != nil {
		es.finish(err)
	}
}

func (es *echoSession) onData(data []byte) {
	// data aliases buf, which we only reuse after Send completes
	if err := es.sock.Send(data, etls.VoidCallbacks(es.recv, es.finish)); err != nil {
		es.finish(err)
	}
}

func (es *echoSession) finish(err error) {
	es.server.logger.Debugf("echo: session done: %s", err.Error())
	closeErr := es.sock.Close(func(error) {
		es.server.done(es.sock)
	})
	if closeErr != nil {
		es.server.done(es.sock)
	}
}

func (s *echoServer) done(sock *etls.Socket) {
	s.mu.Lock()
	delete(s.sessions, sock)
	s.mu.Unlock()
	s.wg.Done()
}
