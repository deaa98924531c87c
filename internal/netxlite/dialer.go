package netxlite

import (
	"context"
	"net"
	"time"

	"github.com/onedata/etls/internal/model"
)

// Dialer establishes network connections.
type Dialer interface {
	// DialContext behaves like net.Dialer.DialContext.
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// NewDialer creates a dialer for IP endpoints that logs and wraps errors.
// Domain names are not resolved here: the connect pipeline resolves
// and shuffles before dialing (see [DialSequentially]).
func NewDialer(logger model.DebugLogger) Dialer {
	return &dialerLogger{
		Dialer: &dialerErrWrapper{
			Dialer: &dialerSystem{},
		},
		Logger: logger,
	}
}

// dialerSystem dials using Go stdlib. There is no dial timeout: a hung
// connect is bounded only by the kernel's own timeouts.
type dialerSystem struct {
	// testableDialer is the OPTIONAL dialer to use instead of the default.
	testableDialer func(ctx context.Context, network, address string) (net.Conn, error)
}

var _ Dialer = &dialerSystem{}

// DialContext implements Dialer.DialContext.
func (d *dialerSystem) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if d.testableDialer != nil {
		return d.testableDialer(ctx, network, address)
	}
	var underlying net.Dialer
	return underlying.DialContext(ctx, network, address)
}

// dialerErrWrapper is a dialer that performs error wrapping.
type dialerErrWrapper struct {
	Dialer Dialer
}

var _ Dialer = &dialerErrWrapper{}

// DialContext implements Dialer.DialContext.
func (d *dialerErrWrapper) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	conn, err := d.Dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, NewErrWrapper(ClassifyGenericError, ConnectOperation, err)
	}
	return conn, nil
}

// dialerLogger is a Dialer with logging.
type dialerLogger struct {
	// Dialer is the underlying dialer.
	Dialer Dialer

	// Logger is the underlying logger.
	Logger model.DebugLogger
}

var _ Dialer = &dialerLogger{}

// DialContext implements Dialer.DialContext
func (d *dialerLogger) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	d.Logger.Debugf("dial %s/%s...", address, network)
	start := time.Now()
	conn, err := d.Dialer.DialContext(ctx, network, address)
	elapsed := time.Since(start)
	if err != nil {
		d.Logger.Debugf("dial %s/%s... %s in %s", address, network, err, elapsed)
		return nil, err
	}
	d.Logger.Debugf("dial %s/%s... ok in %s", address, network, elapsed)
	return conn, nil
}

// DialSequentially tries to establish a TCP connection with each endpoint
// in order and returns the first connection that succeeds. When all the
// attempts fail, it returns the most relevant error (see reduceErrors),
// wrapped as a connect failure. An empty list fails with ErrNoEndpoints.
//
// On success, this function disables Nagle's algorithm for the
// connection, because the engine prefers low latency for sends.
func DialSequentially(ctx context.Context, dialer Dialer, endpoints []model.Endpoint) (net.Conn, error) {
	var errorslist []error
	for _, endpoint := range endpoints {
		conn, err := dialer.DialContext(ctx, "tcp", endpoint.String())
		if err != nil {
			errorslist = append(errorslist, err)
			continue
		}
		if err := SetNoDelay(conn); err != nil {
			conn.Close()
			return nil, NewErrWrapper(ClassifyGenericError, ConnectOperation, err)
		}
		return conn, nil
	}
	return nil, NewErrWrapper(ClassifyGenericError, ConnectOperation, reduceErrors(errorslist))
}

// SetNoDelay disables Nagle's algorithm when conn is a TCP connection
// and is a no-op otherwise.
func SetNoDelay(conn net.Conn) error {
	type noDelaySetter interface {
		SetNoDelay(noDelay bool) error
	}
	if setter, good := conn.(noDelaySetter); good {
		return setter.SetNoDelay(true)
	}
	return nil
}
