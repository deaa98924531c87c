package netxlite

//
// TCP listener
//

import (
	"context"
	"net"
	"strconv"

	"github.com/onedata/etls/internal/model"
)

// ListenTCP4 creates an IPv4 TCP listener bound to all the interfaces on
// the given port. A zero port selects an ephemeral port. On unix we set
// SO_REUSEADDR so that a restarted server can bind immediately.
func ListenTCP4(ctx context.Context, logger model.DebugLogger, port uint16) (net.Listener, error) {
	address := net.JoinHostPort("0.0.0.0", strconv.Itoa(int(port)))
	lc := &net.ListenConfig{Control: listenControl}
	logger.Debugf("listen %s/tcp4...", address)
	listener, err := lc.Listen(ctx, "tcp4", address)
	if err != nil {
		err = NewErrWrapper(ClassifyGenericError, ListenOperation, err)
		logger.Debugf("listen %s/tcp4... %s", address, err)
		return nil, err
	}
	logger.Debugf("listen %s/tcp4... ok at %s", address, listener.Addr())
	return &listenerErrWrapper{Listener: listener}, nil
}

// listenerErrWrapper wraps errors returned by Accept and Close.
type listenerErrWrapper struct {
	net.Listener
}

// Accept implements net.Listener.Accept.
func (l *listenerErrWrapper) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, NewErrWrapper(ClassifyGenericError, AcceptOperation, err)
	}
	return conn, nil
}

// Close implements net.Listener.Close.
func (l *listenerErrWrapper) Close() error {
	return MaybeNewErrWrapper(ClassifyGenericError, CloseOperation, l.Listener.Close())
}
