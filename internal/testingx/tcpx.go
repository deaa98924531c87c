package testingx

import "net"

// TCPListener creates TCP listeners for test servers.
type TCPListener interface {
	ListenTCP(network string, addr *net.TCPAddr) (net.Listener, error)
}

// TCPListenerStdlib implements [TCPListener] using the stdlib.
type TCPListenerStdlib struct{}

var _ TCPListener = &TCPListenerStdlib{}

// ListenTCP implements TCPListener.
func (*TCPListenerStdlib) ListenTCP(network string, addr *net.TCPAddr) (net.Listener, error) {
	return net.ListenTCP(network, addr)
}

// tcpMaybeResetNetConn closes conn with linger disabled so that the
// kernel sends a RST to the peer instead of a FIN.
func tcpMaybeResetNetConn(conn net.Conn) {
	type connLingerSetter interface {
		SetLinger(sec int) error
	}
	if setter, good := conn.(connLingerSetter); good {
		setter.SetLinger(0)
	}
	conn.Close()
}
