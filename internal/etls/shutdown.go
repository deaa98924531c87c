package etls

import (
	"errors"
	"net"
)

// ShutdownDirection selects which direction(s) of a connection to shut down.
type ShutdownDirection int

const (
	// ShutdownRead disables further receives.
	ShutdownRead = ShutdownDirection(iota + 1)

	// ShutdownWrite disables further sends and sends a FIN to the peer.
	ShutdownWrite

	// ShutdownBoth combines ShutdownRead and ShutdownWrite.
	ShutdownBoth
)

var shutdownDirectionNames = map[ShutdownDirection]string{
	ShutdownRead:  "read",
	ShutdownWrite: "write",
	ShutdownBoth:  "read_write",
}

// String implements fmt.Stringer.
func (d ShutdownDirection) String() string {
	if name, found := shutdownDirectionNames[d]; found {
		return name
	}
	return "invalid"
}

func (d ShutdownDirection) valid() bool {
	_, found := shutdownDirectionNames[d]
	return found
}

// ParseShutdownDirection maps "read", "write" and "read_write" to the
// corresponding direction and fails with ErrInvalidShutdownDirection
// for any other string.
func ParseShutdownDirection(s string) (ShutdownDirection, error) {
	for direction, name := range shutdownDirectionNames {
		if name == s {
			return direction, nil
		}
	}
	return 0, ErrInvalidShutdownDirection
}

// halfCloser is implemented by *net.TCPConn.
type halfCloser interface {
	CloseRead() error
	CloseWrite() error
}

// shutdownConn shuts down the given direction(s) of conn.
func shutdownConn(conn net.Conn, direction ShutdownDirection) error {
	closer, good := conn.(halfCloser)
	if !good {
		return errors.New("etls: connection does not support shutdown")
	}
	switch direction {
	case ShutdownRead:
		return closer.CloseRead()
	case ShutdownWrite:
		return closer.CloseWrite()
	default:
		return errors.Join(closer.CloseRead(), closer.CloseWrite())
	}
}
