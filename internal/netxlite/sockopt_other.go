//go:build !unix

package netxlite

import "syscall"

// listenControl is a no-op where we do not set socket options.
func listenControl(network, address string, conn syscall.RawConn) error {
	return nil
}
