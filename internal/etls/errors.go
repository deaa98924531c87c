package etls

import "errors"

var (
	// ErrNotConnected indicates that the socket has no transport yet.
	ErrNotConnected = errors.New("etls: socket not connected")

	// ErrAlreadyConnected indicates that Connect or Handshake was
	// called on a socket that already has (or is getting) a session.
	ErrAlreadyConnected = errors.New("etls: socket already connected")

	// ErrClosed indicates that Connect or Handshake was called on a
	// socket that was closed.
	ErrClosed = errors.New("etls: socket closed")

	// ErrNotAccepted indicates that Handshake was called on a socket
	// that was not produced by an Acceptor.
	ErrNotAccepted = errors.New("etls: socket not produced by an acceptor")

	// ErrEmptyBuffer indicates that RecvAny was called with an empty buffer.
	ErrEmptyBuffer = errors.New("etls: empty receive buffer")

	// ErrInvalidShutdownDirection indicates an unknown shutdown direction.
	ErrInvalidShutdownDirection = errors.New("etls: invalid shutdown direction")
)
