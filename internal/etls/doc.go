// Package etls implements asynchronous TLS-over-TCP sockets that capture
// the certificate chain presented by the peer.
//
// A [*Socket] either connects to a remote server ([Socket.Connect]) or is
// produced by an [*Acceptor] and then completes a server handshake
// ([Socket.Handshake]). Every operation is scheduled on an
// [*eventloop.Loop] and its outcome is delivered exactly once to a
// handler running on one of the loop's workers. Certificates are never
// verified: this package captures chains so that the caller can decide
// whether to trust them.
package etls
