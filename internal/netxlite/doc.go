// Package netxlite contains the network building blocks used by the
// asynchronous TLS socket engine.
//
// The engine composes these blocks into a single connect pipeline:
//
// 1. a [Resolver] maps the host to a list of addresses;
//
// 2. [ShuffleEndpoints] randomizes the order of the candidates;
//
// 3. [DialSequentially] uses a [Dialer] to try each candidate in order
// until one of them accepts the TCP connection;
//
// 4. a [TLSHandshaker] performs the TLS handshake while a [ChainObserver]
// records the certificates presented by the peer.
//
// Every block returned by a constructor in this package performs debug
// logging and wraps errors using [*ErrWrapper], so that callers see
// errors like `connection_refused` rather than raw Go errors.
//
// Certificate verification is disabled on purpose: the engine captures
// the peer's chain and the caller decides what to do with it.
package netxlite
