package netxlite

//
// Failure strings and operations
//

// These are the failure strings we may emit. Unknown errors become
// `unknown_failure: <message>` instead.
const (
	FailureBrokenPipe              = "broken_pipe"
	FailureConnectionAlreadyClosed = "connection_already_closed"
	FailureConnectionRefused       = "connection_refused"
	FailureConnectionReset         = "connection_reset"
	FailureDNSNXDOMAINError        = "dns_nxdomain_error"
	FailureDNSNoAnswer             = "dns_no_answer"
	FailureDNSServerMisbehaving    = "dns_server_misbehaving"
	FailureEOFError                = "eof_error"
	FailureGenericTimeoutError     = "generic_timeout_error"
	FailureHostUnreachable         = "host_unreachable"
	FailureInterrupted             = "interrupted"
	FailureNetworkUnreachable      = "network_unreachable"
	FailureSSLFailedHandshake      = "ssl_failed_handshake"
)

// These are the operations that may fail.
const (
	// ResolveOperation is the operation where we resolve a domain name.
	ResolveOperation = "resolve"

	// ConnectOperation is the operation where we do a TCP connect.
	ConnectOperation = "connect"

	// TLSHandshakeOperation is the TLS handshake, both as client and server.
	TLSHandshakeOperation = "tls_handshake"

	// ReadOperation is when we read from a socket.
	ReadOperation = "read"

	// WriteOperation is when we write to a socket.
	WriteOperation = "write"

	// ShutdownOperation is when we shut down one or both directions.
	ShutdownOperation = "shutdown"

	// CloseOperation is when we close a socket.
	CloseOperation = "close"

	// AcceptOperation is when a listener accepts a connection.
	AcceptOperation = "accept"

	// ListenOperation is when we create a listener.
	ListenOperation = "listen"

	// SocknameOperation is when we query the local endpoint.
	SocknameOperation = "sockname"

	// PeernameOperation is when we query the remote endpoint.
	PeernameOperation = "peername"
)
