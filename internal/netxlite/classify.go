package netxlite

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"syscall"
)

// ClassifyGenericError maps an error to a failure string. This is the
// most generic classifier and it's the one we use for I/O errors. The
// more specific classifiers fall back to this one.
//
// If the input error is an *ErrWrapper we don't perform the
// classification again and we return its Failure.
//
// If everything else fails, this classifier returns a string
// like "unknown_failure: XXX".
func ClassifyGenericError(err error) string {
	var errwrapper *ErrWrapper
	if errors.As(err, &errwrapper) {
		return errwrapper.Error() // we've already wrapped it
	}

	// Classify system errors first: matching strings would not
	// work on systems where errno strings are localized.
	if failure := classifySyscallError(err); failure != "" {
		return failure
	}

	switch {
	case errors.Is(err, context.Canceled):
		return FailureInterrupted
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, os.ErrDeadlineExceeded):
		return FailureGenericTimeoutError
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return FailureEOFError
	case errors.Is(err, net.ErrClosed):
		return FailureConnectionAlreadyClosed
	}

	if failure := classifyWithStringSuffix(err); failure != "" {
		return failure
	}

	return fmt.Sprintf("unknown_failure: %s", err.Error())
}

// classifySyscallError maps the errno values we care about. It
// returns an empty string when the error is not a known errno.
func classifySyscallError(err error) string {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return ""
	}
	switch errno {
	case syscall.ECONNREFUSED:
		return FailureConnectionRefused
	case syscall.ECONNRESET:
		return FailureConnectionReset
	case syscall.EPIPE:
		return FailureBrokenPipe
	case syscall.ETIMEDOUT:
		return FailureGenericTimeoutError
	case syscall.EHOSTUNREACH:
		return FailureHostUnreachable
	case syscall.ENETUNREACH:
		return FailureNetworkUnreachable
	case syscall.EINTR:
		return FailureInterrupted
	default:
		return ""
	}
}

// We use these strings to string-match errors in the standard library.
const (
	DNSNoSuchHostSuffix        = "no such host"
	DNSServerMisbehavingSuffix = "server misbehaving"
	DNSNoAnswerSuffix          = "no answer from DNS server"
)

// classifyWithStringSuffix is the last resort of ClassifyGenericError. It
// returns an empty string if it cannot classify the error.
func classifyWithStringSuffix(err error) string {
	s := err.Error()
	switch {
	case strings.HasSuffix(s, "operation was canceled"):
		return FailureInterrupted
	case strings.HasSuffix(s, "i/o timeout"):
		return FailureGenericTimeoutError
	case strings.HasSuffix(s, DNSNoSuchHostSuffix):
		return FailureDNSNXDOMAINError
	case strings.HasSuffix(s, DNSServerMisbehavingSuffix):
		return FailureDNSServerMisbehaving
	case strings.HasSuffix(s, DNSNoAnswerSuffix):
		return FailureDNSNoAnswer
	case strings.HasSuffix(s, "use of closed network connection"):
		return FailureConnectionAlreadyClosed
	default:
		return ""
	}
}

// classifyResolverError maps DNS errors to failure strings, falling
// back to ClassifyGenericError.
func classifyResolverError(err error) string {
	var errwrapper *ErrWrapper
	if errors.As(err, &errwrapper) {
		return errwrapper.Error() // we've already wrapped it
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return FailureDNSNXDOMAINError
	}
	switch {
	case errors.Is(err, ErrOODNSNoSuchHost):
		return FailureDNSNXDOMAINError
	case errors.Is(err, ErrOODNSNoAnswer):
		return FailureDNSNoAnswer
	case errors.Is(err, ErrOODNSMisbehaving):
		return FailureDNSServerMisbehaving
	}
	return ClassifyGenericError(err)
}

// classifyTLSHandshakeError maps TLS handshake errors to failure strings,
// falling back to ClassifyGenericError. Since we never verify certificates,
// there is no certificate-trust failure here.
func classifyTLSHandshakeError(err error) string {
	var errwrapper *ErrWrapper
	if errors.As(err, &errwrapper) {
		return errwrapper.Error() // we've already wrapped it
	}
	var (
		alert  tls.AlertError
		header tls.RecordHeaderError
	)
	if errors.As(err, &alert) || errors.As(err, &header) {
		return FailureSSLFailedHandshake
	}
	if failure := ClassifyGenericError(err); !strings.HasPrefix(failure, "unknown_failure") {
		return failure
	}
	// crypto/tls returns plain errors containing "tls: " for protocol
	// violations and "remote error: tls: ..." for received alerts.
	if strings.Contains(err.Error(), "tls: ") {
		return FailureSSLFailedHandshake
	}
	return ClassifyGenericError(err)
}

// These errors are returned by the DNS-over-UDP resolver. Their suffix
// matches the equivalent errors of the standard library.
var (
	ErrOODNSNoSuchHost  = fmt.Errorf("resolver: %s", DNSNoSuchHostSuffix)
	ErrOODNSNoAnswer    = fmt.Errorf("resolver: %s", DNSNoAnswerSuffix)
	ErrOODNSMisbehaving = fmt.Errorf("resolver: %s", DNSServerMisbehavingSuffix)
)
