package netxlite

import "errors"

// ErrWrapper is our error wrapper for Go errors. The key objective of
// this structure is to properly set Failure, which is also returned by
// the Error() method, to be one of the FailureXXX strings.
type ErrWrapper struct {
	// Failure is the failure string. This is either one of the
	// FailureXXX strings or a string like `unknown_failure: ...`,
	// which represents an error that we have not mapped yet.
	Failure string

	// Operation is the operation that failed.
	//
	// If an ErrWrapper for the connect pipeline (resolve, connect,
	// tls_handshake) wraps another ErrWrapper, we keep the child's
	// operation, so that the topmost wrapper tells the caller which
	// stage of the pipeline actually failed.
	Operation string

	// WrappedErr is the error that we're wrapping.
	WrappedErr error
}

// Error returns the failure string for this error.
func (e *ErrWrapper) Error() string {
	return e.Failure
}

// Unwrap allows to access the underlying error.
func (e *ErrWrapper) Unwrap() error {
	return e.WrappedErr
}

// classifier is the type of the function that maps a Go error
// to one of the failure strings.
type classifier func(err error) string

// NewErrWrapper creates a new ErrWrapper using the given
// classifier, operation name, and underlying error.
//
// This function panics if classifier is nil, or operation
// is the empty string or error is nil.
//
// If err has already been classified, the returned wrapper reuses its
// failure string and decides which operation to keep as documented
// in the ErrWrapper.Operation documentation.
func NewErrWrapper(c classifier, op string, err error) *ErrWrapper {
	var wrapper *ErrWrapper
	if errors.As(err, &wrapper) {
		return &ErrWrapper{
			Failure:    wrapper.Failure,
			Operation:  classifyOperation(wrapper, op),
			WrappedErr: err,
		}
	}
	if c == nil {
		panic("nil classifier")
	}
	if op == "" {
		panic("empty op")
	}
	if err == nil {
		panic("nil err")
	}
	return &ErrWrapper{
		Failure:    c(err),
		Operation:  op,
		WrappedErr: err,
	}
}

// MaybeNewErrWrapper is like NewErrWrapper except that this
// function won't panic if passed a nil error.
func MaybeNewErrWrapper(c classifier, op string, err error) error {
	if err != nil {
		return NewErrWrapper(c, op, err)
	}
	return nil
}

func classifyOperation(ew *ErrWrapper, operation string) string {
	switch ew.Operation {
	case ResolveOperation, ConnectOperation, TLSHandshakeOperation:
		return ew.Operation
	default:
		return operation
	}
}
