package etls

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/onedata/etls/internal/erroror"
	"github.com/onedata/etls/internal/eventloop"
	"github.com/onedata/etls/internal/model"
	"github.com/onedata/etls/internal/netxlite"
)

// newLoop creates a loop that is stopped when the test ends.
func newLoop(t *testing.T) *eventloop.Loop {
	loop := eventloop.New(model.DiscardLogger, eventloop.WithWorkers(2))
	t.Cleanup(func() {
		// an Accept that never completes would block Stop forever
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = loop.Stop(ctx)
	})
	return loop
}

// await starts an operation delivering a payload and waits for its result.
func await[T any](t *testing.T, start func(handler func(erroror.Value[T])) error) (T, error) {
	t.Helper()
	results := make(chan erroror.Value[T], 1)
	if err := start(func(result erroror.Value[T]) {
		results <- result
	}); err != nil {
		t.Fatal(err)
	}
	return (<-results).Unwrap()
}

// awaitErr starts an operation without a payload and waits for its result.
func awaitErr(t *testing.T, start func(handler func(error)) error) error {
	t.Helper()
	results := make(chan error, 1)
	if err := start(func(err error) {
		results <- err
	}); err != nil {
		t.Fatal(err)
	}
	return <-results
}

// requireFailure fails the test unless err is an *ErrWrapper with
// the given failure and operation.
func requireFailure(t *testing.T, err error, failure, operation string) {
	t.Helper()
	var wrapper *netxlite.ErrWrapper
	if !errors.As(err, &wrapper) {
		t.Fatalf("expected an *ErrWrapper, got %T: %v", err, err)
	}
	if wrapper.Failure != failure {
		t.Fatal("unexpected failure", wrapper.Failure)
	}
	if wrapper.Operation != operation {
		t.Fatal("unexpected operation", wrapper.Operation)
	}
}

// freePort returns a local port on which nobody is listening.
func freePort(t *testing.T) uint16 {
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()
	return uint16(port)
}
