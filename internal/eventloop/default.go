package eventloop

import (
	"context"
	"sync"

	"github.com/onedata/etls/internal/model"
	"github.com/onedata/etls/internal/runtimex"
)

// The process-wide loop. Code outside this file only reaches it
// through Init, Default and Shutdown.
var (
	defaultMu   sync.Mutex
	defaultLoop *Loop
)

// Init creates the process-wide loop. Calling Init again while the
// loop exists returns the existing loop and ignores the arguments.
func Init(logger model.Logger, options ...Option) *Loop {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLoop == nil {
		defaultLoop = New(logger, options...)
	}
	return defaultLoop
}

// Default returns the process-wide loop. It panics if Init has not
// been called, because using the loop before creating it is a bug.
func Default() *Loop {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	runtimex.PanicIfTrue(defaultLoop == nil, "eventloop: Default called before Init")
	return defaultLoop
}

// Shutdown stops the process-wide loop (see [Loop.Stop]) and forgets
// it, so that a later Init creates a fresh loop.
func Shutdown(ctx context.Context) error {
	defaultMu.Lock()
	loop := defaultLoop
	defaultLoop = nil
	defaultMu.Unlock()
	if loop == nil {
		return nil
	}
	return loop.Stop(ctx)
}
