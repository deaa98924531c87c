package etls

import (
	"github.com/onedata/etls/internal/erroror"
	"github.com/onedata/etls/internal/eventloop"
	"github.com/onedata/etls/internal/runtimex"
)

// schedule runs op on the loop, accounts for it in the metrics and
// delivers its result to handler.
func schedule[T any](loop *eventloop.Loop, name string,
	op func() (T, error), handler func(erroror.Value[T])) error {
	runtimex.PanicIfTrue(handler == nil, "etls: nil handler for "+name)
	tracker := newOperationTracker(name)
	err := eventloop.Async(loop, op, func(result erroror.Value[T]) {
		tracker.done(result.Err)
		handler(result)
	})
	if err != nil {
		tracker.abort()
	}
	return err
}

// scheduleErr is like schedule for operations without a payload.
func scheduleErr(loop *eventloop.Loop, name string, op func() error, handler func(error)) error {
	runtimex.PanicIfTrue(handler == nil, "etls: nil handler for "+name)
	return schedule(loop, name, func() (struct{}, error) {
		return struct{}{}, op()
	}, func(result erroror.Value[struct{}]) {
		handler(result.Err)
	})
}
