package eventloop

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/onedata/etls/internal/erroror"
	"github.com/onedata/etls/internal/model"
	"github.com/onedata/etls/internal/runtimex"
)

// ErrStopped indicates that the loop does not accept new work.
var ErrStopped = errors.New("eventloop: stopped")

// ErrOperationPanicked is the error passed to handlers when the
// operation panicked instead of returning.
var ErrOperationPanicked = errors.New("eventloop: operation panicked")

const (
	// DefaultQueueSize is the default size of the completion queue.
	DefaultQueueSize = 1024
)

// Option configures a [*Loop].
type Option func(cfg *config)

type config struct {
	workers   int
	queueSize int
}

// WithWorkers sets the number of goroutines running handlers. Values
// lower than one select runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(cfg *config) {
		cfg.workers = n
	}
}

// WithQueueSize sets the size of the completion queue. Values
// lower than one select DefaultQueueSize.
func WithQueueSize(n int) Option {
	return func(cfg *config) {
		cfg.queueSize = n
	}
}

// Loop is the event loop. Construct using [New].
type Loop struct {
	completions chan func()
	done        chan struct{}
	logger      model.Logger
	mu          sync.RWMutex
	ops         sync.WaitGroup
	stopped     bool
	workers     sync.WaitGroup
}

// New creates and starts a new [*Loop].
func New(logger model.Logger, options ...Option) *Loop {
	cfg := &config{}
	for _, option := range options {
		option(cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = runtime.NumCPU()
	}
	if cfg.queueSize < 1 {
		cfg.queueSize = DefaultQueueSize
	}
	l := &Loop{
		completions: make(chan func(), cfg.queueSize),
		done:        make(chan struct{}),
		logger:      model.ValidLoggerOrDefault(logger),
	}
	for i := 0; i < cfg.workers; i++ {
		l.workers.Add(1)
		go l.worker(i)
	}
	l.logger.Debugf("eventloop: started with %d workers", cfg.workers)
	return l
}

func (l *Loop) worker(idx int) {
	defer l.workers.Done()
	for fn := range l.completions {
		l.run(fmt.Sprintf("eventloop: worker #%d", idx), fn)
	}
}

func (l *Loop) run(prefix string, fn func()) {
	defer runtimex.CatchLogAndIgnorePanic(l.logger, prefix)
	fn()
}

// Submit schedules op to run on a goroutine owned by the loop and returns
// immediately. It fails with ErrStopped once [Loop.Stop] has been called.
// The operation reports its outcome using [Loop.Post].
func (l *Loop) Submit(op func()) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.stopped {
		return ErrStopped
	}
	l.ops.Add(1)
	go func() {
		defer l.ops.Done()
		l.run("eventloop: operation", op)
	}()
	return nil
}

// Post queues fn for execution by one of the workers. Only code running
// inside an operation started by [Loop.Submit] may call Post, because
// the queue is closed once all the operations have returned.
func (l *Loop) Post(fn func()) {
	l.completions <- fn
}

// Stop stops accepting new work and waits for the in-flight operations
// and for the queued handlers to complete. If ctx expires first, Stop
// returns ctx.Err() while draining continues in the background. It is
// safe to call Stop more than once.
func (l *Loop) Stop(ctx context.Context) error {
	l.mu.Lock()
	already := l.stopped
	l.stopped = true
	l.mu.Unlock()
	if !already {
		go func() {
			l.ops.Wait()
			close(l.completions)
			l.workers.Wait()
			l.logger.Debug("eventloop: stopped")
			close(l.done)
		}()
	}
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel closed when the loop has fully stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Async runs op on the loop and passes its result to done, which runs on
// one of the workers. The done handler is invoked exactly once for every
// operation accepted by the loop, even if op panics. The returned error
// is non-nil only when the loop rejected the operation, in which case
// done is never invoked.
func Async[T any](l *Loop, op func() (T, error), done func(erroror.Value[T])) error {
	return l.Submit(func() {
		result := protect(op)
		l.Post(func() {
			done(result)
		})
	})
}

// AsyncErr is like [Async] for operations without a payload.
func AsyncErr(l *Loop, op func() error, done func(error)) error {
	return Async(l, func() (struct{}, error) {
		return struct{}{}, op()
	}, func(result erroror.Value[struct{}]) {
		done(result.Err)
	})
}

// protect runs op converting a panic into ErrOperationPanicked.
func protect[T any](op func() (T, error)) (result erroror.Value[T]) {
	defer func() {
		if r := recover(); r != nil {
			result = erroror.Fail[T](fmt.Errorf("%w: %v", ErrOperationPanicked, r))
		}
	}()
	v, err := op()
	if err != nil {
		return erroror.Fail[T](err)
	}
	return erroror.Succeed(v)
}
