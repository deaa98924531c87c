// Package eventloop implements the process-wide event loop servicing
// the asynchronous socket engine.
//
// A [*Loop] has two stages. Operations submitted with [Loop.Submit] run on
// goroutines owned by the loop; they may block on network I/O, in which
// case they park in the Go runtime's network poller. When an operation
// completes, its handler is queued and later run by one of a fixed pool
// of worker goroutines. Handlers therefore never run on the goroutine that
// submitted the operation, not even when the operation fails immediately.
//
// The loop must be created before any socket uses it and stopped after
// all the sockets released their resources. [Loop.Stop] rejects new work
// and drains what is in flight.
package eventloop
