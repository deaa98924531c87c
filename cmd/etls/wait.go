package main

import "github.com/onedata/etls/internal/erroror"

// wait starts an asynchronous operation and blocks until its result.
func wait[T any](start func(handler func(erroror.Value[T])) error) (T, error) {
	results := make(chan erroror.Value[T], 1)
	if err := start(func(result erroror.Value[T]) {
		results <- result
	}); err != nil {
		var zero T
		return zero, err
	}
	return (<-results).Unwrap()
}

// waitErr is like wait for operations without a payload.
func waitErr(start func(handler func(error)) error) error {
	results := make(chan error, 1)
	if err := start(func(err error) {
		results <- err
	}); err != nil {
		return err
	}
	return <-results
}
