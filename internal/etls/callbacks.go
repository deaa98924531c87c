package etls

import "github.com/onedata/etls/internal/erroror"

// Callbacks adapts a success and a failure function into a handler
// suitable for operations delivering a payload. Exactly one of the
// two functions runs for each completed operation.
func Callbacks[T any](success func(T), failure func(error)) func(erroror.Value[T]) {
	return func(result erroror.Value[T]) {
		result.Match(success, failure)
	}
}

// VoidCallbacks is like [Callbacks] for operations without a payload.
func VoidCallbacks(success func(), failure func(error)) func(error) {
	return func(err error) {
		if err != nil {
			failure(err)
			return
		}
		success()
	}
}
