// Package runtimex contains runtime extensions. This package is inspired to
// https://pkg.go.dev/github.com/m-lab/go/rtx, except that it's simpler.
package runtimex

import (
	"errors"
	"fmt"

	"github.com/onedata/etls/internal/model"
)

// PanicOnError calls panic() if err is not nil.
func PanicOnError(err error, message string) {
	if err != nil {
		panic(fmt.Errorf("%s: %w", message, err))
	}
}

// PanicIfFalse calls panic if assertion is false.
func PanicIfFalse(assertion bool, message string) {
	if !assertion {
		panic(errors.New(message))
	}
}

// PanicIfTrue calls panic if assertion is true.
func PanicIfTrue(assertion bool, message string) {
	PanicIfFalse(!assertion, message)
}

// PanicIfNil calls panic if the given interface is nil.
func PanicIfNil(v interface{}, message string) {
	PanicIfTrue(v == nil, message)
}

// Assert is an alias for PanicIfFalse.
func Assert(assertion bool, message string) {
	PanicIfFalse(assertion, message)
}

// Try0 panics if err is not nil.
func Try0(err error) {
	PanicOnError(err, "Try0")
}

// Try1 panics if err is not nil and otherwise returns v.
func Try1[T any](v T, err error) T {
	PanicOnError(err, "Try1")
	return v
}

// CatchLogAndIgnorePanic recovers a panic in the calling goroutine
// and logs it as a warning. Use it as `defer CatchLogAndIgnorePanic(...)`
// in background goroutines that must not crash the process.
func CatchLogAndIgnorePanic(logger model.Logger, prefix string) {
	if r := recover(); r != nil {
		logger.Warnf("%s: caught panic: %v", prefix, r)
	}
}
