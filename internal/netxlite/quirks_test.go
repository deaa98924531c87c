package netxlite

import (
	"errors"
	"io"
	"testing"
)

func TestReduceErrors(t *testing.T) {
	t.Run("no errors", func(t *testing.T) {
		if err := reduceErrors(nil); !errors.Is(err, ErrNoEndpoints) {
			t.Fatal("unexpected error", err)
		}
	})

	t.Run("single error", func(t *testing.T) {
		err := errors.New("mocked error")
		if result := reduceErrors([]error{err}); result != err {
			t.Fatal("wrong result")
		}
	})

	t.Run("multiple errors with a classified one", func(t *testing.T) {
		err1 := errors.New("mocked error #1")
		err2 := &ErrWrapper{Failure: "unknown_failure: antani"}
		err3 := &ErrWrapper{Failure: FailureConnectionRefused}
		err4 := errors.New("mocked error #3")
		result := reduceErrors([]error{err1, err2, err3, err4})
		if result.Error() != FailureConnectionRefused {
			t.Fatal("wrong result", result)
		}
	})

	t.Run("multiple errors without a classified one", func(t *testing.T) {
		err1 := errors.New("mocked error #1")
		err2 := io.EOF
		result := reduceErrors([]error{err1, err2})
		if result != err2 {
			t.Fatal("wrong result", result)
		}
	})
}
