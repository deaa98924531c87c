// Package erroror contains code to represent an error or a value.
//
// The socket engine delivers the outcome of every asynchronous operation
// carrying a payload as a [Value], so that a single handler sees either
// the payload or the failure and never both.
package erroror

// Value represents an error or a value. When Err is not nil, Value
// is the zero value of Type and must not be used.
type Value[Type any] struct {
	Err   error
	Value Type
}

// Succeed returns a successful [Value] holding v.
func Succeed[Type any](v Type) Value[Type] {
	return Value[Type]{Value: v}
}

// Fail returns a failed [Value] holding err.
func Fail[Type any](err error) Value[Type] {
	return Value[Type]{Err: err}
}

// Unwrap returns the value and the error.
func (v Value[Type]) Unwrap() (Type, error) {
	return v.Value, v.Err
}

// Match calls onSuccess with the value when Err is nil and
// onFailure with Err otherwise. Exactly one of them is called.
func (v Value[Type]) Match(onSuccess func(Type), onFailure func(error)) {
	if v.Err != nil {
		onFailure(v.Err)
		return
	}
	onSuccess(v.Value)
}
