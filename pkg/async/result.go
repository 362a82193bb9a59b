package async

// Result pairs a value with the error produced alongside it.
type Result[T any] struct {
	Value T
	Err   error
}

func NewResult[T any](value T, err error) Result[T] {
	return Result[T]{Value: value, Err: err}
}

func (r Result[T]) Unpack() (T, error) {
	return r.Value, r.Err
}
