package async

import (
	"context"
	"sync"
)

// JobHandle controls a function running in its own goroutine.
type JobHandle[T any] struct {
	cancel func()
	done   chan struct{}

	once   sync.Once
	result Result[T]
}

// Job starts job in a goroutine. The job's context is derived from ctx and is canceled by Stop.
func Job[T any](ctx context.Context, job func(ctx context.Context) (T, error)) *JobHandle[T] {
	ctx, cancel := context.WithCancel(ctx)
	handle := &JobHandle[T]{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer cancel()

		res, err := job(ctx)
		handle.finish(NewResult(res, err))
	}()

	return handle
}

func (j *JobHandle[T]) finish(res Result[T]) {
	j.once.Do(func() {
		j.result = res
		close(j.done)
	})
}

func (j *JobHandle[T]) Stop() {
	j.cancel()
}

// Done is closed when the job returns.
func (j *JobHandle[T]) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job returns. It may be called any number of times.
func (j *JobHandle[T]) Wait() (T, error) {
	<-j.done
	return j.result.Unpack()
}

// Error returns the job's error, or nil while it is still running.
func (j *JobHandle[T]) Error() error {
	select {
	case <-j.done:
		return j.result.Err
	default:
		return nil
	}
}
