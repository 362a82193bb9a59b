package async_test

import (
	"context"
	"errors"
	"testing"

	"postify/pkg/async"

	"github.com/stretchr/testify/require"
)

var testErr = errors.New("test error")

func TestJob(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		job := async.Job(t.Context(), func(context.Context) (string, error) {
			return "done", nil
		})

		res, err := job.Wait()
		require.NoError(t, err)
		require.Equal(t, "done", res)

		res, err = job.Wait()
		require.NoError(t, err)
		require.Equal(t, "done", res)
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()

		job := async.Job(t.Context(), func(context.Context) (any, error) {
			return nil, testErr
		})

		<-job.Done()
		require.ErrorIs(t, job.Error(), testErr)
	})

	t.Run("stop", func(t *testing.T) {
		t.Parallel()

		started := make(chan struct{})
		job := async.Job(t.Context(), func(ctx context.Context) (any, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		})

		<-started
		require.NoError(t, job.Error())

		job.Stop()

		_, err := job.Wait()
		require.ErrorIs(t, err, context.Canceled)
	})
}
