package systems

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/core"
)

func TestNewJobSystemValidation(t *testing.T) {
	_, err := NewJobSystem(0, 4)
	assert.ErrorIs(t, err, ErrNoWorkers)

	_, err = NewJobSystem(2, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)
}

func TestJobCallbacksRunOnUpdate(t *testing.T) {
	js, err := NewJobSystem(2, 8)
	require.NoError(t, err)

	var ran atomic.Int32
	var results []any
	var failures []error
	failure := errors.New("broken")

	for i := 0; i < 4; i++ {
		require.NoError(t, js.Submit(JobTask{
			Name: "ok",
			Run: func(ctx context.Context) (any, error) {
				ran.Add(1)
				return 7, nil
			},
			OnComplete: func(result any) { results = append(results, result) },
		}))
	}
	require.NoError(t, js.Submit(JobTask{
		Name:      "fail",
		Run:       func(ctx context.Context) (any, error) { return nil, failure },
		OnFailure: func(err error) { failures = append(failures, err) },
	}))

	require.Eventually(t, func() bool { return ran.Load() == 4 }, time.Second, time.Millisecond)

	pending := 5
	require.Eventually(t, func() bool {
		pending = js.Update()
		return pending == 0
	}, time.Second, time.Millisecond)

	assert.Equal(t, []any{7, 7, 7, 7}, results)
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], failure)

	require.NoError(t, js.Shutdown())
}

func TestJobPanicIsReportedAsFailure(t *testing.T) {
	js, err := NewJobSystem(1, 1)
	require.NoError(t, err)

	var failure error
	require.NoError(t, js.Submit(JobTask{
		Name:      "panics",
		Run:       func(ctx context.Context) (any, error) { panic("boom") },
		OnFailure: func(err error) { failure = err },
	}))
	require.NoError(t, js.Shutdown())

	require.Error(t, failure)
	assert.Contains(t, failure.Error(), "boom")
}

func TestJobShutdownDrainsQueue(t *testing.T) {
	js, err := NewJobSystem(1, 16)
	require.NoError(t, err)

	completed := 0
	for i := 0; i < 10; i++ {
		require.NoError(t, js.Submit(JobTask{
			Run:        func(ctx context.Context) (any, error) { return nil, nil },
			OnComplete: func(any) { completed++ },
		}))
	}
	require.NoError(t, js.Shutdown())
	assert.Equal(t, 10, completed)

	assert.ErrorIs(t, js.Submit(JobTask{Run: func(ctx context.Context) (any, error) { return nil, nil }}), core.ErrAlreadyClosed)
	assert.ErrorIs(t, js.Shutdown(), core.ErrAlreadyClosed)
	assert.ErrorIs(t, js.Submit(JobTask{}), ErrMissingRun)
}
