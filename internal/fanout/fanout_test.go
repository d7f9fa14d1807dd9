package fanout

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_PreservesInputOrder(t *testing.T) {
	const n = 20
	tasks := make([]Task[int], n)
	for i := range tasks {
		i := i
		delay := time.Duration(rand.Intn(20)) * time.Millisecond
		tasks[i] = func(ctx context.Context) (int, error) {
			time.Sleep(delay)
			return i, nil
		}
	}

	results := Run(context.Background(), 4, tasks)

	require.Len(t, results, n)
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, i, r.Value)
	}
}

func TestRun_RespectsConcurrencyCap(t *testing.T) {
	for _, limit := range []int{1, 2, 3, 8} {
		t.Run(fmt.Sprintf("limit_%d", limit), func(t *testing.T) {
			var active, highWater atomic.Int64
			tasks := make([]Task[struct{}], 12)
			for i := range tasks {
				tasks[i] = func(ctx context.Context) (struct{}, error) {
					cur := active.Add(1)
					for {
						prev := highWater.Load()
						if cur <= prev || highWater.CompareAndSwap(prev, cur) {
							break
						}
					}
					time.Sleep(5 * time.Millisecond)
					active.Add(-1)
					return struct{}{}, nil
				}
			}

			Run(context.Background(), limit, tasks)

			assert.LessOrEqual(t, highWater.Load(), int64(limit))
			assert.Equal(t, int64(0), active.Load())
		})
	}
}

func TestRun_FailureDoesNotCancelSiblings(t *testing.T) {
	errBoom := errors.New("boom")
	var completed atomic.Int64

	tasks := []Task[string]{
		func(ctx context.Context) (string, error) {
			return "", errBoom
		},
		func(ctx context.Context) (string, error) {
			select {
			case <-time.After(20 * time.Millisecond):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			completed.Add(1)
			return "second", nil
		},
		func(ctx context.Context) (string, error) {
			completed.Add(1)
			return "third", nil
		},
	}

	results := Run(context.Background(), DefaultMaxConcurrent, tasks)

	require.Len(t, results, 3)
	assert.ErrorIs(t, results[0].Err, errBoom)
	assert.Equal(t, "second", results[1].Value)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, "third", results[2].Value)
	assert.Equal(t, int64(2), completed.Load())
}

func TestRun_RecoversPanics(t *testing.T) {
	tasks := []Task[int]{
		func(ctx context.Context) (int, error) { panic("bad record") },
		func(ctx context.Context) (int, error) { return 7, nil },
	}

	results := Run(context.Background(), 2, tasks)

	assert.Error(t, results[0].Err)
	assert.Equal(t, 7, results[1].Value)
}

func TestRun_ZeroLimitStillRuns(t *testing.T) {
	tasks := []Task[int]{
		func(ctx context.Context) (int, error) { return 1, nil },
		func(ctx context.Context) (int, error) { return 2, nil },
	}
	results := Run(context.Background(), 0, tasks)
	assert.Equal(t, 1, results[0].Value)
	assert.Equal(t, 2, results[1].Value)
}

func TestRun_Empty(t *testing.T) {
	results := Run[int](context.Background(), 2, nil)
	assert.Empty(t, results)
}

func TestRun_CancelledContextReportsPerTask(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tasks := []Task[int]{
		func(ctx context.Context) (int, error) { return 1, nil },
	}
	results := Run(ctx, 1, tasks)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}
