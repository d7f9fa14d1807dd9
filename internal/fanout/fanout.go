package fanout

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxConcurrent keeps concurrent provider calls within third-party rate limits.
const DefaultMaxConcurrent = 2

type Task[T any] func(ctx context.Context) (T, error)

type Result[T any] struct {
	Value T
	Err   error
}

// Run executes tasks with at most maxConcurrent in flight and returns one
// Result per task, at the task's input index. A failing task never cancels
// its siblings; tasks still queued when ctx is done report ctx's error.
func Run[T any](ctx context.Context, maxConcurrent int, tasks []Task[T]) []Result[T] {
	results := make([]Result[T], len(tasks))
	if len(tasks) == 0 {
		return results
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	var g errgroup.Group
	g.SetLimit(maxConcurrent)

	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			results[i] = runOne(ctx, task)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func runOne[T any](ctx context.Context, task Task[T]) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = Result[T]{Err: fmt.Errorf("task panicked: %v", r)}
		}
	}()

	if err := ctx.Err(); err != nil {
		return Result[T]{Err: err}
	}
	v, err := task(ctx)
	return Result[T]{Value: v, Err: err}
}
