package pipeline

import (
	"context"
	"time"

	apperrors "github.com/dsaini64/food-tracker-sub001/internal/errors"
)

type outcome[T any] struct {
	value T
	err   error
}

// RunWithBudget executes work under an end-to-end deadline. Exactly one
// result is ever delivered: either the work's own result or, once the budget
// elapses, timeoutErr. A result arriving after the deadline fired is dropped;
// the buffered channel lets the late goroutine finish without leaking.
func RunWithBudget[T any](ctx context.Context, budget time.Duration, timeoutErr *apperrors.AppError, work func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	resultCh := make(chan outcome[T], 1)
	go func() {
		v, err := work(ctx)
		resultCh <- outcome[T]{value: v, err: err}
	}()

	select {
	case res := <-resultCh:
		return res.value, res.err
	case <-ctx.Done():
		var zero T
		return zero, timeoutErr
	}
}
