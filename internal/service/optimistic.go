package service

import (
	"context"

	"github.com/akhilmk-dev/menahub/pkg/errors"
)

// SaveWithRetry applies a change to current and saves it. If the save loses an
// optimistic concurrency race, the aggregate is reloaded, the same change is applied to
// the fresh copy and saved once more. A second conflict is returned to the caller.
func SaveWithRetry[T any](
	ctx context.Context,
	current T,
	reload func(ctx context.Context) (T, error),
	apply func(T),
	save func(ctx context.Context, v T) error,
	onRetry func(),
) (T, error) {
	apply(current)
	err := save(ctx, current)
	if err == nil {
		return current, nil
	}
	if !errors.IsConcurrencyConflict(err) {
		var zero T
		return zero, err
	}

	if onRetry != nil {
		onRetry()
	}
	fresh, err := reload(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	apply(fresh)
	if err := save(ctx, fresh); err != nil {
		var zero T
		return zero, err
	}
	return fresh, nil
}
