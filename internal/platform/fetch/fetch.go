// Package fetch runs a remote read and degrades to local data when it fails.
package fetch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// WithFallback returns primary's result when it succeeds. Any error, and any
// panic raised by primary, is logged once under op and answered with
// secondary's result instead. secondary returns locally stored or hardcoded
// data and must not block or fail.
//
// WithFallback never returns an error and adds no deadline of its own.
func WithFallback[T any](ctx context.Context, logger zerolog.Logger, op string, primary func(context.Context) (T, error), secondary func() T) T {
	v, err := try(ctx, primary)
	if err == nil {
		return v
	}
	logger.Warn().Err(err).Str("op", op).Msg("remote fetch failed, serving local data")
	return secondary()
}

func try[T any](ctx context.Context, primary func(context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v = zero
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if primary == nil {
		return v, fmt.Errorf("no primary source")
	}
	return primary(ctx)
}
