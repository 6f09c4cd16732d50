package repository

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/platform/backend"
	"github.com/carelink/carelink/internal/platform/fetch"
)

// Reader is the read side every domain service depends on. Reads never fail:
// they return remote data or, when the remote read fails, local data.
type Reader[T any] interface {
	List(ctx context.Context) []T
	ByID(ctx context.Context, id string) (T, bool)
	ByField(ctx context.Context, field, value string) []T
}

// Dual reads a collection from the remote source and falls back to the local
// snapshot when the remote read fails. An empty remote result is returned
// as is.
type Dual[T backend.Validator] struct {
	remote *Repository[T]
	local  *LocalView[T]
	logger zerolog.Logger
}

func NewDual[T backend.Validator](remote backend.Source, local Snapshotter, collection string, logger zerolog.Logger) *Dual[T] {
	return &Dual[T]{
		remote: New[T](remote, collection),
		local:  NewLocal[T](local, collection),
		logger: logger,
	}
}

func (d *Dual[T]) List(ctx context.Context) []T {
	return fetch.WithFallback(ctx, d.logger, d.remote.Collection(), d.remote.List, d.local.All)
}

func (d *Dual[T]) ByID(ctx context.Context, id string) (T, bool) {
	var zero T
	items := d.ByField(ctx, "id", id)
	if len(items) == 0 {
		return zero, false
	}
	return items[0], true
}

func (d *Dual[T]) ByField(ctx context.Context, field, value string) []T {
	return fetch.WithFallback(ctx, d.logger, d.remote.Collection()+"."+field,
		func(ctx context.Context) ([]T, error) {
			return d.remote.FindByForeignKey(ctx, field, value)
		},
		func() []T {
			return d.local.ByForeignKey(field, value)
		},
	)
}
