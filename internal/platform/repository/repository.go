// Package repository resolves typed entities and their relationships over a
// backend, either remotely (fallible) or from the local snapshot (infallible).
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/carelink/carelink/internal/platform/backend"
)

// ErrNotFound is returned when no record matches.
var ErrNotFound = errors.New("record not found")

// Repository reads one collection of a remote Source. Every record returned by
// the backend is decoded; one bad record fails the whole call.
type Repository[T backend.Validator] struct {
	src        backend.Source
	collection string
}

func New[T backend.Validator](src backend.Source, collection string) *Repository[T] {
	return &Repository[T]{src: src, collection: collection}
}

func (r *Repository[T]) Collection() string {
	return r.collection
}

func (r *Repository[T]) List(ctx context.Context) ([]T, error) {
	recs, err := r.src.List(ctx, r.collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.collection, err)
	}
	return backend.DecodeAll[T](r.collection, recs)
}

func (r *Repository[T]) FindByID(ctx context.Context, id string) (T, error) {
	return r.FindOne(ctx, "id", id)
}

// FindOne returns the first record whose field equals value.
func (r *Repository[T]) FindOne(ctx context.Context, field, value string) (T, error) {
	var zero T
	items, err := r.FindByForeignKey(ctx, field, value)
	if err != nil {
		return zero, err
	}
	if len(items) == 0 {
		return zero, fmt.Errorf("%s %s=%s: %w", r.collection, field, value, ErrNotFound)
	}
	return items[0], nil
}

// FindByForeignKey returns every record whose field equals id.
func (r *Repository[T]) FindByForeignKey(ctx context.Context, field, id string) ([]T, error) {
	recs, err := r.src.Find(ctx, r.collection, field, id)
	if err != nil {
		return nil, fmt.Errorf("find %s by %s: %w", r.collection, field, err)
	}
	return backend.DecodeAll[T](r.collection, recs)
}

// Snapshotter returns the locally held records of a collection. It never
// fails.
type Snapshotter interface {
	Snapshot(collection string) []backend.Record
}

// LocalView reads one collection of the local snapshot. Records that do not
// decode are skipped.
type LocalView[T backend.Validator] struct {
	snap       Snapshotter
	collection string
}

func NewLocal[T backend.Validator](snap Snapshotter, collection string) *LocalView[T] {
	return &LocalView[T]{snap: snap, collection: collection}
}

func (v *LocalView[T]) All() []T {
	return v.decode(v.snap.Snapshot(v.collection))
}

func (v *LocalView[T]) ByID(id string) (T, bool) {
	return v.First("id", id)
}

func (v *LocalView[T]) First(field, value string) (T, bool) {
	var zero T
	items := v.ByForeignKey(field, value)
	if len(items) == 0 {
		return zero, false
	}
	return items[0], true
}

func (v *LocalView[T]) ByForeignKey(field, id string) []T {
	return v.decode(Match(v.snap.Snapshot(v.collection), field, id))
}

func (v *LocalView[T]) decode(recs []backend.Record) []T {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		item, err := backend.Decode[T](v.collection, rec)
		if err != nil {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Match filters records whose field holds value. Values are compared by their
// string form so ids stored as numbers or strings both match.
func Match(recs []backend.Record, field string, value any) []backend.Record {
	want := fmt.Sprint(value)
	var out []backend.Record
	for _, rec := range recs {
		got, ok := rec[field]
		if !ok || got == nil {
			continue
		}
		if fmt.Sprint(got) == want {
			out = append(out, rec)
		}
	}
	return out
}

// Index maps each record's key field to its id. Records without the key are
// skipped; on duplicate keys the last record wins.
func Index(recs []backend.Record, key string) map[string]string {
	idx := make(map[string]string, len(recs))
	for _, rec := range recs {
		k := rec.String(key)
		if k == "" {
			continue
		}
		idx[k] = rec.ID()
	}
	return idx
}
