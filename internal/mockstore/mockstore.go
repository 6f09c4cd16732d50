// Package mockstore keeps demo records in the local key-value store, one JSON
// array per collection, and serves hardcoded demo data for collections that
// were never written.
package mockstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/carelink/carelink/internal/platform/backend"
	"github.com/carelink/carelink/internal/platform/localstore"
	"github.com/carelink/carelink/internal/platform/repository"
)

// KeyPrefix namespaces every collection key.
const KeyPrefix = "carelink_"

// Key returns the storage key of a collection.
func Key(collection string) string {
	return KeyPrefix + collection
}

// Store is the local record store. It implements backend.Store.
//
// Read-modify-write cycles are not coordinated: two writers on the same
// collection can lose each other's updates.
type Store struct {
	kv       localstore.KV
	defaults map[string][]backend.Record
}

type Option func(*Store)

// WithDefaults replaces the hardcoded fallback data.
func WithDefaults(d map[string][]backend.Record) Option {
	return func(s *Store) { s.defaults = d }
}

func New(kv localstore.KV, opts ...Option) *Store {
	s := &Store{kv: kv, defaults: Defaults(time.Now())}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Name() string { return "local" }

// Snapshot returns the stored records of a collection, or its fallback data
// when nothing readable is stored. It never fails.
func (s *Store) Snapshot(collection string) []backend.Record {
	recs, err := s.load(collection)
	if err != nil {
		return s.fallback(collection)
	}
	return recs
}

// Stored reports whether a collection has been written locally.
func (s *Store) Stored(collection string) bool {
	_, err := s.kv.Get(Key(collection))
	return err == nil
}

func (s *Store) List(_ context.Context, collection string) ([]backend.Record, error) {
	return s.load(collection)
}

func (s *Store) Find(_ context.Context, collection, field string, value any) ([]backend.Record, error) {
	recs, err := s.load(collection)
	if err != nil {
		return nil, err
	}
	return repository.Match(recs, field, value), nil
}

// Insert appends rec to the collection. A collection that was never written
// starts from its fallback data.
func (s *Store) Insert(_ context.Context, collection string, rec backend.Record) (string, error) {
	recs, err := s.load(collection)
	if err != nil {
		return "", err
	}
	rec = backend.Clone(rec)
	backend.Stamp(rec)
	recs = append(recs, rec)
	if err := s.save(collection, recs); err != nil {
		return "", err
	}
	return rec.ID(), nil
}

// Clear empties a collection and returns how many records it held.
func (s *Store) Clear(_ context.Context, collection string) (int, error) {
	n := 0
	if data, err := s.kv.Get(Key(collection)); err == nil {
		var recs []backend.Record
		if json.Unmarshal(data, &recs) == nil {
			n = len(recs)
		}
	}
	if err := s.save(collection, []backend.Record{}); err != nil {
		return 0, err
	}
	return n, nil
}

// Update merges patch into the record with the given id and returns the
// result. The id itself cannot be changed.
func (s *Store) Update(collection, id string, patch backend.Record) (backend.Record, error) {
	recs, err := s.load(collection)
	if err != nil {
		return nil, err
	}
	for i, rec := range recs {
		if rec.ID() != id {
			continue
		}
		updated := backend.Clone(rec)
		for k, v := range patch {
			if k == "id" {
				continue
			}
			updated[k] = v
		}
		updated["updated_at"] = time.Now().UTC().Format(time.RFC3339)
		recs[i] = updated
		if err := s.save(collection, recs); err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("%s/%s: %w", collection, id, repository.ErrNotFound)
}

func (s *Store) load(collection string) ([]backend.Record, error) {
	data, err := s.kv.Get(Key(collection))
	if errors.Is(err, localstore.ErrNotFound) {
		return s.fallback(collection), nil
	}
	if err != nil {
		return nil, err
	}
	var recs []backend.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("read %s: %w", Key(collection), err)
	}
	return recs, nil
}

func (s *Store) save(collection string, recs []backend.Record) error {
	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("write %s: %w", Key(collection), err)
	}
	return s.kv.Set(Key(collection), data)
}

func (s *Store) fallback(collection string) []backend.Record {
	src := s.defaults[collection]
	out := make([]backend.Record, len(src))
	for i, rec := range src {
		out[i] = backend.Clone(rec)
	}
	return out
}
