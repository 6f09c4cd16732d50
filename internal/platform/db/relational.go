package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carelink/carelink/internal/config"
	"github.com/carelink/carelink/internal/platform/backend"
)

// querier is the subset of *pgxpool.Pool the store needs.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Relational is the hosted-Postgres backend. Each collection is a table of the
// same name; rows are read and written as jsonb so records keep the same shape
// they have in the document store.
type Relational struct {
	pool *pgxpool.Pool
	q    querier
}

// RelationalStub returns a store that fails every call with
// backend.ErrNotConfigured.
func RelationalStub() *Relational {
	return &Relational{}
}

// OpenRelational connects to databaseURL, or returns a stub when the URL is
// absent or a placeholder.
func OpenRelational(ctx context.Context, databaseURL string, maxConns, minConns int32) (*Relational, error) {
	if !config.Usable(databaseURL) {
		return RelationalStub(), nil
	}
	pool, err := NewPool(ctx, databaseURL, maxConns, minConns)
	if err != nil {
		return nil, err
	}
	return NewRelational(pool), nil
}

func NewRelational(pool *pgxpool.Pool) *Relational {
	return &Relational{pool: pool, q: pool}
}

func (r *Relational) Name() string { return "relational" }

func (r *Relational) IsStub() bool { return r.q == nil }

// Pool returns the underlying pool, nil in stub mode.
func (r *Relational) Pool() *pgxpool.Pool { return r.pool }

func (r *Relational) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

func (r *Relational) List(ctx context.Context, collection string) ([]backend.Record, error) {
	if r.IsStub() {
		return nil, backend.ErrNotConfigured
	}
	query, err := selectSQL(collection, "")
	if err != nil {
		return nil, err
	}
	return r.query(ctx, collection, query)
}

func (r *Relational) Find(ctx context.Context, collection, field string, value any) ([]backend.Record, error) {
	if r.IsStub() {
		return nil, backend.ErrNotConfigured
	}
	query, err := selectSQL(collection, field)
	if err != nil {
		return nil, err
	}
	return r.query(ctx, collection, query, fmt.Sprint(value))
}

func (r *Relational) Insert(ctx context.Context, collection string, rec backend.Record) (string, error) {
	if r.IsStub() {
		return "", backend.ErrNotConfigured
	}
	query, err := insertSQL(collection)
	if err != nil {
		return "", err
	}
	rec = backend.Clone(rec)
	backend.Stamp(rec)
	payload, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode %s record: %w", collection, err)
	}

	var id string
	if err := r.q.QueryRow(ctx, query, payload).Scan(&id); err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	return id, nil
}

func (r *Relational) Clear(ctx context.Context, collection string) (int, error) {
	if r.IsStub() {
		return 0, backend.ErrNotConfigured
	}
	table, err := tableName(collection)
	if err != nil {
		return 0, err
	}
	tag, err := r.q.Exec(ctx, "DELETE FROM "+table)
	if err != nil {
		return 0, fmt.Errorf("clear %s: %w", collection, err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *Relational) query(ctx context.Context, collection, query string, args ...any) ([]backend.Record, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	var out []backend.Record
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		rec := backend.Record{}
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode %s row: %w", collection, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}
	return out, nil
}

// tableName returns the quoted table for a known collection.
func tableName(collection string) (string, error) {
	for _, c := range backend.Collections {
		if c == collection {
			return pgx.Identifier{collection}.Sanitize(), nil
		}
	}
	return "", fmt.Errorf("unknown collection %q", collection)
}

// selectSQL reads whole rows as jsonb, optionally filtered on one column
// compared as text.
func selectSQL(collection, field string) (string, error) {
	table, err := tableName(collection)
	if err != nil {
		return "", err
	}
	query := "SELECT to_jsonb(t) FROM " + table + " t"
	if field != "" {
		query += " WHERE t." + pgx.Identifier{field}.Sanitize() + "::text = $1"
	}
	return query + " ORDER BY t.created_at", nil
}

func insertSQL(collection string) (string, error) {
	table, err := tableName(collection)
	if err != nil {
		return "", err
	}
	return "INSERT INTO " + table + " SELECT * FROM jsonb_populate_record(NULL::" + table + ", $1::jsonb) RETURNING id", nil
}
