// Package backend defines the untyped record shape shared by every persistence
// backend, the Source/Sink/Store contracts the remote clients and the local
// mock store implement, and the boundary step that turns records into typed
// entities.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Collection names. They double as table names in the relational backend and
// as key suffixes in the local store.
const (
	Users         = "users"
	Patients      = "patients"
	Doctors       = "doctors"
	Guardians     = "guardians"
	Pharmacies    = "pharmacies"
	Appointments  = "appointments"
	Prescriptions = "prescriptions"
	Orders        = "orders"
	VitalsHistory = "vitals_history"
	Notifications = "notifications"
	LabReports    = "lab_reports"
)

// Collections lists every collection in seed order.
var Collections = []string{
	Users, Patients, Doctors, Guardians, Pharmacies,
	Appointments, Prescriptions, Orders, VitalsHistory, Notifications, LabReports,
}

// ErrNotConfigured is returned by a client running in stub mode.
var ErrNotConfigured = errors.New("backend not configured")

// Record is a single row/document as a backend returns it.
type Record map[string]any

// ID returns the record's "id" field, or "" when absent.
func (r Record) ID() string {
	s, _ := r["id"].(string)
	return s
}

// String returns a string field, or "" when absent or not a string.
func (r Record) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Source reads records from a backend.
type Source interface {
	List(ctx context.Context, collection string) ([]Record, error)
	Find(ctx context.Context, collection, field string, value any) ([]Record, error)
}

// Sink writes records to a backend.
type Sink interface {
	Insert(ctx context.Context, collection string, rec Record) (string, error)
	Clear(ctx context.Context, collection string) (int, error)
}

// Store is a full backend.
type Store interface {
	Source
	Sink
	Name() string
}

// Encode converts a typed entity into a Record using its JSON field names. An
// "id" and a "created_at" are assigned when the entity does not carry them.
func Encode(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	rec := Record{}
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	Stamp(rec)
	return rec, nil
}

// Stamp fills in a missing id and created_at.
func Stamp(rec Record) {
	if rec.ID() == "" {
		rec["id"] = uuid.NewString()
	}
	if ts, ok := rec["created_at"].(string); !ok || ts == "" || ts == "0001-01-01T00:00:00Z" {
		rec["created_at"] = time.Now().UTC().Format(time.RFC3339)
	}
}

// Clone returns a shallow copy of rec.
func Clone(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
