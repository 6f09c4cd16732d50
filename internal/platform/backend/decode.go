package backend

import (
	"errors"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Validator is implemented by every entity. Validate reports the first
// required field that is missing or enum field that holds an unknown value.
type Validator interface {
	Validate() error
}

// DecodeError describes a record that could not be turned into its entity.
type DecodeError struct {
	Collection string
	ID         string
	Field      string
	Reason     string
}

func (e *DecodeError) Error() string {
	id := e.ID
	if id == "" {
		id = "<no id>"
	}
	if e.Field == "" {
		return fmt.Sprintf("decode %s/%s: %s", e.Collection, id, e.Reason)
	}
	return fmt.Sprintf("decode %s/%s: field %s: %s", e.Collection, id, e.Field, e.Reason)
}

// FieldError is returned by Validate implementations.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Required returns a FieldError for a missing field.
func Required(field string) error {
	return &FieldError{Field: field, Reason: "is required"}
}

// OneOf returns nil when value is one of allowed, otherwise a FieldError.
func OneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &FieldError{Field: field, Reason: fmt.Sprintf("unknown value %q", value)}
}

// Decode turns a record into T and validates it.
func Decode[T Validator](collection string, rec Record) (T, error) {
	var out T
	if rec == nil {
		return out, &DecodeError{Collection: collection, Reason: "nil record"}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return out, fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(rec)); err != nil {
		return out, &DecodeError{Collection: collection, ID: rec.ID(), Reason: err.Error()}
	}

	if err := out.Validate(); err != nil {
		de := &DecodeError{Collection: collection, ID: rec.ID(), Reason: err.Error()}
		var fe *FieldError
		if errors.As(err, &fe) {
			de.Field = fe.Field
			de.Reason = fe.Reason
		}
		return out, de
	}
	return out, nil
}

// DecodeAll decodes every record, failing on the first bad one.
func DecodeAll[T Validator](collection string, recs []Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		v, err := Decode[T](collection, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
