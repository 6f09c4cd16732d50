package backend

import (
	"errors"
	"testing"
	"time"
)

type widget struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Count     int       `json:"count"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (w widget) Validate() error {
	if w.Name == "" {
		return Required("name")
	}
	return OneOf("kind", w.Kind, "small", "large")
}

func TestEncode_AssignsIDAndCreatedAt(t *testing.T) {
	rec, err := Encode(widget{Name: "bolt", Kind: "small", Count: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID() == "" {
		t.Error("expected id to be assigned")
	}
	if rec.String("created_at") == "" || rec.String("created_at") == "0001-01-01T00:00:00Z" {
		t.Errorf("expected created_at to be stamped, got %v", rec["created_at"])
	}
	if rec["name"] != "bolt" {
		t.Errorf("expected json field names, got %v", rec)
	}
}

func TestEncode_KeepsExistingID(t *testing.T) {
	rec, err := Encode(widget{ID: "w-1", Name: "bolt", Kind: "small"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID() != "w-1" {
		t.Errorf("expected w-1, got %s", rec.ID())
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	rec, _ := Encode(widget{Name: "nut", Kind: "large", Count: 7, Tags: []string{"a", "b"}})

	w, err := Decode[widget]("widgets", rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Count != 7 || len(w.Tags) != 2 || w.CreatedAt.IsZero() {
		t.Errorf("unexpected decode result: %+v", w)
	}
}

func TestDecode_FloatToInt(t *testing.T) {
	w, err := Decode[widget]("widgets", Record{"id": "w", "name": "n", "kind": "small", "count": float64(4)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Count != 4 {
		t.Errorf("expected 4, got %d", w.Count)
	}
}

func TestDecode_MissingRequiredField(t *testing.T) {
	_, err := Decode[widget]("widgets", Record{"id": "w-2", "kind": "small"})
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %v", err)
	}
	if de.Field != "name" || de.ID != "w-2" || de.Collection != "widgets" {
		t.Errorf("unexpected decode error: %+v", de)
	}
}

func TestDecode_UnknownEnumValue(t *testing.T) {
	_, err := Decode[widget]("widgets", Record{"id": "w-3", "name": "n", "kind": "medium"})
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %v", err)
	}
	if de.Field != "kind" {
		t.Errorf("expected field kind, got %s", de.Field)
	}
}

func TestDecode_WrongType(t *testing.T) {
	_, err := Decode[widget]("widgets", Record{"id": "w-4", "name": "n", "kind": "small", "count": "many"})
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %v", err)
	}
}

func TestDecodeAll_StopsOnFirstBadRecord(t *testing.T) {
	recs := []Record{
		{"id": "1", "name": "a", "kind": "small"},
		{"id": "2", "kind": "small"},
	}
	if _, err := DecodeAll[widget]("widgets", recs); err == nil {
		t.Fatal("expected error")
	}
}

func TestClone_IsShallowCopy(t *testing.T) {
	src := Record{"id": "1"}
	cp := Clone(src)
	cp["id"] = "2"
	if src.ID() != "1" {
		t.Error("expected clone to leave source untouched")
	}
}
