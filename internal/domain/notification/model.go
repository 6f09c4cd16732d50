package notification

import (
	"time"

	"github.com/carelink/carelink/internal/platform/backend"
)

// Notification types.
const (
	TypeAppointment  = "appointment"
	TypePrescription = "prescription"
	TypeOrder        = "order"
	TypeVitals       = "vitals"
	TypeLab          = "lab"
	TypeSystem       = "system"
)

var types = []string{TypeAppointment, TypePrescription, TypeOrder, TypeVitals, TypeLab, TypeSystem}

// Priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

var priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Priority  string    `json:"priority"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func (n Notification) Validate() error {
	switch {
	case n.ID == "":
		return backend.Required("id")
	case n.UserID == "":
		return backend.Required("user_id")
	case n.Title == "":
		return backend.Required("title")
	}
	if err := backend.OneOf("type", n.Type, types...); err != nil {
		return err
	}
	return backend.OneOf("priority", n.Priority, priorities...)
}

// Unread counts the notifications not yet read.
func Unread(items []Notification) int {
	n := 0
	for _, it := range items {
		if !it.Read {
			n++
		}
	}
	return n
}
