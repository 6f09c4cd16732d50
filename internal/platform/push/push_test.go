package push

import (
	"context"
	"errors"
	"testing"

	"github.com/carelink/carelink/internal/platform/backend"
	"github.com/carelink/carelink/internal/platform/fbapp"
)

func TestOpen_UnconfiguredIsStub(t *testing.T) {
	s, err := Open(context.Background(), fbapp.Settings{ProjectID: "your-project-id"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.IsStub() {
		t.Fatal("expected stub sender")
	}
	if err := s.SendToUser(context.Background(), "u1", "t", "b"); !errors.Is(err, backend.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestMessage(t *testing.T) {
	m := Message("42", "Reminder", "Appointment at 10:00")
	if m.Topic != "user-42" {
		t.Errorf("expected topic user-42, got %s", m.Topic)
	}
	if m.Notification.Title != "Reminder" || m.Notification.Body != "Appointment at 10:00" {
		t.Errorf("unexpected notification: %+v", m.Notification)
	}
	if m.Token != "" {
		t.Error("topic messages must not carry a token")
	}
	if m.APNS.Payload.Aps.Alert.Title != "Reminder" {
		t.Error("expected APNS alert title to match")
	}
}

var _ Notifier = (*Sender)(nil)
