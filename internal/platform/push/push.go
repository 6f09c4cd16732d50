// Package push delivers notifications to devices through Firebase Cloud
// Messaging. Each user's devices subscribe to the topic "user-<id>".
package push

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"

	"github.com/carelink/carelink/internal/platform/backend"
	"github.com/carelink/carelink/internal/platform/fbapp"
)

const sendTimeout = 10 * time.Second

// Notifier is what the reminder job and the notification service need.
type Notifier interface {
	SendToUser(ctx context.Context, userID, title, body string) error
}

// Sender sends FCM topic messages. Without usable settings it runs in stub
// mode and every send fails with backend.ErrNotConfigured.
type Sender struct {
	client *messaging.Client
}

func Stub() *Sender { return &Sender{} }

func Open(ctx context.Context, s fbapp.Settings) (*Sender, error) {
	if !s.Configured() {
		return Stub(), nil
	}
	app, err := fbapp.New(ctx, s)
	if err != nil {
		return nil, err
	}
	return FromApp(ctx, app)
}

func FromApp(ctx context.Context, app *firebase.App) (*Sender, error) {
	mc, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("open messaging client: %w", err)
	}
	return &Sender{client: mc}, nil
}

func (s *Sender) IsStub() bool { return s.client == nil }

// Topic returns the topic a user's devices subscribe to.
func Topic(userID string) string {
	return "user-" + userID
}

// SendToUser publishes a notification to the user's topic.
func (s *Sender) SendToUser(ctx context.Context, userID, title, body string) error {
	if s.IsStub() {
		return backend.ErrNotConfigured
	}
	if userID == "" {
		return fmt.Errorf("push: empty user id")
	}
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if _, err := s.client.Send(ctx, Message(userID, title, body)); err != nil {
		return fmt.Errorf("push to %s: %w", Topic(userID), err)
	}
	return nil
}

// Message builds the FCM message for a user, with high priority on Android
// and the default sound on iOS.
func Message(userID, title, body string) *messaging.Message {
	return &messaging.Message{
		Topic: Topic(userID),
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:    "default",
				Priority: messaging.PriorityHigh,
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": "10"},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{Title: title, Body: body},
					Sound: "default",
				},
			},
		},
	}
}
