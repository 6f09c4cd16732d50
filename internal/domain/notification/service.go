package notification

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/platform/backend"
	"github.com/carelink/carelink/internal/platform/push"
	"github.com/carelink/carelink/internal/platform/repository"
)

type Service struct {
	reader repository.Reader[Notification]
	local  LocalStore
	remote backend.Sink
	push   push.Notifier
	logger zerolog.Logger
}

// NewService wires the notification service. remote and notifier may be nil.
func NewService(reader repository.Reader[Notification], local LocalStore, remote backend.Sink, notifier push.Notifier, logger zerolog.Logger) *Service {
	return &Service{reader: reader, local: local, remote: remote, push: notifier, logger: logger}
}

// ForUser returns the user's notifications, newest first.
func (s *Service) ForUser(ctx context.Context, userID string) []Notification {
	items := s.reader.ByField(ctx, "user_id", userID)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items
}

// MarkRead sets the read flag in the local store only. A notification known
// only remotely gets a local copy marked read.
func (s *Service) MarkRead(ctx context.Context, id string) (Notification, error) {
	rec, err := s.local.Update(backend.Notifications, id, backend.Record{"read": true})
	if errors.Is(err, repository.ErrNotFound) {
		n, ok := s.reader.ByID(ctx, id)
		if !ok {
			return Notification{}, fmt.Errorf("notification %s: %w", id, repository.ErrNotFound)
		}
		n.Read = true
		if rec, err = backend.Encode(n); err == nil {
			_, err = s.local.Insert(ctx, backend.Notifications, rec)
		}
	}
	if err != nil {
		return Notification{}, err
	}
	return backend.Decode[Notification](backend.Notifications, rec)
}

// Create stores a notification locally, then writes it to the remote sink
// and pushes it to the user's devices. The remote write and the push are
// best effort: failures are logged and the local copy stands.
func (s *Service) Create(ctx context.Context, n Notification) (Notification, error) {
	if n.Type == "" {
		n.Type = TypeSystem
	}
	if n.Priority == "" {
		n.Priority = PriorityMedium
	}
	n.Read = false
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	rec, err := backend.Encode(n)
	if err != nil {
		return n, err
	}
	n.ID = rec.ID()
	if err := n.Validate(); err != nil {
		return n, err
	}

	if _, err := s.local.Insert(ctx, backend.Notifications, rec); err != nil {
		return n, fmt.Errorf("store notification locally: %w", err)
	}
	if s.remote != nil {
		if _, err := s.remote.Insert(ctx, backend.Notifications, rec); err != nil {
			s.logger.Warn().Err(err).Str("id", n.ID).Msg("remote notification write failed")
		}
	}
	if s.push != nil {
		if err := s.push.SendToUser(ctx, n.UserID, n.Title, n.Message); err != nil {
			s.logger.Debug().Err(err).Str("user_id", n.UserID).Msg("push not delivered")
		}
	}
	return n, nil
}
