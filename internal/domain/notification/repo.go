package notification

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/platform/backend"
	"github.com/carelink/carelink/internal/platform/repository"
)

func NewReader(remote backend.Source, local repository.Snapshotter, logger zerolog.Logger) repository.Reader[Notification] {
	return repository.NewDual[Notification](remote, local, backend.Notifications, logger)
}

// LocalStore is the local store's write side.
type LocalStore interface {
	Insert(ctx context.Context, collection string, rec backend.Record) (string, error)
	Update(collection, id string, patch backend.Record) (backend.Record, error)
}
