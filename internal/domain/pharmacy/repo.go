package pharmacy

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/platform/backend"
	"github.com/carelink/carelink/internal/platform/repository"
)

func NewOrderReader(remote backend.Source, local repository.Snapshotter, logger zerolog.Logger) repository.Reader[Order] {
	return repository.NewDual[Order](remote, local, backend.Orders, logger)
}

// Updater is the local store's write side.
type Updater interface {
	Insert(ctx context.Context, collection string, rec backend.Record) (string, error)
	Update(collection, id string, patch backend.Record) (backend.Record, error)
}
