package dashboard

import (
	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/domain/care"
	"github.com/carelink/carelink/internal/domain/identity"
	"github.com/carelink/carelink/internal/domain/notification"
	"github.com/carelink/carelink/internal/domain/pharmacy"
	"github.com/carelink/carelink/internal/mockstore"
	"github.com/carelink/carelink/internal/platform/backend"
	"github.com/carelink/carelink/internal/platform/push"
)

// NewServices wires every domain service to read from remote with local as
// the fallback. notifier may be nil.
func NewServices(remote backend.Store, local *mockstore.Store, notifier push.Notifier, logger zerolog.Logger) Services {
	return Services{
		Identity: identity.NewService(identity.NewRepos(remote, local, logger)),
		Care:     care.NewService(care.NewRepos(remote, local, logger), remote, local, logger),
		Pharmacy: pharmacy.NewService(pharmacy.NewOrderReader(remote, local, logger), local),
		Notifications: notification.NewService(
			notification.NewReader(remote, local, logger), local, remote, notifier, logger),
	}
}
