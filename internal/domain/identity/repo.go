package identity

import (
	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/platform/backend"
	"github.com/carelink/carelink/internal/platform/repository"
)

// Repos groups the readers for the identity collections.
type Repos struct {
	Users      repository.Reader[User]
	Patients   repository.Reader[Patient]
	Doctors    repository.Reader[Doctor]
	Guardians  repository.Reader[Guardian]
	Pharmacies repository.Reader[Pharmacy]
}

// NewRepos reads from remote and falls back to the local snapshot.
func NewRepos(remote backend.Source, local repository.Snapshotter, logger zerolog.Logger) Repos {
	return Repos{
		Users:      repository.NewDual[User](remote, local, backend.Users, logger),
		Patients:   repository.NewDual[Patient](remote, local, backend.Patients, logger),
		Doctors:    repository.NewDual[Doctor](remote, local, backend.Doctors, logger),
		Guardians:  repository.NewDual[Guardian](remote, local, backend.Guardians, logger),
		Pharmacies: repository.NewDual[Pharmacy](remote, local, backend.Pharmacies, logger),
	}
}
