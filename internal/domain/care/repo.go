package care

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/platform/backend"
	"github.com/carelink/carelink/internal/platform/repository"
)

type Repos struct {
	Appointments  repository.Reader[Appointment]
	Prescriptions repository.Reader[Prescription]
	Vitals        repository.Reader[VitalsReading]
	LabReports    repository.Reader[LabReport]
}

func NewRepos(remote backend.Source, local repository.Snapshotter, logger zerolog.Logger) Repos {
	return Repos{
		Appointments:  repository.NewDual[Appointment](remote, local, backend.Appointments, logger),
		Prescriptions: repository.NewDual[Prescription](remote, local, backend.Prescriptions, logger),
		Vitals:        repository.NewDual[VitalsReading](remote, local, backend.VitalsHistory, logger),
		LabReports:    repository.NewDual[LabReport](remote, local, backend.LabReports, logger),
	}
}

// LocalWriter is the local store's write side.
type LocalWriter interface {
	Insert(ctx context.Context, collection string, rec backend.Record) (string, error)
	Update(collection, id string, patch backend.Record) (backend.Record, error)
}
