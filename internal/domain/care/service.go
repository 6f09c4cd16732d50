package care

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/platform/backend"
	"github.com/carelink/carelink/internal/platform/blobstore"
	"github.com/carelink/carelink/internal/platform/repository"
)

type Service struct {
	repos  Repos
	remote backend.Sink
	local  LocalWriter
	logger zerolog.Logger
}

func NewService(repos Repos, remote backend.Sink, local LocalWriter, logger zerolog.Logger) *Service {
	return &Service{repos: repos, remote: remote, local: local, logger: logger}
}

// -- Appointments --

func (s *Service) ListAppointments(ctx context.Context) []Appointment {
	return byScheduledAt(s.repos.Appointments.List(ctx))
}

func (s *Service) AppointmentsForPatient(ctx context.Context, patientID string) []Appointment {
	return byScheduledAt(s.repos.Appointments.ByField(ctx, "patient_id", patientID))
}

func (s *Service) AppointmentsForDoctor(ctx context.Context, doctorID string) []Appointment {
	return byScheduledAt(s.repos.Appointments.ByField(ctx, "doctor_id", doctorID))
}

// AppointmentsStartingWithin returns the upcoming appointments that start in
// (now, now+lead].
func (s *Service) AppointmentsStartingWithin(ctx context.Context, now time.Time, lead time.Duration) []Appointment {
	var out []Appointment
	for _, a := range s.ListAppointments(ctx) {
		if a.Upcoming(now) && !a.ScheduledAt.After(now.Add(lead)) {
			out = append(out, a)
		}
	}
	return out
}

// BookingRequest is the appointment form.
type BookingRequest struct {
	PatientID   string    `json:"patient_id"`
	DoctorID    string    `json:"doctor_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Type        string    `json:"type"`
	Symptoms    []string  `json:"symptoms"`
	Notes       string    `json:"notes"`
}

// Booking is a stored appointment and the backend that holds it.
type Booking struct {
	Appointment Appointment `json:"appointment"`
	StoredIn    string      `json:"stored_in"`
}

// BookAppointment writes the appointment to the remote backend, or to the
// local store when the remote write fails.
func (s *Service) BookAppointment(ctx context.Context, req BookingRequest) (*Booking, error) {
	if req.Type == "" {
		req.Type = TypeInPerson
	}
	a := Appointment{
		PatientID:   strings.TrimSpace(req.PatientID),
		DoctorID:    strings.TrimSpace(req.DoctorID),
		ScheduledAt: req.ScheduledAt.UTC(),
		Status:      StatusScheduled,
		Type:        req.Type,
		Symptoms:    req.Symptoms,
		Notes:       req.Notes,
	}
	if a.Symptoms == nil {
		a.Symptoms = []string{}
	}

	rec, err := backend.Encode(a)
	if err != nil {
		return nil, err
	}
	a.ID = rec.ID()
	if err := a.Validate(); err != nil {
		return nil, err
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339, rec.String("created_at"))

	storedIn, err := s.write(ctx, backend.Appointments, rec)
	if err != nil {
		return nil, err
	}
	return &Booking{Appointment: a, StoredIn: storedIn}, nil
}

// write inserts into the remote sink and falls back to the local store.
func (s *Service) write(ctx context.Context, collection string, rec backend.Record) (string, error) {
	if s.remote != nil {
		_, err := s.remote.Insert(ctx, collection, rec)
		if err == nil {
			return "remote", nil
		}
		s.logger.Warn().Err(err).Str("collection", collection).Str("id", rec.ID()).
			Msg("remote write failed, storing locally")
	}
	if _, err := s.local.Insert(ctx, collection, rec); err != nil {
		return "", fmt.Errorf("store %s locally: %w", collection, err)
	}
	return "local", nil
}

// -- Prescriptions --

func (s *Service) PrescriptionsForPatient(ctx context.Context, patientID string) []Prescription {
	return s.repos.Prescriptions.ByField(ctx, "patient_id", patientID)
}

func (s *Service) PrescriptionsForDoctor(ctx context.Context, doctorID string) []Prescription {
	return s.repos.Prescriptions.ByField(ctx, "doctor_id", doctorID)
}

// -- Vitals --

// VitalsForPatient returns the patient's readings, oldest first.
func (s *Service) VitalsForPatient(ctx context.Context, patientID string) []VitalsReading {
	items := s.repos.Vitals.ByField(ctx, "patient_id", patientID)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].RecordedAt.Before(items[j].RecordedAt)
	})
	return items
}

// -- Lab reports --

// LabReportsForPatient returns the patient's reports, newest first.
func (s *Service) LabReportsForPatient(ctx context.Context, patientID string) []LabReport {
	items := s.repos.LabReports.ByField(ctx, "patient_id", patientID)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ReportDate.After(items[j].ReportDate)
	})
	return items
}

func (s *Service) GetLabReport(ctx context.Context, id string) (LabReport, error) {
	r, ok := s.repos.LabReports.ByID(ctx, id)
	if !ok {
		return r, fmt.Errorf("lab report %s: %w", id, repository.ErrNotFound)
	}
	return r, nil
}

// LinkAttachment records an uploaded file on a lab report. The link is kept
// in the local store only; a report that exists only remotely gets a local
// copy carrying the link.
func (s *Service) LinkAttachment(ctx context.Context, labReportID string, meta blobstore.BlobMetadata) error {
	report, err := s.GetLabReport(ctx, labReportID)
	if err != nil {
		return err
	}
	att := Attachment{ID: meta.ID, FileName: meta.FileName, ContentType: meta.ContentType, Size: meta.Size}
	patch := backend.Record{"attachment": map[string]any{
		"id": att.ID, "file_name": att.FileName, "content_type": att.ContentType, "size": att.Size,
	}}

	_, err = s.local.Update(backend.LabReports, labReportID, patch)
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	report.Attachment = &att
	rec, err := backend.Encode(report)
	if err != nil {
		return err
	}
	_, err = s.local.Insert(ctx, backend.LabReports, rec)
	return err
}

func byScheduledAt(items []Appointment) []Appointment {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ScheduledAt.Before(items[j].ScheduledAt)
	})
	return items
}
