package care

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelink/carelink/internal/mockstore"
	"github.com/carelink/carelink/internal/platform/backend"
	"github.com/carelink/carelink/internal/platform/blobstore"
	"github.com/carelink/carelink/internal/platform/localstore"
	"github.com/carelink/carelink/internal/platform/repository"
)

// downStore fails every call, like a remote backend that is unreachable.
type downStore struct{}

var errDown = errors.New("remote unavailable")

func (downStore) List(context.Context, string) ([]backend.Record, error) { return nil, errDown }
func (downStore) Find(context.Context, string, string, any) ([]backend.Record, error) {
	return nil, errDown
}
func (downStore) Insert(context.Context, string, backend.Record) (string, error) { return "", errDown }
func (downStore) Clear(context.Context, string) (int, error)                    { return 0, errDown }

type testEnv struct {
	svc    *Service
	local  *mockstore.Store
	remote *mockstore.Store
	logs   *bytes.Buffer
}

func newEnv(t *testing.T, remoteUp bool) *testEnv {
	t.Helper()
	logs := &bytes.Buffer{}
	logger := zerolog.New(logs)
	local := mockstore.New(localstore.NewMemory())
	remote := mockstore.New(localstore.NewMemory(), mockstore.WithDefaults(map[string][]backend.Record{}))

	var src backend.Source = downStore{}
	var sink backend.Sink = downStore{}
	if remoteUp {
		src, sink = remote, remote
	}
	svc := NewService(NewRepos(src, local, logger), sink, local, logger)
	return &testEnv{svc: svc, local: local, remote: remote, logs: logs}
}

func TestService_AppointmentsForPatient_FallsBack(t *testing.T) {
	env := newEnv(t, false)
	items := env.svc.AppointmentsForPatient(context.Background(), "mock-patient-1")

	require.Len(t, items, 2)
	assert.True(t, items[0].ScheduledAt.Before(items[1].ScheduledAt), "sorted by time")
	assert.Equal(t, 1, strings.Count(env.logs.String(), "\n"), "one diagnostic for one failed read")
}

func TestService_AppointmentsForDoctor_Remote(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()
	_, err := env.remote.Insert(ctx, backend.Appointments, backend.Record{
		"id": "a-remote", "patient_id": "p-x", "doctor_id": "d-x",
		"scheduled_at": "2030-01-01T09:00:00Z", "status": "scheduled", "type": "video",
	})
	require.NoError(t, err)

	items := env.svc.AppointmentsForDoctor(ctx, "d-x")
	require.Len(t, items, 1)
	assert.Equal(t, "a-remote", items[0].ID)
	assert.Empty(t, env.svc.AppointmentsForDoctor(ctx, "mock-doctor-1"), "local demo data must not leak while remote is up")
}

func TestService_BookAppointment_Remote(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	b, err := env.svc.BookAppointment(ctx, BookingRequest{
		PatientID:   "mock-patient-1",
		DoctorID:    "mock-doctor-1",
		ScheduledAt: time.Now().Add(48 * time.Hour),
		Symptoms:    []string{"cough"},
	})
	require.NoError(t, err)
	assert.Equal(t, "remote", b.StoredIn)
	assert.Equal(t, TypeInPerson, b.Appointment.Type)
	assert.Equal(t, StatusScheduled, b.Appointment.Status)
	assert.NotEmpty(t, b.Appointment.ID)

	recs, err := env.remote.Find(ctx, backend.Appointments, "id", b.Appointment.ID)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestService_BookAppointment_FallsBackToLocal(t *testing.T) {
	env := newEnv(t, false)
	ctx := context.Background()

	b, err := env.svc.BookAppointment(ctx, BookingRequest{
		PatientID:   "mock-patient-2",
		DoctorID:    "mock-doctor-2",
		ScheduledAt: time.Now().Add(24 * time.Hour),
		Type:        TypeVideo,
	})
	require.NoError(t, err)
	assert.Equal(t, "local", b.StoredIn)
	assert.Contains(t, env.logs.String(), "remote write failed")

	items := env.svc.AppointmentsForPatient(ctx, "mock-patient-2")
	ids := make([]string, 0, len(items))
	for _, a := range items {
		ids = append(ids, a.ID)
	}
	assert.Contains(t, ids, b.Appointment.ID)
}

func TestService_BookAppointment_Validation(t *testing.T) {
	env := newEnv(t, true)
	_, err := env.svc.BookAppointment(context.Background(), BookingRequest{PatientID: "p", DoctorID: "d"})
	var fe *backend.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "scheduled_at", fe.Field)

	_, err = env.svc.BookAppointment(context.Background(), BookingRequest{
		PatientID: "p", DoctorID: "d", ScheduledAt: time.Now(), Type: "house-call",
	})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "type", fe.Field)
}

func TestService_AppointmentsStartingWithin(t *testing.T) {
	env := newEnv(t, false)
	now := time.Now()

	soon := env.svc.AppointmentsStartingWithin(context.Background(), now, 3*time.Hour)
	require.Len(t, soon, 1)
	assert.Equal(t, "mock-appt-1", soon[0].ID)
}

func TestService_VitalsAndPrescriptions(t *testing.T) {
	env := newEnv(t, false)
	ctx := context.Background()

	vitals := env.svc.VitalsForPatient(ctx, "mock-patient-1")
	require.Len(t, vitals, 2)
	assert.True(t, vitals[0].RecordedAt.Before(vitals[1].RecordedAt), "oldest first")

	rx := env.svc.PrescriptionsForPatient(ctx, "mock-patient-1")
	require.Len(t, rx, 1)
	assert.Equal(t, 89, rx[0].Adherence())
	assert.True(t, rx[0].Active(time.Now()))

	assert.Len(t, env.svc.PrescriptionsForDoctor(ctx, "mock-doctor-2"), 1)
}

func TestService_LabReports(t *testing.T) {
	env := newEnv(t, false)
	reports := env.svc.LabReportsForPatient(context.Background(), "mock-patient-1")
	require.Len(t, reports, 1)
	assert.Len(t, reports[0].Abnormal(), 2)

	_, err := env.svc.GetLabReport(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestService_LinkAttachment_LocalReport(t *testing.T) {
	env := newEnv(t, false)
	ctx := context.Background()

	meta := blobstore.BlobMetadata{ID: "blob-1", FileName: "hba1c.pdf", ContentType: "application/pdf", Size: 10}
	require.NoError(t, env.svc.LinkAttachment(ctx, "mock-lab-1", meta))

	r, err := env.svc.GetLabReport(ctx, "mock-lab-1")
	require.NoError(t, err)
	require.NotNil(t, r.Attachment)
	assert.Equal(t, "blob-1", r.Attachment.ID)
	assert.Equal(t, int64(10), r.Attachment.Size)
}

func TestService_LinkAttachment_RemoteOnlyReport(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()
	_, err := env.remote.Insert(ctx, backend.LabReports, backend.Record{
		"id": "lab-remote", "patient_id": "p-1", "test_name": "CBC",
		"report_date": "2025-02-01T00:00:00Z", "status": "completed", "results": []any{},
	})
	require.NoError(t, err)

	meta := blobstore.BlobMetadata{ID: "blob-2", FileName: "cbc.png", ContentType: "image/png", Size: 3}
	require.NoError(t, env.svc.LinkAttachment(ctx, "lab-remote", meta))

	local := repository.Match(env.local.Snapshot(backend.LabReports), "id", "lab-remote")
	require.Len(t, local, 1)
	assert.NotNil(t, local[0]["attachment"])
}

func TestService_LinkAttachment_UnknownReport(t *testing.T) {
	env := newEnv(t, true)
	err := env.svc.LinkAttachment(context.Background(), "nope", blobstore.BlobMetadata{ID: "b"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestLabReport_Validate_UnknownResultStatus(t *testing.T) {
	r := LabReport{ID: "l", PatientID: "p", TestName: "t", Status: "completed",
		Results: []LabResult{{Parameter: "x", Status: "weird"}}}
	var fe *backend.FieldError
	require.ErrorAs(t, r.Validate(), &fe)
	assert.Equal(t, "results.status", fe.Field)
}
