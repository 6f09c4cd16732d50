package care

import (
	"time"

	"github.com/carelink/carelink/internal/platform/backend"
)

// Appointment statuses.
const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no-show"
)

var appointmentStatuses = []string{StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow}

// Appointment types.
const (
	TypeInPerson  = "in-person"
	TypeVideo     = "video"
	TypeFollowUp  = "follow-up"
	TypeEmergency = "emergency"
)

var appointmentTypes = []string{TypeInPerson, TypeVideo, TypeFollowUp, TypeEmergency}

type Appointment struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patient_id"`
	DoctorID    string    `json:"doctor_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
	Type        string    `json:"type"`
	Symptoms    []string  `json:"symptoms"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (a Appointment) Validate() error {
	switch {
	case a.ID == "":
		return backend.Required("id")
	case a.PatientID == "":
		return backend.Required("patient_id")
	case a.DoctorID == "":
		return backend.Required("doctor_id")
	case a.ScheduledAt.IsZero():
		return backend.Required("scheduled_at")
	}
	if err := backend.OneOf("status", a.Status, appointmentStatuses...); err != nil {
		return err
	}
	return backend.OneOf("type", a.Type, appointmentTypes...)
}

// Upcoming reports whether the appointment is still going to happen after t.
func (a Appointment) Upcoming(t time.Time) bool {
	return (a.Status == StatusScheduled || a.Status == StatusConfirmed) && a.ScheduledAt.After(t)
}

// Medicine is one line of a prescription. Adherence is a percentage.
type Medicine struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions,omitempty"`
	Adherence    int    `json:"adherence"`
}

var prescriptionStatuses = []string{"active", "completed", "expired", "cancelled"}

type Prescription struct {
	ID            string     `json:"id"`
	PatientID     string     `json:"patient_id"`
	DoctorID      string     `json:"doctor_id"`
	AppointmentID string     `json:"appointment_id,omitempty"`
	Diagnosis     string     `json:"diagnosis"`
	Medicines     []Medicine `json:"medicines"`
	ValidFrom     time.Time  `json:"valid_from"`
	ValidUntil    time.Time  `json:"valid_until"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (p Prescription) Validate() error {
	switch {
	case p.ID == "":
		return backend.Required("id")
	case p.PatientID == "":
		return backend.Required("patient_id")
	case p.DoctorID == "":
		return backend.Required("doctor_id")
	}
	return backend.OneOf("status", p.Status, prescriptionStatuses...)
}

// Active reports whether the prescription is active and inside its validity
// window at t.
func (p Prescription) Active(t time.Time) bool {
	if p.Status != "active" {
		return false
	}
	if !p.ValidUntil.IsZero() && t.After(p.ValidUntil) {
		return false
	}
	return p.ValidFrom.IsZero() || !t.Before(p.ValidFrom)
}

// Adherence averages the adherence of every medicine, 0 when there are none.
func (p Prescription) Adherence() int {
	if len(p.Medicines) == 0 {
		return 0
	}
	sum := 0
	for _, m := range p.Medicines {
		sum += m.Adherence
	}
	return sum / len(p.Medicines)
}

// VitalsReading is one entry of a patient's vitals history.
type VitalsReading struct {
	ID            string    `json:"id"`
	PatientID     string    `json:"patient_id"`
	HeartRate     int       `json:"heart_rate"`
	BloodPressure string    `json:"blood_pressure"`
	Temperature   float64   `json:"temperature"`
	OxygenLevel   int       `json:"oxygen_level"`
	Weight        float64   `json:"weight"`
	RecordedAt    time.Time `json:"recorded_at"`
	CreatedAt     time.Time `json:"created_at"`
}

func (v VitalsReading) Validate() error {
	switch {
	case v.ID == "":
		return backend.Required("id")
	case v.PatientID == "":
		return backend.Required("patient_id")
	case v.RecordedAt.IsZero():
		return backend.Required("recorded_at")
	}
	return nil
}

var labResultStatuses = []string{"normal", "high", "low", "critical"}

type LabResult struct {
	Parameter   string `json:"parameter"`
	Value       string `json:"value"`
	Unit        string `json:"unit"`
	NormalRange string `json:"normal_range"`
	Status      string `json:"status"`
}

// Attachment points at a stored file.
type Attachment struct {
	ID          string `json:"id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

var labReportStatuses = []string{"pending", "completed", "reviewed"}

type LabReport struct {
	ID         string      `json:"id"`
	PatientID  string      `json:"patient_id"`
	DoctorID   string      `json:"doctor_id,omitempty"`
	TestName   string      `json:"test_name"`
	ReportDate time.Time   `json:"report_date"`
	Status     string      `json:"status"`
	Results    []LabResult `json:"results"`
	Attachment *Attachment `json:"attachment,omitempty"`
	Notes      string      `json:"notes,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

func (r LabReport) Validate() error {
	switch {
	case r.ID == "":
		return backend.Required("id")
	case r.PatientID == "":
		return backend.Required("patient_id")
	case r.TestName == "":
		return backend.Required("test_name")
	}
	if err := backend.OneOf("status", r.Status, labReportStatuses...); err != nil {
		return err
	}
	for _, res := range r.Results {
		if err := backend.OneOf("results.status", res.Status, labResultStatuses...); err != nil {
			return err
		}
	}
	return nil
}

// Abnormal returns the results outside their normal range.
func (r LabReport) Abnormal() []LabResult {
	var out []LabResult
	for _, res := range r.Results {
		if res.Status != "normal" {
			out = append(out, res)
		}
	}
	return out
}
