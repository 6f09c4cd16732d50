package identity

import (
	"time"

	"github.com/carelink/carelink/internal/platform/backend"
)

// Roles a user can hold.
const (
	RolePatient  = "patient"
	RoleDoctor   = "doctor"
	RoleGuardian = "guardian"
	RolePharmacy = "pharmacy"
	RoleAdmin    = "admin"
)

// Roles lists every role in display order.
var Roles = []string{RolePatient, RoleDoctor, RoleGuardian, RolePharmacy, RoleAdmin}

// User is an account. Every role profile points back at one.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Phone        string    `json:"phone,omitempty"`
	Active       bool      `json:"active"`
	PasswordHash string    `json:"password_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u User) Validate() error {
	if u.ID == "" {
		return backend.Required("id")
	}
	if u.Email == "" {
		return backend.Required("email")
	}
	return backend.OneOf("role", u.Role, Roles...)
}

// Vitals is the latest reading embedded in a patient profile.
type Vitals struct {
	HeartRate     int       `json:"heart_rate"`
	BloodPressure string    `json:"blood_pressure"`
	Temperature   float64   `json:"temperature"`
	OxygenLevel   int       `json:"oxygen_level"`
	Weight        float64   `json:"weight"`
	RecordedAt    time.Time `json:"recorded_at"`
}

type Patient struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	HealthID       string    `json:"health_id"`
	DateOfBirth    string    `json:"date_of_birth"`
	Gender         string    `json:"gender"`
	BloodGroup     string    `json:"blood_group,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Address        string    `json:"address,omitempty"`
	Vitals         Vitals    `json:"vitals"`
	Allergies      []string  `json:"allergies"`
	MedicalHistory []string  `json:"medical_history"`
	CreatedAt      time.Time `json:"created_at"`
}

func (p Patient) Validate() error {
	switch {
	case p.ID == "":
		return backend.Required("id")
	case p.UserID == "":
		return backend.Required("user_id")
	case p.Name == "":
		return backend.Required("name")
	case p.HealthID == "":
		return backend.Required("health_id")
	}
	return nil
}

// Age returns the patient's age in whole years on the given day, or 0 when the
// date of birth is unreadable.
func (p Patient) Age(on time.Time) int {
	dob, err := time.Parse("2006-01-02", p.DateOfBirth)
	if err != nil {
		return 0
	}
	age := on.Year() - dob.Year()
	if on.Month() < dob.Month() || (on.Month() == dob.Month() && on.Day() < dob.Day()) {
		age--
	}
	return age
}

// ScheduleSlot is a weekly consultation window.
type ScheduleSlot struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type Doctor struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	Email           string         `json:"email"`
	Name            string         `json:"name"`
	Specialization  string         `json:"specialization"`
	LicenseNumber   string         `json:"license_number"`
	ConsultationFee float64        `json:"consultation_fee"`
	ExperienceYears int            `json:"experience_years"`
	Available       bool           `json:"available"`
	Schedule        []ScheduleSlot `json:"schedule"`
	CreatedAt       time.Time      `json:"created_at"`
}

func (d Doctor) Validate() error {
	switch {
	case d.ID == "":
		return backend.Required("id")
	case d.UserID == "":
		return backend.Required("user_id")
	case d.Name == "":
		return backend.Required("name")
	case d.Specialization == "":
		return backend.Required("specialization")
	}
	return nil
}

type Guardian struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Relationship string    `json:"relationship,omitempty"`
	PatientIDs   []string  `json:"patient_ids"`
	CreatedAt    time.Time `json:"created_at"`
}

func (g Guardian) Validate() error {
	switch {
	case g.ID == "":
		return backend.Required("id")
	case g.UserID == "":
		return backend.Required("user_id")
	case g.Name == "":
		return backend.Required("name")
	}
	return nil
}

// Guards reports whether patientID is one of the guardian's linked patients.
func (g Guardian) Guards(patientID string) bool {
	for _, id := range g.PatientIDs {
		if id == patientID {
			return true
		}
	}
	return false
}

type Pharmacy struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	Address           string    `json:"address"`
	Phone             string    `json:"phone,omitempty"`
	LicenseNumber     string    `json:"license_number,omitempty"`
	DeliveryAvailable bool      `json:"delivery_available"`
	CreatedAt         time.Time `json:"created_at"`
}

func (p Pharmacy) Validate() error {
	switch {
	case p.ID == "":
		return backend.Required("id")
	case p.UserID == "":
		return backend.Required("user_id")
	case p.Name == "":
		return backend.Required("name")
	}
	return nil
}
