package seed

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/carelink/carelink/internal/platform/backend"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

// Offset is a duration relative to the seed time, written like "-48h".
type Offset time.Duration

func (o *Offset) UnmarshalYAML(n *yaml.Node) error {
	d, err := time.ParseDuration(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*o = Offset(d)
	return nil
}

// From returns now shifted by the offset, truncated to the second.
func (o Offset) From(now time.Time) time.Time {
	return now.Add(time.Duration(o)).UTC().Truncate(time.Second)
}

type UserFixture struct {
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
	Role  string `yaml:"role"`
	Phone string `yaml:"phone"`
}

type VitalsFixture struct {
	At            Offset  `yaml:"at"`
	HeartRate     int     `yaml:"heart_rate"`
	BloodPressure string  `yaml:"blood_pressure"`
	Temperature   float64 `yaml:"temperature"`
	OxygenLevel   int     `yaml:"oxygen_level"`
	Weight        float64 `yaml:"weight"`
}

type PatientFixture struct {
	Email          string        `yaml:"email"`
	HealthID       string        `yaml:"health_id"`
	DateOfBirth    string        `yaml:"date_of_birth"`
	Gender         string        `yaml:"gender"`
	BloodGroup     string        `yaml:"blood_group"`
	Address        string        `yaml:"address"`
	Vitals         VitalsFixture `yaml:"vitals"`
	Allergies      []string      `yaml:"allergies"`
	MedicalHistory []string      `yaml:"medical_history"`
}

type SlotFixture struct {
	Day   string `yaml:"day"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type DoctorFixture struct {
	Email           string        `yaml:"email"`
	Specialization  string        `yaml:"specialization"`
	LicenseNumber   string        `yaml:"license_number"`
	ConsultationFee float64       `yaml:"consultation_fee"`
	ExperienceYears int           `yaml:"experience_years"`
	Available       bool          `yaml:"available"`
	Schedule        []SlotFixture `yaml:"schedule"`
}

type GuardianFixture struct {
	Email        string   `yaml:"email"`
	Relationship string   `yaml:"relationship"`
	Patients     []string `yaml:"patients"`
}

type PharmacyFixture struct {
	Email             string `yaml:"email"`
	Address           string `yaml:"address"`
	LicenseNumber     string `yaml:"license_number"`
	DeliveryAvailable bool   `yaml:"delivery_available"`
}

type AppointmentFixture struct {
	Key      string   `yaml:"key"`
	Patient  string   `yaml:"patient"`
	Doctor   string   `yaml:"doctor"`
	At       Offset   `yaml:"at"`
	Status   string   `yaml:"status"`
	Type     string   `yaml:"type"`
	Symptoms []string `yaml:"symptoms"`
	Notes    string   `yaml:"notes"`
}

type MedicineFixture struct {
	Name         string `yaml:"name"`
	Dosage       string `yaml:"dosage"`
	Frequency    string `yaml:"frequency"`
	Duration     string `yaml:"duration"`
	Instructions string `yaml:"instructions"`
	Adherence    int    `yaml:"adherence"`
}

type PrescriptionFixture struct {
	Key         string            `yaml:"key"`
	Patient     string            `yaml:"patient"`
	Doctor      string            `yaml:"doctor"`
	Appointment string            `yaml:"appointment"`
	Diagnosis   string            `yaml:"diagnosis"`
	From        Offset            `yaml:"from"`
	Until       Offset            `yaml:"until"`
	Status      string            `yaml:"status"`
	Medicines   []MedicineFixture `yaml:"medicines"`
}

type OrderFixture struct {
	Prescription  string  `yaml:"prescription"`
	Pharmacy      string  `yaml:"pharmacy"`
	Status        string  `yaml:"status"`
	TotalAmount   float64 `yaml:"total_amount"`
	PaymentStatus string  `yaml:"payment_status"`
	At            Offset  `yaml:"at"`
}

type ReadingFixture struct {
	Patient       string `yaml:"patient"`
	VitalsFixture `yaml:",inline"`
}

type NotificationFixture struct {
	User     string `yaml:"user"`
	Title    string `yaml:"title"`
	Message  string `yaml:"message"`
	Type     string `yaml:"type"`
	Priority string `yaml:"priority"`
	Read     bool   `yaml:"read"`
	At       Offset `yaml:"at"`
}

type ResultFixture struct {
	Parameter   string `yaml:"parameter"`
	Value       string `yaml:"value"`
	Unit        string `yaml:"unit"`
	NormalRange string `yaml:"normal_range"`
	Status      string `yaml:"status"`
}

type LabReportFixture struct {
	Patient  string          `yaml:"patient"`
	Doctor   string          `yaml:"doctor"`
	TestName string          `yaml:"test_name"`
	At       Offset          `yaml:"at"`
	Status   string          `yaml:"status"`
	Notes    string          `yaml:"notes"`
	Results  []ResultFixture `yaml:"results"`
}

// Fixtures is the literal demo data set.
type Fixtures struct {
	Password      string                `yaml:"password"`
	Users         []UserFixture         `yaml:"users"`
	Patients      []PatientFixture      `yaml:"patients"`
	Doctors       []DoctorFixture       `yaml:"doctors"`
	Guardians     []GuardianFixture     `yaml:"guardians"`
	Pharmacies    []PharmacyFixture     `yaml:"pharmacies"`
	Appointments  []AppointmentFixture  `yaml:"appointments"`
	Prescriptions []PrescriptionFixture `yaml:"prescriptions"`
	Orders        []OrderFixture        `yaml:"orders"`
	Vitals        []ReadingFixture      `yaml:"vitals"`
	Notifications []NotificationFixture `yaml:"notifications"`
	LabReports    []LabReportFixture    `yaml:"lab_reports"`
}

// Default returns the embedded fixtures.
func Default() (*Fixtures, error) {
	return Parse(fixturesYAML)
}

func Parse(data []byte) (*Fixtures, error) {
	f := &Fixtures{}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return f, nil
}

// Counts returns the number of records each collection receives.
func (f *Fixtures) Counts() map[string]int {
	return map[string]int{
		backend.Users:         len(f.Users),
		backend.Patients:      len(f.Patients),
		backend.Doctors:       len(f.Doctors),
		backend.Guardians:     len(f.Guardians),
		backend.Pharmacies:    len(f.Pharmacies),
		backend.Appointments:  len(f.Appointments),
		backend.Prescriptions: len(f.Prescriptions),
		backend.Orders:        len(f.Orders),
		backend.VitalsHistory: len(f.Vitals),
		backend.Notifications: len(f.Notifications),
		backend.LabReports:    len(f.LabReports),
	}
}
