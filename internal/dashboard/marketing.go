package dashboard

import "github.com/carelink/carelink/internal/domain/identity"

type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type RoleCard struct {
	Role    string `json:"role"`
	Path    string `json:"path"`
	Summary string `json:"summary"`
}

type MarketingView struct {
	Headline    string     `json:"headline"`
	Tagline     string     `json:"tagline"`
	Features    []Feature  `json:"features"`
	Roles       []RoleCard `json:"roles"`
	ContactMail string     `json:"contact_email"`
}

// Marketing returns the static landing page content.
func Marketing() MarketingView {
	return MarketingView{
		Headline: "Care that follows the patient",
		Tagline:  "One record for patients, doctors, families and pharmacies.",
		Features: []Feature{
			{"Appointments", "Book in-person or video visits and get reminded before they start."},
			{"Prescriptions", "Track medicines, dosage and adherence in one place."},
			{"Vitals", "See heart rate, blood pressure and oxygen trends over time."},
			{"Lab reports", "Results with reference ranges and out-of-range flags."},
			{"Pharmacy orders", "Send prescriptions to a pharmacy and follow delivery."},
		},
		Roles: []RoleCard{
			{identity.RolePatient, "/patient", "Your visits, medicines, vitals and reports."},
			{identity.RoleDoctor, "/doctor", "Your schedule, patients and prescriptions."},
			{identity.RoleGuardian, "/guardian", "Keep an eye on the people you care for."},
			{identity.RolePharmacy, "/pharmacy", "Incoming orders and their status."},
			{identity.RoleAdmin, "/admin", "Platform totals and accounts."},
		},
		ContactMail: "hello@carelink.demo",
	}
}
