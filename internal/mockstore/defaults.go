package mockstore

import (
	"time"

	"github.com/carelink/carelink/internal/platform/backend"
)

// Defaults returns the hardcoded demo data served when a collection has never
// been written locally. Dates are placed around now so the dashboards always
// have something upcoming to show.
func Defaults(now time.Time) map[string][]backend.Record {
	now = now.UTC().Truncate(time.Hour)
	at := func(d time.Duration) string { return now.Add(d).Format(time.RFC3339) }
	day := 24 * time.Hour
	created := at(-30 * day)

	return map[string][]backend.Record{
		backend.Users: {
			{"id": "mock-user-admin", "email": "admin@carelink.demo", "name": "Carelink Admin", "role": "admin", "active": true, "created_at": created},
			{"id": "mock-user-p1", "email": "asha.patel@carelink.demo", "name": "Asha Patel", "role": "patient", "phone": "+1-555-0101", "active": true, "created_at": created},
			{"id": "mock-user-p2", "email": "leo.martin@carelink.demo", "name": "Leo Martin", "role": "patient", "phone": "+1-555-0102", "active": true, "created_at": created},
			{"id": "mock-user-d1", "email": "dr.nguyen@carelink.demo", "name": "Dr. Minh Nguyen", "role": "doctor", "active": true, "created_at": created},
			{"id": "mock-user-d2", "email": "dr.okafor@carelink.demo", "name": "Dr. Ada Okafor", "role": "doctor", "active": true, "created_at": created},
			{"id": "mock-user-g1", "email": "ravi.patel@carelink.demo", "name": "Ravi Patel", "role": "guardian", "active": true, "created_at": created},
			{"id": "mock-user-ph1", "email": "orders@greenleaf.demo", "name": "GreenLeaf Pharmacy", "role": "pharmacy", "active": true, "created_at": created},
		},
		backend.Patients: {
			{
				"id": "mock-patient-1", "user_id": "mock-user-p1", "email": "asha.patel@carelink.demo", "name": "Asha Patel",
				"health_id": "CL-HID-0001", "date_of_birth": "1958-04-12", "gender": "female", "blood_group": "B+",
				"phone": "+1-555-0101", "address": "14 Cedar Lane, Springfield",
				"vitals": map[string]any{
					"heart_rate": 78, "blood_pressure": "132/86", "temperature": 98.4,
					"oxygen_level": 96, "weight": 64.5, "recorded_at": at(-6 * time.Hour),
				},
				"allergies":       []any{"penicillin"},
				"medical_history": []any{"type 2 diabetes", "hypertension"},
				"created_at":      created,
			},
			{
				"id": "mock-patient-2", "user_id": "mock-user-p2", "email": "leo.martin@carelink.demo", "name": "Leo Martin",
				"health_id": "CL-HID-0002", "date_of_birth": "1991-09-30", "gender": "male", "blood_group": "O-",
				"phone": "+1-555-0102", "address": "7 Harbor Road, Springfield",
				"vitals": map[string]any{
					"heart_rate": 68, "blood_pressure": "118/76", "temperature": 98.1,
					"oxygen_level": 99, "weight": 81.0, "recorded_at": at(-2 * day),
				},
				"allergies":       []any{},
				"medical_history": []any{"asthma"},
				"created_at":      created,
			},
		},
		backend.Doctors: {
			{
				"id": "mock-doctor-1", "user_id": "mock-user-d1", "email": "dr.nguyen@carelink.demo", "name": "Dr. Minh Nguyen",
				"specialization": "Endocrinology", "license_number": "MD-44021", "consultation_fee": 120.0,
				"experience_years": 14, "available": true,
				"schedule":   []any{map[string]any{"day": "monday", "start": "09:00", "end": "13:00"}, map[string]any{"day": "thursday", "start": "14:00", "end": "18:00"}},
				"created_at": created,
			},
			{
				"id": "mock-doctor-2", "user_id": "mock-user-d2", "email": "dr.okafor@carelink.demo", "name": "Dr. Ada Okafor",
				"specialization": "Pulmonology", "license_number": "MD-51877", "consultation_fee": 95.0,
				"experience_years": 9, "available": true,
				"schedule":   []any{map[string]any{"day": "tuesday", "start": "10:00", "end": "16:00"}},
				"created_at": created,
			},
		},
		backend.Guardians: {
			{
				"id": "mock-guardian-1", "user_id": "mock-user-g1", "email": "ravi.patel@carelink.demo", "name": "Ravi Patel",
				"relationship": "son", "patient_ids": []any{"mock-patient-1"}, "created_at": created,
			},
		},
		backend.Pharmacies: {
			{
				"id": "mock-pharmacy-1", "user_id": "mock-user-ph1", "email": "orders@greenleaf.demo", "name": "GreenLeaf Pharmacy",
				"address": "220 Main Street, Springfield", "phone": "+1-555-0190", "license_number": "PH-3310",
				"delivery_available": true, "created_at": created,
			},
		},
		backend.Appointments: {
			{
				"id": "mock-appt-1", "patient_id": "mock-patient-1", "doctor_id": "mock-doctor-1",
				"scheduled_at": at(2 * time.Hour), "status": "confirmed", "type": "in-person",
				"symptoms": []any{"fatigue", "frequent thirst"}, "notes": "Quarterly diabetes review", "created_at": created,
			},
			{
				"id": "mock-appt-2", "patient_id": "mock-patient-2", "doctor_id": "mock-doctor-2",
				"scheduled_at": at(3 * day), "status": "scheduled", "type": "video",
				"symptoms": []any{"wheezing"}, "created_at": created,
			},
			{
				"id": "mock-appt-3", "patient_id": "mock-patient-1", "doctor_id": "mock-doctor-1",
				"scheduled_at": at(-28 * day), "status": "completed", "type": "in-person",
				"symptoms": []any{"dizziness"}, "created_at": created,
			},
		},
		backend.Prescriptions: {
			{
				"id": "mock-rx-1", "patient_id": "mock-patient-1", "doctor_id": "mock-doctor-1", "appointment_id": "mock-appt-3",
				"diagnosis": "Type 2 diabetes, poorly controlled",
				"medicines": []any{
					map[string]any{"name": "Metformin", "dosage": "500mg", "frequency": "twice daily", "duration": "90 days", "instructions": "with meals", "adherence": 86},
					map[string]any{"name": "Lisinopril", "dosage": "10mg", "frequency": "once daily", "duration": "90 days", "adherence": 92},
				},
				"valid_from": at(-28 * day), "valid_until": at(62 * day), "status": "active", "created_at": created,
			},
			{
				"id": "mock-rx-2", "patient_id": "mock-patient-2", "doctor_id": "mock-doctor-2",
				"diagnosis": "Mild persistent asthma",
				"medicines": []any{
					map[string]any{"name": "Budesonide inhaler", "dosage": "200mcg", "frequency": "twice daily", "duration": "30 days", "adherence": 70},
				},
				"valid_from": at(-10 * day), "valid_until": at(20 * day), "status": "active", "created_at": created,
			},
		},
		backend.Orders: {
			{
				"id": "mock-order-1", "prescription_id": "mock-rx-1", "patient_id": "mock-patient-1", "pharmacy_id": "mock-pharmacy-1",
				"status": "preparing", "delivery_address": "14 Cedar Lane, Springfield", "total_amount": 42.5,
				"payment_status": "paid", "created_at": at(-1 * day),
			},
		},
		backend.VitalsHistory: {
			{"id": "mock-vitals-1", "patient_id": "mock-patient-1", "heart_rate": 82, "blood_pressure": "138/88", "temperature": 98.6, "oxygen_level": 95, "weight": 65.0, "recorded_at": at(-14 * day), "created_at": at(-14 * day)},
			{"id": "mock-vitals-2", "patient_id": "mock-patient-1", "heart_rate": 78, "blood_pressure": "132/86", "temperature": 98.4, "oxygen_level": 96, "weight": 64.5, "recorded_at": at(-6 * time.Hour), "created_at": at(-6 * time.Hour)},
			{"id": "mock-vitals-3", "patient_id": "mock-patient-2", "heart_rate": 68, "blood_pressure": "118/76", "temperature": 98.1, "oxygen_level": 99, "weight": 81.0, "recorded_at": at(-2 * day), "created_at": at(-2 * day)},
		},
		backend.Notifications: {
			{"id": "mock-note-1", "user_id": "mock-user-p1", "title": "Appointment confirmed", "message": "Your visit with Dr. Minh Nguyen is confirmed.", "type": "appointment", "priority": "medium", "read": false, "created_at": at(-3 * time.Hour)},
			{"id": "mock-note-2", "user_id": "mock-user-p1", "title": "Refill due soon", "message": "Metformin runs out in 7 days.", "type": "prescription", "priority": "high", "read": false, "created_at": at(-1 * day)},
			{"id": "mock-note-3", "user_id": "mock-user-ph1", "title": "New order", "message": "Order for Asha Patel is waiting.", "type": "order", "priority": "medium", "read": true, "created_at": at(-1 * day)},
		},
		backend.LabReports: {
			{
				"id": "mock-lab-1", "patient_id": "mock-patient-1", "doctor_id": "mock-doctor-1", "test_name": "HbA1c panel",
				"report_date": at(-27 * day), "status": "reviewed",
				"results": []any{
					map[string]any{"parameter": "HbA1c", "value": "8.1", "unit": "%", "normal_range": "4.0-5.6", "status": "high"},
					map[string]any{"parameter": "Fasting glucose", "value": "152", "unit": "mg/dL", "normal_range": "70-99", "status": "high"},
				},
				"notes": "Adjust metformin dose.", "created_at": at(-27 * day),
			},
		},
	}
}
