package policy

import (
	"testing"

	"therapy-booking-server/internal/apperrors"
	"therapy-booking-server/internal/models"
)

var (
	patient  = Actor{UserID: "patient-1", Role: models.RoleUser}
	doctor   = Actor{UserID: "doctor-1", Role: models.RoleDoctor}
	other    = Actor{UserID: "doctor-2", Role: models.RoleDoctor}
	admin    = Actor{UserID: "admin-1", Role: models.RoleAdmin}
	stranger = Actor{UserID: "patient-2", Role: models.RoleUser}
)

func appt() *models.Appointment {
	return &models.Appointment{PatientID: "patient-1", DoctorID: "doctor-1"}
}

func TestCanBook(t *testing.T) {
	tests := []struct {
		name  string
		actor Actor
		ok    bool
	}{
		{"patient", patient, true},
		{"admin", admin, true},
		{"doctor", doctor, false},
		{"anonymous", Actor{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanBook(tt.actor)
			if (err == nil) != tt.ok {
				t.Fatalf("CanBook() err = %v, want ok=%v", err, tt.ok)
			}
			if err != nil && apperrors.Code(err) != apperrors.CodeAuthorization {
				t.Fatalf("expected authorization error, got %v", err)
			}
		})
	}
}

func TestCanTransitionAppointment(t *testing.T) {
	tests := []struct {
		name  string
		actor Actor
		ok    bool
	}{
		{"assigned doctor", doctor, true},
		{"admin", admin, true},
		{"other doctor", other, false},
		{"patient", patient, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CanTransitionAppointment(tt.actor, appt()); (err == nil) != tt.ok {
				t.Fatalf("err = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestCanUseChat(t *testing.T) {
	for _, a := range []Actor{patient, doctor, admin} {
		if err := CanUseChat(a, appt()); err != nil {
			t.Errorf("%s should use chat: %v", a.UserID, err)
		}
	}
	for _, a := range []Actor{stranger, other} {
		if err := CanUseChat(a, appt()); err == nil {
			t.Errorf("%s should not use chat", a.UserID)
		}
	}
}

func TestAdminOnly(t *testing.T) {
	if CanSetDoctorApproval(admin) != nil || CanAdminister(admin) != nil {
		t.Fatal("admin must pass")
	}
	if CanSetDoctorApproval(doctor) == nil || CanAdminister(patient) == nil {
		t.Fatal("non-admin must fail")
	}
}

func TestCanRecordPayment(t *testing.T) {
	if CanRecordPayment(System) != nil {
		t.Fatal("system must record payments")
	}
	if CanRecordPayment(admin) == nil {
		t.Fatal("admin must not record payments directly")
	}
}
