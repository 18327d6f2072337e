package models

import (
	"testing"
	"time"
)

func TestAppointmentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to AppointmentStatus
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusPending, StatusCompleted, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusConfirmed, StatusPending, false},
		{StatusPending, StatusPending, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestPaymentStatus_CanTransitionTo(t *testing.T) {
	if !PaymentPending.CanTransitionTo(PaymentPaid) || !PaymentPending.CanTransitionTo(PaymentFailed) {
		t.Fatal("pending must move to paid or failed")
	}
	if PaymentPaid.CanTransitionTo(PaymentFailed) || PaymentFailed.CanTransitionTo(PaymentPaid) {
		t.Fatal("paid and failed are terminal")
	}
}

func TestAppointment_HasParty(t *testing.T) {
	a := Appointment{PatientID: "p1", DoctorID: "d1"}
	if !a.HasParty("p1") || !a.HasParty("d1") {
		t.Fatal("patient and doctor are parties")
	}
	if a.HasParty("x") || a.HasParty("") {
		t.Fatal("unexpected party")
	}
}

func TestDoctor_Bookable(t *testing.T) {
	for status, want := range map[DoctorStatus]bool{
		DoctorApproved: true,
		DoctorPending:  false,
		DoctorRejected: false,
	} {
		d := Doctor{Status: status}
		if d.Bookable() != want {
			t.Errorf("status %s: bookable = %v", status, !want)
		}
	}
}

func TestRefreshToken_Revoke(t *testing.T) {
	now := time.Now()
	tok := RefreshToken{ExpiresAt: now.Add(time.Hour)}
	if !tok.Usable(now) {
		t.Fatal("fresh token should be usable")
	}
	tok.Revoke(now)
	if tok.Usable(now) {
		t.Fatal("revoked token should not be usable")
	}
}

func TestUser_Password(t *testing.T) {
	var u User
	if err := u.SetPassword("s3cret-pass"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if !u.CheckPassword("s3cret-pass") || u.CheckPassword("wrong") {
		t.Fatal("password check mismatch")
	}
	if u.Sanitize().Email != u.Email {
		t.Fatal("sanitize lost email")
	}
}
