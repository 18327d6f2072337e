package services

import (
	"context"
	"testing"

	"therapy-booking-server/internal/apperrors"
	"therapy-booking-server/internal/models"
	"therapy-booking-server/internal/policy"
)

func TestTransactionIDRoundTrip(t *testing.T) {
	f := newFixture(t)
	tx := f.svc.Payments.TransactionID("A1")
	if tx != "THERAPAL-A1" {
		t.Fatalf("TransactionID = %q", tx)
	}
	if id, ok := f.svc.Payments.AppointmentID(tx); !ok || id != "A1" {
		t.Fatalf("AppointmentID(%q) = %q, %v", tx, id, ok)
	}
	for _, bad := range []string{"A1", "OTHER-A1", "THERAPAL-"} {
		if _, ok := f.svc.Payments.AppointmentID(bad); ok {
			t.Errorf("AppointmentID(%q) should fail", bad)
		}
	}
}

func TestRecordOutcome(t *testing.T) {
	f := newFixture(t)
	f.seedAppointment("A1", models.StatusPending)
	ctx := context.Background()

	appt, err := f.svc.Payments.RecordOutcome(ctx, policy.System, "THERAPAL-A1", models.PaymentPaid)
	if err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	if appt.PaymentStatus != models.PaymentPaid || f.appts.Get("A1").PaymentStatus != models.PaymentPaid {
		t.Fatal("payment not marked paid")
	}
	if f.appts.Get("A1").Status != models.StatusPending {
		t.Fatal("payment outcome must not change the appointment status")
	}

	_, err = f.svc.Payments.RecordOutcome(ctx, policy.System, "THERAPAL-A1", models.PaymentFailed)
	if apperrors.Code(err) != apperrors.CodeInvalidTransition {
		t.Fatalf("paid -> failed should be rejected, got %v", err)
	}
}

func TestRecordOutcome_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		actor  policy.Actor
		tx     string
		status models.PaymentStatus
		code   string
	}{
		{"not the system", adminUser, "THERAPAL-A1", models.PaymentPaid, apperrors.CodeAuthorization},
		{"foreign prefix", policy.System, "OTHER-A1", models.PaymentPaid, apperrors.CodeValidation},
		{"pending is not an outcome", policy.System, "THERAPAL-A1", models.PaymentPending, apperrors.CodeValidation},
		{"unknown appointment", policy.System, "THERAPAL-A9", models.PaymentPaid, apperrors.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seedAppointment("A1", models.StatusPending)
			_, err := f.svc.Payments.RecordOutcome(context.Background(), tt.actor, tt.tx, tt.status)
			if got := apperrors.Code(err); got != tt.code {
				t.Fatalf("code = %q, want %q (err %v)", got, tt.code, err)
			}
			if f.appts.Get("A1").PaymentStatus != models.PaymentPending {
				t.Fatal("rejected outcome mutated the appointment")
			}
		})
	}
}
