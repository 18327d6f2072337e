package services

import (
	"context"
	"testing"

	"therapy-booking-server/internal/apperrors"
	"therapy-booking-server/internal/models"
)

func TestAdminStats(t *testing.T) {
	f := newFixture(t)
	f.seedAppointment("A1", models.StatusPending)
	f.seedAppointment("A2", models.StatusConfirmed, func(a *models.Appointment) {
		a.PaymentStatus = models.PaymentPaid
		a.TotalAmount = 9000
	})

	stats, err := f.svc.Admin.Stats(context.Background(), adminUser)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Users != 4 {
		t.Errorf("users = %d", stats.Users)
	}
	if stats.Doctors[models.DoctorApproved] != 1 || stats.Doctors[models.DoctorPending] != 1 {
		t.Errorf("doctors = %v", stats.Doctors)
	}
	if stats.Appointments[models.StatusPending] != 1 || stats.Appointments[models.StatusConfirmed] != 1 {
		t.Errorf("appointments = %v", stats.Appointments)
	}
	if stats.PaidRevenue != 9000 || stats.PendingRevenue != 6000 {
		t.Errorf("revenue = %v / %v", stats.PaidRevenue, stats.PendingRevenue)
	}

	if _, err := f.svc.Admin.Stats(context.Background(), doctorD1); apperrors.Code(err) != apperrors.CodeAuthorization {
		t.Fatalf("doctor read stats: %v", err)
	}
}

func TestAdminDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.Admin.DeleteUser(ctx, adminUser, adminUser.UserID); apperrors.Code(err) != apperrors.CodeValidation {
		t.Fatalf("self delete: %v", err)
	}
	if err := f.svc.Admin.DeleteUser(ctx, adminUser, "nobody"); apperrors.Code(err) != apperrors.CodeNotFound {
		t.Fatalf("missing user: %v", err)
	}
	if err := f.svc.Admin.DeleteUser(ctx, patient, stranger.UserID); apperrors.Code(err) != apperrors.CodeAuthorization {
		t.Fatalf("non-admin delete: %v", err)
	}
	if err := f.svc.Admin.DeleteUser(ctx, adminUser, patient.UserID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if f.users.Exists(patient.UserID) {
		t.Fatal("user still present")
	}

	users, err := f.svc.Admin.ListUsers(ctx, adminUser)
	if err != nil || len(users) != 3 {
		t.Fatalf("ListUsers = %d, %v", len(users), err)
	}
}

func TestAdminDeleteUser_Referenced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedAppointment("A1", models.StatusCancelled)

	for _, id := range []string{patient.UserID, "D1", "D2"} {
		if err := f.svc.Admin.DeleteUser(ctx, adminUser, id); apperrors.Code(err) != apperrors.CodeConflict {
			t.Fatalf("delete %s: expected conflict, got %v", id, err)
		}
		if !f.users.Exists(id) {
			t.Fatalf("%s removed despite references", id)
		}
	}
}

func TestAdminDeleteUser_RemovesSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.users.Put(&models.User{BaseModel: models.BaseModel{ID: stranger.UserID}, Email: "s@example.com", Role: models.RoleUser})
	for _, token := range []string{"t1", "t2"} {
		if err := f.tokens.Create(ctx, &models.RefreshToken{UserID: stranger.UserID, Token: token}); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.tokens.Create(ctx, &models.RefreshToken{UserID: patient.UserID, Token: "t3"}); err != nil {
		t.Fatal(err)
	}

	if err := f.svc.Admin.DeleteUser(ctx, adminUser, stranger.UserID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if f.tokens.Len() != 1 {
		t.Fatalf("expected only the other user's token to remain, got %d", f.tokens.Len())
	}
}
