package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"therapy-booking-server/internal/models"

	"gorm.io/gorm"
)

// newTestDB opens a migrated in-memory SQLite database with foreign keys
// enforced. A single connection keeps every query on the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := models.Open(models.DatabaseConfig{Driver: "sqlite", DSN: "file::memory:?_pragma=foreign_keys(1)"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, repos *Repositories, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Email: email, FullName: email, Role: role}
	if err := u.SetPassword("password123"); err != nil {
		t.Fatal(err)
	}
	if err := repos.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func createAppointment(t *testing.T, repos *Repositories, a models.Appointment) *models.Appointment {
	t.Helper()
	if a.Duration == 0 {
		a.Duration = 60
	}
	if err := repos.Appointments.Create(context.Background(), &a); err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return &a
}

func TestChatRepository_ListOrderedBySentAt(t *testing.T) {
	repos := New(newTestDB(t))
	ctx := context.Background()
	pat := createUser(t, repos, "pat@example.com", models.RoleUser)
	doc := createUser(t, repos, "doc@example.com", models.RoleDoctor)
	appt := createAppointment(t, repos, models.Appointment{PatientID: pat.ID, DoctorID: doc.ID, AppointmentDate: "2025-03-12", AppointmentTime: "10:00", TotalAmount: 6000})
	other := createAppointment(t, repos, models.Appointment{PatientID: pat.ID, DoctorID: doc.ID, AppointmentDate: "2025-03-13", AppointmentTime: "10:00", TotalAmount: 6000})

	base := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	for _, m := range []models.ChatMessage{
		{AppointmentID: appt.ID, SenderID: doc.ID, Message: "third", SentAt: base.Add(2 * time.Minute)},
		{AppointmentID: appt.ID, SenderID: pat.ID, Message: "first", SentAt: base},
		{AppointmentID: other.ID, SenderID: pat.ID, Message: "elsewhere", SentAt: base},
		{AppointmentID: appt.ID, SenderID: pat.ID, Message: "second", SentAt: base.Add(time.Minute)},
	} {
		m := m
		if err := repos.Chat.Create(ctx, &m); err != nil {
			t.Fatalf("create message: %v", err)
		}
	}

	got, err := repos.Chat.ListByAppointment(ctx, appt.ID)
	if err != nil {
		t.Fatalf("ListByAppointment: %v", err)
	}
	want := []string{"first", "second", "third"}
	if len(got) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Message != w {
			t.Errorf("message %d = %q, want %q", i, got[i].Message, w)
		}
	}
}

func TestAppointmentRepository_ListAndUpdates(t *testing.T) {
	repos := New(newTestDB(t))
	ctx := context.Background()
	pat := createUser(t, repos, "pat@example.com", models.RoleUser)
	doc := createUser(t, repos, "doc@example.com", models.RoleDoctor)
	other := createUser(t, repos, "other@example.com", models.RoleDoctor)

	late := createAppointment(t, repos, models.Appointment{PatientID: pat.ID, DoctorID: doc.ID, AppointmentDate: "2025-03-12", AppointmentTime: "10:00", TotalAmount: 6000})
	early := createAppointment(t, repos, models.Appointment{PatientID: pat.ID, DoctorID: doc.ID, AppointmentDate: "2025-03-12", AppointmentTime: "09:30", TotalAmount: 3000})
	next := createAppointment(t, repos, models.Appointment{PatientID: pat.ID, DoctorID: other.ID, AppointmentDate: "2025-03-11", AppointmentTime: "16:00", TotalAmount: 5000})

	all, err := repos.Appointments.List(ctx, AppointmentFilter{PatientID: pat.ID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].ID != next.ID || all[1].ID != early.ID || all[2].ID != late.ID {
		t.Fatalf("unexpected order: %+v", all)
	}
	if all[0].Status != models.StatusPending || all[0].PaymentStatus != models.PaymentPending {
		t.Fatalf("defaults not applied: %s/%s", all[0].Status, all[0].PaymentStatus)
	}

	if err := repos.Appointments.UpdateStatus(ctx, early.ID, models.StatusConfirmed); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := repos.Appointments.UpdatePaymentReference(ctx, early.ID, "INV-1"); err != nil {
		t.Fatalf("UpdatePaymentReference: %v", err)
	}
	if err := repos.Appointments.UpdateStatus(ctx, "missing", models.StatusConfirmed); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing appointment: %v", err)
	}

	confirmed, err := repos.Appointments.List(ctx, AppointmentFilter{DoctorID: doc.ID, Status: models.StatusConfirmed})
	if err != nil {
		t.Fatal(err)
	}
	if len(confirmed) != 1 || confirmed[0].PaymentReference == nil || *confirmed[0].PaymentReference != "INV-1" {
		t.Fatalf("unexpected confirmed list: %+v", confirmed)
	}
}

func TestAppointmentRepository_Totals(t *testing.T) {
	repos := New(newTestDB(t))
	ctx := context.Background()
	pat := createUser(t, repos, "pat@example.com", models.RoleUser)
	doc := createUser(t, repos, "doc@example.com", models.RoleDoctor)

	paid := createAppointment(t, repos, models.Appointment{PatientID: pat.ID, DoctorID: doc.ID, AppointmentDate: "2025-03-12", AppointmentTime: "10:00", TotalAmount: 9000})
	createAppointment(t, repos, models.Appointment{PatientID: pat.ID, DoctorID: doc.ID, AppointmentDate: "2025-03-13", AppointmentTime: "10:00", TotalAmount: 3000})
	createAppointment(t, repos, models.Appointment{PatientID: pat.ID, DoctorID: doc.ID, AppointmentDate: "2025-03-14", AppointmentTime: "10:00", TotalAmount: 1500})
	failed := createAppointment(t, repos, models.Appointment{PatientID: pat.ID, DoctorID: doc.ID, AppointmentDate: "2025-03-15", AppointmentTime: "10:00", TotalAmount: 7000})

	if err := repos.Appointments.UpdatePaymentStatus(ctx, paid.ID, models.PaymentPaid); err != nil {
		t.Fatal(err)
	}
	if err := repos.Appointments.UpdateStatus(ctx, paid.ID, models.StatusConfirmed); err != nil {
		t.Fatal(err)
	}
	if err := repos.Appointments.UpdatePaymentStatus(ctx, failed.ID, models.PaymentFailed); err != nil {
		t.Fatal(err)
	}

	totals, err := repos.Appointments.Totals(ctx)
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	if totals.PaidRevenue != 9000 || totals.PendingRevenue != 4500 {
		t.Errorf("revenue = %v paid / %v pending", totals.PaidRevenue, totals.PendingRevenue)
	}
	if totals.ByStatus[models.StatusPending] != 3 || totals.ByStatus[models.StatusConfirmed] != 1 {
		t.Errorf("by status = %v", totals.ByStatus)
	}
}

func TestDoctorRepository_Register(t *testing.T) {
	repos := New(newTestDB(t))
	ctx := context.Background()

	first := &models.User{Email: "one@example.com", Role: models.RoleDoctor}
	firstDoc := &models.Doctor{Specialization: "Anxiety", HourlyRate: 6000, Languages: []string{"en", "rw"}}
	if err := repos.Doctors.Register(ctx, first, firstDoc); err != nil {
		t.Fatalf("Register: %v", err)
	}
	stored, err := repos.Doctors.FindByUserID(ctx, first.ID)
	if err != nil {
		t.Fatalf("FindByUserID: %v", err)
	}
	if stored.Status != models.DoctorPending || len(stored.Languages) != 2 {
		t.Fatalf("unexpected doctor %+v", stored)
	}

	// A failing doctor insert must not leave the profile behind.
	second := &models.User{Email: "two@example.com", Role: models.RoleDoctor}
	clash := &models.Doctor{BaseModel: models.BaseModel{ID: firstDoc.ID}, Specialization: "Grief", HourlyRate: 5000}
	if err := repos.Doctors.Register(ctx, second, clash); err == nil {
		t.Fatal("expected duplicate doctor id to fail")
	}
	if _, err := repos.Users.FindByEmail(ctx, "two@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("profile survived rollback: %v", err)
	}

	if err := repos.Doctors.UpdateStatus(ctx, first.ID, models.DoctorApproved); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	approved, err := repos.Doctors.List(ctx, models.DoctorApproved)
	if err != nil || len(approved) != 1 {
		t.Fatalf("approved = %d, %v", len(approved), err)
	}
	counts, err := repos.Doctors.CountByStatus(ctx)
	if err != nil || counts[models.DoctorApproved] != 1 {
		t.Fatalf("counts = %v, %v", counts, err)
	}
}

func TestUserRepository_Delete(t *testing.T) {
	repos := New(newTestDB(t))
	ctx := context.Background()
	pat := createUser(t, repos, "pat@example.com", models.RoleUser)
	doc := createUser(t, repos, "doc@example.com", models.RoleDoctor)
	loner := createUser(t, repos, "loner@example.com", models.RoleUser)
	createAppointment(t, repos, models.Appointment{PatientID: pat.ID, DoctorID: doc.ID, AppointmentDate: "2025-03-12", AppointmentTime: "10:00", TotalAmount: 6000})

	for _, u := range []*models.User{pat, loner} {
		tok := &models.RefreshToken{UserID: u.ID, Token: "token-" + u.ID, ExpiresAt: time.Now().Add(time.Hour)}
		if err := repos.RefreshTokens.Create(ctx, tok); err != nil {
			t.Fatalf("create token: %v", err)
		}
	}

	if err := repos.Users.Delete(ctx, loner.ID); err != nil {
		t.Fatalf("delete user with a session: %v", err)
	}
	if _, err := repos.Users.FindByID(ctx, loner.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("user still present: %v", err)
	}
	if _, err := repos.RefreshTokens.FindByToken(ctx, "token-"+loner.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("token still present: %v", err)
	}

	for _, u := range []*models.User{pat, doc} {
		if err := repos.Users.Delete(ctx, u.ID); !errors.Is(err, ErrInUse) {
			t.Fatalf("delete %s: expected ErrInUse, got %v", u.Email, err)
		}
	}
	// The refused delete must not have dropped the patient's session.
	if _, err := repos.RefreshTokens.FindByToken(ctx, "token-"+pat.ID); err != nil {
		t.Fatalf("token of a kept user removed: %v", err)
	}

	if err := repos.Users.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user: %v", err)
	}
}
