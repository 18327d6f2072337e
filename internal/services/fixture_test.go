package services

import (
	"testing"
	"time"

	"therapy-booking-server/internal/config"
	"therapy-booking-server/internal/models"
	"therapy-booking-server/internal/policy"
	"therapy-booking-server/internal/realtime"
	"therapy-booking-server/internal/repository/memrepo"
)

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

var (
	patient   = policy.Actor{UserID: "u-patient", Role: models.RoleUser}
	stranger  = policy.Actor{UserID: "u-stranger", Role: models.RoleUser}
	doctorD1  = policy.Actor{UserID: "D1", Role: models.RoleDoctor}
	otherDoc  = policy.Actor{UserID: "D2", Role: models.RoleDoctor}
	adminUser = policy.Actor{UserID: "u-admin", Role: models.RoleAdmin}
)

func testPaymentConfig() config.PaymentConfig {
	return config.PaymentConfig{
		TransactionPrefix: "THERAPAL-",
		AccountIdentifier: "ACC-1",
		ItemCode:          "THERAPY-SESSION",
		Description:       "Therapy session",
		Language:          "EN",
		InvoiceTTL:        24 * time.Hour,
		PlaceholderEmail:  "user@email.com",
		PlaceholderPhone:  "0780000001",
		PlaceholderName:   "Therapal User",
	}
}

type fixture struct {
	users    *memrepo.Users
	doctors  *memrepo.Doctors
	appts    *memrepo.Appointments
	chat     *memrepo.Chat
	tokens   *memrepo.RefreshTokens
	invoicer *mockInvoicer
	hub      *realtime.Hub
	svc      *Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos, store := memrepo.New()
	for _, u := range []*models.User{
		{BaseModel: models.BaseModel{ID: patient.UserID}, Email: "pat@example.com", Phone: "0788000000", FullName: "Pat Patient", Role: models.RoleUser},
		{BaseModel: models.BaseModel{ID: "D1"}, Email: "d1@example.com", FullName: "Dr One", Role: models.RoleDoctor},
		{BaseModel: models.BaseModel{ID: "D2"}, Email: "d2@example.com", FullName: "Dr Two", Role: models.RoleDoctor},
		{BaseModel: models.BaseModel{ID: adminUser.UserID}, Email: "admin@example.com", FullName: "Ada Admin", Role: models.RoleAdmin},
	} {
		store.Users.Put(u)
	}
	store.Doctors.Put(&models.Doctor{UserID: "D1", Specialization: "Anxiety", HourlyRate: 6000, Languages: []string{"en"}, Status: models.DoctorApproved})
	store.Doctors.Put(&models.Doctor{UserID: "D2", Specialization: "Couples", HourlyRate: 5000, Languages: []string{"rw"}, Status: models.DoctorPending})

	f := &fixture{
		users:    store.Users,
		doctors:  store.Doctors,
		appts:    store.Appointments,
		chat:     store.Chat,
		tokens:   store.RefreshTokens,
		invoicer: &mockInvoicer{},
		hub:      realtime.NewHub(8),
	}
	f.svc = New(repos, f.invoicer, testPaymentConfig(), f.hub)
	f.svc.Payments.now = fixedClock
	f.svc.Booking.now = fixedClock
	return f
}

// seedAppointment stores an appointment between patient and D1, applying
// opts before it is saved.
func (f *fixture) seedAppointment(id string, status models.AppointmentStatus, opts ...func(a *models.Appointment)) {
	a := &models.Appointment{
		BaseModel:       models.BaseModel{ID: id},
		PatientID:       patient.UserID,
		DoctorID:        "D1",
		AppointmentDate: "2025-03-12",
		AppointmentTime: "10:00",
		Duration:        60,
		TotalAmount:     6000,
		Status:          status,
		PaymentStatus:   models.PaymentPending,
	}
	for _, opt := range opts {
		opt(a)
	}
	f.appts.Put(a)
}
