// Package repository is the persistence layer over gorm. Every repository
// takes a context and returns ErrNotFound for missing rows.
package repository

import (
	"context"
	"errors"

	"therapy-booking-server/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ErrInUse is returned when a row cannot be deleted because other rows still
// reference it.
var ErrInUse = errors.New("record is still referenced")

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByIDs resolves a set of profile ids in one query. Unknown ids are
	// absent from the result.
	FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, u *models.User) error
	// Delete removes the profile and its refresh tokens. Profiles still
	// referenced by a doctor row, an appointment or a chat message fail with
	// ErrInUse.
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type DoctorRepository interface {
	// Register creates the profile and its pending doctor row atomically.
	Register(ctx context.Context, u *models.User, d *models.Doctor) error
	FindByUserID(ctx context.Context, userID string) (*models.Doctor, error)
	// List returns doctors with the given status, or all when status is empty.
	List(ctx context.Context, status models.DoctorStatus) ([]models.Doctor, error)
	UpdateStatus(ctx context.Context, userID string, status models.DoctorStatus) error
	CountByStatus(ctx context.Context) (map[models.DoctorStatus]int64, error)
}

// AppointmentFilter narrows List. Empty fields match everything.
type AppointmentFilter struct {
	PatientID string
	DoctorID  string
	Status    models.AppointmentStatus
}

// AppointmentTotals aggregates the ledger for the admin dashboard.
type AppointmentTotals struct {
	ByStatus       map[models.AppointmentStatus]int64
	PaidRevenue    float64
	PendingRevenue float64
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *models.Appointment) error
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	List(ctx context.Context, f AppointmentFilter) ([]models.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) error
	UpdatePaymentReference(ctx context.Context, id, reference string) error
	UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error
	Totals(ctx context.Context) (*AppointmentTotals, error)
}

type ChatRepository interface {
	Create(ctx context.Context, m *models.ChatMessage) error
	// ListByAppointment returns messages oldest first.
	ListByAppointment(ctx context.Context, appointmentID string) ([]models.ChatMessage, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, t *models.RefreshToken) error
	FindUsable(ctx context.Context, token, userID string) (*models.RefreshToken, error)
	FindByToken(ctx context.Context, token string) (*models.RefreshToken, error)
	Save(ctx context.Context, t *models.RefreshToken) error
}

// Repositories bundles the gorm implementations sharing one connection.
type Repositories struct {
	Users         UserRepository
	Doctors       DoctorRepository
	Appointments  AppointmentRepository
	Chat          ChatRepository
	RefreshTokens RefreshTokenRepository
}

// New wires every repository to db.
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(db),
		Doctors:       NewDoctorRepository(db),
		Appointments:  NewAppointmentRepository(db),
		Chat:          NewChatRepository(db),
		RefreshTokens: NewRefreshTokenRepository(db),
	}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// updated turns a zero-row update into ErrNotFound.
func updated(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
