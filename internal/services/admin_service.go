package services

import (
	"context"
	"errors"

	"therapy-booking-server/internal/apperrors"
	"therapy-booking-server/internal/logger"
	"therapy-booking-server/internal/models"
	"therapy-booking-server/internal/policy"
	"therapy-booking-server/internal/repository"

	"go.uber.org/zap"
)

// Stats summarises the platform for the admin dashboard.
type Stats struct {
	Users          int64                              `json:"users"`
	Doctors        map[models.DoctorStatus]int64      `json:"doctors"`
	Appointments   map[models.AppointmentStatus]int64 `json:"appointments"`
	PaidRevenue    float64                            `json:"paidRevenue"`
	PendingRevenue float64                            `json:"pendingRevenue"`
}

type AdminService struct {
	users        repository.UserRepository
	doctors      repository.DoctorRepository
	appointments repository.AppointmentRepository
}

func NewAdminService(users repository.UserRepository, doctors repository.DoctorRepository, appts repository.AppointmentRepository) *AdminService {
	return &AdminService{users: users, doctors: doctors, appointments: appts}
}

func (s *AdminService) Stats(ctx context.Context, actor policy.Actor) (*Stats, error) {
	if err := policy.CanAdminister(actor); err != nil {
		return nil, err
	}
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, apperrors.Persistence("count users", err)
	}
	doctors, err := s.doctors.CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.Persistence("count doctors", err)
	}
	totals, err := s.appointments.Totals(ctx)
	if err != nil {
		return nil, apperrors.Persistence("aggregate appointments", err)
	}
	return &Stats{
		Users:          users,
		Doctors:        doctors,
		Appointments:   totals.ByStatus,
		PaidRevenue:    totals.PaidRevenue,
		PendingRevenue: totals.PendingRevenue,
	}, nil
}

func (s *AdminService) ListUsers(ctx context.Context, actor policy.Actor) ([]models.User, error) {
	if err := policy.CanAdminister(actor); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.Persistence("list users", err)
	}
	return users, nil
}

// DeleteUser removes a profile and its sessions. Admins cannot delete
// themselves, and profiles with doctor records, appointments or chat
// history are kept.
func (s *AdminService) DeleteUser(ctx context.Context, actor policy.Actor, id string) error {
	if err := policy.CanAdminister(actor); err != nil {
		return err
	}
	if id == actor.UserID {
		return apperrors.Validation("id", "admins cannot delete their own account")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return apperrors.NotFound("user", id)
		case errors.Is(err, repository.ErrInUse):
			return apperrors.Conflict("user", id, "still referenced by doctor, appointment or chat records")
		}
		return apperrors.Persistence("delete user", err)
	}
	logger.Log.Info("user deleted", zap.String("user_id", id), zap.String("actor", actor.UserID))
	return nil
}
