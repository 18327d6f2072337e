package services

import (
	"context"
	"strings"

	"therapy-booking-server/internal/apperrors"
	"therapy-booking-server/internal/models"
	"therapy-booking-server/internal/policy"
	"therapy-booking-server/internal/repository"
)

// DoctorView is a doctor with the profile's display name.
type DoctorView struct {
	models.Doctor
	FullName string `json:"fullName"`
}

// DoctorProfile is the provider data collected at doctor sign-up.
type DoctorProfile struct {
	Specialization string
	Bio            string
	HourlyRate     float64
	Languages      []string
}

type DoctorService struct {
	doctors repository.DoctorRepository
	users   repository.UserRepository
}

func NewDoctorService(doctors repository.DoctorRepository, users repository.UserRepository) *DoctorService {
	return &DoctorService{doctors: doctors, users: users}
}

// Register creates a doctor profile awaiting approval.
func (s *DoctorService) Register(ctx context.Context, user *models.User, p DoctorProfile) (*models.Doctor, error) {
	if strings.TrimSpace(p.Specialization) == "" {
		return nil, apperrors.Validation("specialization", "is required")
	}
	if p.HourlyRate <= 0 {
		return nil, apperrors.Validation("hourlyRate", "must be positive")
	}
	langs := make([]string, 0, len(p.Languages))
	for _, l := range p.Languages {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	if len(langs) == 0 {
		return nil, apperrors.Validation("languages", "at least one language is required")
	}

	user.Role = models.RoleDoctor
	doctor := &models.Doctor{
		Specialization: strings.TrimSpace(p.Specialization),
		Bio:            strings.TrimSpace(p.Bio),
		HourlyRate:     p.HourlyRate,
		Languages:      langs,
		Status:         models.DoctorPending,
	}
	if err := s.doctors.Register(ctx, user, doctor); err != nil {
		return nil, apperrors.Persistence("register doctor", err)
	}
	return doctor, nil
}

// ListBookable returns approved doctors, the only valid booking targets.
func (s *DoctorService) ListBookable(ctx context.Context) ([]DoctorView, error) {
	return s.list(ctx, models.DoctorApproved)
}

// ListAll returns doctors in every approval state. Admin only.
func (s *DoctorService) ListAll(ctx context.Context, actor policy.Actor, status models.DoctorStatus) ([]DoctorView, error) {
	if err := policy.CanAdminister(actor); err != nil {
		return nil, err
	}
	return s.list(ctx, status)
}

func (s *DoctorService) list(ctx context.Context, status models.DoctorStatus) ([]DoctorView, error) {
	doctors, err := s.doctors.List(ctx, status)
	if err != nil {
		return nil, apperrors.Persistence("list doctors", err)
	}
	ids := make([]string, len(doctors))
	for i, d := range doctors {
		ids[i] = d.UserID
	}
	names, err := resolveNames(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}
	views := make([]DoctorView, len(doctors))
	for i, d := range doctors {
		views[i] = DoctorView{Doctor: d, FullName: names[d.UserID]}
	}
	return views, nil
}
