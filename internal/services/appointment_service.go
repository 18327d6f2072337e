package services

import (
	"context"

	"therapy-booking-server/internal/apperrors"
	"therapy-booking-server/internal/models"
	"therapy-booking-server/internal/policy"
	"therapy-booking-server/internal/repository"
)

// AppointmentView is an appointment with both parties' display names.
type AppointmentView struct {
	models.Appointment
	PatientName string `json:"patientName"`
	DoctorName  string `json:"doctorName"`
}

// AppointmentService answers read queries on the ledger.
type AppointmentService struct {
	appointments repository.AppointmentRepository
	users        repository.UserRepository
}

func NewAppointmentService(appts repository.AppointmentRepository, users repository.UserRepository) *AppointmentService {
	return &AppointmentService{appointments: appts, users: users}
}

// List returns the appointments visible to actor: patients get their own,
// doctors those assigned to them, admins everything.
func (s *AppointmentService) List(ctx context.Context, actor policy.Actor, status models.AppointmentStatus) ([]AppointmentView, error) {
	if err := policy.Authenticated(actor); err != nil {
		return nil, err
	}
	filter := repository.AppointmentFilter{Status: status}
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleDoctor:
		filter.DoctorID = actor.UserID
	case models.RoleUser:
		filter.PatientID = actor.UserID
	default:
		return nil, apperrors.Forbidden("list appointments")
	}

	appts, err := s.appointments.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Persistence("list appointments", err)
	}
	return s.views(ctx, appts)
}

// Get returns one appointment to a party or an admin.
func (s *AppointmentService) Get(ctx context.Context, actor policy.Actor, id string) (*AppointmentView, error) {
	appt, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "appointment", id)
	}
	if err := policy.CanViewAppointment(actor, appt); err != nil {
		return nil, err
	}
	views, err := s.views(ctx, []models.Appointment{*appt})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *AppointmentService) views(ctx context.Context, appts []models.Appointment) ([]AppointmentView, error) {
	ids := make([]string, 0, 2*len(appts))
	for _, a := range appts {
		ids = append(ids, a.PatientID, a.DoctorID)
	}
	names, err := resolveNames(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}
	views := make([]AppointmentView, len(appts))
	for i, a := range appts {
		views[i] = AppointmentView{
			Appointment: a,
			PatientName: names[a.PatientID],
			DoctorName:  names[a.DoctorID],
		}
	}
	return views, nil
}
