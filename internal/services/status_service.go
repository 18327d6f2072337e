package services

import (
	"context"

	"therapy-booking-server/internal/apperrors"
	"therapy-booking-server/internal/logger"
	"therapy-booking-server/internal/models"
	"therapy-booking-server/internal/policy"
	"therapy-booking-server/internal/repository"

	"go.uber.org/zap"
)

// StatusService performs role-gated single-field status changes. No change
// cascades: cancelling does not touch payment status.
type StatusService struct {
	appointments repository.AppointmentRepository
	doctors      repository.DoctorRepository
}

func NewStatusService(appts repository.AppointmentRepository, doctors repository.DoctorRepository) *StatusService {
	return &StatusService{appointments: appts, doctors: doctors}
}

// TransitionAppointment moves an appointment to status to. The assigned
// doctor or an admin may do so along a defined transition.
func (s *StatusService) TransitionAppointment(ctx context.Context, actor policy.Actor, id string, to models.AppointmentStatus) (*models.Appointment, error) {
	if err := policy.Authenticated(actor); err != nil {
		return nil, err
	}
	appt, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "appointment", id)
	}
	if err := policy.CanTransitionAppointment(actor, appt); err != nil {
		return nil, err
	}
	if !appt.Status.CanTransitionTo(to) {
		return nil, &apperrors.TransitionError{Resource: "appointment", From: string(appt.Status), To: string(to)}
	}

	if err := s.appointments.UpdateStatus(ctx, id, to); err != nil {
		return nil, lookupError(err, "appointment", id)
	}
	logger.Log.Info("appointment status changed",
		zap.String("appointment_id", id),
		zap.String("from", string(appt.Status)),
		zap.String("to", string(to)),
		zap.String("actor", actor.UserID))
	appt.Status = to
	return appt, nil
}

// SetDoctorApproval approves or rejects a doctor. Admin only.
func (s *StatusService) SetDoctorApproval(ctx context.Context, actor policy.Actor, doctorUserID string, approve bool) (*models.Doctor, error) {
	if err := policy.CanSetDoctorApproval(actor); err != nil {
		return nil, err
	}
	doctor, err := s.doctors.FindByUserID(ctx, doctorUserID)
	if err != nil {
		return nil, lookupError(err, "doctor", doctorUserID)
	}

	status := models.DoctorRejected
	if approve {
		status = models.DoctorApproved
	}
	if err := s.doctors.UpdateStatus(ctx, doctorUserID, status); err != nil {
		return nil, lookupError(err, "doctor", doctorUserID)
	}
	logger.Log.Info("doctor approval changed",
		zap.String("doctor_id", doctorUserID),
		zap.String("status", string(status)))
	doctor.Status = status
	return doctor, nil
}
