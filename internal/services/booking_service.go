package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"therapy-booking-server/internal/apperrors"
	"therapy-booking-server/internal/logger"
	"therapy-booking-server/internal/models"
	"therapy-booking-server/internal/policy"
	"therapy-booking-server/internal/repository"

	"go.uber.org/zap"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// BookingRequest carries the patient's booking input.
type BookingRequest struct {
	DoctorID string
	Date     string
	Time     string
	Duration int
	Notes    string
}

// BookingResult is the outcome of a booking. The appointment exists even
// when PaymentError is set.
type BookingResult struct {
	Appointment  *models.Appointment
	PaymentURL   string
	PaymentError error
}

type BookingService struct {
	appointments repository.AppointmentRepository
	doctors      repository.DoctorRepository
	payments     *PaymentService
	now          Clock
}

func NewBookingService(appts repository.AppointmentRepository, doctors repository.DoctorRepository, payments *PaymentService, now Clock) *BookingService {
	if now == nil {
		now = utcNow
	}
	return &BookingService{appointments: appts, doctors: doctors, payments: payments, now: now}
}

// TotalAmount prices a session: hourly rate times duration in hours,
// rounded to two decimals.
func TotalAmount(hourlyRate float64, durationMinutes int) float64 {
	return math.Round(hourlyRate*float64(durationMinutes)/60*100) / 100
}

func validDuration(minutes int) bool {
	for _, d := range models.AllowedDurations {
		if d == minutes {
			return true
		}
	}
	return false
}

func (s *BookingService) validate(req *BookingRequest) error {
	req.DoctorID = strings.TrimSpace(req.DoctorID)
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	req.Notes = strings.TrimSpace(req.Notes)

	if req.DoctorID == "" {
		return apperrors.Validation("doctorId", "is required")
	}
	if req.Date == "" {
		return apperrors.Validation("appointmentDate", "is required")
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return apperrors.Validation("appointmentDate", "must be formatted YYYY-MM-DD")
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	if date.Before(today) {
		return apperrors.Validation("appointmentDate", "must not be in the past")
	}
	if req.Time == "" {
		return apperrors.Validation("appointmentTime", "is required")
	}
	clock, err := time.Parse(timeLayout, req.Time)
	if err != nil {
		return apperrors.Validation("appointmentTime", "must be formatted HH:MM")
	}
	// Stored zero-padded so the ledger orders times as strings.
	req.Date = date.Format(dateLayout)
	req.Time = clock.Format(timeLayout)
	if !validDuration(req.Duration) {
		return apperrors.Validation("duration", "must be 30, 60 or 90 minutes")
	}
	return nil
}

// Book creates a pending appointment priced from the doctor's current rate,
// then asks the provider for an invoice. A failed invoice does not undo the
// booking; it is reported in BookingResult.PaymentError. Identical requests
// create distinct appointments.
func (s *BookingService) Book(ctx context.Context, actor policy.Actor, req BookingRequest) (*BookingResult, error) {
	if err := policy.CanBook(actor); err != nil {
		return nil, err
	}
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	doctor, err := s.doctors.FindByUserID(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Validation("doctorId", "doctor not found")
		}
		return nil, apperrors.Persistence("load doctor", err)
	}
	if !doctor.Bookable() {
		return nil, apperrors.Validation("doctorId", "doctor is not approved for booking")
	}
	if doctor.HourlyRate <= 0 {
		return nil, apperrors.Validation("doctorId", "doctor has no valid hourly rate")
	}

	appt := &models.Appointment{
		PatientID:       actor.UserID,
		DoctorID:        doctor.UserID,
		AppointmentDate: req.Date,
		AppointmentTime: req.Time,
		Duration:        req.Duration,
		Notes:           req.Notes,
		TotalAmount:     TotalAmount(doctor.HourlyRate, req.Duration),
		Status:          models.StatusPending,
		PaymentStatus:   models.PaymentPending,
	}
	if err := s.appointments.Create(ctx, appt); err != nil {
		logger.Log.Error("appointment create failed",
			zap.String("patient_id", actor.UserID),
			zap.String("doctor_id", doctor.UserID),
			zap.Error(err))
		return nil, apperrors.Persistence("create appointment", err)
	}

	logger.Log.Info("appointment booked",
		zap.String("appointment_id", appt.ID),
		zap.String("doctor_id", appt.DoctorID),
		zap.Float64("total_amount", appt.TotalAmount))

	result := &BookingResult{Appointment: appt}
	initiation, err := s.payments.Initiate(ctx, appt)
	if err != nil {
		result.PaymentError = err
		return result, nil
	}
	result.PaymentURL = initiation.PaymentURL
	return result, nil
}
