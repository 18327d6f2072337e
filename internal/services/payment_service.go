package services

import (
	"context"
	"strings"
	"time"

	"therapy-booking-server/internal/apperrors"
	"therapy-booking-server/internal/config"
	"therapy-booking-server/internal/logger"
	"therapy-booking-server/internal/models"
	"therapy-booking-server/internal/payment"
	"therapy-booking-server/internal/policy"
	"therapy-booking-server/internal/repository"

	"go.uber.org/zap"
)

// Initiation is a created provider invoice.
type Initiation struct {
	Reference  string
	PaymentURL string
}

type PaymentService struct {
	appointments repository.AppointmentRepository
	users        repository.UserRepository
	invoicer     payment.Invoicer
	cfg          config.PaymentConfig
	now          Clock
}

func NewPaymentService(appts repository.AppointmentRepository, users repository.UserRepository, invoicer payment.Invoicer, cfg config.PaymentConfig, now Clock) *PaymentService {
	if now == nil {
		now = utcNow
	}
	if cfg.InvoiceTTL <= 0 {
		cfg.InvoiceTTL = 24 * time.Hour
	}
	return &PaymentService{appointments: appts, users: users, invoicer: invoicer, cfg: cfg, now: now}
}

// TransactionID derives the provider transaction id of an appointment.
func (s *PaymentService) TransactionID(appointmentID string) string {
	return s.cfg.TransactionPrefix + appointmentID
}

// AppointmentID reverses TransactionID.
func (s *PaymentService) AppointmentID(transactionID string) (string, bool) {
	if !strings.HasPrefix(transactionID, s.cfg.TransactionPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(transactionID, s.cfg.TransactionPrefix)
	return id, id != ""
}

func (s *PaymentService) customer(profile *models.User) payment.Customer {
	c := payment.Customer{
		Email:       s.cfg.PlaceholderEmail,
		PhoneNumber: s.cfg.PlaceholderPhone,
		Name:        s.cfg.PlaceholderName,
	}
	if profile == nil {
		return c
	}
	if profile.Email != "" {
		c.Email = profile.Email
	}
	if profile.Phone != "" {
		c.PhoneNumber = profile.Phone
	}
	if profile.FullName != "" {
		c.Name = profile.FullName
	}
	return c
}

func (s *PaymentService) invoiceRequest(appt *models.Appointment, profile *models.User) payment.InvoiceRequest {
	return payment.InvoiceRequest{
		TransactionID:            s.TransactionID(appt.ID),
		PaymentAccountIdentifier: s.cfg.AccountIdentifier,
		Customer:                 s.customer(profile),
		PaymentItems: []payment.Item{{
			UnitAmount: payment.MinorUnits(appt.TotalAmount),
			Quantity:   1,
			Code:       s.cfg.ItemCode,
		}},
		Description: s.cfg.Description,
		ExpiryAt:    s.now().Add(s.cfg.InvoiceTTL).UTC().Format(time.RFC3339),
		Language:    s.cfg.Language,
	}
}

// Initiate submits one invoice for appt and stores the provider reference.
// On failure the appointment is left untouched and a
// PaymentInitiationError is returned. Payment status stays pending either
// way until the provider confirms.
func (s *PaymentService) Initiate(ctx context.Context, appt *models.Appointment) (*Initiation, error) {
	profile, err := s.users.FindByID(ctx, appt.PatientID)
	if err != nil {
		logger.Log.Debug("patient profile unavailable, using placeholder contact",
			zap.String("appointment_id", appt.ID), zap.Error(err))
		profile = nil
	}

	data, err := s.invoicer.CreateInvoice(ctx, s.invoiceRequest(appt, profile))
	if err != nil {
		logger.Log.Warn("payment initiation failed",
			zap.String("appointment_id", appt.ID), zap.Error(err))
		return nil, &apperrors.PaymentInitiationError{AppointmentID: appt.ID, Err: err}
	}

	if err := s.appointments.UpdatePaymentReference(ctx, appt.ID, data.ID); err != nil {
		logger.Log.Error("storing payment reference failed",
			zap.String("appointment_id", appt.ID),
			zap.String("payment_reference", data.ID),
			zap.Error(err))
		return nil, &apperrors.PaymentInitiationError{
			AppointmentID: appt.ID,
			Err:           apperrors.Persistence("store payment reference", err),
		}
	}

	ref := data.ID
	appt.PaymentReference = &ref
	logger.Log.Info("payment initiated",
		zap.String("appointment_id", appt.ID),
		zap.String("payment_reference", ref))
	return &Initiation{Reference: ref, PaymentURL: data.PaymentURL}, nil
}

// RecordOutcome applies a provider confirmation to the appointment the
// transaction belongs to. Only pending payments can move, to paid or failed.
func (s *PaymentService) RecordOutcome(ctx context.Context, actor policy.Actor, transactionID string, status models.PaymentStatus) (*models.Appointment, error) {
	if err := policy.CanRecordPayment(actor); err != nil {
		return nil, err
	}
	id, ok := s.AppointmentID(transactionID)
	if !ok {
		return nil, apperrors.Validation("transactionId", "is not a known transaction")
	}
	if status != models.PaymentPaid && status != models.PaymentFailed {
		return nil, apperrors.Validation("status", "must be paid or failed")
	}

	appt, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "appointment", id)
	}
	if !appt.PaymentStatus.CanTransitionTo(status) {
		return nil, &apperrors.TransitionError{Resource: "payment", From: string(appt.PaymentStatus), To: string(status)}
	}
	if err := s.appointments.UpdatePaymentStatus(ctx, id, status); err != nil {
		return nil, lookupError(err, "appointment", id)
	}
	appt.PaymentStatus = status
	logger.Log.Info("payment outcome recorded",
		zap.String("appointment_id", id),
		zap.String("payment_status", string(status)))
	return appt, nil
}
