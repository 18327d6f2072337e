// Package services implements the appointment workflows. Every exported
// operation takes the calling policy.Actor, checks it before touching the
// store, and reports failures with apperrors types.
package services

import (
	"context"
	"errors"
	"time"

	"therapy-booking-server/internal/apperrors"
	"therapy-booking-server/internal/config"
	"therapy-booking-server/internal/payment"
	"therapy-booking-server/internal/realtime"
	"therapy-booking-server/internal/repository"
)

// Clock returns the current time. Tests replace it.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// Services groups the workflows sharing one set of repositories.
type Services struct {
	Appointments *AppointmentService
	Booking      *BookingService
	Payments     *PaymentService
	Status       *StatusService
	Chat         *ChatService
	Doctors      *DoctorService
	Admin        *AdminService
}

// New wires every workflow.
func New(repos *repository.Repositories, invoicer payment.Invoicer, paymentCfg config.PaymentConfig, feed realtime.Subscriber) *Services {
	payments := NewPaymentService(repos.Appointments, repos.Users, invoicer, paymentCfg, utcNow)
	return &Services{
		Appointments: NewAppointmentService(repos.Appointments, repos.Users),
		Booking:      NewBookingService(repos.Appointments, repos.Doctors, payments, utcNow),
		Payments:     payments,
		Status:       NewStatusService(repos.Appointments, repos.Doctors),
		Chat:         NewChatService(repos.Appointments, repos.Chat, repos.Users, feed),
		Doctors:      NewDoctorService(repos.Doctors, repos.Users),
		Admin:        NewAdminService(repos.Users, repos.Doctors, repos.Appointments),
	}
}

// lookupError maps a repository read failure onto the taxonomy.
func lookupError(err error, resource, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(resource, id)
	}
	return apperrors.Persistence("load "+resource, err)
}

// resolveNames performs one batched profile lookup for ids and returns
// their display names. Unknown ids map to "Unknown".
func resolveNames(ctx context.Context, users repository.UserRepository, ids []string) (map[string]string, error) {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	profiles, err := users.FindByIDs(ctx, unique)
	if err != nil {
		return nil, apperrors.Persistence("resolve profiles", err)
	}
	names := make(map[string]string, len(unique))
	for _, id := range unique {
		name := "Unknown"
		if p, ok := profiles[id]; ok && p.FullName != "" {
			name = p.FullName
		}
		names[id] = name
	}
	return names, nil
}
