// Package policy holds the capability checks run by every workflow before it
// reads or mutates protected records. The actor comes from the verified
// access token and is passed explicitly into each call.
package policy

import (
	"therapy-booking-server/internal/apperrors"
	"therapy-booking-server/internal/models"
)

// Actor is the authenticated caller of a workflow.
type Actor struct {
	UserID string
	Role   models.Role
}

// System is the actor used for provider callbacks.
var System = Actor{UserID: "system", Role: "system"}

func (a Actor) IsAdmin() bool  { return a.Role == models.RoleAdmin }
func (a Actor) IsDoctor() bool { return a.Role == models.RoleDoctor }
func (a Actor) IsSystem() bool { return a == System }

// Authenticated fails when the actor carries no identity.
func Authenticated(a Actor) error {
	if a.UserID == "" || a.Role == "" {
		return apperrors.Forbidden("act without an identity")
	}
	return nil
}

// CanBook allows patients and admins to book sessions.
func CanBook(a Actor) error {
	if err := Authenticated(a); err != nil {
		return err
	}
	if a.Role != models.RoleUser && !a.IsAdmin() {
		return apperrors.Forbidden("book appointments")
	}
	return nil
}

// CanViewAppointment allows either party or an admin.
func CanViewAppointment(a Actor, appt *models.Appointment) error {
	if a.IsAdmin() || appt.HasParty(a.UserID) {
		return nil
	}
	return apperrors.Forbidden("view this appointment")
}

// CanTransitionAppointment allows the assigned doctor or an admin.
func CanTransitionAppointment(a Actor, appt *models.Appointment) error {
	if a.IsAdmin() {
		return nil
	}
	if a.IsDoctor() && a.UserID == appt.DoctorID {
		return nil
	}
	return apperrors.Forbidden("change the status of this appointment")
}

// CanSetDoctorApproval allows admins only.
func CanSetDoctorApproval(a Actor) error {
	if a.IsAdmin() {
		return nil
	}
	return apperrors.Forbidden("change doctor approval")
}

// CanUseChat allows either party or an admin to read and post.
func CanUseChat(a Actor, appt *models.Appointment) error {
	if a.IsAdmin() || appt.HasParty(a.UserID) {
		return nil
	}
	return apperrors.Forbidden("use the chat of this appointment")
}

// CanRecordPayment allows only provider callbacks.
func CanRecordPayment(a Actor) error {
	if a.IsSystem() {
		return nil
	}
	return apperrors.Forbidden("record payment outcomes")
}

// CanAdminister allows admins only.
func CanAdminister(a Actor) error {
	if a.IsAdmin() {
		return nil
	}
	return apperrors.Forbidden("access administration")
}
