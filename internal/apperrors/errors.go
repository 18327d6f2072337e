// Package apperrors defines the error taxonomy shared by the booking,
// payment, status and chat workflows. Handlers translate these into HTTP
// responses; workflows return them wrapped around the underlying cause.
package apperrors

import (
	"errors"
	"fmt"
)

// Error codes carried in API error responses.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodePersistence       = "DATABASE_ERROR"
	CodePaymentInitiation = "PAYMENT_INITIATION_ERROR"
	CodeNotFound          = "RESOURCE_NOT_FOUND"
	CodeAuthorization     = "INSUFFICIENT_PERMISSIONS"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeConflict          = "RESOURCE_IN_USE"
)

// ValidationError reports missing or malformed input. Nothing has been
// written when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PersistenceError reports a failed read or write against the store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// PaymentInitiationError reports that the payment provider call failed or
// answered with a non-success payload.
type PaymentInitiationError struct {
	AppointmentID string
	Err           error
}

func (e *PaymentInitiationError) Error() string {
	return fmt.Sprintf("payment initiation for appointment %s failed: %v", e.AppointmentID, e.Err)
}

func (e *PaymentInitiationError) Unwrap() error { return e.Err }

// NotFoundError reports that the target of an operation does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// AuthorizationError reports that the actor may not perform the action.
type AuthorizationError struct {
	Action string
}

func (e *AuthorizationError) Error() string {
	return "not permitted to " + e.Action
}

// TransitionError reports a status change with no defined transition.
type TransitionError struct {
	Resource string
	From     string
	To       string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %q to %q", e.Resource, e.From, e.To)
}

// ConflictError reports that a resource cannot be removed while other
// records depend on it.
type ConflictError struct {
	Resource string
	ID       string
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Resource, e.ID, e.Reason)
}

// Validation is a shorthand for a ValidationError.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Persistence wraps a store failure. A nil err yields nil.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// NotFound is a shorthand for a NotFoundError.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// Conflict is a shorthand for a ConflictError.
func Conflict(resource, id, reason string) error {
	return &ConflictError{Resource: resource, ID: id, Reason: reason}
}

// Forbidden is a shorthand for an AuthorizationError.
func Forbidden(action string) error {
	return &AuthorizationError{Action: action}
}

// Code returns the API error code for err, or "" when err is not part of
// the taxonomy.
func Code(err error) string {
	var (
		ve *ValidationError
		pe *PersistenceError
		pi *PaymentInitiationError
		nf *NotFoundError
		ae *AuthorizationError
		te *TransitionError
		ce *ConflictError
	)
	switch {
	case errors.As(err, &ve):
		return CodeValidation
	case errors.As(err, &te):
		return CodeInvalidTransition
	case errors.As(err, &ce):
		return CodeConflict
	case errors.As(err, &nf):
		return CodeNotFound
	case errors.As(err, &ae):
		return CodeAuthorization
	case errors.As(err, &pi):
		return CodePaymentInitiation
	case errors.As(err, &pe):
		return CodePersistence
	}
	return ""
}
