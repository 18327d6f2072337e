package handlers

import (
	"strings"

	"therapy-booking-server/internal/middleware"
	"therapy-booking-server/internal/models"
	"therapy-booking-server/internal/services"
	"therapy-booking-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Booking      *services.BookingService
	Appointments *services.AppointmentService
	Status       *services.StatusService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(booking *services.BookingService, appointments *services.AppointmentService, status *services.StatusService) *AppointmentHandler {
	return &AppointmentHandler{Booking: booking, Appointments: appointments, Status: status}
}

// CreateAppointmentRequest represents the request body for booking a
// session. The patient is always the authenticated caller.
type CreateAppointmentRequest struct {
	DoctorID        string `json:"doctorId" binding:"required,uuid"`
	AppointmentDate string `json:"appointmentDate" binding:"required"`
	AppointmentTime string `json:"appointmentTime" binding:"required"`
	Duration        int    `json:"duration" binding:"required"`
	Notes           string `json:"notes" binding:"max=2000"`
}

// CreateAppointmentResponse reports the booking and its payment handoff.
// PaymentError is set when the appointment exists but no invoice could be
// created.
type CreateAppointmentResponse struct {
	Appointment  *models.Appointment `json:"appointment"`
	PaymentURL   string              `json:"paymentUrl,omitempty"`
	PaymentError string              `json:"paymentError,omitempty"`
}

// CreateAppointment runs the booking workflow.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	result, err := h.Booking.Book(c.Request.Context(), middleware.ActorFromContext(c), services.BookingRequest{
		DoctorID: req.DoctorID,
		Date:     req.AppointmentDate,
		Time:     req.AppointmentTime,
		Duration: req.Duration,
		Notes:    req.Notes,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	resp := CreateAppointmentResponse{Appointment: result.Appointment, PaymentURL: result.PaymentURL}
	message := "Appointment booked successfully"
	if result.PaymentError != nil {
		resp.PaymentError = "Payment could not be initiated; the appointment is saved and payment can be completed later"
		message = "Appointment booked, payment pending"
	}
	utils.Created(c, message, resp)
}

// GetAppointmentsForUser lists the caller's appointments, optionally
// filtered by ?status=.
func (h *AppointmentHandler) GetAppointmentsForUser(c *gin.Context) {
	status := models.AppointmentStatus(strings.ToLower(c.Query("status")))
	switch status {
	case "", models.StatusPending, models.StatusConfirmed, models.StatusCancelled, models.StatusCompleted:
	default:
		utils.BadRequest(c, "Invalid status filter")
		return
	}

	appointments, err := h.Appointments.List(c.Request.Context(), middleware.ActorFromContext(c), status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentByID fetches a single appointment for a party or an admin.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	id, ok := idParam(c, "id", "appointment")
	if !ok {
		return
	}
	appointment, err := h.Appointments.Get(c.Request.Context(), middleware.ActorFromContext(c), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment fetched successfully", appointment)
}

// UpdateAppointmentStatusRequest represents the request body for updating an appointment's status.
type UpdateAppointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required,oneof=pending confirmed cancelled completed"`
}

// UpdateAppointmentStatus runs the status transition workflow.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	id, ok := idParam(c, "id", "appointment")
	if !ok {
		return
	}
	var req UpdateAppointmentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Status.TransitionAppointment(c.Request.Context(), middleware.ActorFromContext(c), id, req.Status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment status updated successfully", appointment)
}
