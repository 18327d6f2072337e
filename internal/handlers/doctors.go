package handlers

import (
	"therapy-booking-server/internal/middleware"
	"therapy-booking-server/internal/models"
	"therapy-booking-server/internal/services"
	"therapy-booking-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// DoctorHandler serves the doctor directory and its approval workflow.
type DoctorHandler struct {
	Doctors *services.DoctorService
	Status  *services.StatusService
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(doctors *services.DoctorService, status *services.StatusService) *DoctorHandler {
	return &DoctorHandler{Doctors: doctors, Status: status}
}

// GetDoctors lists approved doctors.
func (h *DoctorHandler) GetDoctors(c *gin.Context) {
	doctors, err := h.Doctors.ListBookable(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctors fetched successfully", doctors)
}

// GetAllDoctors lists doctors in any state, optionally filtered by ?status=.
func (h *DoctorHandler) GetAllDoctors(c *gin.Context) {
	status := models.DoctorStatus(c.Query("status"))
	switch status {
	case "", models.DoctorPending, models.DoctorApproved, models.DoctorRejected:
	default:
		utils.BadRequest(c, "Invalid status filter")
		return
	}
	doctors, err := h.Doctors.ListAll(c.Request.Context(), middleware.ActorFromContext(c), status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctors fetched successfully", doctors)
}

// ApprovalRequest represents the body of an approval decision.
type ApprovalRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

// SetApproval approves or rejects a doctor.
func (h *DoctorHandler) SetApproval(c *gin.Context) {
	userID, ok := idParam(c, "userId", "doctor")
	if !ok {
		return
	}
	var req ApprovalRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	doctor, err := h.Status.SetDoctorApproval(c.Request.Context(), middleware.ActorFromContext(c), userID, *req.Approved)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctor approval updated", doctor)
}
