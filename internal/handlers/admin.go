package handlers

import (
	"therapy-booking-server/internal/middleware"
	"therapy-booking-server/internal/models"
	"therapy-booking-server/internal/services"
	"therapy-booking-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles platform administration requests.
type AdminHandler struct {
	Admin *services.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(admin *services.AdminService) *AdminHandler {
	return &AdminHandler{Admin: admin}
}

// GetUsers lists every profile.
func (h *AdminHandler) GetUsers(c *gin.Context) {
	users, err := h.Admin.ListUsers(c.Request.Context(), middleware.ActorFromContext(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	out := make([]models.UserSanitized, len(users))
	for i := range users {
		out[i] = users[i].Sanitize()
	}
	utils.Success(c, "Users fetched successfully", out)
}

// DeleteUser removes a profile.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := idParam(c, "id", "user")
	if !ok {
		return
	}
	if err := h.Admin.DeleteUser(c.Request.Context(), middleware.ActorFromContext(c), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "User deleted successfully", nil)
}

// GetStats returns dashboard counters.
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.Admin.Stats(c.Request.Context(), middleware.ActorFromContext(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Statistics fetched successfully", stats)
}
