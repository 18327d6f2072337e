package handlers

import (
	"therapy-booking-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// idParam reads a UUID path parameter, answering 400 when it is malformed.
func idParam(c *gin.Context, name, label string) (string, bool) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.BadRequest(c, "Invalid "+label+" ID format")
		return "", false
	}
	return id.String(), true
}
