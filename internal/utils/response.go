package utils

import (
	"net/http"

	"therapy-booking-server/internal/apperrors"
	"therapy-booking-server/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ResponseData represents the structure of a standard API response.
type ResponseData struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// Success sends a standard success response.
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, ResponseData{
		Status:  http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// Created sends a standard resource created response.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, ResponseData{
		Status:  http.StatusCreated,
		Message: message,
		Data:    data,
	})
}

// Error sends a standard error response.
func Error(c *gin.Context, statusCode int, errorMessage string) {
	c.JSON(statusCode, ResponseData{
		Status:  statusCode,
		Message: "An error occurred",
		Error:   errorMessage,
	})
}

// BadRequest sends a 400 Bad Request error response.
func BadRequest(c *gin.Context, errorMessage string) {
	c.JSON(http.StatusBadRequest, ResponseData{
		Status:  http.StatusBadRequest,
		Message: "An error occurred",
		Error:   errorMessage,
		Code:    apperrors.CodeValidation,
	})
}

// Unauthorized sends a 401 Unauthorized error response.
func Unauthorized(c *gin.Context, errorMessage string) {
	Error(c, http.StatusUnauthorized, errorMessage)
}

// Forbidden sends a 403 Forbidden error response.
func Forbidden(c *gin.Context, errorMessage string) {
	c.JSON(http.StatusForbidden, ResponseData{
		Status:  http.StatusForbidden,
		Message: "An error occurred",
		Error:   errorMessage,
		Code:    apperrors.CodeAuthorization,
	})
}

// NotFound sends a 404 Not Found error response.
func NotFound(c *gin.Context, errorMessage string) {
	Error(c, http.StatusNotFound, errorMessage)
}

// InternalServerError sends a 500 Internal Server Error response.
func InternalServerError(c *gin.Context, errorMessage string) {
	Error(c, http.StatusInternalServerError, errorMessage)
}

var statusByCode = map[string]int{
	apperrors.CodeValidation:        http.StatusBadRequest,
	apperrors.CodeInvalidTransition: http.StatusConflict,
	apperrors.CodeConflict:          http.StatusConflict,
	apperrors.CodeNotFound:          http.StatusNotFound,
	apperrors.CodeAuthorization:     http.StatusForbidden,
	apperrors.CodePaymentInitiation: http.StatusBadGateway,
	apperrors.CodePersistence:       http.StatusInternalServerError,
}

// StatusFor returns the HTTP status matching a workflow error.
func StatusFor(err error) int {
	if status, ok := statusByCode[apperrors.Code(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// RespondError writes a workflow error with its code. Store and unknown
// failures are logged and answered with a generic message.
func RespondError(c *gin.Context, err error) {
	code := apperrors.Code(err)
	status := StatusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		message = "Internal server error"
		if code == "" {
			code = "INTERNAL_ERROR"
		}
	}
	c.JSON(status, ResponseData{
		Status:  status,
		Message: "An error occurred",
		Error:   message,
		Code:    code,
	})
}
