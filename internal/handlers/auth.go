package handlers

import (
	"errors"
	"strings"
	"time"

	"therapy-booking-server/internal/config"
	"therapy-booking-server/internal/logger"
	"therapy-booking-server/internal/middleware"
	"therapy-booking-server/internal/models"
	"therapy-booking-server/internal/repository"
	"therapy-booking-server/internal/services"
	"therapy-booking-server/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const refreshCookie = "refresh_token"

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	Users   repository.UserRepository
	Tokens  repository.RefreshTokenRepository
	Doctors *services.DoctorService
	Cfg     *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users repository.UserRepository, tokens repository.RefreshTokenRepository, doctors *services.DoctorService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens, Doctors: doctors, Cfg: cfg}
}

// RegisterRequest represents the request body for registration. Doctor
// fields are only read when Role is "doctor".
type RegisterRequest struct {
	FullName       string   `json:"fullName" binding:"required"`
	Email          string   `json:"email" binding:"required,email"`
	Password       string   `json:"password" binding:"required,min=8"`
	Phone          string   `json:"phone"`
	Role           string   `json:"role" binding:"omitempty,oneof=user doctor"`
	Specialization string   `json:"specialization"`
	Bio            string   `json:"bio"`
	HourlyRate     float64  `json:"hourlyRate"`
	Languages      []string `json:"languages"`
}

// Register handles user and doctor sign-up. Admin accounts are not
// self-service.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	ctx := c.Request.Context()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := h.Users.FindByEmail(ctx, email); err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		utils.InternalServerError(c, "Database error")
		return
	}

	user := models.User{
		FullName: strings.TrimSpace(req.FullName),
		Email:    email,
		Phone:    strings.TrimSpace(req.Phone),
		Role:     models.RoleUser,
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password")
		return
	}

	if models.Role(req.Role) == models.RoleDoctor {
		doctor, err := h.Doctors.Register(ctx, &user, services.DoctorProfile{
			Specialization: req.Specialization,
			Bio:            req.Bio,
			HourlyRate:     req.HourlyRate,
			Languages:      req.Languages,
		})
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		logger.Log.Info("doctor registered", zap.String("user_id", user.ID))
		utils.Created(c, "Doctor registered successfully, awaiting approval", gin.H{
			"user":   user.Sanitize(),
			"doctor": doctor,
		})
		return
	}

	if err := h.Users.Create(ctx, &user); err != nil {
		utils.InternalServerError(c, "Failed to create user")
		return
	}
	logger.Log.Info("user registered", zap.String("user_id", user.ID))
	utils.Created(c, "User registered successfully", user.Sanitize())
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	User         models.UserSanitized `json:"user"`
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, err := h.Users.FindByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.Unauthorized(c, "Invalid email or password")
		} else {
			utils.InternalServerError(c, "Database error")
		}
		return
	}
	if !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	accessToken, refreshToken, ok := h.issueTokens(c, user)
	if !ok {
		return
	}
	utils.Success(c, "Login successful", LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.Sanitize(),
	})
}

// issueTokens signs a token pair, stores the refresh token and sets the
// refresh cookie. It writes the error response itself.
func (h *AuthHandler) issueTokens(c *gin.Context, user *models.User) (string, string, bool) {
	accessToken, refreshToken, err := utils.GenerateTokens(user, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate tokens")
		return "", "", false
	}

	stored := models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: utils.RefreshExpiry(h.Cfg, time.Now()),
	}
	if err := h.Tokens.Create(c.Request.Context(), &stored); err != nil {
		utils.InternalServerError(c, "Failed to store refresh token")
		return "", "", false
	}

	c.SetCookie(refreshCookie, refreshToken, h.Cfg.JWTRefreshExpirationHours*60*60, "/", "", h.Cfg.Environment != "development", true)
	return accessToken, refreshToken, true
}

// RefreshTokenRequest represents the request body for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshTokenResponse represents the response body for successful token refresh.
type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken rotates a refresh token: the presented one is revoked and a
// new pair is issued. The cookie takes precedence over the body.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	presented, err := c.Cookie(refreshCookie)
	if err != nil || presented == "" {
		var req RefreshTokenRequest
		if !utils.BindAndValidate(c, &req) {
			return
		}
		presented = req.RefreshToken
	}

	claims, err := utils.ValidateToken(presented, h.Cfg.JWTRefreshSecret)
	if err != nil {
		utils.Unauthorized(c, "Invalid refresh token")
		return
	}

	ctx := c.Request.Context()
	stored, err := h.Tokens.FindUsable(ctx, presented, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.Unauthorized(c, "Refresh token not found, expired, or revoked")
		} else {
			utils.InternalServerError(c, "Database error checking refresh token")
		}
		return
	}

	user, err := h.Users.FindByID(ctx, claims.UserID)
	if err != nil {
		utils.Unauthorized(c, "User associated with token no longer exists")
		return
	}

	stored.Revoke(time.Now())
	if err := h.Tokens.Save(ctx, stored); err != nil {
		utils.InternalServerError(c, "Failed to revoke refresh token")
		return
	}

	accessToken, refreshToken, ok := h.issueTokens(c, user)
	if !ok {
		return
	}
	utils.Success(c, "Access token refreshed successfully", RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// LogoutRequest represents the request body for user logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Logout revokes the presented refresh token and clears the cookie. An
// unknown or already revoked token still logs out.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	_ = c.ShouldBindJSON(&req)
	token := req.RefreshToken
	if token == "" {
		token, _ = c.Cookie(refreshCookie)
	}
	if token == "" {
		utils.BadRequest(c, "Refresh token is required")
		return
	}

	ctx := c.Request.Context()
	stored, err := h.Tokens.FindByToken(ctx, token)
	switch {
	case errors.Is(err, repository.ErrNotFound):
	case err != nil:
		utils.InternalServerError(c, "Database error during logout")
		return
	default:
		stored.Revoke(time.Now())
		if err := h.Tokens.Save(ctx, stored); err != nil {
			utils.InternalServerError(c, "Failed to revoke refresh token")
			return
		}
	}

	c.SetCookie(refreshCookie, "", -1, "/", "", h.Cfg.Environment != "development", true)
	utils.Success(c, "Logout successful", nil)
}

// GetProfile handles fetching the currently authenticated user's profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	user, err := h.Users.FindByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.NotFound(c, "User profile not found")
		} else {
			utils.InternalServerError(c, "Database error")
		}
		return
	}
	utils.Success(c, "Profile fetched successfully", user.Sanitize())
}

// UpdateProfileRequest represents the request body for updating user profile.
type UpdateProfileRequest struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
}

// UpdateProfile handles updating the currently authenticated user's profile.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req UpdateProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	ctx := c.Request.Context()
	user, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		utils.NotFound(c, "User not found")
		return
	}
	if name := strings.TrimSpace(req.FullName); name != "" {
		user.FullName = name
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		user.Phone = phone
	}

	if err := h.Users.Update(ctx, user); err != nil {
		utils.InternalServerError(c, "Failed to update profile")
		return
	}
	utils.Success(c, "Profile updated successfully", user.Sanitize())
}
