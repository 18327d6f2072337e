package routes

import (
	"net/http"

	"therapy-booking-server/internal/config"
	"therapy-booking-server/internal/handlers"
	"therapy-booking-server/internal/middleware"
	"therapy-booking-server/internal/models"
	"therapy-booking-server/internal/repository"
	"therapy-booking-server/internal/services"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, repos *repository.Repositories, svc *services.Services, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(repos.Users, repos.RefreshTokens, svc.Doctors, cfg)
	adminHandler := handlers.NewAdminHandler(svc.Admin)
	doctorHandler := handlers.NewDoctorHandler(svc.Doctors, svc.Status)
	appointmentHandler := handlers.NewAppointmentHandler(svc.Booking, svc.Appointments, svc.Status)
	chatHandler := handlers.NewChatHandler(svc.Chat, cfg.Origin)
	paymentHandler := handlers.NewPaymentHandler(svc.Payments, cfg.Payment.WebhookSecret)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
		// Provider callback, authenticated by its shared secret
		public.POST("/payments/callback", paymentHandler.Callback)
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		private.GET("/doctors", doctorHandler.GetDoctors)

		adminRoutes := private.Group("/admin")
		adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			adminRoutes.GET("/stats", adminHandler.GetStats)
			adminRoutes.GET("/users", adminHandler.GetUsers)
			adminRoutes.DELETE("/users/:id", adminHandler.DeleteUser)
			adminRoutes.GET("/doctors", doctorHandler.GetAllDoctors)
			adminRoutes.PATCH("/doctors/:userId/approval", doctorHandler.SetApproval)
		}

		// Authorization for appointments and chat is checked inside the workflows
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleUser, models.RoleAdmin), appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("", appointmentHandler.GetAppointmentsForUser)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PATCH("/:id/status", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), appointmentHandler.UpdateAppointmentStatus)

			appointmentRoutes.GET("/:id/chat", chatHandler.GetMessages)
			appointmentRoutes.POST("/:id/chat", chatHandler.SendMessage)
			appointmentRoutes.GET("/:id/chat/ws", chatHandler.Stream)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
}
