package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"therapy-booking-server/internal/config"
	"therapy-booking-server/internal/logger"
	"therapy-booking-server/internal/middleware"
	"therapy-booking-server/internal/models"
	"therapy-booking-server/internal/payment"
	"therapy-booking-server/internal/realtime"
	"therapy-booking-server/internal/repository"
	"therapy-booking-server/internal/routes"
	"therapy-booking-server/internal/services"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "therapy-booking-server",
		Short:         "Therapy session booking API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(serveCmd(), migrateCmd(), createAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and initialises logging.
func bootstrap() (*config.Config, error) {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}

func openDB(cfg *config.Config, migrate bool) (*gorm.DB, error) {
	dbCfg := models.DatabaseConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
		Debug:  cfg.Environment == "development",
	}
	if migrate {
		return models.InitDB(dbCfg)
	}
	return models.Open(dbCfg)
}

func serveCmd() *cobra.Command {
	var skipMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(!skipMigrate)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not auto-migrate the schema on startup")
	return cmd
}

func runServer(migrate bool) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := openDB(cfg, migrate)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	hub := realtime.NewHub(32)
	if err := realtime.RegisterChangeFeed(db, hub); err != nil {
		return fmt.Errorf("register change feed: %w", err)
	}

	if cfg.Payment.SecretKey == "" {
		logger.Log.Warn("PAYMENT_SECRET_KEY is not set; bookings will be saved without invoices")
	}
	if cfg.Payment.WebhookSecret == "" {
		logger.Log.Warn("PAYMENT_WEBHOOK_SECRET is not set; payment callbacks will be refused")
	}

	repos := repository.New(db)
	svc := services.New(repos, payment.NewClient(cfg.Payment), cfg.Payment, hub)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Origin, ",")
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, repos, svc, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Log.Info("server stopped")
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if _, err := openDB(cfg, true); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Log.Info("migrations applied", zap.String("driver", cfg.Database.Driver))
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || len(password) < 8 {
				return errors.New("--email and a --password of at least 8 characters are required")
			}
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, err := openDB(cfg, true)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			users := repository.NewUserRepository(db)
			ctx := cmd.Context()

			email = strings.ToLower(strings.TrimSpace(email))
			if _, err := users.FindByEmail(ctx, email); err == nil {
				return fmt.Errorf("user %s already exists", email)
			} else if !errors.Is(err, repository.ErrNotFound) {
				return err
			}

			admin := &models.User{Email: email, FullName: name, Role: models.RoleAdmin}
			if err := admin.SetPassword(password); err != nil {
				return err
			}
			if err := users.Create(ctx, admin); err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			logger.Log.Info("admin created", zap.String("user_id", admin.ID), zap.String("email", email))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	return cmd
}
