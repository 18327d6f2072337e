package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	Port                      string
	Origin                    string
	Environment               string
	LogLevel                  string
	JWTSecret                 string
	JWTRefreshSecret          string
	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int
	Database                  DatabaseConfig
	Payment                   PaymentConfig
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// PaymentConfig holds the hosted payment provider settings. SecretKey has no
// default and must come from the environment.
type PaymentConfig struct {
	APIURL            string
	SecretKey         string
	SecretHeader      string
	AccountIdentifier string
	TransactionPrefix string
	ItemCode          string
	Description       string
	Language          string
	Timeout           time.Duration
	InvoiceTTL        time.Duration
	WebhookSecret     string
	PlaceholderEmail  string
	PlaceholderPhone  string
	PlaceholderName   string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	dbConfig := DatabaseConfig{
		Driver:   getEnv("DB_DRIVER", "mysql"),
		Host:     getEnv("DB_HOST", "localhost"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "therapal"),
	}

	switch dbConfig.Driver {
	case "mysql":
		dbConfig.Port = getEnv("DB_PORT", "3306")
		dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)
	case "postgres":
		dbConfig.Port = getEnv("DB_PORT", "5432")
		dbConfig.DSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			dbConfig.Host, dbConfig.Username, dbConfig.Password, dbConfig.Name, dbConfig.Port, getEnv("DB_SSLMODE", "disable"))
	case "sqlite":
		// Local development without a database server. DB_NAME is the file path.
		dbConfig.Name = getEnv("DB_NAME", "therapal.db")
		dbConfig.DSN = dbConfig.Name + "?_pragma=foreign_keys(1)"
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", dbConfig.Driver)
	}

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	jwtRefreshExpHours, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS: %w", err)
	}

	paymentTimeout, err := strconv.Atoi(getEnv("PAYMENT_TIMEOUT_SECONDS", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYMENT_TIMEOUT_SECONDS: %w", err)
	}

	invoiceTTL, err := strconv.Atoi(getEnv("PAYMENT_INVOICE_TTL_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYMENT_INVOICE_TTL_HOURS: %w", err)
	}

	paymentConfig := PaymentConfig{
		APIURL:            getEnv("PAYMENT_API_URL", "https://api.sandbox.irembopay.com/payments/invoices"),
		SecretKey:         getEnv("PAYMENT_SECRET_KEY", ""),
		SecretHeader:      getEnv("PAYMENT_SECRET_HEADER", "irembopay-secretKey"),
		AccountIdentifier: getEnv("PAYMENT_ACCOUNT_IDENTIFIER", "TST-RWF"),
		TransactionPrefix: getEnv("PAYMENT_TRANSACTION_PREFIX", "THERAPAL-"),
		ItemCode:          getEnv("PAYMENT_ITEM_CODE", "THERAPY-SESSION"),
		Description:       getEnv("PAYMENT_DESCRIPTION", "Therapy session payment"),
		Language:          getEnv("PAYMENT_LANGUAGE", "EN"),
		Timeout:           time.Duration(paymentTimeout) * time.Second,
		InvoiceTTL:        time.Duration(invoiceTTL) * time.Hour,
		WebhookSecret:     getEnv("PAYMENT_WEBHOOK_SECRET", ""),
		PlaceholderEmail:  getEnv("PAYMENT_PLACEHOLDER_EMAIL", "user@email.com"),
		PlaceholderPhone:  getEnv("PAYMENT_PLACEHOLDER_PHONE", "0780000001"),
		PlaceholderName:   getEnv("PAYMENT_PLACEHOLDER_NAME", "Therapal User"),
	}

	return &Config{
		Port:                      getEnv("PORT", "3001"),
		Origin:                    getEnv("ORIGIN", "http://localhost:5173"),
		Environment:               getEnv("APP_ENV", "development"),
		LogLevel:                  getEnv("LOG_LEVEL", "info"),
		JWTSecret:                 getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTRefreshSecret:          getEnv("JWT_REFRESH_SECRET", "default_refresh_secret"),
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
		Database:                  dbConfig,
		Payment:                   paymentConfig,
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
