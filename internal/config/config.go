package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Email    EmailConfig
	WhatsApp WhatsAppConfig
	Geofence GeofenceConfig
	Redis    RedisConfig
	Firebase FirebaseConfig
	Storage  StorageConfig
	LogDir   string
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	BaseURL         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL          string
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxIdleConns int
	MaxOpenConns int
	MaxLifetime  time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// EmailConfig holds SMTP configuration for OTP mails
type EmailConfig struct {
	SMTPHost string
	SMTPPort string
	From     string
	Password string
	FromName string
}

// WhatsAppConfig holds Twilio credentials for WhatsApp messages
type WhatsAppConfig struct {
	AccountSID  string
	AuthToken   string
	From        string
	CountryCode string
}

// GeofenceConfig holds the proximity threshold
type GeofenceConfig struct {
	DistanceKm float64
}

// RedisConfig holds the live location cache connection
type RedisConfig struct {
	URL string
}

// FirebaseConfig holds the FCM service account path
type FirebaseConfig struct {
	ServiceAccountPath string
}

// StorageConfig holds report storage configuration (S3 or local)
type StorageConfig struct {
	AWSRegion    string
	AWSAccessKey string
	AWSSecretKey string
	Bucket       string
	LocalDir     string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	env := &envReader{}
	port := getEnv("PORT", "5000")

	cfg := &Config{
		Server: ServerConfig{
			Port:            port,
			BaseURL:         getEnv("BASE_URL", "http://localhost:"+port),
			ReadTimeout:     env.durationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    env.durationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: env.durationEnv("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     os.Getenv("DB_PASSWORD"),
			Name:         getEnv("DB_NAME", "tripguard"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxIdleConns: env.intEnv("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns: env.intEnv("DB_MAX_OPEN_CONNS", 100),
			MaxLifetime:  env.durationEnv("DB_MAX_LIFETIME", time.Hour),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			TTL:    env.durationEnv("JWT_TTL", time.Hour),
		},
		Email: EmailConfig{
			SMTPHost: getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort: getEnv("SMTP_PORT", "587"),
			From:     os.Getenv("MAILING_EMAIL"),
			Password: os.Getenv("MAILING_EMAIL_PASSWORD"),
			FromName: getEnv("MAILING_FROM_NAME", "TripGuard"),
		},
		WhatsApp: WhatsAppConfig{
			AccountSID:  os.Getenv("TWILIO_ACC_SID"),
			AuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
			From:        getEnv("TWILIO_WHATSAPP_FROM", "whatsapp:+14155238886"),
			CountryCode: getEnv("PHONE_COUNTRY_CODE", "+91"),
		},
		Geofence: GeofenceConfig{
			DistanceKm: env.floatEnv("GEO_FENCE_DISTANCE", 1.0),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Firebase: FirebaseConfig{
			ServiceAccountPath: os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"),
		},
		Storage: StorageConfig{
			AWSRegion:    os.Getenv("AWS_REGION"),
			AWSAccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			AWSSecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			Bucket:       os.Getenv("AWS_S3_BUCKET"),
			LocalDir:     getEnv("REPORT_DIR", "./reports"),
		},
		LogDir: os.Getenv("LOG_DIR"),
	}

	if len(env.invalid) > 0 {
		return nil, fmt.Errorf("invalid value for %s", strings.Join(env.invalid, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.Geofence.DistanceKm <= 0 {
		return fmt.Errorf("GEO_FENCE_DISTANCE must be positive")
	}

	if !c.IsEmailConfigured() {
		log.Println("Warning: MAILING_EMAIL/MAILING_EMAIL_PASSWORD not set. OTP emails will not be delivered.")
	}
	if !c.IsWhatsAppConfigured() {
		log.Println("Warning: Twilio credentials not set. WhatsApp notifications will not be delivered.")
	}

	return nil
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Database.Host,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.Port,
		c.Database.SSLMode,
	)
}

// IsEmailConfigured checks if SMTP credentials are present
func (c *Config) IsEmailConfigured() bool {
	return c.Email.From != "" && c.Email.Password != ""
}

// IsWhatsAppConfigured checks if Twilio credentials are present
func (c *Config) IsWhatsAppConfigured() bool {
	return c.WhatsApp.AccountSID != "" && c.WhatsApp.AuthToken != ""
}

// IsS3Configured checks if AWS credentials and bucket are present
func (c *Config) IsS3Configured() bool {
	s := c.Storage
	return s.AWSRegion != "" && s.AWSAccessKey != "" && s.AWSSecretKey != "" && s.Bucket != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envReader parses typed variables and records the keys it could not parse.
type envReader struct {
	invalid []string
}

func (r *envReader) intEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		r.invalid = append(r.invalid, key)
		return defaultValue
	}
	return intValue
}

func (r *envReader) floatEnv(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		r.invalid = append(r.invalid, key)
		return defaultValue
	}
	return f
}

func (r *envReader) durationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		r.invalid = append(r.invalid, key)
		return defaultValue
	}
	return duration
}
