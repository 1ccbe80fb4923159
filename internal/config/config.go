package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/period"
	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Engine   EngineConfig
	Queue    QueueConfig
	Cache    CacheConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// EngineConfig holds the grace thresholds. Every value falls back to the
// engine default when the variable is unset or malformed.
type EngineConfig struct {
	Thresholds period.Thresholds
}

// QueueConfig holds request processing queue settings.
type QueueConfig struct {
	UnitBudget     time.Duration
	DedupeWindow   time.Duration
	RetryAttempts  int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// CacheConfig holds the status read cache settings.
type CacheConfig struct {
	StatusTTL     time.Duration
	SweepInterval time.Duration
}

func Load() (*Config, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance-engine"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Engine thresholds
	defaults := period.DefaultThresholds()
	config.Engine = EngineConfig{
		Thresholds: period.Thresholds{
			EarlyCheckIn:     getEnvDuration("EARLY_CHECKIN_WINDOW", defaults.EarlyCheckIn),
			LateCheckIn:      getEnvDuration("LATE_CHECKIN_THRESHOLD", defaults.LateCheckIn),
			LateCheckOut:     getEnvDuration("LATE_CHECKOUT_WINDOW", defaults.LateCheckOut),
			EarlyCheckOut:    getEnvDuration("EARLY_CHECKOUT_THRESHOLD", defaults.EarlyCheckOut),
			VeryLateCheckOut: getEnvDuration("VERY_LATE_CHECKOUT_THRESHOLD", defaults.VeryLateCheckOut),
			TransitionWindow: getEnvDuration("TRANSITION_WINDOW", defaults.TransitionWindow),

			OvertimeEarlyCheckIn: getEnvDuration("OVERTIME_EARLY_CHECKIN_WINDOW", defaults.OvertimeEarlyCheckIn),
			OvertimeLateCheckIn:  getEnvDuration("OVERTIME_LATE_CHECKIN_THRESHOLD", defaults.OvertimeLateCheckIn),
			OvertimeLateCheckOut: getEnvDuration("OVERTIME_LATE_CHECKOUT_WINDOW", defaults.OvertimeLateCheckOut),

			NearTransitionBefore: defaults.NearTransitionBefore,
			NearTransitionAfter:  defaults.NearTransitionAfter,
		},
	}

	// Queue configuration
	retryAttempts, err := strconv.Atoi(getEnv("QUEUE_RETRY_ATTEMPTS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUEUE_RETRY_ATTEMPTS: %w", err)
	}

	config.Queue = QueueConfig{
		UnitBudget:     getEnvDuration("QUEUE_UNIT_BUDGET", 8*time.Second),
		DedupeWindow:   getEnvDuration("QUEUE_DEDUPE_WINDOW", 30*time.Second),
		RetryAttempts:  retryAttempts,
		InitialBackoff: getEnvDuration("QUEUE_INITIAL_BACKOFF", 200*time.Millisecond),
		MaxBackoff:     getEnvDuration("QUEUE_MAX_BACKOFF", 2*time.Second),
	}

	// Cache configuration
	config.Cache = CacheConfig{
		StatusTTL:     getEnvDuration("STATUS_CACHE_TTL", 15*time.Second),
		SweepInterval: getEnvDuration("STATUS_CACHE_SWEEP_INTERVAL", 1*time.Minute),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Queue.UnitBudget <= 0 {
		return fmt.Errorf("QUEUE_UNIT_BUDGET must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
