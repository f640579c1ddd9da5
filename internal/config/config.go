package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
	Payroll    PayrollConfig
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
	Port           int
	Env            string
	LogLevel       string
	Version        string
	AllowedOrigins []string
	RequestTimeout time.Duration
	APIKey         string
}

// AttendanceConfig drives check-in status and the absence sweep.
type AttendanceConfig struct {
	LateCutoff    string
	Timezone      string
	StandardHours float64
	SweepHour     int
	WorkDays      string
}

type PayrollConfig struct {
	WorkingDays        int
	OvertimeMultiplier string
	TaxRate            string
}

func (a AppConfig) IsDevelopment() bool {
	return a.Env == "development"
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	} else if err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	config := &Config{}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "etms"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "5000"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	timeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		RequestTimeout: timeout,
		APIKey:         getEnv("API_KEY", ""),
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "24h"),
	}

	standardHours, err := strconv.ParseFloat(getEnv("ATTENDANCE_STANDARD_HOURS", "8"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_STANDARD_HOURS: %w", err)
	}
	sweepHour, err := strconv.Atoi(getEnv("ATTENDANCE_SWEEP_HOUR", "23"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_SWEEP_HOUR: %w", err)
	}

	config.Attendance = AttendanceConfig{
		LateCutoff:    getEnv("ATTENDANCE_LATE_CUTOFF", "09:00"),
		Timezone:      getEnv("ATTENDANCE_TIMEZONE", "UTC"),
		StandardHours: standardHours,
		SweepHour:     sweepHour,
		WorkDays:      getEnv("ATTENDANCE_WORK_DAYS", "mon,tue,wed,thu,fri"),
	}

	workingDays, err := strconv.Atoi(getEnv("PAYROLL_WORKING_DAYS", "22"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_WORKING_DAYS: %w", err)
	}

	config.Payroll = PayrollConfig{
		WorkingDays:        workingDays,
		OvertimeMultiplier: getEnv("PAYROLL_OVERTIME_MULTIPLIER", "1.5"),
		TaxRate:            getEnv("PAYROLL_TAX_RATE", "0.10"),
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
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if _, err := time.Parse("15:04", c.Attendance.LateCutoff); err != nil {
		return fmt.Errorf("ATTENDANCE_LATE_CUTOFF must be HH:MM: %w", err)
	}
	if _, err := time.LoadLocation(c.Attendance.Timezone); err != nil {
		return fmt.Errorf("invalid ATTENDANCE_TIMEZONE: %w", err)
	}
	if c.Attendance.SweepHour < 0 || c.Attendance.SweepHour > 23 {
		return fmt.Errorf("ATTENDANCE_SWEEP_HOUR must be between 0 and 23")
	}
	if c.Payroll.WorkingDays <= 0 {
		return fmt.Errorf("PAYROLL_WORKING_DAYS must be positive")
	}
	if c.App.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
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

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback string) []string {
	value := getEnv(env, fallback)
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
