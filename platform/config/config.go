// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// EmailConfig provides settings for email sending.
type EmailConfig interface {
	GetEmailProvider() string
	GetBrevoAPIKey() string
	GetSendGridAPIKey() string
	GetSESRegion() string
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// NotificationConfig provides settings for the notification module.
type NotificationConfig interface {
	GetAppBaseURL() string
	GetAdminNotifyEmail() string
	GetNotifyTimeout() time.Duration
	GetNotifyMaxPerSecond() float64
}

// DecisionConfig provides settings for quote decision links.
type DecisionConfig interface {
	GetDecisionTokenTTL() time.Duration
}

// RateLimitConfig provides the admission policies for public and admin routes.
type RateLimitConfig interface {
	GetRateLimitBackend() string
	GetPublicRateLimit() (int, time.Duration)
	GetAdminRateLimit() (int, time.Duration)
}

// RedisConfig provides shared Redis settings.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// SchedulerConfig provides settings for the asynq scheduler.
type SchedulerConfig interface {
	RedisConfig
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetTokenPurgeCron() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                string
	HTTPAddr           string
	DatabaseURL        string
	JWTAccessSecret    string
	CORSOrigins        []string
	CORSAllowCreds     bool
	AppBaseURL         string
	AdminNotifyEmail   string
	EmailProvider      string
	BrevoAPIKey        string
	SendGridAPIKey     string
	SESRegion          string
	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	EmailFromName      string
	EmailFromAddress   string
	NotifyTimeout      time.Duration
	NotifyMaxPerSecond float64
	DecisionTokenTTL   time.Duration
	RateLimitBackend   string
	PublicRateMax      int
	PublicRateWindow   time.Duration
	AdminRateMax       int
	AdminRateWindow    time.Duration
	RedisURL           string
	RedisTLSInsecure   bool
	AsynqQueueName     string
	AsynqConcurrency   int
	TokenPurgeCron     string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// EmailConfig implementation
func (c *Config) GetEmailProvider() string    { return c.EmailProvider }
func (c *Config) GetBrevoAPIKey() string      { return c.BrevoAPIKey }
func (c *Config) GetSendGridAPIKey() string   { return c.SendGridAPIKey }
func (c *Config) GetSESRegion() string        { return c.SESRegion }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

// NotificationConfig implementation
func (c *Config) GetAppBaseURL() string            { return c.AppBaseURL }
func (c *Config) GetAdminNotifyEmail() string      { return c.AdminNotifyEmail }
func (c *Config) GetNotifyTimeout() time.Duration  { return c.NotifyTimeout }
func (c *Config) GetNotifyMaxPerSecond() float64   { return c.NotifyMaxPerSecond }

// DecisionConfig implementation
func (c *Config) GetDecisionTokenTTL() time.Duration { return c.DecisionTokenTTL }

// RateLimitConfig implementation
func (c *Config) GetRateLimitBackend() string { return c.RateLimitBackend }
func (c *Config) GetPublicRateLimit() (int, time.Duration) {
	return c.PublicRateMax, c.PublicRateWindow
}
func (c *Config) GetAdminRateLimit() (int, time.Duration) {
	return c.AdminRateMax, c.AdminRateWindow
}

// RedisConfig implementation
func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool  { return c.RedisTLSInsecure }

// SchedulerConfig implementation
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }
func (c *Config) GetTokenPurgeCron() string { return c.TokenPurgeCron }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTAccessSecret:    getEnv("JWT_ACCESS_SECRET", ""),
		CORSOrigins:        splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		CORSAllowCreds:     strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		AppBaseURL:         strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:3000"), "/"),
		AdminNotifyEmail:   getEnv("ADMIN_NOTIFY_EMAIL", ""),
		EmailProvider:      strings.ToLower(getEnv("EMAIL_PROVIDER", "noop")),
		BrevoAPIKey:        getEnv("BREVO_API_KEY", ""),
		SendGridAPIKey:     getEnv("SENDGRID_API_KEY", ""),
		SESRegion:          getEnv("SES_REGION", "me-central-1"),
		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		EmailFromName:      getEnv("EMAIL_FROM_NAME", "UAE Business Desk"),
		EmailFromAddress:   getEnv("EMAIL_FROM_ADDRESS", ""),
		NotifyTimeout:      mustDuration(getEnv("NOTIFY_TIMEOUT", "10s")),
		NotifyMaxPerSecond: mustFloat(getEnv("NOTIFY_MAX_PER_SECOND", "5")),
		DecisionTokenTTL:   mustDuration(getEnv("DECISION_TOKEN_TTL", "720h")),
		RateLimitBackend:   strings.ToLower(getEnv("RATE_LIMIT_BACKEND", "memory")),
		PublicRateMax:      mustInt(getEnv("RATE_LIMIT_PUBLIC_MAX", "10")),
		PublicRateWindow:   mustDuration(getEnv("RATE_LIMIT_PUBLIC_WINDOW", "10m")),
		AdminRateMax:       mustInt(getEnv("RATE_LIMIT_ADMIN_MAX", "30")),
		AdminRateWindow:    mustDuration(getEnv("RATE_LIMIT_ADMIN_WINDOW", "1m")),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisTLSInsecure:   strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:     getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:   mustInt(getEnv("ASYNQ_CONCURRENCY", "4")),
		TokenPurgeCron:     getEnv("TOKEN_PURGE_CRON", "@hourly"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTAccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if containsWildcard(c.CORSOrigins) {
		return fmt.Errorf("CORS_ORIGINS must be an explicit allow-list")
	}
	switch c.EmailProvider {
	case "noop":
	case "brevo":
		if c.BrevoAPIKey == "" {
			return fmt.Errorf("BREVO_API_KEY is required when EMAIL_PROVIDER is brevo")
		}
	case "sendgrid":
		if c.SendGridAPIKey == "" {
			return fmt.Errorf("SENDGRID_API_KEY is required when EMAIL_PROVIDER is sendgrid")
		}
	case "smtp":
		if c.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is required when EMAIL_PROVIDER is smtp")
		}
	case "ses":
		if c.SESRegion == "" {
			return fmt.Errorf("SES_REGION is required when EMAIL_PROVIDER is ses")
		}
	default:
		return fmt.Errorf("unsupported EMAIL_PROVIDER %q", c.EmailProvider)
	}
	if c.EmailProvider != "noop" && c.EmailFromAddress == "" {
		return fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}
	if c.NotifyTimeout <= 0 {
		return fmt.Errorf("NOTIFY_TIMEOUT must be a positive duration")
	}
	if c.DecisionTokenTTL <= 0 {
		return fmt.Errorf("DECISION_TOKEN_TTL must be a positive duration")
	}
	if c.PublicRateMax < 1 || c.PublicRateWindow <= 0 || c.AdminRateMax < 1 || c.AdminRateWindow <= 0 {
		return fmt.Errorf("rate limit policies need a positive max and window")
	}
	switch c.RateLimitBackend {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when RATE_LIMIT_BACKEND is redis")
		}
	default:
		return fmt.Errorf("unsupported RATE_LIMIT_BACKEND %q", c.RateLimitBackend)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
