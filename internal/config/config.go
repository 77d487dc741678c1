package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Record backends.
const (
	RecordBackendAPI      = "api"
	RecordBackendPostgres = "postgres"
	RecordBackendMemory   = "memory"
)

// Email alert providers.
const (
	EmailProviderNone     = "none"
	EmailProviderSES      = "ses"
	EmailProviderSendGrid = "sendgrid"
	EmailProviderStub     = "stub"
)

// Config holds application configuration
type Config struct {
	Port     string `env:"PORT" validate:"required,numeric"`
	Env      string `env:"ENV"`
	LogLevel string `env:"LOG_LEVEL" validate:"oneof=debug info warn warning error"`

	// Origin labels stamped on every lead.
	Source    string `env:"LEAD_SOURCE" validate:"required"`
	SiteLabel string `env:"LEAD_SITE_LABEL" validate:"required"`

	// Notification webhooks. An empty URL skips the notification for that form.
	ContactWebhookURL string `env:"CONTACT_WEBHOOK_URL" validate:"omitempty,http_url"`
	PartnerWebhookURL string `env:"PARTNER_WEBHOOK_URL" validate:"omitempty,http_url"`

	// System of record.
	RecordBackend string `env:"RECORD_BACKEND" validate:"oneof=api postgres memory"`
	ContactAPIURL string `env:"CONTACT_API_URL" validate:"required_if=RecordBackend api,omitempty,http_url"`
	PartnerAPIURL string `env:"PARTNER_API_URL" validate:"required_if=RecordBackend api,omitempty,http_url"`
	DatabaseURL   string `env:"DATABASE_URL" validate:"required_if=RecordBackend postgres"`

	// OutboundTimeout bounds webhook and API calls. Zero means no timeout.
	OutboundTimeout time.Duration `env:"OUTBOUND_TIMEOUT" validate:"gte=0"`

	// Fallback inboxes named in the failure banners.
	SupportEmail string `env:"SUPPORT_EMAIL" validate:"omitempty,email"`
	SalesEmail   string `env:"SALES_EMAIL" validate:"omitempty,email"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS"`
	RateLimitPerSecond float64  `env:"RATE_LIMIT_RPS" validate:"gte=0"`
	RateLimitBurst     int      `env:"RATE_LIMIT_BURST" validate:"gte=1"`

	// Submission guard. An empty RedisAddr keeps the guard in memory.
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisTLS      bool          `env:"REDIS_TLS"`
	GuardTTL      time.Duration `env:"SUBMISSION_GUARD_TTL" validate:"gt=0"`

	// Optional email alert alongside the webhook.
	EmailProvider  string `env:"EMAIL_PROVIDER" validate:"oneof=none ses sendgrid stub"`
	AlertEmailTo   string `env:"LEAD_ALERT_EMAIL" validate:"required_unless=EmailProvider none,omitempty,email"`
	EmailFrom      string `env:"EMAIL_FROM" validate:"required_unless=EmailProvider none,omitempty,email"`
	EmailFromName  string `env:"EMAIL_FROM_NAME"`
	SendGridAPIKey string `env:"SENDGRID_API_KEY" validate:"required_if=EmailProvider sendgrid"`

	AWSRegion           string `env:"AWS_REGION"`
	AWSAccessKeyID      string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey  string `env:"AWS_SECRET_ACCESS_KEY"`
	AWSEndpointOverride string `env:"AWS_ENDPOINT_OVERRIDE" validate:"omitempty,url"`
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),

		Source:    getEnv("LEAD_SOURCE", "OneTriage"),
		SiteLabel: getEnv("LEAD_SITE_LABEL", "OneTriage Marketing Website"),

		ContactWebhookURL: getEnv("CONTACT_WEBHOOK_URL", ""),
		PartnerWebhookURL: getEnv("PARTNER_WEBHOOK_URL", ""),

		RecordBackend: strings.ToLower(strings.TrimSpace(getEnv("RECORD_BACKEND", RecordBackendAPI))),
		ContactAPIURL: getEnv("CONTACT_API_URL", ""),
		PartnerAPIURL: getEnv("PARTNER_API_URL", ""),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		OutboundTimeout: getEnvAsDuration("OUTBOUND_TIMEOUT", 0),

		SupportEmail: getEnv("SUPPORT_EMAIL", "support@onetriage.com"),
		SalesEmail:   getEnv("SALES_EMAIL", "sales@onetriage.com"),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		RateLimitPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 0.5),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 5),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		GuardTTL:      getEnvAsDuration("SUBMISSION_GUARD_TTL", 30*time.Second),

		EmailProvider:  strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", EmailProviderNone))),
		AlertEmailTo:   getEnv("LEAD_ALERT_EMAIL", ""),
		EmailFrom:      getEnv("EMAIL_FROM", ""),
		EmailFromName:  getEnv("EMAIL_FROM_NAME", "OneTriage Leads"),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
	}
}

// Validate checks the loaded values. Problems are reported by env var name.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	err := v.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			problems = append(problems, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		problems = append(problems, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("config: invalid environment: %s", strings.Join(problems, "; "))
}

// WebhookURLs maps form type names to notification endpoints.
func (c *Config) WebhookURLs() map[string]string {
	return map[string]string{
		"Contact": c.ContactWebhookURL,
		"Partner": c.PartnerWebhookURL,
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
