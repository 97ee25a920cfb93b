package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	Database     DatabaseConfig
	Server       ServerConfig
	Session      SessionConfig
	Mail         MailConfig
	Events       EventsConfig
	Verification VerificationConfig
	Telemetry    TelemetryConfig
	Log          LogConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string        `env:"DB_DRIVER" envDefault:"postgres"`
	DSN              string        `env:"DB_URL"`
	MaxConns         int32         `env:"DB_MAX_CONNS" envDefault:"20"`
	MinConns         int32         `env:"DB_MIN_CONNS" envDefault:"5"`
	MaxConnLifetime  time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"30m"`
	MaxConnIdleTime  time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"5m"`
	DialTimeout      time.Duration `env:"DB_DIAL_TIMEOUT" envDefault:"3s"`
	StatementTimeout time.Duration `env:"DB_STATEMENT_TIMEOUT" envDefault:"0s"`
	AutoMigrate      bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	GRPCAddr        string        `env:"GRPC_ADDR" envDefault:":8081"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// SessionConfig selects how caller sessions are resolved. An OIDC issuer takes
// precedence over the shared JWT secret.
type SessionConfig struct {
	OIDCIssuer   string `env:"SESSION_OIDC_ISSUER"`
	OIDCClientID string `env:"SESSION_OIDC_CLIENT_ID"`
	JWTSecret    string `env:"SESSION_JWT_SECRET"`
	CookieName   string `env:"SESSION_COOKIE" envDefault:"estatehub_session"`
	LoginPath    string `env:"LOGIN_PATH" envDefault:"/login"`
	OnboardPath  string `env:"ONBOARDING_PATH" envDefault:"/onboarding"`
}

// MailConfig holds the transactional mail provider settings
type MailConfig struct {
	APIURL    string        `env:"MAIL_API_URL"`
	APIKey    string        `env:"MAIL_API_KEY"`
	From      string        `env:"MAIL_FROM" envDefault:"EstateHub <no-reply@estatehub.local>"`
	Timeout   time.Duration `env:"MAIL_TIMEOUT" envDefault:"10s"`
	Workers   int           `env:"MAIL_WORKERS" envDefault:"2"`
	QueueSize int           `env:"MAIL_QUEUE_SIZE" envDefault:"128"`
}

// EventsConfig holds the NATS connection used for verification events
type EventsConfig struct {
	NATSURL       string `env:"NATS_URL"`
	SubjectPrefix string `env:"NATS_SUBJECT_PREFIX" envDefault:"profiles.verification"`
}

// VerificationConfig holds the review workflow policy
type VerificationConfig struct {
	// 0 means unlimited
	MaxResubmissions int      `env:"VERIFICATION_MAX_RESUBMISSIONS" envDefault:"0"`
	Reviewers        []string `env:"REVIEWER_SUBJECTS" envSeparator:","`
}

type TelemetryConfig struct {
	OTELEndpoint string `env:"OTEL_ENDPOINT"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"estatehubd"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	return cfg, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return NewAppError(CodeConfig, "DB_DRIVER must be postgres or sqlite", ErrValidation)
	}
	if c.Database.DSN == "" {
		return NewAppError(CodeConfig, "DB_URL is required", ErrValidation)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError(CodeConfig, "HTTP_ADDR is required", ErrValidation)
	}
	if c.Session.OIDCIssuer == "" && c.Session.JWTSecret == "" {
		return NewAppError(CodeConfig, "SESSION_OIDC_ISSUER or SESSION_JWT_SECRET is required", ErrValidation)
	}
	if c.Session.OIDCIssuer != "" && c.Session.OIDCClientID == "" {
		return NewAppError(CodeConfig, "SESSION_OIDC_CLIENT_ID is required with SESSION_OIDC_ISSUER", ErrValidation)
	}
	if c.Verification.MaxResubmissions < 0 {
		return NewAppError(CodeConfig, "VERIFICATION_MAX_RESUBMISSIONS must not be negative", ErrValidation)
	}
	return nil
}
