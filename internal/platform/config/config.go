// Package config builds service configuration from environment variables so
// main stays lean. Every value has a development default; production
// deployments override via the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the full service configuration.
type Config struct {
	Addr    string
	BaseURL string // public base URL used in SMS download links

	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	SMS      SMSConfig
	SMTP     SMTPConfig
	Badge    BadgeConfig
	OTP      OTPConfig
}

// PostgresConfig holds the database connection settings.
type PostgresConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig holds the Redis connection settings. An empty URL disables
// Redis-backed features (the OTP throttle degrades to unlimited sends).
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds broker addresses and topic names. Empty brokers disable
// the Kafka pipelines (audit stays in the outbox, realtime notifications
// drop).
type KafkaConfig struct {
	Brokers           []string
	AuditTopic        string
	NotificationTopic string
}

// SMSConfig holds the Route Mobile bulk-SMS gateway settings.
type SMSConfig struct {
	GatewayURL  string
	Username    string
	Password    string
	Source      string
	EntityID    string
	TemplateID  string
	CountryCode string
	Timeout     time.Duration
}

// SMTPConfig holds the outbound mailer settings.
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// BadgeConfig holds the badge renderer endpoint and download-token settings.
type BadgeConfig struct {
	RendererURL     string
	RendererTimeout time.Duration
	SigningKey      string
	TokenTTL        time.Duration
}

// OTPConfig holds the one-time-code send throttle settings.
type OTPConfig struct {
	MaxSends   int
	SendWindow time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:    envOr("VISITGATE_ADDR", ":8080"),
		BaseURL: envOr("VISITGATE_BASE_URL", "http://localhost:8080"),
		Postgres: PostgresConfig{
			URL:          os.Getenv("VISITGATE_POSTGRES_URL"),
			MaxOpenConns: envIntOr("VISITGATE_POSTGRES_MAX_OPEN", 20),
			MaxIdleConns: envIntOr("VISITGATE_POSTGRES_MAX_IDLE", 5),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("VISITGATE_REDIS_URL"),
			PoolSize:     envIntOr("VISITGATE_REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("VISITGATE_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDurationOr("VISITGATE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("VISITGATE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("VISITGATE_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:           splitNonEmpty(os.Getenv("VISITGATE_KAFKA_BROKERS")),
			AuditTopic:        envOr("VISITGATE_KAFKA_AUDIT_TOPIC", "visitgate.audit"),
			NotificationTopic: envOr("VISITGATE_KAFKA_NOTIFICATION_TOPIC", "visitgate.notifications"),
		},
		SMS: SMSConfig{
			GatewayURL:  envOr("VISITGATE_SMS_GATEWAY_URL", "https://sms6.rmlconnect.net:8443/bulksms/bulksms"),
			Username:    os.Getenv("VISITGATE_SMS_USERNAME"),
			Password:    os.Getenv("VISITGATE_SMS_PASSWORD"),
			Source:      os.Getenv("VISITGATE_SMS_SOURCE"),
			EntityID:    os.Getenv("VISITGATE_SMS_ENTITY_ID"),
			TemplateID:  os.Getenv("VISITGATE_SMS_TEMPLATE_ID"),
			CountryCode: envOr("VISITGATE_SMS_COUNTRY_CODE", "91"),
			Timeout:     envDurationOr("VISITGATE_SMS_TIMEOUT", 10*time.Second),
		},
		SMTP: SMTPConfig{
			Host:     envOr("VISITGATE_SMTP_HOST", "localhost"),
			Port:     envIntOr("VISITGATE_SMTP_PORT", 587),
			From:     envOr("VISITGATE_SMTP_FROM", "no-reply@visitgate.local"),
			Username: os.Getenv("VISITGATE_SMTP_USERNAME"),
			Password: os.Getenv("VISITGATE_SMTP_PASSWORD"),
		},
		Badge: BadgeConfig{
			RendererURL:     os.Getenv("VISITGATE_BADGE_RENDERER_URL"),
			RendererTimeout: envDurationOr("VISITGATE_BADGE_RENDERER_TIMEOUT", 10*time.Second),
			// Development default - must be overridden in production.
			SigningKey: envOr("VISITGATE_BADGE_SIGNING_KEY", "dev-secret-key-change-in-production"),
			TokenTTL:   envDurationOr("VISITGATE_BADGE_TOKEN_TTL", 24*time.Hour),
		},
		OTP: OTPConfig{
			MaxSends:   envIntOr("VISITGATE_OTP_MAX_SENDS", 3),
			SendWindow: envDurationOr("VISITGATE_OTP_SEND_WINDOW", 10*time.Minute),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(raw); i++ {
		if i == len(raw) || raw[i] == ',' {
			if part := raw[start:i]; part != "" {
				out = append(out, part)
			}
			start = i + 1
		}
	}
	return out
}
