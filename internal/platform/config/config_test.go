package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "91", cfg.SMS.CountryCode)
	assert.Equal(t, 3, cfg.OTP.MaxSends)
	assert.Equal(t, 10*time.Minute, cfg.OTP.SendWindow)
	assert.Equal(t, "visitgate.audit", cfg.Kafka.AuditTopic)
	assert.Nil(t, cfg.Kafka.Brokers)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("VISITGATE_ADDR", ":9999")
	t.Setenv("VISITGATE_OTP_MAX_SENDS", "5")
	t.Setenv("VISITGATE_OTP_SEND_WINDOW", "1m")
	t.Setenv("VISITGATE_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg := FromEnv()

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 5, cfg.OTP.MaxSends)
	assert.Equal(t, time.Minute, cfg.OTP.SendWindow)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("VISITGATE_OTP_MAX_SENDS", "not-a-number")
	t.Setenv("VISITGATE_OTP_SEND_WINDOW", "soon")

	cfg := FromEnv()

	assert.Equal(t, 3, cfg.OTP.MaxSends)
	assert.Equal(t, 10*time.Minute, cfg.OTP.SendWindow)
}
