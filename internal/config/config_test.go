package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SMTP_USERNAME", "shop@gmail.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.ServerPort)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, "shop.db", cfg.DatabaseURL)
	assert.Equal(t, "gmail.com", cfg.AllowedEmailDomain)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTP.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, 10*time.Second, cfg.SMTP.Timeout)
	assert.Equal(t, "shop@gmail.com", cfg.SMTP.From)
	assert.Equal(t, "products", cfg.ES.Index)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("ALLOWED_EMAIL_DOMAIN", "@Example.COM")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SMTP_FROM", "noreply@example.com")
	t.Setenv("TOKEN_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.Addr())
	assert.Equal(t, "example.com", cfg.AllowedEmailDomain)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "noreply@example.com", cfg.SMTP.From)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
}
