package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FIREBASE_PROJECT_ID", "demo-project")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/tmp/sa.json")
	t.Setenv("STRIPE_SECRET", "sk_test_abc")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_abc")
}

func TestLoadConfig_DefaultsAndRequired(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "usd", cfg.StripeCurrency)
	assert.Equal(t, int64(1200), cfg.StripeUnitAmount)
	assert.NotEmpty(t, cfg.StripeProductName)
}

func TestLoadConfig_MissingStripeSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STRIPE_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STRIPE_SECRET")
}

func TestLoadConfig_MissingCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	t.Setenv("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestStripeMode(t *testing.T) {
	assert.Equal(t, ModeTest, (&Config{StripeSecretKey: "sk_test_123"}).StripeMode())
	assert.Equal(t, ModeLive, (&Config{StripeSecretKey: "sk_live_123"}).StripeMode())
	assert.Equal(t, ModeLive, (&Config{StripeSecretKey: "rk_live_123"}).StripeMode())
}

func TestOrigins(t *testing.T) {
	cfg := &Config{AllowedOrigins: "https://a.example.com, https://b.example.com ,"}
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Origins())

	assert.Nil(t, (&Config{}).Origins())
}
