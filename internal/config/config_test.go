package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.Billing.SuspensionThreshold)
	assert.Equal(t, 30*24*time.Hour, cfg.Billing.SuspensionWindow)
	assert.False(t, cfg.Providers.Xendit.IsConfigured())
	assert.False(t, cfg.Providers.Stripe.IsConfigured())
}

func TestValidateRejectsEnabledSentryWithoutDSN(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Sentry.Enabled = true
	assert.Error(t, cfg.Validate())
}

func TestNewConfigReadsEnvironment(t *testing.T) {
	t.Setenv("RECURRING_BILLING_TRIAL_DAYS", "7")
	t.Setenv("RECURRING_PROVIDERS_STRIPE_SECRET_KEY", "sk_test_123")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Billing.TrialDays)
	assert.True(t, cfg.Providers.Stripe.IsConfigured())
}

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresConfig{User: "u", Password: "p", DBName: "d", Host: "h", Port: 5432, SSLMode: "disable"}.GetDSN()
	assert.Equal(t, "user=u password=p dbname=d host=h port=5432 sslmode=disable", dsn)
}
