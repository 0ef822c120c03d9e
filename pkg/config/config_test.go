package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew_DefaultsAndEnvOverride(t *testing.T) {
	t.Setenv("APP_CONFIG_NAME", "does-not-exist")
	t.Setenv("APP_STRIPE_WEBHOOK_SECRET", "whsec_test")
	t.Setenv("APP_SERVER_PORT", "9999")

	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, EnvDev, cfg.Env)
	require.Equal(t, 9999, cfg.Server.Port)
	require.Equal(t, "whsec_test", cfg.Stripe.WebhookSecret)
	require.Equal(t, int64(50000), cfg.Stripe.SetupFeeAmount)
	require.Equal(t, 12*time.Hour, cfg.Admin.SessionTTL)
	require.Empty(t, cfg.Server.TrustedProxies)
}

func TestNew_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(file, []byte("public_base_url: https://sitecraft.dev/\nstripe:\n  currency: eur\nserver:\n  trusted_proxies: [\"10.0.0.0/8\"]\n"), 0o600))
	t.Setenv("APP_CONFIG_FILE", file)

	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, "eur", cfg.Stripe.Currency)
	require.Equal(t, []string{"10.0.0.0/8"}, cfg.Server.TrustedProxies)
	require.Equal(t, "https://sitecraft.dev/pay/setup/tok", cfg.CheckoutURL("setup", "tok"))
}
