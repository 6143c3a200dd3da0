package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MERCADOPAGO_WEBHOOK_SECRET", "")
	t.Setenv("MEMBERSHIP_PERIOD", "")
	cfg := Load()

	if cfg.MercadoPago.WebhookSecret != "" {
		t.Errorf("WebhookSecret = %q, want empty", cfg.MercadoPago.WebhookSecret)
	}
	// Set-but-invalid falls back to the default.
	if cfg.Reconcile.MembershipPeriod != 30*24*time.Hour {
		t.Errorf("MembershipPeriod = %s, want 720h", cfg.Reconcile.MembershipPeriod)
	}
	if cfg.Reconcile.SweepInterval != 0 {
		t.Errorf("SweepInterval = %s, want 0", cfg.Reconcile.SweepInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MERCADOPAGO_WEBHOOK_SECRET", "testsecret")
	t.Setenv("PUBLIC_URL", "https://gym.example.com/")
	t.Setenv("SWEEP_INTERVAL", "15m")
	t.Setenv("RATE_LIMIT_REQUESTS", "abc")
	t.Setenv("BACKEND_SCOPES", "payments:write, payments:read ,")
	cfg := Load()

	if cfg.MercadoPago.WebhookSecret != "testsecret" {
		t.Errorf("WebhookSecret = %q", cfg.MercadoPago.WebhookSecret)
	}
	if cfg.Server.PublicURL != "https://gym.example.com" {
		t.Errorf("PublicURL = %q, want trailing slash trimmed", cfg.Server.PublicURL)
	}
	if cfg.Reconcile.SweepInterval != 15*time.Minute {
		t.Errorf("SweepInterval = %s", cfg.Reconcile.SweepInterval)
	}
	if cfg.RateLimit.Requests != 100 {
		t.Errorf("RateLimit.Requests = %d, want default 100", cfg.RateLimit.Requests)
	}
	if len(cfg.Backend.Scopes) != 2 || cfg.Backend.Scopes[1] != "payments:read" {
		t.Errorf("Scopes = %v", cfg.Backend.Scopes)
	}
}
