package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/leads")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	max, window := cfg.GetPublicRateLimit()
	if max != 10 || window != 10*time.Minute {
		t.Fatalf("expected public policy 10/10m, got %d/%s", max, window)
	}
	max, window = cfg.GetAdminRateLimit()
	if max != 30 || window != time.Minute {
		t.Fatalf("expected admin policy 30/1m, got %d/%s", max, window)
	}
	if cfg.GetNotifyTimeout() != 10*time.Second {
		t.Fatalf("expected notify timeout 10s, got %s", cfg.GetNotifyTimeout())
	}
	if cfg.GetDecisionTokenTTL() != 30*24*time.Hour {
		t.Fatalf("expected 30 day token ttl, got %s", cfg.GetDecisionTokenTTL())
	}
	if cfg.GetEmailProvider() != "noop" {
		t.Fatalf("expected noop provider, got %q", cfg.GetEmailProvider())
	}
}

func TestLoadRejectsWildcardOrigins(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CORS_ORIGINS", "https://uaebusinessdesk.com, *")

	if _, err := Load(); err == nil {
		t.Fatal("expected wildcard CORS origins to be rejected")
	}
}

func TestLoadRequiresRedisForRedisBackend(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RATE_LIMIT_BACKEND", "redis")
	t.Setenv("REDIS_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected missing REDIS_URL to be rejected")
	}
}

func TestLoadRequiresProviderCredentials(t *testing.T) {
	cases := map[string]string{
		"brevo":    "BREVO_API_KEY",
		"sendgrid": "SENDGRID_API_KEY",
		"smtp":     "SMTP_HOST",
	}
	for provider, key := range cases {
		t.Run(provider, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("EMAIL_PROVIDER", provider)
			t.Setenv("EMAIL_FROM_ADDRESS", "desk@example.com")
			t.Setenv(key, "")

			if _, err := Load(); err == nil {
				t.Fatalf("expected missing %s to be rejected", key)
			}
		})
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" https://a.example ,,https://b.example ")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("unexpected split result: %#v", got)
	}
}
